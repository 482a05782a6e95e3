package planner

import (
	"sort"

	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/shopspring/decimal"
)

// UpsertDated records amount for month. An existing entry for the month is
// replaced (last write wins); otherwise the entry is inserted in month order.
// The input slice is not modified.
func UpsertDated(history []projection.DatedAmount, month projection.MonthKey, amount decimal.Decimal) []projection.DatedAmount {
	out := make([]projection.DatedAmount, 0, len(history)+1)
	replaced := false
	for _, e := range history {
		if e.Month == month {
			if !replaced {
				out = append(out, projection.DatedAmount{Month: month, Amount: amount})
				replaced = true
			}
			continue
		}
		out = append(out, e)
	}
	if replaced {
		return out
	}

	// Binary search for insertion point
	i := sort.Search(len(out), func(i int) bool {
		return out[i].Month.After(month)
	})
	out = append(out, projection.DatedAmount{})
	copy(out[i+1:], out[i:])
	out[i] = projection.DatedAmount{Month: month, Amount: amount}
	return out
}

// RemoveDated drops every entry for month. It reports whether one existed.
func RemoveDated(history []projection.DatedAmount, month projection.MonthKey) ([]projection.DatedAmount, bool) {
	out := make([]projection.DatedAmount, 0, len(history))
	found := false
	for _, e := range history {
		if e.Month == month {
			found = true
			continue
		}
		out = append(out, e)
	}
	return out, found
}
