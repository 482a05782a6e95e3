package projection

import (
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// MONTH KEY - Canonical YYYY-MM calendar unit
// =============================================================================

// MonthKey is a zero-padded "YYYY-MM" month. Fixed width makes string order
// equal to chronological order, so keys compare with plain string operators.
type MonthKey string

// DefaultMonth replaces missing or malformed keys.
const DefaultMonth MonthKey = "2026-01"

// MaxYear is the last year ParseMonth accepts. A full horizon from any
// accepted month still ends by 9999-12, so keys stay four-digit.
const MaxYear = 9999 - HorizonMonths/12

// lastIndex is the index of 9999-12, the latest representable key.
const lastIndex = 9999*12 + 11

// NewMonthKey builds a key from a year and month.
func NewMonthKey(year int, month time.Month) MonthKey {
	return fromIndex(year*12 + int(month) - 1)
}

// MonthOf returns the key for the month containing t.
func MonthOf(t time.Time) MonthKey {
	return NewMonthKey(t.Year(), t.Month())
}

// ParseMonth parses a strict "YYYY-MM" key no later than MaxYear.
func ParseMonth(s string) (MonthKey, bool) {
	year, _, ok := split(s)
	if !ok || year > MaxYear {
		return "", false
	}
	return MonthKey(s), true
}

func split(s string) (year, month int, ok bool) {
	if len(s) != 7 || s[4] != '-' {
		return 0, 0, false
	}
	for i, c := range s {
		if i == 4 {
			continue
		}
		if c < '0' || c > '9' {
			return 0, 0, false
		}
	}
	year, _ = strconv.Atoi(s[:4])
	month, _ = strconv.Atoi(s[5:])
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// Valid reports whether k is a well-formed key.
func (k MonthKey) Valid() bool {
	_, _, ok := split(string(k))
	return ok
}

// OrDefault returns k, or DefaultMonth when k is malformed.
func (k MonthKey) OrDefault() MonthKey {
	if k.Valid() {
		return k
	}
	return DefaultMonth
}

// Year and Month return the calendar parts of k (DefaultMonth's when malformed).
func (k MonthKey) Year() int {
	y, _, _ := split(string(k.OrDefault()))
	return y
}

func (k MonthKey) Month() time.Month {
	_, m, _ := split(string(k.OrDefault()))
	return time.Month(m)
}

// index is the absolute month count year*12 + (month-1).
func (k MonthKey) index() int {
	y, m, _ := split(string(k.OrDefault()))
	return y*12 + m - 1
}

// fromIndex clamps to 0000-01..9999-12 so every key keeps four year digits.
func fromIndex(i int) MonthKey {
	i = min(max(i, 0), lastIndex)
	return MonthKey(fmt.Sprintf("%04d-%02d", i/12, i%12+1))
}

// Add returns the key n months after k (before, when n is negative),
// saturating at the ends of the four-digit range.
func (k MonthKey) Add(n int) MonthKey { return fromIndex(k.index() + n) }

// Comparison
func (k MonthKey) Before(other MonthKey) bool { return k < other }
func (k MonthKey) After(other MonthKey) bool  { return k > other }
func (k MonthKey) Compare(other MonthKey) int {
	switch {
	case k < other:
		return -1
	case k > other:
		return 1
	default:
		return 0
	}
}

// MonthsBetween returns how many months to is after from.
func MonthsBetween(from, to MonthKey) int { return to.index() - from.index() }

func (k MonthKey) String() string { return string(k) }
