package document_test

import (
	"testing"

	"github.com/Moserpilot/Finance-Planner-2/document"
	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

// =============================================================================
// DECODE
// =============================================================================

func TestDecode_FullDocument(t *testing.T) {
	data := []byte(`{
		"currency": "eur",
		"startMonth": "2026-03",
		"startingNetWorth": 1500,
		"goalNetWorth": "250000",
		"expectedReturnPct": 6.5,
		"netWorthMode": "snapshot",
		"recurring": [{
			"id": "rent", "kind": "expense", "name": " Rent ",
			"defaultAmount": 1200, "behavior": "carryForward",
			"changes": [{"month": "2027-01", "amount": 1300}],
			"overrides": [],
			"endMonth": "2030-12"
		}],
		"oneTime": [{"id": "bonus", "kind": "income", "name": "Bonus", "month": "2026-12", "amount": 2500}],
		"netWorthAccounts": [{"id": "checking", "name": "Checking", "balances": [{"month": "2026-03", "amount": 8000}]}]
	}`)

	plan, err := document.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "EUR", plan.Currency)
	assert.Equal(t, projection.MonthKey("2026-03"), plan.StartMonth)
	assertAmount(t, "1500", plan.StartingNetWorth)
	assertAmount(t, "250000", plan.GoalNetWorth)
	assertAmount(t, "6.5", plan.ExpectedReturnPct)
	assert.Equal(t, projection.ModeSnapshot, plan.NetWorthMode)

	require.Len(t, plan.Recurring, 1)
	rent := plan.Recurring[0]
	assert.Equal(t, "Rent", rent.Name)
	assert.Equal(t, projection.KindExpense, rent.Kind)
	assert.Equal(t, projection.MonthKey("2030-12"), rent.EndMonth)
	require.Len(t, rent.Changes, 1)
	assertAmount(t, "1300", rent.Changes[0].Amount)
	assert.Empty(t, rent.Overrides)

	require.Len(t, plan.OneTime, 1)
	assert.Equal(t, projection.KindIncome, plan.OneTime[0].Kind)

	require.Len(t, plan.Accounts, 1)
	assertAmount(t, "8000", plan.Accounts[0].Balances[0].Amount)
}

func TestDecode_NotAnObject(t *testing.T) {
	for _, input := range []string{`[]`, `null`, `"plan"`, `42`, `{broken`} {
		_, err := document.Decode([]byte(input))
		assert.ErrorIs(t, err, document.ErrNotObject, input)
	}
}

func TestDecode_EmptyObjectGetsDefaults(t *testing.T) {
	plan, err := document.Decode([]byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, "USD", plan.Currency)
	assert.Equal(t, projection.DefaultMonth, plan.StartMonth)
	assert.Equal(t, projection.ModeHybrid, plan.NetWorthMode)
	assert.True(t, plan.StartingNetWorth.IsZero())
	assert.NotNil(t, plan.Recurring)
	assert.Empty(t, plan.Recurring)
	assert.Empty(t, plan.OneTime)
	assert.Empty(t, plan.Accounts)
}

func TestDecode_NormalizesFieldDefects(t *testing.T) {
	// GIVEN: A document with every kind of field-level defect
	// WHEN: Decoding it
	// THEN: Nothing fails; each defect is replaced by its documented default

	data := []byte(`{
		"currency": "XYZ",
		"startMonth": "January",
		"startingNetWorth": "not a number",
		"expectedReturnPct": null,
		"netWorthMode": "aggressive",
		"recurring": [
			"not an object",
			{"kind": "gift", "behavior": "weekly", "defaultAmount": "75.5", "endMonth": "2026-13",
			 "changes": [
				{"month": "2026-05", "amount": 10},
				{"month": "bad", "amount": 20},
				{"month": "2026-02", "amount": "NaN"},
				{"month": "2026-02", "amount": 30},
				{"month": "2026-05", "amount": 40}
			 ]}
		],
		"oneTime": {"oops": true},
		"netWorthAccounts": [{"name": "Brokerage", "balances": "none"}]
	}`)

	plan, err := document.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "USD", plan.Currency)
	assert.Equal(t, projection.DefaultMonth, plan.StartMonth)
	assert.True(t, plan.StartingNetWorth.IsZero())
	assert.True(t, plan.ExpectedReturnPct.IsZero())
	assert.Equal(t, projection.ModeHybrid, plan.NetWorthMode)

	require.Len(t, plan.Recurring, 1, "non-object element skipped")
	item := plan.Recurring[0]
	assert.NotEmpty(t, item.ID, "missing id generated")
	assert.Equal(t, projection.KindExpense, item.Kind)
	assert.Equal(t, projection.CarryForward, item.Behavior)
	assertAmount(t, "75.5", item.DefaultAmount)
	assert.Equal(t, projection.MonthKey(""), item.EndMonth, "invalid end month means never ends")

	// Invalid month and NaN dropped, duplicate 2026-05 keeps the last value, sorted
	require.Len(t, item.Changes, 2)
	assert.Equal(t, projection.MonthKey("2026-02"), item.Changes[0].Month)
	assertAmount(t, "30", item.Changes[0].Amount)
	assert.Equal(t, projection.MonthKey("2026-05"), item.Changes[1].Month)
	assertAmount(t, "40", item.Changes[1].Amount)

	assert.Empty(t, plan.OneTime, "non-array coerced to empty")

	require.Len(t, plan.Accounts, 1)
	assert.NotEmpty(t, plan.Accounts[0].ID)
	assert.Empty(t, plan.Accounts[0].Balances)
}

func TestDecode_OutOfRangeNumbers(t *testing.T) {
	// GIVEN: Amounts beyond the double range, as numbers and as strings
	// WHEN: Decoding the document
	// THEN: Scalars read as zero and dated entries carrying them are dropped

	data := []byte(`{
		"startingNetWorth": 1e400,
		"goalNetWorth": "1e400",
		"expectedReturnPct": -1e3000000,
		"recurring": [{"id": "r", "defaultAmount": "-1e400", "changes": [
			{"month": "2026-02", "amount": 1e400},
			{"month": "2026-03", "amount": "1e3000000"},
			{"month": "2026-04", "amount": 1.7e308}
		]}],
		"oneTime": [{"id": "o", "month": "2026-05", "amount": "0x10"}],
		"netWorthAccounts": [{"id": "a", "balances": [{"month": "2026-01", "amount": 1e400}, {"month": "2026-02", "amount": 250}]}]
	}`)

	plan, err := document.Decode(data)
	require.NoError(t, err)

	assert.True(t, plan.StartingNetWorth.IsZero())
	assert.True(t, plan.GoalNetWorth.IsZero())
	assert.True(t, plan.ExpectedReturnPct.IsZero())

	require.Len(t, plan.Recurring, 1)
	assert.True(t, plan.Recurring[0].DefaultAmount.IsZero())
	require.Len(t, plan.Recurring[0].Changes, 1, "largest finite double is kept")
	assert.Equal(t, projection.MonthKey("2026-04"), plan.Recurring[0].Changes[0].Month)
	assertAmount(t, "1.7e308", plan.Recurring[0].Changes[0].Amount)

	require.Len(t, plan.OneTime, 1)
	assert.True(t, plan.OneTime[0].Amount.IsZero(), "hex literals are not amounts")

	require.Len(t, plan.Accounts, 1)
	require.Len(t, plan.Accounts[0].Balances, 1)
	assertAmount(t, "250", plan.Accounts[0].Balances[0].Amount)
}

func TestDecode_LateStartMonthDefaults(t *testing.T) {
	plan, err := document.Decode([]byte(`{"startMonth": "9990-01", "oneTime": [{"id": "o", "month": "9999-12", "amount": 5}]}`))
	require.NoError(t, err)

	assert.Equal(t, projection.DefaultMonth, plan.StartMonth)
	require.Len(t, plan.OneTime, 1)
	assert.Equal(t, projection.DefaultMonth, plan.OneTime[0].Month)
}

func TestNumber_KeepsDecimalDigits(t *testing.T) {
	var n document.Number
	require.NoError(t, n.UnmarshalJSON([]byte(`"0.1"`)))
	assert.True(t, n.Valid)
	assert.Equal(t, "0.1", n.Value.String())

	require.NoError(t, n.UnmarshalJSON([]byte(`12345.67`)))
	assert.Equal(t, "12345.67", n.Value.String())

	require.NoError(t, n.UnmarshalJSON([]byte(`"Infinity"`)))
	assert.False(t, n.Valid)
}

func TestDecode_OneTimeInvalidMonthDefaults(t *testing.T) {
	plan, err := document.Decode([]byte(`{"oneTime": [{"id": "x", "month": "soon", "amount": 5}]}`))
	require.NoError(t, err)

	require.Len(t, plan.OneTime, 1)
	assert.Equal(t, projection.DefaultMonth, plan.OneTime[0].Month)
	assert.Equal(t, projection.KindExpense, plan.OneTime[0].Kind)
}

func TestDecode_DuplicateIDsAreReassigned(t *testing.T) {
	plan, err := document.Decode([]byte(`{
		"recurring": [{"id": "a"}, {"id": "a"}],
		"netWorthAccounts": [{"id": 7}]
	}`))
	require.NoError(t, err)

	require.Len(t, plan.Recurring, 2)
	assert.Equal(t, "a", plan.Recurring[0].ID)
	assert.NotEqual(t, "a", plan.Recurring[1].ID)
	assert.Equal(t, "7", plan.Accounts[0].ID, "numeric id kept as text")
}

// =============================================================================
// ENCODE
// =============================================================================

func TestEncode_DecodeKeepsPlan(t *testing.T) {
	plan := document.New()
	plan.Recurring = append(plan.Recurring, projection.RecurringItem{
		ID: "salary", Kind: projection.KindIncome, Name: "Salary",
		DefaultAmount: dec("4200.25"), Behavior: projection.MonthOnly,
		Changes:   []projection.DatedAmount{},
		Overrides: []projection.DatedAmount{{Month: "2026-12", Amount: dec("6000")}},
	})

	data, err := document.Encode(plan)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"netWorthAccounts": []`)
	assert.Contains(t, string(data), `"defaultAmount": 4200.25`)

	back, err := document.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, plan.Recurring[0].ID, back.Recurring[0].ID)
	assertAmount(t, "6000", back.Recurring[0].Overrides[0].Amount)
	assertAmount(t, "7", back.ExpectedReturnPct)
}

func TestNew_Defaults(t *testing.T) {
	plan := document.New()

	assert.Equal(t, "USD", plan.Currency)
	assert.Equal(t, projection.DefaultMonth, plan.StartMonth)
	assert.Equal(t, projection.ModeHybrid, plan.NetWorthMode)
}

func TestNormalize_DoesNotModifyInput(t *testing.T) {
	plan := projection.Plan{
		Accounts: []projection.Account{{Balances: []projection.DatedAmount{
			{Month: "2026-05", Amount: dec("1")},
			{Month: "2026-01", Amount: dec("2")},
		}}},
	}

	out := document.Normalize(plan)

	assert.Equal(t, projection.MonthKey("2026-05"), plan.Accounts[0].Balances[0].Month)
	assert.Equal(t, "", plan.Accounts[0].ID)
	assert.Equal(t, projection.MonthKey("2026-01"), out.Accounts[0].Balances[0].Month)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1,234.57", document.FormatAmount(dec("1234.567"), "USD"))
	assert.Equal(t, "$0.00", document.FormatAmount(dec("0"), "nope"))
}
