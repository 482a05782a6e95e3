package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Moserpilot/Finance-Planner-2/document"
	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salaryDocument = `{
  "currency": "USD",
  "startMonth": "2026-01",
  "goalNetWorth": 12000,
  "expectedReturnPct": 12,
  "netWorthMode": "projection",
  "recurring": [{"id": "salary", "kind": "income", "name": "Salary", "defaultAmount": 1000}],
  "netWorthAccounts": [{"id": "checking", "name": "Checking", "balances": [{"month": "2026-01", "amount": 10000}]}]
}`

func salaryPlan(t *testing.T) projection.Plan {
	t.Helper()
	plan, err := ReadPlan("-", strings.NewReader(salaryDocument))
	require.NoError(t, err)
	return plan
}

func TestReadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(salaryDocument), 0o600))

	plan, err := ReadPlan(path, nil)
	require.NoError(t, err)
	assert.Equal(t, projection.ModeProjection, plan.NetWorthMode)

	_, err = ReadPlan(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.ErrorContains(t, err, "failed to read plan")

	_, err = ReadPlan("-", strings.NewReader(`"not a plan"`))
	assert.ErrorContains(t, err, "failed to decode plan")
}

func TestSeries_JSONLines(t *testing.T) {
	// GIVEN: The salary plan in projection mode
	// WHEN: Printing the series yearly as JSON lines
	// THEN: 51 lines are printed, the first at the baseline

	var out bytes.Buffer
	cmd := &seriesCmd{every: 12, asJSON: true}
	require.NoError(t, cmd.run(&out, salaryPlan(t)))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 51)

	var first seriesLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, seriesLine{Index: 0, Month: "2026-01", NetWorth: "10000.00"}, first)
	assert.Contains(t, lines[50], `"month":"2076-01"`)
}

func TestSeries_Table(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&seriesCmd{every: 1}).run(&out, salaryPlan(t)))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 602, "header plus 601 months")
	assert.Contains(t, lines[2], "$11,100.00")
	assert.Contains(t, lines[3], "$12,211.00")
}

func TestNetWorthAndAsOf(t *testing.T) {
	plan := salaryPlan(t)

	var out bytes.Buffer
	require.NoError(t, (&netWorthCmd{}).run(&out, plan, "2026-01"))
	assert.Equal(t, "2026-01  $10,000.00\n", out.String())

	out.Reset()
	require.NoError(t, (&netWorthCmd{}).run(&out, plan, "2026-02"))
	assert.Equal(t, "2026-02  $0.00 (no balances entered)\n", out.String())

	out.Reset()
	require.NoError(t, (&asOfCmd{}).run(&out, plan, "2026-08"))
	assert.Equal(t, "2026-08  $10,000.00  (snapshot, 2026-01)\n", out.String())

	out.Reset()
	require.NoError(t, (&asOfCmd{}).run(&out, plan, "2025-06"))
	assert.Equal(t, "no net worth recorded at or before 2025-06\n", out.String())
}

func TestAmountAndCashFlow(t *testing.T) {
	plan := salaryPlan(t)

	var out bytes.Buffer
	require.NoError(t, (&amountCmd{item: "salary"}).run(&out, plan, "2027-03"))
	assert.Equal(t, "2027-03  Salary  income $1,000.00\n", out.String())

	assert.ErrorContains(t, (&amountCmd{item: "rent"}).run(&out, plan, "2027-03"), `"rent" not found`)

	out.Reset()
	require.NoError(t, (&cashFlowCmd{months: 3}).run(&out, plan, "2026-11"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[3], "2027-01")
}

func TestSummary(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&summaryCmd{}).run(&out, salaryPlan(t), "2026-01"))

	text := out.String()
	assert.Contains(t, text, "projection")
	assert.Contains(t, text, "$12,000.00 (83.33%)")
	assert.Contains(t, text, "2026-03", "goal is reached at month index 2")
	assert.Contains(t, text, "In 50 years")
}

func TestNormalize_RoundTrips(t *testing.T) {
	// GIVEN: A messy document
	// WHEN: Normalizing it
	// THEN: The output decodes to the same plan and is stable

	plan, err := ReadPlan("-", strings.NewReader(`{"currency":"eur","netWorthMode":"?","recurring":[{"name":"Gym","defaultAmount":"40"}]}`))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, (&normalizeCmd{}).run(&out, plan))

	again, err := document.Decode(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "EUR", again.Currency)
	require.Len(t, again.Recurring, 1)
	assert.Equal(t, plan.Recurring[0].ID, again.Recurring[0].ID)
	assert.Equal(t, projection.KindExpense, again.Recurring[0].Kind)
	assert.True(t, again.Recurring[0].DefaultAmount.Equal(plan.Recurring[0].DefaultAmount))

	var second bytes.Buffer
	require.NoError(t, (&normalizeCmd{}).run(&second, again))
	assert.Equal(t, out.String(), second.String())
	assert.Contains(t, out.String(), `"netWorthMode": "hybrid"`)
}

func TestMonthFlag(t *testing.T) {
	m, _, ok := monthFlag("2026-07")
	assert.True(t, ok)
	assert.Equal(t, projection.MonthKey("2026-07"), m)

	_, status, ok := monthFlag("")
	assert.False(t, ok)
	assert.Equal(t, subcommands.ExitUsageError, status)

	_, status, ok = monthFlag("2026-7")
	assert.False(t, ok)
	assert.Equal(t, subcommands.ExitUsageError, status)
}
