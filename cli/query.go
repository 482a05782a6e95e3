package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Moserpilot/Finance-Planner-2/document"
	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/google/subcommands"
)

// =============================================================================
// series
// =============================================================================

type seriesCmd struct {
	planFlags
	every  int
	asJSON bool
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "print the net-worth series" }
func (*seriesCmd) Usage() string {
	return `series [-f <plan.json>] [-every <n>] [-json]

  Prints the 601-month net-worth series of the plan, one row per month.
  -every samples the series (12 prints one row per year).
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	c.planFlags.setFlags(f)
	f.IntVar(&c.every, "every", 1, "Print every n-th month")
	f.BoolVar(&c.asJSON, "json", false, "Print JSON lines instead of a table")
}

func (c *seriesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.every < 1 {
		fmt.Fprintln(os.Stderr, "Error: -every must be at least 1.")
		return subcommands.ExitUsageError
	}
	plan, err := c.read()
	if err != nil {
		return finish("loading plan", err)
	}
	return finish("writing series", c.run(os.Stdout, plan))
}

type seriesLine struct {
	Index    int    `json:"monthIndex"`
	Month    string `json:"month"`
	NetWorth string `json:"netWorth"`
}

func (c *seriesCmd) run(w io.Writer, plan projection.Plan) error {
	series := projection.BuildNetWorthSeries(plan)

	if c.asJSON {
		enc := json.NewEncoder(w)
		for _, p := range series {
			if p.MonthIndex%c.every != 0 {
				continue
			}
			line := seriesLine{Index: p.MonthIndex, Month: p.Month.String(), NetWorth: p.NetWorth.StringFixed(2)}
			if err := enc.Encode(line); err != nil {
				return err
			}
		}
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "INDEX\tMONTH\tNET WORTH\t")
	for _, p := range series {
		if p.MonthIndex%c.every != 0 {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t\n", p.MonthIndex, p.Month, document.FormatAmount(p.NetWorth, plan.Currency))
	}
	return tw.Flush()
}

// =============================================================================
// net-worth
// =============================================================================

type netWorthCmd struct {
	planFlags
	month string
}

func (*netWorthCmd) Name() string     { return "net-worth" }
func (*netWorthCmd) Synopsis() string { return "sum the balances entered for a month" }
func (*netWorthCmd) Usage() string {
	return `net-worth -m <YYYY-MM> [-f <plan.json>]

  Prints the sum of every account balance entered for exactly that month.
  Accounts without an entry count as zero.
`
}

func (c *netWorthCmd) SetFlags(f *flag.FlagSet) {
	c.planFlags.setFlags(f)
	f.StringVar(&c.month, "m", "", "Month, YYYY-MM (required)")
}

func (c *netWorthCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	month, status, ok := monthFlag(c.month)
	if !ok {
		return status
	}
	plan, err := c.read()
	if err != nil {
		return finish("loading plan", err)
	}
	return finish("writing net worth", c.run(os.Stdout, plan, month))
}

func (c *netWorthCmd) run(w io.Writer, plan projection.Plan, month projection.MonthKey) error {
	total := projection.NetWorthForMonth(plan, month)
	marker := ""
	if !projection.HasSnapshot(plan, month) {
		marker = " (no balances entered)"
	}
	_, err := fmt.Fprintf(w, "%s  %s%s\n", month, document.FormatAmount(total, plan.Currency), marker)
	return err
}

// =============================================================================
// as-of
// =============================================================================

type asOfCmd struct {
	planFlags
	month string
}

func (*asOfCmd) Name() string     { return "as-of" }
func (*asOfCmd) Synopsis() string { return "net worth as of a month" }
func (*asOfCmd) Usage() string {
	return `as-of -m <YYYY-MM> [-f <plan.json>]

  Prints the most recent entered net worth at or before the month. Without
  any entry, a non-zero starting net worth is reported instead.
`
}

func (c *asOfCmd) SetFlags(f *flag.FlagSet) {
	c.planFlags.setFlags(f)
	f.StringVar(&c.month, "m", "", "Month, YYYY-MM (required)")
}

func (c *asOfCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	month, status, ok := monthFlag(c.month)
	if !ok {
		return status
	}
	plan, err := c.read()
	if err != nil {
		return finish("loading plan", err)
	}
	return finish("writing as-of", c.run(os.Stdout, plan, month))
}

func (c *asOfCmd) run(w io.Writer, plan projection.Plan, month projection.MonthKey) error {
	asOf, ok := projection.NetWorthAsOf(plan, month)
	if !ok {
		_, err := fmt.Fprintf(w, "no net worth recorded at or before %s\n", month)
		return err
	}
	_, err := fmt.Fprintf(w, "%s  %s  (%s, %s)\n",
		month, document.FormatAmount(asOf.NetWorth, plan.Currency), asOf.Source, asOf.Month)
	return err
}

// =============================================================================
// amount
// =============================================================================

type amountCmd struct {
	planFlags
	item  string
	month string
}

func (*amountCmd) Name() string     { return "amount" }
func (*amountCmd) Synopsis() string { return "resolve a recurring item for a month" }
func (*amountCmd) Usage() string {
	return `amount -item <id> -m <YYYY-MM> [-f <plan.json>]

  Prints what a recurring item contributes in the month after applying its
  end month, changes or overrides.
`
}

func (c *amountCmd) SetFlags(f *flag.FlagSet) {
	c.planFlags.setFlags(f)
	f.StringVar(&c.item, "item", "", "Recurring item ID (required)")
	f.StringVar(&c.month, "m", "", "Month, YYYY-MM (required)")
}

func (c *amountCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.item == "" {
		fmt.Fprintln(os.Stderr, "Error: -item is required.")
		return subcommands.ExitUsageError
	}
	month, status, ok := monthFlag(c.month)
	if !ok {
		return status
	}
	plan, err := c.read()
	if err != nil {
		return finish("loading plan", err)
	}
	return finish("resolving amount", c.run(os.Stdout, plan, month))
}

func (c *amountCmd) run(w io.Writer, plan projection.Plan, month projection.MonthKey) error {
	for _, item := range plan.Recurring {
		if item.ID != c.item {
			continue
		}
		_, err := fmt.Fprintf(w, "%s  %s  %s %s\n", month, item.Name, item.Kind,
			document.FormatAmount(projection.AmountForMonth(item, month), plan.Currency))
		return err
	}
	return fmt.Errorf("recurring item %q not found", c.item)
}

// =============================================================================
// cash-flow
// =============================================================================

type cashFlowCmd struct {
	planFlags
	month  string
	months int
}

func (*cashFlowCmd) Name() string     { return "cash-flow" }
func (*cashFlowCmd) Synopsis() string { return "monthly cash flow totals" }
func (*cashFlowCmd) Usage() string {
	return `cash-flow -m <YYYY-MM> [-n <months>] [-f <plan.json>]

  Prints monthly cash-flow totals, starting at the month.
`
}

func (c *cashFlowCmd) SetFlags(f *flag.FlagSet) {
	c.planFlags.setFlags(f)
	f.StringVar(&c.month, "m", "", "First month, YYYY-MM (required)")
	f.IntVar(&c.months, "n", 1, "Number of months")
}

func (c *cashFlowCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	month, status, ok := monthFlag(c.month)
	if !ok {
		return status
	}
	if c.months < 1 {
		fmt.Fprintln(os.Stderr, "Error: -n must be at least 1.")
		return subcommands.ExitUsageError
	}
	plan, err := c.read()
	if err != nil {
		return finish("loading plan", err)
	}
	return finish("writing cash flow", c.run(os.Stdout, plan, month))
}

func (c *cashFlowCmd) run(w io.Writer, plan projection.Plan, from projection.MonthKey) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "MONTH\tINCOME\tEXPENSE\tNET\t")
	for i := 0; i < c.months; i++ {
		m := from.Add(i)
		flow := projection.CashFlowForMonth(plan, m)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", m,
			document.FormatAmount(flow.Income, plan.Currency),
			document.FormatAmount(flow.Expense, plan.Currency),
			document.FormatAmount(flow.Net, plan.Currency))
	}
	return tw.Flush()
}
