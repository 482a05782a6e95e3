package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Moserpilot/Finance-Planner-2/document"
	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	planFlags
	month string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the plan's headline figures" }
func (*summaryCmd) Usage() string {
	return `summary [-m <YYYY-MM>] [-f <plan.json>]

  Displays current net worth, goal progress and projected milestones.
  The month defaults to the plan's start month.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	c.planFlags.setFlags(f)
	f.StringVar(&c.month, "m", "", "Month to report as of, YYYY-MM")
}

func (c *summaryCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	plan, err := c.read()
	if err != nil {
		return finish("loading plan", err)
	}

	month := plan.Start()
	if c.month != "" {
		m, status, ok := monthFlag(c.month)
		if !ok {
			return status
		}
		month = m
	}
	return finish("writing summary", c.run(os.Stdout, plan, month))
}

func (c *summaryCmd) run(w io.Writer, plan projection.Plan, month projection.MonthKey) error {
	s := projection.Summarize(plan, month)

	tw := newTable(w)
	row := func(label, value string) { fmt.Fprintf(tw, "%s\t%s\t\n", label, value) }

	row("As of", s.AsOfMonth.String())
	row("Mode", string(projection.ParseMode(string(plan.NetWorthMode))))
	if s.HasCurrent {
		row("Net worth", fmt.Sprintf("%s (%s %s)",
			document.FormatAmount(s.Current.NetWorth, plan.Currency), s.Current.Source, s.Current.Month))
	} else {
		row("Net worth", "none recorded")
	}
	if s.HasLatestSnapshot {
		row("Latest snapshot", s.LatestSnapshot.String())
	}
	row("Income", document.FormatAmount(s.CashFlow.Income, plan.Currency))
	row("Expense", document.FormatAmount(s.CashFlow.Expense, plan.Currency))
	row("Net cash flow", document.FormatAmount(s.CashFlow.Net, plan.Currency))

	if s.Goal.IsPositive() {
		row("Goal", fmt.Sprintf("%s (%s%%)", document.FormatAmount(s.Goal, plan.Currency), s.GoalProgressPct.StringFixed(2)))
		if s.GoalMonthIndex >= 0 {
			row("Goal reached", plan.Start().Add(s.GoalMonthIndex).String())
		} else {
			row("Goal reached", "not within horizon")
		}
	}

	for _, m := range s.Milestones {
		row(fmt.Sprintf("In %d years", m.Years), fmt.Sprintf("%s (%s)", document.FormatAmount(m.NetWorth, plan.Currency), m.Month))
	}
	return tw.Flush()
}
