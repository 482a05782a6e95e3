// Package cli implements the planner command line: engine queries over a
// plan document stored as a JSON file.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Moserpilot/Finance-Planner-2/document"
	"github.com/Moserpilot/Finance-Planner-2/planner"
	"github.com/Moserpilot/Finance-Planner-2/projection"
	"github.com/google/subcommands"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&seriesCmd{}, "engine")
	c.Register(&netWorthCmd{}, "engine")
	c.Register(&asOfCmd{}, "engine")
	c.Register(&amountCmd{}, "engine")
	c.Register(&cashFlowCmd{}, "engine")
	c.Register(&summaryCmd{}, "engine")

	c.Register(&normalizeCmd{}, "document")
}

// planFlags is embedded by every command that reads a plan file.
type planFlags struct {
	file string
}

func (p *planFlags) setFlags(f *flag.FlagSet) {
	f.StringVar(&p.file, "f", "plan.json", "Plan document to read, '-' for stdin")
}

func (p *planFlags) read() (projection.Plan, error) {
	return ReadPlan(p.file, os.Stdin)
}

// ReadPlan decodes the plan document at path. "-" reads stdin instead.
func ReadPlan(path string, stdin io.Reader) (projection.Plan, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return projection.Plan{}, fmt.Errorf("failed to read plan %s: %w", path, err)
	}

	plan, err := document.Decode(data)
	if err != nil {
		return projection.Plan{}, fmt.Errorf("failed to decode plan %s: %w", path, err)
	}
	return plan, nil
}

// monthFlag parses a required -m flag value.
func monthFlag(value string) (projection.MonthKey, subcommands.ExitStatus, bool) {
	if value == "" {
		fmt.Fprintln(os.Stderr, "Error: -m <YYYY-MM> is required.")
		return "", subcommands.ExitUsageError, false
	}
	m, err := planner.ParseMonth(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
		return "", subcommands.ExitUsageError, false
	}
	return m, subcommands.ExitSuccess, true
}

// finish reports err, if any, and maps it to an exit status.
func finish(what string, err error) subcommands.ExitStatus {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}
