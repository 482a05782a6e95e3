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

type normalizeCmd struct {
	planFlags
	write bool
}

func (*normalizeCmd) Name() string     { return "normalize" }
func (*normalizeCmd) Synopsis() string { return "rewrite a plan document in canonical form" }
func (*normalizeCmd) Usage() string {
	return `normalize [-f <plan.json>] [-w]

  Decodes the plan leniently and prints the canonical document: defaults
  filled in, invalid entries dropped, histories sorted, IDs generated.
  -w writes the result back to the file instead of stdout.
`
}

func (c *normalizeCmd) SetFlags(f *flag.FlagSet) {
	c.planFlags.setFlags(f)
	f.BoolVar(&c.write, "w", false, "Write the result back to the plan file")
}

func (c *normalizeCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.write && c.file == "-" {
		fmt.Fprintln(os.Stderr, "Error: -w cannot be used when reading stdin.")
		return subcommands.ExitUsageError
	}
	plan, err := c.read()
	if err != nil {
		return finish("loading plan", err)
	}

	if !c.write {
		return finish("encoding plan", c.run(os.Stdout, plan))
	}

	f, err := os.Create(c.file)
	if err != nil {
		return finish("opening plan", err)
	}
	if err := c.run(f, plan); err != nil {
		f.Close()
		return finish("writing plan", err)
	}
	return finish("closing plan", f.Close())
}

func (c *normalizeCmd) run(w io.Writer, plan projection.Plan) error {
	data, err := document.Encode(plan)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
