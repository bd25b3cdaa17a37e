package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"nztodo/internal/config"
	"nztodo/internal/exitcode"
	"nztodo/internal/output"
	"nztodo/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command. It is also what runs when nztodo
// is called without a command.
type ListsCmd struct {
	query service.Query
}

// SetQuery sets the query (for testing).
func (c *ListsCmd) SetQuery(q service.Query) {
	c.query = q
}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "Print lists" }
func (c *ListsCmd) Usage() string {
	return "nztodo lists [--skip <n>] [--limit <n>] [--search <text>]"
}
func (c *ListsCmd) NeedsService() bool { return true }

func (c *ListsCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.query.Skip, "skip", 0, "number of lists to skip")
	fs.IntVar(&c.query.Limit, "limit", -1, "maximum number of lists to print (-1 for all)")
	fs.StringVarP(&c.query.Search, "search", "s", "", "only lists whose name contains this text")
}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.query.Skip < 0 {
		fmt.Fprintf(errOut, "error: invalid skip: %d\n", c.query.Skip)
		return exitcode.UserError
	}

	lists, err := svc.ListLists(ctx, c.query)
	if err != nil {
		return reportError(errOut, err)
	}

	if len(lists) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no lists found")
		}
		return exitcode.Success
	}

	for _, list := range lists {
		output.FormatListLine(out, list)
	}
	return exitcode.Success
}
