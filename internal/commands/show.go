package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"nztodo/internal/config"
	"nztodo/internal/exitcode"
	"nztodo/internal/output"
	"nztodo/internal/service"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct {
	open bool
}

// SetOpen limits output to open tasks (for testing).
func (c *ShowCmd) SetOpen(open bool) {
	c.open = open
}

func (c *ShowCmd) Name() string       { return "show" }
func (c *ShowCmd) Aliases() []string  { return []string{"list"} }
func (c *ShowCmd) Synopsis() string   { return "Print a list and its tasks" }
func (c *ShowCmd) Usage() string      { return "nztodo show [--open] <list>" }
func (c *ShowCmd) NeedsService() bool { return true }

func (c *ShowCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.open, "open", false, "only print tasks that are not completed")
}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref := strings.TrimSpace(strings.Join(args, " "))
	if ref == "" {
		fmt.Fprintln(errOut, "error: list required")
		return exitcode.UserError
	}

	list, err := ResolveList(ctx, svc, ref)
	if err != nil {
		return reportError(errOut, err)
	}

	output.FormatListHeader(out, list)
	for i, task := range list.Tasks {
		if c.open && task.Completed {
			continue
		}
		output.FormatTaskIndented(out, i+1, task)
	}
	return exitcode.Success
}
