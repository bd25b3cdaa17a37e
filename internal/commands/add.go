package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"nztodo/internal/config"
	"nztodo/internal/exitcode"
	"nztodo/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listRef string
}

// SetList sets the target list (for testing).
func (c *AddCmd) SetList(ref string) {
	c.listRef = ref
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "nztodo add --list <list> <name...>" }
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.listRef, "list", "l", "", "list id or name")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Join args to form the task name
	name := strings.Join(args, " ")
	if strings.TrimSpace(name) == "" {
		fmt.Fprintln(errOut, "error: task name required")
		return exitcode.UserError
	}
	if strings.TrimSpace(c.listRef) == "" {
		fmt.Fprintln(errOut, "error: --list required")
		return exitcode.UserError
	}

	list, err := ResolveList(ctx, svc, c.listRef)
	if err != nil {
		return reportError(errOut, err)
	}

	id, err := svc.CreateTask(ctx, list.ID, name)
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, id)
	}
	return exitcode.Success
}
