package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"nztodo/internal/config"
	"nztodo/internal/exitcode"
	"nztodo/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	undo bool
}

// SetUndo makes the command reopen the task (for testing).
func (c *DoneCmd) SetUndo(undo bool) {
	c.undo = undo
}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "nztodo done [--undo] <list> <task-ref>" }
func (c *DoneCmd) NeedsService() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.undo, "undo", false, "mark the task open again")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	list, ref, code, ok := listAndTaskArgs(ctx, svc, args, errOut)
	if !ok {
		return code
	}

	task, err := ResolveTask(list, ref)
	if err != nil {
		return reportError(errOut, err)
	}

	if _, err := svc.CompleteTask(ctx, list.ID, task.ID, !c.undo); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
