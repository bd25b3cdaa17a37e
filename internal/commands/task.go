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
	Register(&TaskCmd{})
}

// TaskCmd implements the task command.
type TaskCmd struct{}

func (c *TaskCmd) Name() string       { return "task" }
func (c *TaskCmd) Aliases() []string  { return nil }
func (c *TaskCmd) Synopsis() string   { return "Print one task" }
func (c *TaskCmd) Usage() string      { return "nztodo task <list> <task-ref>" }
func (c *TaskCmd) NeedsService() bool { return true }

func (c *TaskCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *TaskCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	list, ref, code, ok := listAndTaskArgs(ctx, svc, args, errOut)
	if !ok {
		return code
	}

	task, err := ResolveTask(list, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	task, err = svc.GetTask(ctx, list.ID, task.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	output.FormatTaskDetail(out, task)
	return exitcode.Success
}

// listAndTaskArgs parses "<list> <task-ref>" and resolves the list. On
// failure it has already reported the error and returns ok == false.
func listAndTaskArgs(ctx context.Context, svc service.Service, args []string, errOut io.Writer) (service.List, TaskRef, int, bool) {
	switch len(args) {
	case 0:
		fmt.Fprintln(errOut, "error: list required")
		return service.List{}, TaskRef{}, exitcode.UserError, false
	case 1:
		fmt.Fprintf(errOut, "error: %v\n", ErrTaskRefRequired)
		return service.List{}, TaskRef{}, exitcode.UserError, false
	case 2:
	default:
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[2])
		return service.List{}, TaskRef{}, exitcode.UserError, false
	}

	ref, err := ParseTaskRef(args[1])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.List{}, TaskRef{}, exitcode.UserError, false
	}

	list, err := ResolveList(ctx, svc, args[0])
	if err != nil {
		return service.List{}, TaskRef{}, reportError(errOut, err), false
	}
	return list, ref, exitcode.Success, true
}
