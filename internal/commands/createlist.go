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
	Register(&CreateListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct {
	description string
}

// SetDescription sets the list description (for testing).
func (c *CreateListCmd) SetDescription(d string) {
	c.description = d
}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string  { return "Create a new list" }
func (c *CreateListCmd) Usage() string {
	return "nztodo createlist [--description <text>] <list-name...>"
}
func (c *CreateListCmd) NeedsService() bool { return true }

func (c *CreateListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.description, "description", "d", "", "list description")
}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Join args to form list name
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	// Names are not unique on the server, but a duplicate would make the
	// name useless as a reference.
	_, err := ResolveList(ctx, svc, name)
	if err == nil {
		fmt.Fprintf(errOut, "error: list already exists: %s\n", name)
		return exitcode.UserError
	}
	if !isLookupError(err) && !service.IsRequestError(err) {
		return reportError(errOut, err)
	}

	id, err := svc.CreateList(ctx, name, c.description)
	if err != nil {
		return reportError(errOut, err)
	}

	if cfg.Quiet {
		return exitcode.Success
	}
	fmt.Fprintln(out, id)
	return exitcode.Success
}
