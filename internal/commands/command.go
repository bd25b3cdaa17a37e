// Package commands provides the command interface and implementations.
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

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsService returns true if the command talks to a server.
	// Commands like serve, version, login, logout return false.
	NeedsService() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, server, paths).
	// svc is nil if NeedsService() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}

// reportError prints err and returns the matching exit code. Lookup
// failures and errors the server attributes to the request are user errors;
// the rest are backend errors.
func reportError(errOut io.Writer, err error) int {
	if isLookupError(err) || service.IsRequestError(err) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
