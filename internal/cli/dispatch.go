// Package cli turns the registered commands into a cobra command tree and
// runs it.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"nztodo/internal/commands"
	"nztodo/internal/config"
	"nztodo/internal/exitcode"
	"nztodo/internal/service"
)

// DefaultCommand runs when nztodo is called without a command.
const DefaultCommand = "lists"

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// globalFlags are accepted by every command.
type globalFlags struct {
	configDir string
	quiet     bool
	debug     bool
	server    string
	insecure  bool
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	code := exitcode.Success
	var g globalFlags

	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Client and server for nztodo task lists",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cc *cobra.Command, args []string) error {
			cmd, ok := d.registry.Lookup(DefaultCommand)
			if !ok {
				return fmt.Errorf("unknown command: %s", DefaultCommand)
			}
			code = d.dispatch(cc, cmd, &g, args, out, errOut)
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&g.configDir, "config", "", "config directory")
	pf.BoolVarP(&g.quiet, "quiet", "q", false, "suppress informational output")
	pf.BoolVar(&g.debug, "debug", false, "verbose logging")
	pf.StringVar(&g.server, "server", "", "server URL (default from config)")
	pf.BoolVar(&g.insecure, "insecure", false, "skip TLS certificate verification")

	root.AddCommand(d.registry.Cobra(func(cc *cobra.Command, cmd commands.Command, args []string) error {
		code = d.dispatch(cc, cmd, &g, args, out, errOut)
		return nil
	})...)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	return code
}

// dispatch loads config, applies the global flags, creates the service when
// the command needs one, and runs the command.
func (d *Dispatcher) dispatch(cc *cobra.Command, cmd commands.Command, g *globalFlags, args []string, out, errOut io.Writer) int {
	cfg, err := config.Load(g.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.ConfigError
	}
	cfg.Quiet = g.quiet
	cfg.Debug = g.debug
	if cc.Flags().Changed("server") {
		cfg.Server = g.server
	}
	if cc.Flags().Changed("insecure") {
		cfg.Insecure = g.insecure
	}

	ctx := cc.Context()
	var svc service.Service
	if cmd.NeedsService() {
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no backend configured")
			return exitcode.ConfigError
		}
		svc, err = d.factory(ctx, cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.ConfigError
		}
	}

	return cmd.Run(ctx, cfg, svc, args, out, errOut)
}
