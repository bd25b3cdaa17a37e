package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"nztodo/internal/backend/googletasks"
	"nztodo/internal/config"
	"nztodo/internal/exitcode"
	"nztodo/internal/logging"
	"nztodo/internal/seed"
	"nztodo/internal/service"
	"nztodo/internal/store"
	"nztodo/internal/web"
)

// Importer loads lists from an external account.
type Importer interface {
	// Check confirms the stored credentials still work.
	Check(ctx context.Context) error
	Import(ctx context.Context) (*seed.File, error)
}

// ImporterFactory creates the Google Tasks importer used by serve and
// login. Tests replace it.
var ImporterFactory = func(ctx context.Context, cfg *config.Config) (Importer, error) {
	return googletasks.New(ctx, cfg)
}

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command.
type ServeCmd struct {
	addr         string
	seedFile     string
	importGoogle bool

	// ready, when set, receives the server before it starts serving.
	ready func(*web.Server)
}

// SetReady registers a callback run once the server is built (for testing).
func (c *ServeCmd) SetReady(fn func(*web.Server)) {
	c.ready = fn
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return []string{"server"} }
func (c *ServeCmd) Synopsis() string  { return "Run the to-do server" }
func (c *ServeCmd) Usage() string {
	return "nztodo serve [--addr <host:port>] [--seed <file>] [--import-google]"
}
func (c *ServeCmd) NeedsService() bool { return false }

func (c *ServeCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "listen address (default from config, :8443)")
	fs.StringVar(&c.seedFile, "seed", "", "JSON file of lists to load at startup")
	fs.BoolVar(&c.importGoogle, "import-google", false, "load lists from Google Tasks at startup (run: nztodo login)")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	logger, err := logging.New(errOut, logging.Options{
		Level:           cfg.LogLevel,
		Format:          cfg.LogFormat,
		Debug:           cfg.Debug,
		ReportTimestamp: true,
		Prefix:          config.AppName,
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.ConfigError
	}
	if cfg.File != "" {
		logger.Debug("config loaded", "file", cfg.File)
	}

	st := store.New()
	if code := c.preload(ctx, cfg, st, logger, errOut); code != exitcode.Success {
		return code
	}

	addr := c.addr
	if addr == "" {
		addr = cfg.Addr
	}
	certFile, keyFile := cfg.CertFile, cfg.KeyFile
	if !cfg.TLSEnabled() {
		logger.Warn("no certificate configured, serving plain HTTP", "cert_dir", cfg.CertDir())
		certFile, keyFile = "", ""
	}

	srv := web.NewServer(st, logger)
	if c.ready != nil {
		c.ready(srv)
	}
	if err := srv.Run(ctx, addr, certFile, keyFile); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}

// preload fills st from the seed file and the Google import, in that order.
func (c *ServeCmd) preload(ctx context.Context, cfg *config.Config, st *store.Store, logger *log.Logger, errOut io.Writer) int {
	seedFile := c.seedFile
	if seedFile == "" {
		seedFile = cfg.SeedFile
	}
	if seedFile != "" {
		f, err := seed.Load(seedFile)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.ConfigError
		}
		res, err := seed.Apply(st, f)
		if err != nil {
			fmt.Fprintf(errOut, "error: seed: %v\n", err)
			return exitcode.ConfigError
		}
		logger.Info("seeded", "file", seedFile, "lists", len(res.ListIDs), "tasks", res.Tasks)
	}

	if !c.importGoogle {
		return exitcode.Success
	}
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n", config.OAuthClientFile, cfg.Dir)
		return exitcode.ConfigError
	}
	if !cfg.HasToken() {
		fmt.Fprintln(errOut, "error: not logged in (run: nztodo login)")
		return exitcode.ConfigError
	}

	im, err := ImporterFactory(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.ConfigError
	}
	f, err := im.Import(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	res, err := seed.Apply(st, f)
	if err != nil {
		fmt.Fprintf(errOut, "error: import: %v\n", err)
		return exitcode.BackendError
	}
	logger.Info("imported from Google Tasks", "lists", len(res.ListIDs), "tasks", res.Tasks)
	return exitcode.Success
}
