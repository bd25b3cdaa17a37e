package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"nztodo/internal/backend/googletasks"
	"nztodo/internal/config"
	"nztodo/internal/exitcode"
	"nztodo/internal/service"
)

const (
	callbackPath     = "/callback"
	callbackTimeout  = 5 * time.Minute
	callbackPortBase = 8085
	callbackPorts    = 5

	exchangeTimeout = 30 * time.Second
	checkTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

const consentDonePage = `<html><body><h1>nztodo is now allowed to read your Google Tasks</h1><p>You may close this window.</p></body></html>`

func init() {
	Register(&LoginCmd{})
}

// LoginCmd obtains the read-only Google Tasks token that
// serve --import-google uses.
type LoginCmd struct {
	// open, when set, receives the consent URL once it has been printed.
	open func(authURL string)
}

// SetOpen registers a function handed the consent URL, such as a browser
// launcher or a test driving the callback.
func (c *LoginCmd) SetOpen(fn func(authURL string)) {
	c.open = fn
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Authorize read-only Google Tasks access for serve --import-google" }
func (c *LoginCmd) Usage() string      { return "nztodo login [common flags]" }
func (c *LoginCmd) NeedsService() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if !cfg.HasOAuthClient() {
		printOAuthSetup(errOut, cfg.Dir)
		return exitcode.ConfigError
	}
	if cfg.HasToken() && tokenWorks(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	oauthConfig, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.ConfigError
	}
	flow, err := startOAuthFlow(oauthConfig)
	if err != nil {
		fmt.Fprintf(errOut, "error: could not bind a local port for the OAuth callback: %v\n", err)
		return exitcode.ConfigError
	}

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, flow.authURL)
	if c.open != nil {
		c.open(flow.authURL)
	}

	code, waitErr := flow.wait(ctx)
	if err := flow.close(); err != nil {
		fmt.Fprintf(errOut, "warning: %v\n", err)
	}
	if waitErr != nil {
		fmt.Fprintf(errOut, "error: %v\n", waitErr)
		return exitcode.ConfigError
	}

	token, err := flow.exchange(ctx, code)
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to exchange code for token: %v\n", err)
		return exitcode.ConfigError
	}
	if err := googletasks.SaveToken(cfg, token); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.ConfigError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func printOAuthSetup(w io.Writer, dir string) {
	fmt.Fprintf(w, "error: %s not found in %s\n\n", config.OAuthClientFile, dir)
	fmt.Fprintf(w, `serve --import-google reads your lists with a Google OAuth client of your own:

1. Enable the Google Tasks API for a project:
   https://console.cloud.google.com/apis/library/tasks.googleapis.com
2. Under https://console.cloud.google.com/apis/credentials create an
   OAuth client ID of type "Desktop app" and download its JSON file.
3. Save it as %s/%s

Then run 'nztodo login' again.
`, dir, config.OAuthClientFile)
}

// tokenWorks reports whether the stored token can still read task lists.
// A token without a refresh token cannot outlive its first hour and is
// treated as missing.
func tokenWorks(ctx context.Context, cfg *config.Config) bool {
	token, err := googletasks.LoadToken(cfg)
	if err != nil || token.RefreshToken == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	im, err := ImporterFactory(ctx, cfg)
	if err != nil {
		return false
	}
	return im.Check(ctx) == nil
}

// oauthFlow is one loopback authorization code exchange with PKCE.
type oauthFlow struct {
	conf     *oauth2.Config
	verifier string
	state    string
	authURL  string

	srv   *http.Server
	codes chan string
	errs  chan error
}

func startOAuthFlow(conf *oauth2.Config) (*oauthFlow, error) {
	ln, err := listenCallback()
	if err != nil {
		return nil, err
	}

	f := &oauthFlow{
		conf:     conf,
		verifier: oauth2.GenerateVerifier(),
		state:    oauth2.GenerateVerifier(),
		codes:    make(chan string, 1),
		errs:     make(chan error, 1),
	}
	conf.RedirectURL = fmt.Sprintf("http://localhost:%d%s", ln.Addr().(*net.TCPAddr).Port, callbackPath)
	f.authURL = conf.AuthCodeURL(f.state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(f.verifier))

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, f.callback)
	f.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := f.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.fail(err)
		}
	}()
	return f, nil
}

// listenCallback prefers a fixed port range so the redirect URL is
// predictable, then falls back to any free loopback port.
func listenCallback() (net.Listener, error) {
	for port := callbackPortBase; port < callbackPortBase+callbackPorts; port++ {
		if ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port)); err == nil {
			return ln, nil
		}
	}
	return net.Listen("tcp", "localhost:0")
}

func (f *oauthFlow) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("error") != "":
		http.Error(w, "Authorization was not granted", http.StatusBadRequest)
		f.fail(fmt.Errorf("authorization denied: %s", q.Get("error")))
	case q.Get("state") != f.state:
		http.Error(w, "State mismatch", http.StatusBadRequest)
		f.fail(errors.New("oauth state mismatch"))
	case q.Get("code") == "":
		http.Error(w, "No code in callback", http.StatusBadRequest)
		f.fail(errors.New("no code in callback"))
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, consentDonePage)
		select {
		case f.codes <- q.Get("code"):
		default:
		}
	}
}

// fail records the first error; later ones are dropped.
func (f *oauthFlow) fail(err error) {
	select {
	case f.errs <- err:
	default:
	}
}

func (f *oauthFlow) wait(ctx context.Context) (string, error) {
	timer := time.NewTimer(callbackTimeout)
	defer timer.Stop()

	select {
	case code := <-f.codes:
		return code, nil
	case err := <-f.errs:
		return "", err
	case <-timer.C:
		return "", errors.New("oauth callback timed out")
	case <-ctx.Done():
		return "", errors.New("cancelled")
	}
}

func (f *oauthFlow) exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	return f.conf.Exchange(ctx, code, oauth2.VerifierOption(f.verifier))
}

func (f *oauthFlow) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := f.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("stopping OAuth callback server: %w", err)
	}
	return nil
}
