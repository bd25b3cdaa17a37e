// Package googletasks imports task lists from a Google Tasks account.
package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"nztodo/internal/config"
	"nztodo/internal/seed"
)

const (
	// Scope is the OAuth scope requested at login. Import only reads.
	Scope = tasks.TasksReadonlyScope

	// PageSize is the number of items fetched per API call.
	PageSize = 100

	// APITimeout is the timeout for importing one list.
	APITimeout = 30 * time.Second

	// StatusCompleted is the Google Tasks status of a finished task.
	StatusCompleted = "completed"
)

// Importer reads task lists through the Google Tasks API.
type Importer struct {
	svc *tasks.Service
}

// OAuthConfig loads the OAuth client configuration from cfg's directory.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}
	return oauthConfig, nil
}

// LoadToken reads the stored OAuth token.
func LoadToken(cfg *config.Config) (*oauth2.Token, error) {
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}
	return &token, nil
}

// SaveToken writes token to cfg's directory, readable by the owner only.
func SaveToken(cfg *config.Config, token *oauth2.Token) error {
	if err := cfg.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create %s: %w", cfg.Dir, err)
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.TokenPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.TokenFile, err)
	}
	return nil
}

// New creates an importer from the OAuth files in cfg's directory.
// Requires oauth_client.json and token.json to exist (run: nztodo login).
func New(ctx context.Context, cfg *config.Config) (*Importer, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(cfg)
	if err != nil {
		return nil, err
	}

	// Token source refreshes the access token as needed.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))
	return NewWithHTTPClient(ctx, httpClient)
}

// NewWithHTTPClient creates an importer with a custom HTTP client and
// options (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Importer, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Importer{svc: svc}, nil
}

// Check makes one read-only call, fetching the first page of task lists,
// to confirm the stored token still grants access.
func (im *Importer) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	if _, err := im.svc.Tasklists.List().MaxResults(1).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// Import returns every task list with all of its tasks, completed ones
// included, in API order.
func (im *Importer) Import(ctx context.Context) (*seed.File, error) {
	var lists []*tasks.TaskList
	err := im.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		lists = append(lists, resp.Items...)
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	f := &seed.File{Lists: make([]seed.List, 0, len(lists))}
	for _, tl := range lists {
		l, err := im.importList(ctx, tl)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", tl.Title, err)
		}
		f.Lists = append(f.Lists, l)
	}
	return f, nil
}

func (im *Importer) importList(ctx context.Context, tl *tasks.TaskList) (seed.List, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	l := seed.List{Name: tl.Title}
	err := im.svc.Tasks.List(tl.Id).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				l.Tasks = append(l.Tasks, seed.Task{
					Name:      t.Title,
					Completed: t.Status == StatusCompleted,
				})
			}
			return nil
		})
	if err != nil {
		return seed.List{}, wrapError(err)
	}
	return l, nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	// Check for timeout
	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	// Check for auth errors
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("token expired or revoked (run: nztodo login)")
	}

	return err
}
