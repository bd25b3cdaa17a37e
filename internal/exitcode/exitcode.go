// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid input, list or
	// task not found).
	UserError = 1

	// ConfigError indicates a config or auth error (unreadable config file,
	// missing OAuth files, bad certificate).
	ConfigError = 2

	// BackendError indicates a server, API or network error.
	BackendError = 3
)
