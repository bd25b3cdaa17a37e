// Package config handles the configuration directory, config files and
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "nztodo"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// DefaultAddr is the listen address of the server. 8443 as the service
	// speaks HTTPS when a certificate is configured.
	DefaultAddr = ":8443"

	// DefaultServer is the base URL client commands talk to.
	DefaultServer = "https://localhost:8443"
)

// configFiles are tried in order inside the config directory.
var configFiles = []string{"config.toml", "config.yaml", "config.yml"}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `toml:"-" yaml:"-"`

	// Debug enables debug logging.
	Debug bool `toml:"-" yaml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `toml:"-" yaml:"-"`

	// Addr is the server listen address.
	Addr string `toml:"addr" yaml:"addr"`

	// CertFile and KeyFile enable TLS when both are set.
	CertFile string `toml:"cert_file" yaml:"cert_file"`
	KeyFile  string `toml:"key_file" yaml:"key_file"`

	// Server is the base URL used by client commands.
	Server string `toml:"server" yaml:"server"`

	// Insecure skips TLS certificate verification in client commands.
	Insecure bool `toml:"insecure" yaml:"insecure"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// LogFormat is one of text, json, logfmt.
	LogFormat string `toml:"log_format" yaml:"log_format"`

	// SeedFile lists to load when the server starts.
	SeedFile string `toml:"seed_file" yaml:"seed_file"`

	// File is the config file that was loaded, if any.
	File string `toml:"-" yaml:"-"`
}

// New creates a new Config with defaults and the default or specified config
// directory. If configDir is empty, uses NZTODO_CONFIG_DIR, then
// XDG_CONFIG_HOME/nztodo or $HOME/.config/nztodo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:       dir,
		Addr:      DefaultAddr,
		Server:    DefaultServer,
		LogLevel:  "info",
		LogFormat: "text",
	}, nil
}

// Load builds a Config from, in increasing priority: defaults, the first
// config file found in the config directory, and environment variables.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	for _, name := range configFiles {
		path := filepath.Join(cfg.Dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		cfg.File = path
		break
	}

	loadFromEnv(cfg)
	cfg.finalize()
	return cfg, nil
}

// loadConfigFile decodes a TOML or YAML file over cfg.
func loadConfigFile(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.DecodeFile(path, cfg)
		return err
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format: %s", path)
	}
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("NZTODO_SERVER"); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv("NZTODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// finalize resolves relative paths against the config directory and picks up
// cert/server.crt and cert/server.key when no certificate is configured.
func (c *Config) finalize() {
	if c.CertFile == "" && c.KeyFile == "" {
		crt := filepath.Join(c.CertDir(), "server.crt")
		key := filepath.Join(c.CertDir(), "server.key")
		if fileExists(crt) && fileExists(key) {
			c.CertFile, c.KeyFile = crt, key
		}
	}
	c.CertFile = c.resolve(c.CertFile)
	c.KeyFile = c.resolve(c.KeyFile)
	c.SeedFile = c.resolve(c.SeedFile)
	c.Server = strings.TrimRight(c.Server, "/")
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// DefaultConfigDir returns the default configuration directory.
// Uses NZTODO_CONFIG_DIR or XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if dir := os.Getenv("NZTODO_CONFIG_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// CertDir returns the directory searched for a default certificate.
func (c *Config) CertDir() string {
	return filepath.Join(c.Dir, "cert")
}

// TLSEnabled reports whether the server should serve HTTPS.
func (c *Config) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	return fileExists(c.OAuthClientPath())
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	return fileExists(c.TokenPath())
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
