package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the lab API access settings shared by the packlab binaries.
type Config struct {
	// APIURL is the base URL of the lab job API.
	APIURL string `yaml:"api_url"`
	// WebURL is the address of the lab web frontend, used in user-facing hints.
	WebURL string `yaml:"web_url,omitempty"`
	// Username identifies the lab account submitting projects.
	Username string `yaml:"username"`
	// Token authenticates the lab account.
	Token string `yaml:"token"`
	// Timeout is the duration allowed for API calls, uploads included.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for API access settings.
	DefaultConfigFilename = "packlab-api-access.yaml"

	// DefaultTimeout is the default duration for API calls.
	// Archive uploads ride the same client, so it is generous.
	DefaultTimeout = 60 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	// The file carries an access token, so it stays owner-only.
	DefaultFilePermissions = 0o600
)

var (
	// ErrNotFound is returned by Locate when no config file exists in any
	// searched directory.
	ErrNotFound = errors.New("API access config not found")

	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errAPIURLRequired is returned when the API URL is missing.
	errAPIURLRequired = errors.New("api_url must be provided")
	// errUsernameRequired is returned when the username is missing.
	errUsernameRequired = errors.New("username must be provided")
	// errTokenRequired is returned when the token is missing.
	errTokenRequired = errors.New("token must be provided")
)

// Locate returns the path of the API access config to use: the explicit path
// when provided, otherwise the first DefaultConfigFilename found in the given
// directories. Callers decide which directories take part and in which order,
// typically the working directory first and the workspace root second.
func Locate(explicit string, dirs ...string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	for _, dir := range dirs {
		candidate := filepath.Join(dir, DefaultConfigFilename)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}

	return "", ErrNotFound
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read API access config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal API access config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal API access config: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write API access config: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg.APIURL == "" {
		return errAPIURLRequired
	}

	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return fmt.Errorf("invalid API URL: %w", err)
	}

	if cfg.Username == "" {
		return errUsernameRequired
	}

	if cfg.Token == "" {
		return errTokenRequired
	}

	// Set default timeout if not specified
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.WebURL == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.WebURL); err != nil {
		return fmt.Errorf("invalid web URL: %w", err)
	}

	return nil
}
