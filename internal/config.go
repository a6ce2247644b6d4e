package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Kitchen KitchenConfig     `yaml:"kitchen"`
	Catalog CatalogConfig     `yaml:"catalog"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Kitchen.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// RateLimit is the sustained requests per second allowed on /api; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.RateBurst, validation.Min(0)),
	)
}

// KitchenConfig describes the recipe directory.
type KitchenConfig struct {
	Path       string   `yaml:"path"`
	QuickBites string   `yaml:"quick_bites"`
	AisleOrder []string `yaml:"aisle_order"`
	Omit       []string `yaml:"omit"`
}

// Validate validates the kitchen configuration.
func (c *KitchenConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.QuickBites, validation.Required, validation.By(relativeMarkdown)),
	)
}

// CatalogConfig points at the ingredient catalog files. Kitchen entries
// shadow global ones; the kitchen file is created on first edit.
type CatalogConfig struct {
	Global  string `yaml:"global"`
	Kitchen string `yaml:"kitchen"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Kitchen, validation.When(c.Kitchen != "", validation.By(yamlFile))),
		validation.Field(&c.Global, validation.When(c.Global != "", validation.By(yamlFile))),
	)
}

func relativeMarkdown(value any) error {
	s, _ := value.(string)
	if filepath.IsAbs(s) || strings.HasPrefix(filepath.Clean(s), "..") {
		return errors.New("must be relative to the kitchen path")
	}
	if !strings.HasSuffix(s, ".md") {
		return errors.New("must end with .md")
	}
	return nil
}

func yamlFile(value any) error {
	s, _ := value.(string)
	switch filepath.Ext(s) {
	case ".yaml", ".yml":
		return nil
	}
	return errors.New("must be a .yaml file")
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Kitchen: KitchenConfig{
			Path:       "./kitchen",
			QuickBites: "quick-bites.md",
		},
		Catalog: CatalogConfig{
			Kitchen: "./kitchen/ingredients.yaml",
		},
		SQLite: SQLiteConfig{
			Path: "./larder.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
