package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the desk client configuration
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	UI      UIConfig      `yaml:"ui"`
	Watch   WatchConfig   `yaml:"watch"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig points at the remote spare-parts application
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

// SessionConfig carries the ambient per-session values the server hands out
// at login: session cookie, CSRF token and the operator's identity.
type SessionConfig struct {
	CookieName      string `yaml:"cookie_name"`
	SessionID       string `yaml:"session_id"`
	CSRFToken       string `yaml:"csrf_token"`
	IdentityToken   string `yaml:"identity_token"`
	IdentitySecret  string `yaml:"identity_secret"`
	Username        string `yaml:"username"`
	Supervisor      bool   `yaml:"supervisor"`
	CategoryManager bool   `yaml:"category_manager"`
}

// UIConfig contains presentation settings
type UIConfig struct {
	Locale string `yaml:"locale"` // "ar" or "en"
}

// WatchConfig contains the cron schedules used by watch mode
type WatchConfig struct {
	RefreshSchedule string `yaml:"refresh_schedule"`
	// ExportSchedule writes a snapshot of the watched table to Export.Dir.
	// Empty disables it.
	ExportSchedule string `yaml:"export_schedule"`
}

// ExportConfig contains table export settings
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, applies env overrides and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("PARTSDESK_BASE_URL"); val != "" {
		c.API.BaseURL = val
	}
	if val := os.Getenv("PARTSDESK_TIMEOUT_SECONDS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.API.TimeoutSeconds = n
		}
	}

	if val := os.Getenv("PARTSDESK_SESSION_ID"); val != "" {
		c.Session.SessionID = val
	}
	if val := os.Getenv("PARTSDESK_CSRF_TOKEN"); val != "" {
		c.Session.CSRFToken = val
	}
	if val := os.Getenv("PARTSDESK_IDENTITY_TOKEN"); val != "" {
		c.Session.IdentityToken = val
	}
	if val := os.Getenv("PARTSDESK_IDENTITY_SECRET"); val != "" {
		c.Session.IdentitySecret = val
	}
	if val := os.Getenv("PARTSDESK_USERNAME"); val != "" {
		c.Session.Username = val
	}
	if val := os.Getenv("PARTSDESK_SUPERVISOR"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Session.Supervisor = b
		}
	}
	if val := os.Getenv("PARTSDESK_CATEGORY_MANAGER"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Session.CategoryManager = b
		}
	}

	if val := os.Getenv("PARTSDESK_LOCALE"); val != "" {
		c.UI.Locale = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

func (c *Config) applyDefaults() {
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 30
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = "partsdesk/1.0"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "sessionid"
	}
	if c.UI.Locale == "" {
		c.UI.Locale = "ar"
	}
	if c.Watch.RefreshSchedule == "" {
		c.Watch.RefreshSchedule = "0 */1 * * * *" // every minute
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "."
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base_url: %q", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid api timeout: %d", c.API.TimeoutSeconds)
	}

	if c.Session.IdentityToken == "" && c.Session.Username == "" {
		return fmt.Errorf("session identity_token or username is required")
	}

	switch c.UI.Locale {
	case "ar", "en":
	default:
		return fmt.Errorf("unsupported locale: %q", c.UI.Locale)
	}

	return nil
}

// Timeout returns the HTTP client timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}
