// Package config loads the server configuration.
//
// Values are layered: built-in defaults, then a YAML file, then the
// environment variables listed in envVars. The result is validated once and
// every problem is reported together.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDatabasePath = "data/cards.db"

	DefaultTokenTTL     = 24 * time.Hour
	DefaultPasswordCost = 12

	// DevJWTSecret is accepted only so the server starts out of the box.
	DevJWTSecret = "dev-secret-change-in-production"

	minJWTSecretLength = 16
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	GitHub   GitHubConfig   `yaml:"github"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	PublicURL       string        `yaml:"public_url"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns host:port for http.Server.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	// Path is a SQLite file path, or ":memory:".
	Path string `yaml:"path"`
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	PasswordCost int           `yaml:"password_cost"`
	SecureCookie bool          `yaml:"secure_cookie"`
}

// GitHubConfig enables GitHub sign-in when both client credentials are set.
type GitHubConfig struct {
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	CallbackURL     string `yaml:"callback_url"`
	SuccessRedirect string `yaml:"success_redirect"`
}

// Enabled reports whether GitHub sign-in is configured.
func (c GitHubConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type LogConfig struct {
	Level  string `yaml:"level"`   // debug | info | warn | error
	Format string `yaml:"format"` // json | text
}

var (
	ErrConfigNotFound   = errors.New("configuration file not found")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrInvalidDuration  = errors.New("invalid duration format")
	ErrInvalidLogLevel  = errors.New("invalid log level: must be debug, info, warn, or error")
	ErrInvalidLogFormat = errors.New("invalid log format: must be json or text")
)

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Database: DatabaseConfig{
			Path: DefaultDatabasePath,
		},
		Auth: AuthConfig{
			JWTSecret:    DevJWTSecret,
			TokenTTL:     DefaultTokenTTL,
			PasswordCost: DefaultPasswordCost,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the whole configuration and joins every problem found.
func (c *Config) Validate() error {
	var errs []error

	errs = c.validateServer(errs)
	errs = c.validateDatabase(errs)
	errs = c.validateAuth(errs)
	errs = c.validateGitHub(errs)
	errs = c.validateLog(errs)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
	}

	return nil
}

func (c *Config) validateServer(errs []error) []error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Server.PublicURL != "" && !strings.HasPrefix(c.Server.PublicURL, "http://") && !strings.HasPrefix(c.Server.PublicURL, "https://") {
		errs = append(errs, fmt.Errorf("server.public_url must start with http:// or https://, got %q", c.Server.PublicURL))
	}
	return errs
}

func (c *Config) validateDatabase(errs []error) []error {
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	return errs
}

func (c *Config) validateAuth(errs []error) []error {
	if len(c.Auth.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d characters", minJWTSecretLength))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Auth.PasswordCost < 4 || c.Auth.PasswordCost > 31 {
		errs = append(errs, fmt.Errorf("auth.password_cost must be between 4 and 31, got %d", c.Auth.PasswordCost))
	}
	return errs
}

func (c *Config) validateGitHub(errs []error) []error {
	if (c.GitHub.ClientID == "") != (c.GitHub.ClientSecret == "") {
		errs = append(errs, errors.New("github.client_id and github.client_secret must be set together"))
	}
	return errs
}

func (c *Config) validateLog(errs []error) []error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ErrInvalidLogLevel)
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, ErrInvalidLogFormat)
	}
	return errs
}

// UsesDevSecret reports whether the built-in development JWT secret is in
// use. The server logs a warning when it is.
func (c *Config) UsesDevSecret() bool {
	return c.Auth.JWTSecret == DevJWTSecret
}

// Load loads configuration from the default locations.
func Load() (*Config, error) {
	return LoadFromPath("")
}

// LoadFromPath loads configuration from path, or from the default locations
// when path is empty.
func LoadFromPath(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// Loader resolves the config file and applies environment overrides.
type Loader struct {
	configPaths []string
}

func NewLoader() *Loader {
	return &Loader{configPaths: []string{"configs/config.yaml", "config.yaml"}}
}

// WithConfigPaths replaces the files probed when no explicit path is given.
func (l *Loader) WithConfigPaths(paths []string) *Loader {
	l.configPaths = paths
	return l
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment, then Validate. A file named by the argument or CONFIG_PATH
// must exist; probed default paths are skipped when absent.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if file, required := l.resolve(path); file != "" {
		err := readYAML(file, cfg)
		switch {
		case err == nil:
		case errors.Is(err, ErrConfigNotFound) && !required:
		default:
			return nil, fmt.Errorf("failed to load config from %s: %w", file, err)
		}
	}

	if err := applyEnv(cfg.envVars()); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolve picks the config file. required is true when the caller named it.
func (l *Loader) resolve(path string) (file string, required bool) {
	if path != "" {
		return path, true
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env, true
	}
	for _, p := range l.configPaths {
		if _, err := os.Stat(p); err == nil {
			return p, false
		}
	}
	return "", false
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// envVar binds one environment variable to a config field.
type envVar struct {
	name string
	set  func(string) error
}

// envVars lists every environment override. Unset or empty variables leave
// the field alone.
func (c *Config) envVars() []envVar {
	return []envVar{
		{"SERVER_HOST", setString(&c.Server.Host)},
		{"SERVER_PORT", setInt(&c.Server.Port)},
		{"SERVER_PUBLIC_URL", setString(&c.Server.PublicURL)},
		{"SERVER_READ_TIMEOUT", setDuration(&c.Server.ReadTimeout)},
		{"SERVER_WRITE_TIMEOUT", setDuration(&c.Server.WriteTimeout)},
		{"SERVER_IDLE_TIMEOUT", setDuration(&c.Server.IdleTimeout)},
		{"SERVER_SHUTDOWN_TIMEOUT", setDuration(&c.Server.ShutdownTimeout)},

		{"DB_PATH", setString(&c.Database.Path)},

		{"JWT_SECRET", setString(&c.Auth.JWTSecret)},
		{"AUTH_TOKEN_TTL", setDuration(&c.Auth.TokenTTL)},
		{"AUTH_PASSWORD_COST", setInt(&c.Auth.PasswordCost)},
		{"AUTH_SECURE_COOKIE", setBool(&c.Auth.SecureCookie)},

		{"GITHUB_CLIENT_ID", setString(&c.GitHub.ClientID)},
		{"GITHUB_CLIENT_SECRET", setString(&c.GitHub.ClientSecret)},
		{"GITHUB_CALLBACK_URL", setString(&c.GitHub.CallbackURL)},
		{"GITHUB_SUCCESS_REDIRECT", setString(&c.GitHub.SuccessRedirect)},

		{"LOG_LEVEL", setString(&c.Log.Level)},
		{"LOG_FORMAT", setString(&c.Log.Format)},
	}
}

func applyEnv(vars []envVar) error {
	for _, v := range vars {
		value, ok := os.LookupEnv(v.name)
		if !ok || value == "" {
			continue
		}
		if err := v.set(value); err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
	}
	return nil
}

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", v)
		}
		*dst = n
		return nil
	}
}

func setBool(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", v)
		}
		*dst = b
		return nil
	}
}

func setDuration(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidDuration, v)
		}
		*dst = d
		return nil
	}
}
