package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for wt, stored in ~/.worktimer/config.yaml.
type Config struct {
	Employee EmployeeConfig `mapstructure:"employee"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Timer    TimerConfig    `mapstructure:"timer"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Export   ExportConfig   `mapstructure:"export"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// EmployeeConfig identifies who the CLI and terminal UI track time for.
type EmployeeConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// StorageConfig selects where timer state is persisted.
type StorageConfig struct {
	// Driver is one of file, memory, redis, postgres.
	Driver    string         `mapstructure:"driver"`
	Dir       string         `mapstructure:"dir"`
	KeyPrefix string         `mapstructure:"key_prefix"`
	Redis     RedisConfig    `mapstructure:"redis"`
	Postgres  PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig holds the redis driver connection.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// TTL expires stale sessions; 0 keeps them until cleared.
	TTL time.Duration `mapstructure:"ttl"`
}

// PostgresConfig holds the postgres driver connection.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// TimerConfig tunes the timer engine.
type TimerConfig struct {
	// SaveEvery persists every n-th tick while running. State changes are always saved.
	SaveEvery int `mapstructure:"save_every"`
	// Timezone is the IANA zone that defines the employee's day. Empty = local.
	Timezone string `mapstructure:"timezone"`
}

// RemoteConfig points at the EMS backend.
type RemoteConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	TimesheetPath string        `mapstructure:"timesheet_path"`
	APIToken      string        `mapstructure:"api_token"`
	ClientID      string        `mapstructure:"client_id"`
	DeviceAuthURL string        `mapstructure:"device_auth_url"`
	TokenURL      string        `mapstructure:"token_url"`
	Scopes        []string      `mapstructure:"scopes"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// ExportConfig controls the local work log files.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// ServerConfig controls `wt serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Location resolves Timer.Timezone.
func (c TimerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

const (
	// DefaultTimesheetPath is where finished sessions are posted.
	DefaultTimesheetPath = "/api/timesheets"
	// DefaultServerAddr is the listen address for `wt serve`.
	DefaultServerAddr = ":8080"
)

var storageDrivers = map[string]bool{
	"file":     true,
	"memory":   true,
	"redis":    true,
	"postgres": true,
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# wt configuration – ~/.worktimer/config.yaml
#
# All settings are optional. Every key can be overridden from the environment
# with the WT_ prefix, e.g. WT_EMPLOYEE_ID=101 or WT_STORAGE_DRIVER=redis.

employee:
  # Employee the timer tracks. Can be overridden per command with --employee.
  id: ""
  name: ""

storage:
  # file | memory | redis | postgres
  driver: file
  # Data directory for the file driver. Empty = ~/.worktimer
  dir: ""
  key_prefix: worktimer
  redis:
    addr: localhost:6379
    password: ""
    db: 0
    ttl: 0s
  postgres:
    dsn: ""

timer:
  # Persist every n-th second while running. State changes are always saved.
  save_every: 1
  # IANA timezone that defines "today", e.g. Europe/Berlin. Empty = local.
  timezone: ""

remote:
  # EMS backend. Leave empty to deliver work logs to the local file only.
  base_url: ""
  timesheet_path: /api/timesheets
  # Static bearer token. When empty, run: wt login
  api_token: ""
  client_id: ""
  device_auth_url: ""
  token_url: ""
  scopes: []
  timeout: 15s

export:
  # Where work log files are written. Empty = ~/.worktimer/exports
  dir: ""

server:
  addr: ":8080"

log:
  # debug | info | warn | error
  level: warn
  # console | json
  format: console
`

// FilePath returns the path to ~/.worktimer/config.yaml.
func FilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".worktimer", "config.yaml"), nil
}

func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("employee.id", "")
	v.SetDefault("employee.name", "")

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.dir", filepath.Join(home, ".worktimer"))
	v.SetDefault("storage.key_prefix", "worktimer")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.ttl", "0s")
	v.SetDefault("storage.postgres.dsn", "")

	v.SetDefault("timer.save_every", 1)
	v.SetDefault("timer.timezone", "")

	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.timesheet_path", DefaultTimesheetPath)
	v.SetDefault("remote.api_token", "")
	v.SetDefault("remote.client_id", "")
	v.SetDefault("remote.device_auth_url", "")
	v.SetDefault("remote.token_url", "")
	v.SetDefault("remote.scopes", []string{})
	v.SetDefault("remote.timeout", "15s")

	v.SetDefault("export.dir", filepath.Join(home, ".worktimer", "exports"))

	v.SetDefault("server.addr", DefaultServerAddr)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Load reads configuration with precedence env > file > defaults.
// With an empty path it uses ~/.worktimer/config.yaml and writes the annotated
// template there on first run.
func Load(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, home)

	if path == "" {
		path = filepath.Join(home, ".worktimer", "config.yaml")
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if writeErr := writeDefault(path); writeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
			}
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("WT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	// Empty strings in the file mean "use the default location".
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = filepath.Join(home, ".worktimer")
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = filepath.Join(cfg.Storage.Dir, "exports")
	}
	if cfg.Remote.TimesheetPath == "" {
		cfg.Remote.TimesheetPath = DefaultTimesheetPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	if !storageDrivers[c.Storage.Driver] {
		return fmt.Errorf("invalid config: storage.driver %q (want file, memory, redis or postgres)", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.Postgres.DSN == "" {
		return fmt.Errorf("invalid config: storage.postgres.dsn is required for the postgres driver")
	}
	if c.Timer.SaveEvery < 1 {
		return fmt.Errorf("invalid config: timer.save_every must be at least 1, got %d", c.Timer.SaveEvery)
	}
	if _, err := c.Timer.Location(); err != nil {
		return fmt.Errorf("invalid config: timer.timezone %q: %w", c.Timer.Timezone, err)
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("invalid config: remote.timeout must be positive")
	}
	return nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
