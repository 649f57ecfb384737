package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the default name of the reportgen configuration file
const ConfigFileName = "reportgen.yaml"

// Config holds all reportgen configuration
type Config struct {
	OutputDirectory string                    `yaml:"output_directory"`
	Email           EmailConfig               `yaml:"email_settings"`
	Templates       map[string]TemplateConfig `yaml:"report_templates"`
	Storage         StorageConfig             `yaml:"storage"`
	Scheduler       SchedulerConfig           `yaml:"scheduler"`
	Logging         LoggingConfig             `yaml:"logging"`

	// DashboardAssetsHost loads the dashboard chart runtime from a remote
	// host. Empty inlines the runtime compiled into the binary.
	DashboardAssetsHost string `yaml:"dashboard_assets_host,omitempty"`
}

// EmailConfig holds SMTP settings used to deliver reports.
// Every field can be overridden from the environment.
type EmailConfig struct {
	SMTPServer     string `yaml:"smtp_server" env:"REPORTGEN_SMTP_SERVER"`
	SMTPPort       int    `yaml:"smtp_port" env:"REPORTGEN_SMTP_PORT"`
	SenderEmail    string `yaml:"sender_email" env:"REPORTGEN_SENDER_EMAIL"`
	SenderPassword string `yaml:"sender_password" env:"REPORTGEN_SENDER_PASSWORD"`
}

// Complete reports whether both the sender address and secret are set.
func (e EmailConfig) Complete() bool {
	return e.SenderEmail != "" && e.SenderPassword != ""
}

// TemplateConfig describes one scheduled report
type TemplateConfig struct {
	Title      string   `yaml:"title"`
	Frequency  string   `yaml:"frequency"`
	Recipients []string `yaml:"recipients"`

	// Day and At position weekly reports (default monday 09:00).
	Day string `yaml:"day,omitempty"`
	At  string `yaml:"at,omitempty"`

	// EveryDays is the rolling interval for monthly reports (default 30).
	EveryDays int `yaml:"every_days,omitempty"`
}

// StorageConfig selects the data source backend
type StorageConfig struct {
	Backend    string `yaml:"backend"` // sqlite, dolt, mysql
	Path       string `yaml:"path"`    // sqlite file or dolt repo directory
	DSN        string `yaml:"dsn,omitempty"`
	SampleData bool   `yaml:"sample_data"`
	Seed       int64  `yaml:"seed"`
}

// SchedulerConfig holds configuration for the polling loop
type SchedulerConfig struct {
	PollInterval string `yaml:"poll_interval"`
}

// PollDuration returns the parsed poll interval.
func (s SchedulerConfig) PollDuration() time.Duration {
	d, err := time.ParseDuration(s.PollInterval)
	if err != nil {
		return time.Minute
	}
	return d
}

// LoggingConfig holds configuration for structured logging
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // text, json
	Output     string `yaml:"output"` // stdout, file, both
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a configuration file that could not be read or is invalid.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load reads config from path, merged over defaults.
// A missing file is bootstrapped: the default configuration is written to
// path and returned. Unreadable or invalid files yield a *ConfigError.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigFileName
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(cfg, path); err != nil {
			return nil, &ConfigError{Path: path, Err: err}
		}
		return cfg, applyEnv(cfg)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return cfg, applyEnv(cfg)
}

// LoadOrDefault is Load with local recovery: any configuration error is
// passed to warn and the defaults are returned instead.
func LoadOrDefault(path string, warn func(error)) *Config {
	cfg, err := Load(path)
	if err != nil {
		if warn != nil {
			warn(err)
		}
		cfg = DefaultConfig()
		if envErr := applyEnv(cfg); envErr != nil && warn != nil {
			warn(envErr)
		}
	}
	return cfg
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("reading config file: %w", err)}
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("%w: parsing config file: %v", ErrInvalidConfig, err)}
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	return merged, nil
}

// applyEnv overlays email settings from the environment, reading a .env file
// in the working directory first when one exists.
func applyEnv(cfg *Config) error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("loading .env: %w", err)
		}
	}
	if err := env.Parse(&cfg.Email); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.OutputDirectory) == "" {
		return fmt.Errorf("%w: output_directory must not be empty", ErrInvalidConfig)
	}

	if cfg.Email.SMTPPort <= 0 || cfg.Email.SMTPPort > 65535 {
		return fmt.Errorf("%w: smtp_port must be between 1 and 65535, got %d",
			ErrInvalidConfig, cfg.Email.SMTPPort)
	}

	for name, tmpl := range cfg.Templates {
		switch tmpl.Frequency {
		case FrequencyWeekly:
			if _, err := ParseWeekday(tmpl.Day); err != nil {
				return fmt.Errorf("%w: template %s: %v", ErrInvalidConfig, name, err)
			}
			if _, _, err := ParseClock(tmpl.At); err != nil {
				return fmt.Errorf("%w: template %s: %v", ErrInvalidConfig, name, err)
			}
		case FrequencyMonthly:
			if tmpl.EveryDays <= 0 {
				return fmt.Errorf("%w: template %s: every_days must be positive, got %d",
					ErrInvalidConfig, name, tmpl.EveryDays)
			}
		default:
			return fmt.Errorf("%w: template %s: frequency must be one of %v, got %q",
				ErrInvalidConfig, name, ValidFrequencies, tmpl.Frequency)
		}
	}

	if !isOneOf(cfg.Storage.Backend, ValidBackends) {
		return fmt.Errorf("%w: storage backend must be one of %v, got %q",
			ErrInvalidConfig, ValidBackends, cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == BackendMySQL && cfg.Storage.DSN == "" {
		return fmt.Errorf("%w: storage dsn is required for the mysql backend", ErrInvalidConfig)
	}

	if d, err := time.ParseDuration(cfg.Scheduler.PollInterval); err != nil || d <= 0 {
		return fmt.Errorf("%w: poll_interval must be a positive duration, got %q",
			ErrInvalidConfig, cfg.Scheduler.PollInterval)
	}

	if !isOneOf(cfg.Logging.Output, []string{"stdout", "file", "both"}) {
		return fmt.Errorf("%w: logging output must be stdout, file or both, got %q",
			ErrInvalidConfig, cfg.Logging.Output)
	}

	return nil
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	header := "# reportgen configuration\n# Email settings may also come from REPORTGEN_* environment variables.\n\n"
	data = append([]byte(header), data...)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// SaveDefault writes the default configuration to path.
// It refuses to overwrite an existing file.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	return Save(DefaultConfig(), path)
}
