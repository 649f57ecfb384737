package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Report frequencies
const (
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendDolt   = "dolt"
	BackendMySQL  = "mysql"
)

// ValidFrequencies lists the supported template frequencies
var ValidFrequencies = []string{FrequencyWeekly, FrequencyMonthly}

// ValidBackends lists the supported storage backends
var ValidBackends = []string{BackendSQLite, BackendDolt, BackendMySQL}

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		OutputDirectory: "reports",
		Email: EmailConfig{
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   587,
		},
		Templates: map[string]TemplateConfig{
			"sales_report": {
				Title:      "Sales Performance Report",
				Frequency:  FrequencyWeekly,
				Recipients: []string{},
				Day:        "monday",
				At:         "09:00",
			},
			"financial_report": {
				Title:      "Financial Analysis Report",
				Frequency:  FrequencyMonthly,
				Recipients: []string{},
				EveryDays:  30,
			},
		},
		Storage: StorageConfig{
			Backend:    BackendSQLite,
			Path:       "sample_data.db",
			SampleData: true,
			Seed:       42,
		},
		Scheduler: SchedulerConfig{
			PollInterval: "1m",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			File:       "logs/reportgen.log",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	if loaded.OutputDirectory != "" {
		result.OutputDirectory = loaded.OutputDirectory
	} else {
		result.OutputDirectory = defaults.OutputDirectory
	}

	result.Email = mergeEmailConfig(loaded.Email, defaults.Email)
	result.DashboardAssetsHost = loaded.DashboardAssetsHost

	// Templates replace the defaults wholesale when any are given
	if len(loaded.Templates) > 0 {
		result.Templates = make(map[string]TemplateConfig, len(loaded.Templates))
		for name, tmpl := range loaded.Templates {
			result.Templates[name] = mergeTemplateConfig(tmpl)
		}
	} else {
		result.Templates = defaults.Templates
	}

	result.Storage = mergeStorageConfig(loaded.Storage, defaults.Storage)

	if loaded.Scheduler.PollInterval != "" {
		result.Scheduler.PollInterval = loaded.Scheduler.PollInterval
	} else {
		result.Scheduler.PollInterval = defaults.Scheduler.PollInterval
	}

	result.Logging = mergeLoggingConfig(loaded.Logging, defaults.Logging)

	return result
}

func mergeEmailConfig(loaded, defaults EmailConfig) EmailConfig {
	result := loaded

	if loaded.SMTPServer == "" {
		result.SMTPServer = defaults.SMTPServer
	}
	if loaded.SMTPPort == 0 {
		result.SMTPPort = defaults.SMTPPort
	}

	return result
}

func mergeTemplateConfig(loaded TemplateConfig) TemplateConfig {
	result := loaded

	if result.Frequency == "" {
		result.Frequency = FrequencyWeekly
	}
	if result.Recipients == nil {
		result.Recipients = []string{}
	}

	switch result.Frequency {
	case FrequencyWeekly:
		if result.Day == "" {
			result.Day = "monday"
		}
		if result.At == "" {
			result.At = "09:00"
		}
	case FrequencyMonthly:
		if result.EveryDays == 0 {
			result.EveryDays = 30
		}
	}

	return result
}

func mergeStorageConfig(loaded, defaults StorageConfig) StorageConfig {
	result := loaded

	if loaded.Backend == "" {
		result.Backend = defaults.Backend
	}
	if loaded.Path == "" {
		result.Path = defaults.Path
	}
	if loaded.Seed == 0 {
		result.Seed = defaults.Seed
	}
	// SampleData: bool can't distinguish unset from false, so an explicit
	// storage section decides; a missing one keeps the default.
	if loaded == (StorageConfig{}) {
		result.SampleData = defaults.SampleData
	}

	return result
}

func mergeLoggingConfig(loaded, defaults LoggingConfig) LoggingConfig {
	result := loaded

	if loaded.Level == "" {
		result.Level = defaults.Level
	}
	if loaded.Format == "" {
		result.Format = defaults.Format
	}
	if loaded.Output == "" {
		result.Output = defaults.Output
	}
	if loaded.File == "" {
		result.File = defaults.File
	}
	if loaded.MaxSizeMB == 0 {
		result.MaxSizeMB = defaults.MaxSizeMB
	}
	if loaded.MaxBackups == 0 {
		result.MaxBackups = defaults.MaxBackups
	}
	if loaded.MaxAgeDays == 0 {
		result.MaxAgeDays = defaults.MaxAgeDays
	}

	return result
}

// ParseWeekday parses a weekday name such as "monday" or "Mon".
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday: %q", s)
}

// ParseClock parses a time of day in HH:MM form.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time of day: %q (expected HH:MM)", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

func isOneOf(s string, valid []string) bool {
	for _, v := range valid {
		if s == v {
			return true
		}
	}
	return false
}
