package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OutputDirectory != "reports" {
		t.Errorf("expected output_directory reports, got %s", cfg.OutputDirectory)
	}

	if cfg.Email.SMTPServer != "smtp.gmail.com" || cfg.Email.SMTPPort != 587 {
		t.Errorf("unexpected smtp defaults: %+v", cfg.Email)
	}

	// Empty credentials make the notifier a no-op
	if cfg.Email.Complete() {
		t.Error("expected default email settings to be incomplete")
	}

	sales, ok := cfg.Templates["sales_report"]
	if !ok {
		t.Fatal("missing sales_report template")
	}
	if sales.Frequency != FrequencyWeekly || sales.Day != "monday" || sales.At != "09:00" {
		t.Errorf("unexpected sales_report template: %+v", sales)
	}
	if len(sales.Recipients) != 0 {
		t.Errorf("expected no default recipients, got %v", sales.Recipients)
	}

	financial := cfg.Templates["financial_report"]
	if financial.Frequency != FrequencyMonthly || financial.EveryDays != 30 {
		t.Errorf("unexpected financial_report template: %+v", financial)
	}

	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("expected sqlite backend, got %s", cfg.Storage.Backend)
	}

	if cfg.Scheduler.PollDuration() != time.Minute {
		t.Errorf("expected 1m poll interval, got %s", cfg.Scheduler.PollDuration())
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "empty output directory",
			modify: func(c *Config) {
				c.OutputDirectory = " "
			},
			wantErr: true,
		},
		{
			name: "smtp port out of range",
			modify: func(c *Config) {
				c.Email.SMTPPort = 70000
			},
			wantErr: true,
		},
		{
			name: "unknown frequency",
			modify: func(c *Config) {
				c.Templates["daily"] = TemplateConfig{Title: "Daily", Frequency: "daily"}
			},
			wantErr: true,
		},
		{
			name: "bad weekday",
			modify: func(c *Config) {
				tmpl := c.Templates["sales_report"]
				tmpl.Day = "someday"
				c.Templates["sales_report"] = tmpl
			},
			wantErr: true,
		},
		{
			name: "bad time of day",
			modify: func(c *Config) {
				tmpl := c.Templates["sales_report"]
				tmpl.At = "25:00"
				c.Templates["sales_report"] = tmpl
			},
			wantErr: true,
		},
		{
			name: "non-positive every_days",
			modify: func(c *Config) {
				tmpl := c.Templates["financial_report"]
				tmpl.EveryDays = 0
				c.Templates["financial_report"] = tmpl
			},
			wantErr: true,
		},
		{
			name: "unknown backend",
			modify: func(c *Config) {
				c.Storage.Backend = "postgres"
			},
			wantErr: true,
		},
		{
			name: "mysql without dsn",
			modify: func(c *Config) {
				c.Storage.Backend = BackendMySQL
			},
			wantErr: true,
		},
		{
			name: "invalid poll interval",
			modify: func(c *Config) {
				c.Scheduler.PollInterval = "soon"
			},
			wantErr: true,
		},
		{
			name: "invalid log output",
			modify: func(c *Config) {
				c.Logging.Output = "syslog"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_BootstrapsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", ConfigFileName)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutputDirectory != "reports" {
		t.Errorf("expected defaults, got output_directory %q", cfg.OutputDirectory)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}

	// The written file must load back to the same settings
	again, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(again.Templates) != 2 || again.Templates["financial_report"].EveryDays != 30 {
		t.Errorf("unexpected templates after reload: %+v", again.Templates)
	}
}

func TestLoadFromPath_MergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `output_directory: out
email_settings:
  sender_email: reports@example.com
  sender_password: secret
report_templates:
  sales_report:
    title: Weekly Sales
    recipients: [a@example.com, b@example.com]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.OutputDirectory != "out" {
		t.Errorf("output_directory = %q", cfg.OutputDirectory)
	}
	if cfg.Email.SMTPPort != 587 || cfg.Email.SMTPServer != "smtp.gmail.com" {
		t.Errorf("smtp defaults not merged: %+v", cfg.Email)
	}
	if !cfg.Email.Complete() {
		t.Error("expected complete credentials")
	}

	sales := cfg.Templates["sales_report"]
	if sales.Frequency != FrequencyWeekly || sales.Day != "monday" || sales.At != "09:00" {
		t.Errorf("template defaults not applied: %+v", sales)
	}
	if len(sales.Recipients) != 2 {
		t.Errorf("recipients = %v", sales.Recipients)
	}
	if _, ok := cfg.Templates["financial_report"]; ok {
		t.Error("explicit templates should replace the default set")
	}
	if cfg.Storage.Backend != BackendSQLite || !cfg.Storage.SampleData {
		t.Errorf("storage defaults not merged: %+v", cfg.Storage)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "output_directory": "json-reports",
  "email_settings": {"smtp_server": "mail.example.com", "smtp_port": 2525, "sender_email": "", "sender_password": ""},
  "report_templates": {"financial_report": {"title": "Finance", "frequency": "monthly", "recipients": []}}
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.OutputDirectory != "json-reports" || cfg.Email.SMTPPort != 2525 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Templates["financial_report"].EveryDays != 30 {
		t.Errorf("expected every_days default 30, got %d", cfg.Templates["financial_report"].EveryDays)
	}
}

func TestLoadFromPath_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("output_directory: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromPath(path)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig in chain, got %v", err)
	}
}

func TestLoadOrDefault_RecoversFromInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  backend: postgres\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var warned error
	cfg := LoadOrDefault(path, func(err error) { warned = err })

	if warned == nil {
		t.Error("expected warning for invalid config")
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("expected default backend after recovery, got %s", cfg.Storage.Backend)
	}
}

func TestLoad_EnvironmentOverlay(t *testing.T) {
	t.Setenv("REPORTGEN_SENDER_EMAIL", "env@example.com")
	t.Setenv("REPORTGEN_SENDER_PASSWORD", "from-env")
	t.Setenv("REPORTGEN_SMTP_PORT", "465")

	cfg, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Email.SenderEmail != "env@example.com" || cfg.Email.SenderPassword != "from-env" {
		t.Errorf("environment not applied: %+v", cfg.Email)
	}
	if cfg.Email.SMTPPort != 465 {
		t.Errorf("smtp port = %d, want 465", cfg.Email.SMTPPort)
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Weekday
		wantErr bool
	}{
		{"monday", time.Monday, false},
		{"Friday", time.Friday, false},
		{"sun", time.Sunday, false},
		{"", time.Sunday, true},
		{"funday", time.Sunday, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWeekday(%q) error = %v", tt.in, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseWeekday(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:30")
	if err != nil || h != 9 || m != 30 {
		t.Errorf("ParseClock(09:30) = %d, %d, %v", h, m, err)
	}
	for _, bad := range []string{"9", "24:00", "12:60", "ab:cd"} {
		if _, _, err := ParseClock(bad); err == nil {
			t.Errorf("ParseClock(%q) should fail", bad)
		}
	}
}
