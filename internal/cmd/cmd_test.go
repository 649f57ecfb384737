package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/hargabyte/salesreport/internal/config"
	"github.com/hargabyte/salesreport/internal/logger"
	"github.com/hargabyte/salesreport/internal/pipeline"
	"github.com/hargabyte/salesreport/internal/schedule"
	"github.com/hargabyte/salesreport/internal/store"
)

// executeCommand runs the root command with args and captures its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Reset package-level flag state between runs.
	configPath = ""
	outputFormat = "yaml"
	verbose = false
	forAgents = false
	generateTemplate = "sales_report"
	statusLimit = 10

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	expected := []string{"init", "seed", "generate", "schedule", "status"}

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range expected {
		if !names[want] {
			t.Errorf("missing expected subcommand: %s", want)
		}
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	for _, name := range []string{"config", "verbose", "format"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing global --%s flag", name)
		}
	}
	if f := rootCmd.PersistentFlags().Lookup("verbose"); f != nil && f.Shorthand != "v" {
		t.Errorf("expected --verbose shorthand to be 'v', got '%s'", f.Shorthand)
	}
	if rootCmd.Flags().Lookup("for-agents") == nil {
		t.Error("missing --for-agents flag")
	}
}

func TestGenerateCmd_Flags(t *testing.T) {
	f := generateCmd.Flags().Lookup("template")
	if f == nil {
		t.Fatal("missing --template flag")
	}
	if f.Shorthand != "t" || f.DefValue != "sales_report" {
		t.Errorf("unexpected --template flag: -%s default %q", f.Shorthand, f.DefValue)
	}
}

func TestBuildCommandInfo(t *testing.T) {
	info := buildCommandInfo(rootCmd)
	if info.Name != "reportgen" {
		t.Errorf("root name = %s", info.Name)
	}

	var generate *CommandInfo
	for i := range info.Subcommands {
		if info.Subcommands[i].Name == "generate" {
			generate = &info.Subcommands[i]
		}
	}
	if generate == nil {
		t.Fatal("generate missing from command info")
	}
	found := false
	for _, f := range generate.Flags {
		if f.Name == "template" && f.Type == "string" {
			found = true
		}
	}
	if !found {
		t.Error("generate command info missing --template")
	}
	if len(generate.Examples) == 0 {
		t.Error("expected examples parsed from long help")
	}
}

func TestForAgents(t *testing.T) {
	out, err := executeCommand(t, "--for-agents")
	if err != nil {
		t.Fatalf("--for-agents: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("--for-agents output is not JSON: %v\n%s", err, out)
	}
	if doc["version"] != Version {
		t.Errorf("version = %v", doc["version"])
	}
}

func TestTriggerFor(t *testing.T) {
	tests := []struct {
		name    string
		tc      config.TemplateConfig
		want    schedule.Trigger
		wantErr bool
	}{
		{
			name: "weekly",
			tc:   config.TemplateConfig{Frequency: config.FrequencyWeekly, Day: "monday", At: "09:00"},
			want: schedule.Weekly{Day: time.Monday, Hour: 9},
		},
		{
			name: "weekly short day",
			tc:   config.TemplateConfig{Frequency: config.FrequencyWeekly, Day: "fri", At: "17:30"},
			want: schedule.Weekly{Day: time.Friday, Hour: 17, Minute: 30},
		},
		{
			name: "monthly",
			tc:   config.TemplateConfig{Frequency: config.FrequencyMonthly, EveryDays: 30},
			want: schedule.EveryDays{Days: 30},
		},
		{
			name:    "bad day",
			tc:      config.TemplateConfig{Frequency: config.FrequencyWeekly, Day: "someday", At: "09:00"},
			wantErr: true,
		},
		{
			name:    "unknown frequency",
			tc:      config.TemplateConfig{Frequency: "hourly"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := triggerFor(tt.tc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("triggerFor error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("triggerFor = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRegisterTemplates(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)) // a Saturday

	s := schedule.New(schedule.WithClock(mock), schedule.WithLogger(logger.Discard()))
	cfg := config.DefaultConfig()
	if err := registerTemplates(s, cfg, &pipeline.Pipeline{}); err != nil {
		t.Fatalf("registerTemplates: %v", err)
	}

	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "financial_report" || entries[1].Name != "sales_report" {
		t.Errorf("entries = %s, %s", entries[0].Name, entries[1].Name)
	}
	if want := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC); !entries[0].Next().Equal(want) {
		t.Errorf("financial_report next = %s, want %s", entries[0].Next(), want)
	}
	if want := time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC); !entries[1].Next().Equal(want) {
		t.Errorf("sales_report next = %s, want %s", entries[1].Next(), want)
	}
}

func TestLookupTemplate(t *testing.T) {
	cfg := config.DefaultConfig()

	tmpl, err := lookupTemplate(cfg, "financial_report")
	if err != nil {
		t.Fatal(err)
	}
	if tmpl.Title != "Financial Analysis Report" {
		t.Errorf("title = %q", tmpl.Title)
	}

	_, err = lookupTemplate(cfg, "quarterly")
	if err == nil || !strings.Contains(err.Error(), "financial_report, sales_report") {
		t.Errorf("expected error listing templates, got %v", err)
	}
}

func TestCollectStatus(t *testing.T) {
	s, err := store.Open(config.StorageConfig{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "s.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	now := time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC)
	run := store.RunRecord{ID: "r1", Template: "sales_report", StartedAt: now.Add(-2 * time.Hour), FinishedAt: now.Add(-2 * time.Hour), Status: store.RunSuccess}
	if err := s.RecordRun(context.Background(), run); err != nil {
		t.Fatal(err)
	}

	out, err := collectStatus(context.Background(), s, 5, now)
	if err != nil {
		t.Fatalf("collectStatus: %v", err)
	}
	if len(out.Runs) != 1 || out.Runs[0].ID != "r1" {
		t.Fatalf("runs = %+v", out.Runs)
	}
	if out.Runs[0].Age != "2 hours ago" {
		t.Errorf("age = %q", out.Runs[0].Age)
	}
	if out.Database.Backend != config.BackendSQLite {
		t.Errorf("backend = %s", out.Database.Backend)
	}
}

// TestWorkflow runs init, seed, generate and status against a temp directory.
func TestWorkflow(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := executeCommand(t, "init")
	if err != nil {
		t.Fatalf("init: %v\n%s", err, out)
	}
	if _, err := os.Stat(config.ConfigFileName); err != nil {
		t.Fatalf("init did not write config: %v", err)
	}
	if !strings.Contains(out, "config_created: true") {
		t.Errorf("init output: %s", out)
	}

	out, err = executeCommand(t, "seed", "--days", "90", "--customers", "20", "--format", "json")
	if err != nil {
		t.Fatalf("seed: %v\n%s", err, out)
	}
	var seeded SeedOutput
	if err := json.Unmarshal([]byte(out), &seeded); err != nil {
		t.Fatalf("seed output: %v\n%s", err, out)
	}
	if seeded.Sales != 90 || seeded.Customers != 20 || seeded.Seed != 42 {
		t.Errorf("seed output = %+v", seeded)
	}

	out, err = executeCommand(t, "generate", "--format", "json")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	var res pipeline.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("generate output: %v\n%s", err, out)
	}
	for _, path := range []string{res.Artifacts.Chart, res.Artifacts.Dashboard, res.Artifacts.Document} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("artifact missing: %v", err)
		}
	}
	if res.Notification.Status != "skipped" {
		t.Errorf("notification = %+v", res.Notification)
	}

	out, err = executeCommand(t, "status", "--format", "json")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	var status StatusOutput
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("status output: %v\n%s", err, out)
	}
	if status.Database.Sales != 90 || len(status.Runs) != 1 || status.Runs[0].ID != res.RunID {
		t.Errorf("status = %+v", status)
	}

	_, err = executeCommand(t, "generate", "-t", "missing")
	if err == nil {
		t.Error("expected error for unknown template")
	}
}
