package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/hargabyte/salesreport/internal/config"
)

func TestGet_ReusesLogger(t *testing.T) {
	a := Get("test-reuse")
	b := Get("test-reuse")
	if a.Logger != b.Logger {
		t.Error("expected the same logger instance for the same name")
	}
	if a.Data["component"] != "test-reuse" {
		t.Errorf("component field = %v", a.Data["component"])
	}
}

func TestInit_FileOutput(t *testing.T) {
	cfg := config.DefaultConfig().Logging
	cfg.Output = "file"
	cfg.Format = "json"
	cfg.Level = "debug"
	cfg.File = filepath.Join(t.TempDir(), "logs", "reportgen.log")

	if err := Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { Init(config.DefaultConfig().Logging) })

	log := Get("file-test")
	if log.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", log.Logger.GetLevel())
	}
	if _, ok := log.Logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("expected JSON formatter, got %T", log.Logger.Formatter)
	}

	log.Info("hello")

	data, err := os.ReadFile(cfg.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected log output in file")
	}
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	cfg := config.DefaultConfig().Logging
	cfg.Level = "chatty"

	if err := Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { Init(config.DefaultConfig().Logging) })

	if lvl := Get("level-test").Logger.GetLevel(); lvl != logrus.InfoLevel {
		t.Errorf("level = %v, want info", lvl)
	}
}
