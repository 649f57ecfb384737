// Package logger configures logrus loggers for reportgen.
//
// Loggers are created per name ("app", "pipeline", "scheduler", ...) and
// share one configuration. File output is rotated with lumberjack.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hargabyte/salesreport/internal/config"
)

var (
	loggers   = make(map[string]*logrus.Logger)
	loggersMu sync.Mutex

	current = config.DefaultConfig().Logging
	output  io.Writer
)

// Init applies cfg to all loggers created afterwards and resets existing ones.
func Init(cfg config.LoggingConfig) error {
	w, err := newWriter(cfg)
	if err != nil {
		return err
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()

	current = cfg
	output = w
	for name := range loggers {
		delete(loggers, name)
	}
	return nil
}

// SetVerbose forces debug level on every logger.
func SetVerbose(verbose bool) {
	if !verbose {
		return
	}
	loggersMu.Lock()
	defer loggersMu.Unlock()

	current.Level = logrus.DebugLevel.String()
	for _, l := range loggers {
		l.SetLevel(logrus.DebugLevel)
	}
}

// Get returns the logger registered under name, creating it on first use.
func Get(name string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	l, ok := loggers[name]
	if !ok {
		l = newLogger(current, output)
		loggers[name] = l
	}
	return l.WithField("component", name)
}

// Discard returns an entry that drops everything, for tests and quiet callers.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newLogger(cfg config.LoggingConfig, w io.Writer) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	if w == nil {
		w = os.Stderr
	}
	l.SetOutput(w)
	return l
}

func newWriter(cfg config.LoggingConfig) (io.Writer, error) {
	var writers []io.Writer

	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	}

	if cfg.Output == "stdout" || cfg.Output == "both" || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}
