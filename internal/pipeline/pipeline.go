// Package pipeline runs one full report generation: load records,
// aggregate, render the chart and dashboard, compose the document and
// notify recipients.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hargabyte/salesreport/internal/chart"
	"github.com/hargabyte/salesreport/internal/config"
	"github.com/hargabyte/salesreport/internal/dashboard"
	"github.com/hargabyte/salesreport/internal/document"
	"github.com/hargabyte/salesreport/internal/logger"
	"github.com/hargabyte/salesreport/internal/notify"
	"github.com/hargabyte/salesreport/internal/report"
	"github.com/hargabyte/salesreport/internal/store"
)

// Stage names used in errors, logs and run history.
const (
	StagePrepare   = "prepare"
	StageSource    = "source"
	StageAggregate = "aggregate"
	StageChart     = "chart"
	StageDashboard = "dashboard"
	StageDocument  = "document"
)

// StageError reports which stage aborted a run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// Source is a data source connection scoped to one run.
type Source interface {
	SalesRecords(ctx context.Context) ([]report.RawRecord, error)
	Close() error
}

// Opener acquires a Source at the start of a run.
type Opener func(ctx context.Context) (Source, error)

// Renderer writes a visual artifact for an aggregation.
type Renderer interface {
	Render(records []report.RawRecord, result *report.AggregationResult, dest string) (string, error)
}

// Composer writes the report document.
type Composer interface {
	Compose(result *report.AggregationResult, chartPath, dest string) (string, error)
}

// Notifier delivers the document.
type Notifier interface {
	Notify(ctx context.Context, documentPath string, recipients []string, creds notify.Credentials) notify.Outcome
}

// Recorder stores run history.
type Recorder interface {
	RecordRun(ctx context.Context, run store.RunRecord) error
}

// Template names one report and who receives it.
type Template struct {
	Name       string
	Title      string
	Recipients []string
}

// TemplateFrom builds a Template from its configuration entry.
func TemplateFrom(name string, tc config.TemplateConfig) Template {
	return Template{Name: name, Title: tc.Title, Recipients: tc.Recipients}
}

// Artifacts are the files written by a run.
type Artifacts struct {
	Chart     string `yaml:"chart" json:"chart"`
	Dashboard string `yaml:"dashboard" json:"dashboard"`
	Document  string `yaml:"document" json:"document"`
}

// Result describes a successful run.
type Result struct {
	RunID        string                    `yaml:"run_id" json:"run_id"`
	Template     string                    `yaml:"template" json:"template"`
	StartedAt    time.Time                 `yaml:"started_at" json:"started_at"`
	FinishedAt   time.Time                 `yaml:"finished_at" json:"finished_at"`
	Artifacts    Artifacts                 `yaml:"artifacts" json:"artifacts"`
	Summary      report.Summary            `yaml:"summary" json:"summary"`
	Notification notify.Outcome            `yaml:"notification" json:"notification"`
	Analysis     *report.AggregationResult `yaml:"-" json:"-"`
}

// Pipeline holds the components of a run. Components are stateless
// between runs; a Pipeline may be reused.
type Pipeline struct {
	Open        Opener
	OutputDir   string
	Chart       Renderer
	Dashboard   Renderer
	NewComposer func(title string, now func() time.Time) Composer
	Notifier    Notifier
	Credentials notify.Credentials
	Recorder    Recorder
	Clock       clock.Clock
	Log         *logrus.Entry
}

// New wires a pipeline from configuration.
func New(cfg *config.Config) *Pipeline {
	storage := cfg.Storage
	seed := cfg.Storage.SampleData

	return &Pipeline{
		Open: func(ctx context.Context) (Source, error) {
			s, err := store.Open(storage)
			if err != nil {
				return nil, err
			}
			if seed {
				if _, err := s.SeedIfEmpty(ctx, store.DefaultSeedOptions(storage.Seed)); err != nil {
					s.Close()
					return nil, err
				}
			}
			return s, nil
		},
		OutputDir: cfg.OutputDirectory,
		Chart:     chart.NewRenderer(),
		Dashboard: dashboard.NewRenderer(cfg.DashboardAssetsHost),
		NewComposer: func(title string, now func() time.Time) Composer {
			return &document.Composer{Title: title, Now: now}
		},
		Notifier:    notify.New(),
		Credentials: notify.CredentialsFrom(cfg.Email),
		Recorder:    store.HistoryRecorder{Config: storage},
		Clock:       clock.New(),
		Log:         logger.Get("pipeline"),
	}
}

func (p *Pipeline) clk() clock.Clock {
	if p.Clock == nil {
		return clock.New()
	}
	return p.Clock
}

func (p *Pipeline) log() *logrus.Entry {
	if p.Log == nil {
		return logger.Discard()
	}
	return p.Log
}

// Run executes one report generation for tmpl. The data source is released
// on every exit path. The run is recorded in history whether it succeeds or
// fails; recording failures are logged only.
func (p *Pipeline) Run(ctx context.Context, tmpl Template) (*Result, error) {
	clk := p.clk()
	res := &Result{
		RunID:     uuid.NewString(),
		Template:  tmpl.Name,
		StartedAt: clk.Now(),
	}
	log := p.log().WithFields(logrus.Fields{
		"run_id":   res.RunID,
		"template": tmpl.Name,
	})
	log.Info("starting report generation")

	err := p.run(ctx, tmpl, res, log)
	res.FinishedAt = clk.Now()
	p.record(ctx, res, err, log)

	if err != nil {
		log.WithError(err).Error("report generation failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"document":     res.Artifacts.Document,
		"notification": res.Notification.String(),
		"duration":     res.FinishedAt.Sub(res.StartedAt).String(),
	}).Info("report generation completed")
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, tmpl Template, res *Result, log *logrus.Entry) error {
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return stageErr(StagePrepare, report.NewWriteError(p.OutputDir, err))
	}

	src, err := p.Open(ctx)
	if err != nil {
		return stageErr(StageSource, err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.WithError(cerr).Warn("failed to close data source")
		}
	}()

	records, err := src.SalesRecords(ctx)
	if err != nil {
		return stageErr(StageSource, err)
	}
	log.WithField("stage", StageSource).WithField("records", len(records)).Debug("loaded sales records")

	result, err := report.Aggregate(records)
	if err != nil {
		return stageErr(StageAggregate, err)
	}
	res.Analysis = result
	res.Summary = result.Summarize()

	// Both renderers only read records and result.
	var g errgroup.Group
	g.Go(func() error {
		path, err := p.Chart.Render(records, result, filepath.Join(p.OutputDir, chart.FileName))
		if err != nil {
			return stageErr(StageChart, err)
		}
		res.Artifacts.Chart = path
		return nil
	})
	g.Go(func() error {
		path, err := p.Dashboard.Render(records, result, filepath.Join(p.OutputDir, dashboard.FileName))
		if err != nil {
			return stageErr(StageDashboard, err)
		}
		res.Artifacts.Dashboard = path
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.WithField("stage", StageChart).Debug("charts rendered")

	now := p.clk().Now
	docPath := filepath.Join(p.OutputDir, document.FileName(now()))
	res.Artifacts.Document, err = p.NewComposer(tmpl.Title, now).Compose(result, res.Artifacts.Chart, docPath)
	if err != nil {
		return stageErr(StageDocument, err)
	}

	res.Notification = p.Notifier.Notify(ctx, res.Artifacts.Document, tmpl.Recipients, p.Credentials)
	return nil
}

func (p *Pipeline) record(ctx context.Context, res *Result, runErr error, log *logrus.Entry) {
	if p.Recorder == nil {
		return
	}

	run := store.RunRecord{
		ID:            res.RunID,
		Template:      res.Template,
		StartedAt:     res.StartedAt,
		FinishedAt:    res.FinishedAt,
		Status:        store.RunSuccess,
		ChartPath:     res.Artifacts.Chart,
		DashboardPath: res.Artifacts.Dashboard,
		DocumentPath:  res.Artifacts.Document,
		Notification:  res.Notification.String(),
	}
	if runErr != nil {
		run.Status = store.RunFailed
		run.Error = runErr.Error()
		var se *StageError
		if errors.As(runErr, &se) {
			run.Stage = se.Stage
		}
	}

	if err := p.Recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		log.WithError(err).Warn("failed to record run history")
	}
}
