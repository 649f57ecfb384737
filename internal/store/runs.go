package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hargabyte/salesreport/internal/config"
)

// Run statuses
const (
	RunSuccess = "success"
	RunFailed  = "failed"
)

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunRecord is one row of report run history.
type RunRecord struct {
	ID            string    `yaml:"id" json:"id"`
	Template      string    `yaml:"template" json:"template"`
	StartedAt     time.Time `yaml:"started_at" json:"started_at"`
	FinishedAt    time.Time `yaml:"finished_at" json:"finished_at"`
	Status        string    `yaml:"status" json:"status"`
	Stage         string    `yaml:"stage,omitempty" json:"stage,omitempty"`
	Error         string    `yaml:"error,omitempty" json:"error,omitempty"`
	ChartPath     string    `yaml:"chart_path,omitempty" json:"chart_path,omitempty"`
	DashboardPath string    `yaml:"dashboard_path,omitempty" json:"dashboard_path,omitempty"`
	DocumentPath  string    `yaml:"document_path,omitempty" json:"document_path,omitempty"`
	Notification  string    `yaml:"notification,omitempty" json:"notification,omitempty"`
}

// RecordRun inserts a run history row.
func (s *Store) RecordRun(ctx context.Context, run RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO report_runs
		    (id, template, started_at, finished_at, status, stage, error,
		     chart_path, dashboard_path, document_path, notification)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Template,
		run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
		run.Status, run.Stage, run.Error,
		run.ChartPath, run.DashboardPath, run.DocumentPath, run.Notification)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, template, started_at, finished_at, status, stage, error,
		       chart_path, dashboard_path, document_path, notification
		FROM report_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			run                     RunRecord
			started, finished       string
			stage, errText          sql.NullString
			chart, dash, doc, notif sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Template, &started, &finished, &run.Status,
			&stage, &errText, &chart, &dash, &doc, &notif); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parse run %s start %q: %w", run.ID, started, err)
		}
		if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("parse run %s finish %q: %w", run.ID, finished, err)
		}
		run.Stage = stage.String
		run.Error = errText.String
		run.ChartPath = chart.String
		run.DashboardPath = dash.String
		run.DocumentPath = doc.String
		run.Notification = notif.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// HistoryRecorder records runs through a short-lived connection per call, so
// run history never shares the pipeline's scoped data source connection.
type HistoryRecorder struct {
	Config config.StorageConfig
}

// RecordRun opens the store, records run and closes it again.
func (h HistoryRecorder) RecordRun(ctx context.Context, run RunRecord) error {
	s, err := Open(h.Config)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.RecordRun(ctx, run)
}
