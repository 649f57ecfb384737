// Package schedule runs report jobs on calendar triggers.
//
// The scheduler is a single polling loop. Each poll evaluates every entry
// against the clock and runs due jobs one after another; a job in progress
// is never interrupted, and the loop only observes cancellation between
// polls.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/hargabyte/salesreport/internal/logger"
)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = time.Minute

// Trigger decides when an entry next fires.
type Trigger interface {
	// Next returns the first fire time strictly after t.
	Next(t time.Time) time.Time
	String() string
}

// Weekly fires on a fixed weekday and time of day, in the clock's location.
type Weekly struct {
	Day    time.Weekday
	Hour   int
	Minute int
}

func (w Weekly) Next(t time.Time) time.Time {
	candidate := time.Date(t.Year(), t.Month(), t.Day(), w.Hour, w.Minute, 0, 0, t.Location())
	days := (int(w.Day) - int(t.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, days)
	if !candidate.After(t) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

func (w Weekly) String() string {
	return fmt.Sprintf("every %s at %02d:%02d", w.Day, w.Hour, w.Minute)
}

// EveryDays fires a fixed number of days after the previous fire, starting
// from registration.
type EveryDays struct {
	Days int
}

func (e EveryDays) Next(t time.Time) time.Time {
	days := e.Days
	if days < 1 {
		days = 1
	}
	return t.AddDate(0, 0, days)
}

func (e EveryDays) String() string {
	return fmt.Sprintf("every %d days", e.Days)
}

// Job is the work run when an entry fires.
type Job func(ctx context.Context) error

// Entry is one registered trigger.
type Entry struct {
	Name    string
	Trigger Trigger
	Job     Job

	next    time.Time
	lastRun time.Time
	lastErr error
}

// Next returns when the entry fires next.
func (e *Entry) Next() time.Time { return e.next }

// LastRun returns when the entry last ran, or zero.
func (e *Entry) LastRun() time.Time { return e.lastRun }

// LastErr returns the error from the most recent run, if any.
func (e *Entry) LastErr() error { return e.lastErr }

// Scheduler holds entries and evaluates them against a clock.
// Entries are only read and advanced by the goroutine calling RunPending
// or Run.
type Scheduler struct {
	clock   clock.Clock
	poll    time.Duration
	entries []*Entry
	log     *logrus.Entry
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithPollInterval sets how often Run evaluates entries.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.poll = d
		}
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Scheduler) { s.log = l }
}

// New creates a scheduler using the wall clock unless overridden.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock: clock.New(),
		poll:  DefaultPollInterval,
		log:   logger.Get("schedule"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a job. Its first fire time is computed from now.
func (s *Scheduler) Add(name string, trigger Trigger, job Job) *Entry {
	e := &Entry{
		Name:    name,
		Trigger: trigger,
		Job:     job,
		next:    trigger.Next(s.clock.Now()),
	}
	s.entries = append(s.entries, e)
	s.log.WithFields(logrus.Fields{
		"entry":    name,
		"trigger":  trigger.String(),
		"next_run": e.next.Format(time.RFC3339),
	}).Info("scheduled")
	return e
}

// Entries returns the registered entries in registration order.
func (s *Scheduler) Entries() []*Entry {
	return s.entries
}

// RunPending runs every entry that is due, in registration order, and
// returns how many ran. Each due entry runs once even if several
// occurrences were missed, then advances past the current time. A failing
// job stays scheduled for its next occurrence.
func (s *Scheduler) RunPending(ctx context.Context) int {
	ran := 0
	for _, e := range s.entries {
		now := s.clock.Now()
		if now.Before(e.next) {
			continue
		}

		log := s.log.WithField("entry", e.Name)
		log.Info("running scheduled job")

		start := s.clock.Now()
		err := e.Job(ctx)
		e.lastRun = start
		e.lastErr = err
		ran++

		if err != nil {
			log.WithError(err).Error("scheduled job failed")
		} else {
			log.WithField("duration", s.clock.Since(start).String()).Info("scheduled job finished")
		}

		e.next = s.nextAfter(e, start)
		log.WithField("next_run", e.next.Format(time.RFC3339)).Debug("rescheduled")
	}
	return ran
}

// nextAfter advances e past both the fire time and the current clock, so
// missed occurrences collapse into the run that just happened.
func (s *Scheduler) nextAfter(e *Entry, fired time.Time) time.Time {
	next := e.Trigger.Next(fired)
	now := s.clock.Now()
	for !next.After(now) {
		next = e.Trigger.Next(next)
	}
	return next
}

// Run polls until ctx is done. Cancellation is observed only between polls.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := s.clock.Ticker(s.poll)
	defer ticker.Stop()

	s.log.WithField("poll_interval", s.poll.String()).Info("scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return nil
		case <-ticker.C:
			// Jobs get a context that is not cancelled by shutdown.
			s.RunPending(context.WithoutCancel(ctx))
		}
	}
}
