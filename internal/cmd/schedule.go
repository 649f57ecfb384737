package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hargabyte/salesreport/internal/config"
	"github.com/hargabyte/salesreport/internal/logger"
	"github.com/hargabyte/salesreport/internal/pipeline"
	"github.com/hargabyte/salesreport/internal/schedule"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run report templates on their schedules",
	Long: `Register every configured template and run until interrupted.

Weekly templates fire on their configured day and time (default Monday
09:00). Monthly templates fire every 'every_days' days (default 30) counted
from when the scheduler starts. The loop checks for due templates every
scheduler.poll_interval and runs them one at a time.

Ctrl-C stops the scheduler after any report in progress has finished.

Examples:
  reportgen schedule                  # Run all templates
  reportgen schedule --run-now        # Generate every template once at startup`,
	RunE: runSchedule,
}

var scheduleRunNow bool

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().BoolVar(&scheduleRunNow, "run-now", false, "Generate every template once before waiting")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := logger.Get("schedule")

	p := pipeline.New(cfg)
	s := schedule.New(schedule.WithPollInterval(cfg.Scheduler.PollDuration()))

	if err := registerTemplates(s, cfg, p); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if scheduleRunNow {
		for _, e := range s.Entries() {
			if err := e.Job(context.WithoutCancel(ctx)); err != nil {
				log.WithError(err).WithField("entry", e.Name).Error("initial run failed")
			}
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Scheduler running with %d template(s). Press Ctrl-C to stop.\n", len(s.Entries()))
	return s.Run(ctx)
}

// registerTemplates adds one entry per configured template, in name order.
func registerTemplates(s *schedule.Scheduler, cfg *config.Config, p *pipeline.Pipeline) error {
	for _, name := range templateNames(cfg) {
		tc := cfg.Templates[name]

		trigger, err := triggerFor(tc)
		if err != nil {
			return fmt.Errorf("template %s: %w", name, err)
		}

		tmpl := pipeline.TemplateFrom(name, tc)
		s.Add(name, trigger, func(ctx context.Context) error {
			_, err := p.Run(ctx, tmpl)
			return err
		})
	}
	return nil
}

// triggerFor converts a template's frequency settings into a trigger.
func triggerFor(tc config.TemplateConfig) (schedule.Trigger, error) {
	switch tc.Frequency {
	case config.FrequencyWeekly:
		day, err := config.ParseWeekday(tc.Day)
		if err != nil {
			return nil, err
		}
		hour, minute, err := config.ParseClock(tc.At)
		if err != nil {
			return nil, err
		}
		return schedule.Weekly{Day: day, Hour: hour, Minute: minute}, nil
	case config.FrequencyMonthly:
		return schedule.EveryDays{Days: tc.EveryDays}, nil
	default:
		return nil, fmt.Errorf("unknown frequency %q", tc.Frequency)
	}
}
