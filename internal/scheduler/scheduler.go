// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/minu803/redis-chatbot/internal/agent"
)

// Scheduler wraps a gocron scheduler running in UTC.
type Scheduler struct {
	cron   gocron.Scheduler
	logger zerolog.Logger
}

// New creates a stopped scheduler.
func New(logger zerolog.Logger) (*Scheduler, error) {
	cron, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(gocronLogger{logger: logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{cron: cron, logger: logger}, nil
}

// AddJob schedules job with a five-field cron expression, or six fields when
// seconds are included.
func (s *Scheduler) AddJob(name, cronExpr string, job func()) error {
	withSeconds := len(strings.Fields(cronExpr)) == 6

	_, err := s.cron.NewJob(
		gocron.CronJob(cronExpr, withSeconds),
		gocron.NewTask(job),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Str("cron", cronExpr).Msg("failed to add job")
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}

	s.logger.Info().Str("name", name).Str("cron", cronExpr).Msg("job scheduled")
	return nil
}

// ScheduleWeatherReseed regenerates the weather table on cronExpr. An empty
// expression schedules nothing.
func (s *Scheduler) ScheduleWeatherReseed(ctx context.Context, content *agent.Content, cronExpr string) error {
	if cronExpr == "" {
		return nil
	}

	return s.AddJob("weather-reseed", cronExpr, func() {
		if _, err := content.SeedWeather(ctx); err != nil {
			s.logger.Error().Err(err).Msg("weather reseed failed")
		}
	})
}

// Start begins running jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() error {
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}

// gocronLogger routes gocron's key/value logs to zerolog.
type gocronLogger struct {
	logger zerolog.Logger
}

func (l gocronLogger) Debug(msg string, args ...any) { l.logger.Debug().Fields(args).Msg(msg) }
func (l gocronLogger) Info(msg string, args ...any)  { l.logger.Info().Fields(args).Msg(msg) }
func (l gocronLogger) Warn(msg string, args ...any)  { l.logger.Warn().Fields(args).Msg(msg) }
func (l gocronLogger) Error(msg string, args ...any) { l.logger.Error().Fields(args).Msg(msg) }
