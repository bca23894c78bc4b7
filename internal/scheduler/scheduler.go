package scheduler

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// JobFunc represents a function that can be scheduled.
type JobFunc func(ctx context.Context) error

// Scheduler manages the background jobs of the server.
type Scheduler struct {
	gocron gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler.
func New() (*Scheduler, error) {
	gocronScheduler, err := gocron.NewScheduler(gocron.WithLogger(newLogger()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		gocron: gocronScheduler,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// AddCronJob registers a named job with a cron schedule. When runAtStart is
// set the job also runs once right after the scheduler starts.
func (s *Scheduler) AddCronJob(name, schedule string, jobFunc JobFunc, runAtStart bool) error {
	task := gocron.NewTask(func() {
		log.Debug("running scheduled job", "job", name)
		if err := jobFunc(s.ctx); err != nil {
			log.Error("scheduled job failed", "job", name, "error", err)
			return
		}
		log.Debug("scheduled job finished", "job", name)
	})

	opts := []gocron.JobOption{gocron.WithName(name)}
	if runAtStart {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	if _, err := s.gocron.NewJob(gocron.CronJob(schedule, false), task, opts...); err != nil {
		return fmt.Errorf("failed to add job %q: %w", name, err)
	}
	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.gocron.Start()
	log.Info("job scheduler started")
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() error {
	s.cancel()
	return s.gocron.Shutdown()
}
