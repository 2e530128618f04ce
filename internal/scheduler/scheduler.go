package scheduler

import (
	"context"
	"fmt"
	"time"

	"anoa.com/pengaduan/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of background work run on a cron schedule.
type Job interface {
	Name() string
	Execute(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	jobs    map[string]Job
	log     *zap.Logger
}

// New returns a scheduler whose runs are each bounded by timeout.
func New(timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}

	return &Scheduler{
		cron:    cron.New(),
		timeout: timeout,
		jobs:    make(map[string]Job),
		log:     logger.Named("scheduler"),
	}
}

// Register schedules job with a standard cron spec or a descriptor such as
// "@hourly". An empty spec registers the job for on-demand runs only.
func (s *Scheduler) Register(spec string, job Job) error {
	s.jobs[job.Name()] = job

	if spec == "" {
		s.log.Info("job registered without schedule", zap.String("job", job.Name()))
		return nil
	}

	if _, err := s.cron.AddFunc(spec, func() { _ = s.run(context.Background(), job) }); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
	}

	s.log.Info("job scheduled", zap.String("job", job.Name()), zap.String("spec", spec))
	return nil
}

// RunByName executes a registered job immediately.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("job %q is not registered", name)
	}
	return s.run(ctx, job)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := job.Execute(ctx)
	if err != nil {
		s.log.Error("job failed", zap.String("job", job.Name()), zap.Error(err))
		return err
	}

	s.log.Info("job completed", zap.String("job", job.Name()), zap.Duration("took", time.Since(start)))
	return nil
}
