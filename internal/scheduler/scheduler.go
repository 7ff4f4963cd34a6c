// Package scheduler runs canonical URL batch updates on cron schedules.
package scheduler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/config"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/logfields"
	"git.home.luguber.info/inful/sociallike/internal/observability"
	"git.home.luguber.info/inful/sociallike/internal/registry"
	"git.home.luguber.info/inful/sociallike/internal/vhost"
)

// TriggerSchedule identifies scheduled runs in the change history.
const TriggerSchedule = "schedule"

// Runner executes a batch update.
type Runner interface {
	UpdateCanonicalURL(ctx context.Context, rc vhost.RequestContext, liveDomain string, req canonical.UpdateRequest) (*canonical.Result, error)
}

// BatchRecorder records completed batches.
type BatchRecorder interface {
	BatchCompleted(ctx context.Context, req canonical.UpdateRequest, liveDomain, trigger string, res *canonical.Result) error
}

// Job is a validated scheduled update.
type Job struct {
	Name       string
	Cron       string
	Request    canonical.UpdateRequest
	LiveDomain string
}

// JobFromConfig parses and validates a configured job.
func JobFromConfig(jc config.JobConfig) (Job, error) {
	cutoff, err := canonical.ParseDate(jc.PublishedBefore)
	if err != nil {
		return Job{}, err
	}
	req := canonical.UpdateRequest{OldCanonicalDomain: jc.OldCanonicalDomain, PublishedBefore: cutoff}
	if err := req.Validate(); err != nil {
		return Job{}, err
	}
	live, err := canonical.NormalizeDomain(jc.LiveDomain)
	if err != nil {
		return Job{}, err
	}
	return Job{Name: jc.Name, Cron: jc.Cron, Request: req, LiveDomain: live}, nil
}

// Scheduler wraps a gocron scheduler running Jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	runner    Runner
	registry  registry.Registry
	recorder  BatchRecorder
	logger    *slog.Logger

	mu   sync.Mutex
	ctx  context.Context
	jobs map[string]Job
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithBatchRecorder records every scheduled batch.
func WithBatchRecorder(r BatchRecorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scheduler. Jobs without a live domain read canonical_domain
// from reg when they run.
func New(runner Runner, reg registry.Registry, opts ...Option) (*Scheduler, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "create scheduler").Build()
	}
	s := &Scheduler{
		scheduler: gs,
		runner:    runner,
		registry:  reg,
		logger:    slog.Default(),
		ctx:       context.Background(),
		jobs:      map[string]Job{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Schedule registers job on its cron expression and returns the gocron job id.
func (s *Scheduler) Schedule(job Job) (string, error) {
	s.mu.Lock()
	_, dup := s.jobs[job.Name]
	s.mu.Unlock()
	if dup {
		return "", errors.AlreadyExistsError("job already scheduled").WithContext("job", job.Name).Build()
	}

	j, err := s.scheduler.NewJob(
		gocron.CronJob(job.Cron, false),
		gocron.NewTask(s.execute, job.Name),
		gocron.WithName(job.Name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryConfig, "invalid schedule").
			WithContext("job", job.Name).
			WithContext("cron", job.Cron).
			Build()
	}

	s.mu.Lock()
	s.jobs[job.Name] = job
	s.mu.Unlock()
	return j.ID().String(), nil
}

// Load schedules every configured job.
func (s *Scheduler) Load(cfg config.ScheduleConfig) error {
	for _, jc := range cfg.Jobs {
		job, err := JobFromConfig(jc)
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid scheduled job").
				WithContext("job", jc.Name).
				Build()
		}
		if _, err := s.Schedule(job); err != nil {
			return err
		}
	}
	return nil
}

// Jobs returns the names of scheduled jobs.
func (s *Scheduler) Jobs() []string {
	var names []string
	for _, j := range s.scheduler.Jobs() {
		names = append(names, j.Name())
	}
	return names
}

// Start begins running jobs. Runs use ctx until Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.logger.Info("Starting scheduler", logfields.Count(len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// RunNow runs the named job synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) (*canonical.Result, error) {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return nil, errors.NotFoundError("job not found").WithContext("job", name).Build()
	}
	return s.run(ctx, job)
}

func (s *Scheduler) execute(name string) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if _, err := s.RunNow(ctx, name); err != nil {
		s.logger.Error("Scheduled canonical URL update failed", logfields.Job(name), logfields.Error(err))
	}
}

func (s *Scheduler) run(ctx context.Context, job Job) (*canonical.Result, error) {
	live := job.LiveDomain
	if live == "" && s.registry != nil {
		var err error
		if live, err = registry.CanonicalDomain(ctx, s.registry); err != nil {
			return nil, err
		}
	}

	ctx = observability.WithTrigger(ctx, TriggerSchedule)
	res, err := s.runner.UpdateCanonicalURL(ctx, vhost.Identity(), live, job.Request)
	if err != nil {
		return nil, err
	}
	ctx = observability.WithBatchID(ctx, res.BatchID)
	observability.Logger(ctx, s.logger).Info("Scheduled canonical URL update finished",
		logfields.Job(job.Name),
		logfields.Count(res.Updated),
		logfields.Cutoff(job.Request.PublishedBefore))

	if s.recorder != nil {
		if err := s.recorder.BatchCompleted(ctx, job.Request, live, TriggerSchedule, res); err != nil {
			s.logger.Warn("Failed to record scheduled batch", logfields.Job(job.Name), logfields.Error(err))
		}
	}
	return res, nil
}
