// Package worker runs the periodic maintenance jobs on a gocron scheduler.
package worker

import (
	"context"
	"time"

	"paywin/internal/metrics"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// Job names, also used as metric labels
const (
	JobExpireRounds   = "expire_mine_rounds"
	JobExpirePayments = "expire_payments"
	JobSweepLimiter   = "sweep_rate_limiter"
)

const jobTimeout = time.Minute

type RoundExpirer interface {
	ExpireStaleRounds(ctx context.Context, ttl time.Duration) (int, error)
}

type PaymentExpirer interface {
	ExpirePending(ctx context.Context, ttl time.Duration) (int64, error)
}

type Sweeper interface {
	Sweep() int
}

// Config wires the jobs. A nil target skips its job.
type Config struct {
	Rounds     RoundExpirer
	Payments   PaymentExpirer
	Limiter    Sweeper
	RoundTTL   time.Duration
	PaymentTTL time.Duration
	Interval   time.Duration // How often every job runs
	Metrics    *metrics.Metrics
}

// Scheduler owns the gocron scheduler and its jobs
type Scheduler struct {
	cfg   Config
	sched gocron.Scheduler
}

// New registers the jobs without starting them
func New(cfg Config) (*Scheduler, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	s := &Scheduler{cfg: cfg, sched: sched}

	if cfg.Rounds != nil {
		if err := s.add(JobExpireRounds, s.expireRounds); err != nil {
			return nil, err
		}
	}
	if cfg.Payments != nil {
		if err := s.add(JobExpirePayments, s.expirePayments); err != nil {
			return nil, err
		}
	}
	if cfg.Limiter != nil {
		if err := s.add(JobSweepLimiter, s.sweepLimiter); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) add(name string, run func(context.Context) error) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			err := run(ctx)
			s.cfg.Metrics.ObserveJob(name, err)
			if err != nil {
				logrus.WithError(err).WithField("job", name).Error("Scheduled job failed")
			}
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	return err
}

// Start begins running the jobs in the background
func (s *Scheduler) Start() {
	s.sched.Start()
	logrus.WithField("jobs", len(s.sched.Jobs())).Info("Scheduler started")
}

// Shutdown stops the scheduler and waits for running jobs
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

func (s *Scheduler) expireRounds(ctx context.Context) error {
	n, err := s.cfg.Rounds.ExpireStaleRounds(ctx, s.cfg.RoundTTL)
	if n > 0 {
		logrus.WithField("count", n).Info("Expired idle mine rounds")
	}
	return err
}

func (s *Scheduler) expirePayments(ctx context.Context) error {
	n, err := s.cfg.Payments.ExpirePending(ctx, s.cfg.PaymentTTL)
	if n > 0 {
		logrus.WithField("count", n).Info("Expired pending payments")
	}
	return err
}

func (s *Scheduler) sweepLimiter(context.Context) error {
	if n := s.cfg.Limiter.Sweep(); n > 0 {
		logrus.WithField("count", n).Debug("Swept rate limiter windows")
	}
	return nil
}
