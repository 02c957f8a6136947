package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lodgeops/lodgeops/internal/clock"
	obsmetrics "github.com/lodgeops/lodgeops/internal/observability/metrics"
	rentdomain "github.com/lodgeops/lodgeops/internal/rent/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependencies")

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	RentSvc rentdomain.Service
	Config  Config `optional:"true"`
}

// Scheduler periodically invokes the stateless rent operations. The
// engine itself holds no timers.
type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	clock   clock.Clock
	rentSvc rentdomain.Service

	running atomic.Bool
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.RentSvc == nil {
		return nil, ErrInvalidConfig
	}

	return &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		clock:   p.Clock,
		rentSvc: p.RentSvc,
	}, nil
}

// RunOnce executes one full pass: overdue sweep, gap reconciliation,
// then next-month generation across all admins. A tick that arrives
// while a previous pass is still executing is skipped, not queued.
func (s *Scheduler) RunOnce(parent context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("previous run still in flight, skipping tick")
		for _, job := range s.jobNames() {
			obsmetrics.Scheduler().ObserveSkip(job)
		}
		return nil
	}
	defer s.running.Store(false)

	var err error

	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{"sweep_overdue", s.SweepOverdueJob},
		{"reconcile_missing", s.ReconcileMissingJob},
		{"generate_monthly", s.GenerateMonthlyJob},
	}

	for _, job := range jobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, job.Name, s.cfg.JobTimeout, job.Run))
	}

	return err
}

// RunForever ticks until the context is canceled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	err := fn(ctx)
	obsmetrics.Scheduler().ObserveRun(name, time.Since(start), err)

	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

// SweepOverdueJob flips unpaid past-due records to Overdue.
func (s *Scheduler) SweepOverdueJob(ctx context.Context) error {
	updated, err := s.rentSvc.SweepOverdue(ctx)
	if err != nil {
		return err
	}
	obsmetrics.Scheduler().AddItems("sweep_overdue", "updated", int(updated))
	return nil
}

// ReconcileMissingJob fills rent-record gaps for every billable tenant.
func (s *Scheduler) ReconcileMissingJob(ctx context.Context) error {
	result, err := s.rentSvc.ReconcileMissing(ctx)
	if err != nil {
		return err
	}
	obsmetrics.Scheduler().AddItems("reconcile_missing", "created", len(result.Created))
	return nil
}

// GenerateMonthlyJob creates next month's rent records across all
// admins. Safe to run every tick; existing records are skipped.
func (s *Scheduler) GenerateMonthlyJob(ctx context.Context) error {
	now := s.clock.Now()
	month, year := rentdomain.NextPeriod(int(now.UTC().Month()), now.UTC().Year())

	result, err := s.rentSvc.GenerateForPeriod(ctx, rentdomain.GenerateRequest{
		Month: month,
		Year:  year,
	})
	if err != nil {
		return err
	}

	metrics := obsmetrics.Scheduler()
	metrics.AddItems("generate_monthly", "created", len(result.Created))
	metrics.AddItems("generate_monthly", "skipped", len(result.Skipped))
	metrics.AddItems("generate_monthly", "error", len(result.Errors))
	return nil
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// An empty EnabledJobs list enables everything (monolith mode).
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

func (s *Scheduler) jobNames() []string {
	names := []string{}
	for _, name := range []string{"sweep_overdue", "reconcile_missing", "generate_monthly"} {
		if s.isJobEnabled(name) {
			names = append(names, name)
		}
	}
	return names
}
