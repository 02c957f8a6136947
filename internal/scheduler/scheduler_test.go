package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lodgeops/lodgeops/internal/clock"
	obsmetrics "github.com/lodgeops/lodgeops/internal/observability/metrics"
	rentdomain "github.com/lodgeops/lodgeops/internal/rent/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockRentService struct {
	sweepCalls     atomic.Int64
	reconcileCalls atomic.Int64
	generateCalls  atomic.Int64

	sweepErr     error
	reconcileErr error
	generateErr  error

	// When set, SweepOverdue blocks until the channel is closed.
	sweepGate chan struct{}
	// Closed once SweepOverdue has been entered.
	sweepStarted chan struct{}

	lastGenerate rentdomain.GenerateRequest
}

func (m *mockRentService) SweepOverdue(ctx context.Context) (int64, error) {
	m.sweepCalls.Add(1)
	if m.sweepStarted != nil {
		close(m.sweepStarted)
	}
	if m.sweepGate != nil {
		<-m.sweepGate
	}
	return 0, m.sweepErr
}

func (m *mockRentService) ReconcileMissing(ctx context.Context) (rentdomain.ReconcileResult, error) {
	m.reconcileCalls.Add(1)
	return rentdomain.ReconcileResult{}, m.reconcileErr
}

func (m *mockRentService) GenerateForPeriod(ctx context.Context, req rentdomain.GenerateRequest) (rentdomain.GenerateResult, error) {
	m.generateCalls.Add(1)
	m.lastGenerate = req
	return rentdomain.GenerateResult{}, m.generateErr
}

func (m *mockRentService) Create(ctx context.Context, req rentdomain.CreateRentRequest) (rentdomain.Rent, error) {
	return rentdomain.Rent{}, nil
}

func (m *mockRentService) GetByID(ctx context.Context, id string) (rentdomain.Rent, error) {
	return rentdomain.Rent{}, nil
}

func (m *mockRentService) List(ctx context.Context, req rentdomain.ListRentRequest) (rentdomain.ListRentResponse, error) {
	return rentdomain.ListRentResponse{}, nil
}

func (m *mockRentService) ApplyPayment(ctx context.Context, rentID string, input rentdomain.PaymentInput) (rentdomain.PaymentResult, error) {
	return rentdomain.PaymentResult{}, nil
}

func (m *mockRentService) ListDueRents(ctx context.Context) (rentdomain.DueRents, error) {
	return rentdomain.DueRents{}, nil
}

func (m *mockRentService) StampTenantSnapshot(ctx context.Context, tenantID snowflake.ID, tenant rentdomain.TenantSnapshot, room rentdomain.RoomSnapshot) error {
	return nil
}

func newTestScheduler(t *testing.T, mock *mockRentService, cfg Config) *Scheduler {
	t.Helper()
	s, err := New(Params{
		Log:     zaptest.NewLogger(t),
		Clock:   clock.NewFakeClock(time.Date(2024, time.April, 18, 3, 0, 0, 0, time.UTC)),
		RentSvc: mock,
		Config:  cfg,
	})
	require.NoError(t, err)
	return s
}

func TestNewValidatesDependencies(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunOnceInvokesAllJobs(t *testing.T) {
	mock := &mockRentService{}
	s := newTestScheduler(t, mock, Config{})

	runsBefore := obsmetrics.Scheduler().RunCount("generate_monthly", "success")
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, runsBefore+1, obsmetrics.Scheduler().RunCount("generate_monthly", "success"))

	assert.Equal(t, int64(1), mock.sweepCalls.Load())
	assert.Equal(t, int64(1), mock.reconcileCalls.Load())
	assert.Equal(t, int64(1), mock.generateCalls.Load())

	// Generation always targets the month after the current one, for
	// every admin.
	assert.Equal(t, snowflake.ID(0), mock.lastGenerate.AdminID)
	assert.Equal(t, 5, mock.lastGenerate.Month)
	assert.Equal(t, 2024, mock.lastGenerate.Year)
}

func TestRunOnceSkipsOverlappingTick(t *testing.T) {
	mock := &mockRentService{
		sweepGate:    make(chan struct{}),
		sweepStarted: make(chan struct{}),
	}
	s := newTestScheduler(t, mock, Config{})

	skipsBefore := obsmetrics.Scheduler().SkipCount("sweep_overdue")

	done := make(chan error, 1)
	go func() {
		done <- s.RunOnce(context.Background())
	}()

	<-mock.sweepStarted

	// The first pass is still inside SweepOverdue.
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, int64(1), mock.sweepCalls.Load())
	assert.Equal(t, skipsBefore+1, obsmetrics.Scheduler().SkipCount("sweep_overdue"))

	close(mock.sweepGate)
	require.NoError(t, <-done)

	assert.Equal(t, int64(1), mock.sweepCalls.Load())
	assert.Equal(t, int64(1), mock.reconcileCalls.Load())
}

func TestRunOnceHonorsEnabledJobs(t *testing.T) {
	mock := &mockRentService{}
	s := newTestScheduler(t, mock, Config{EnabledJobs: []string{"sweep_overdue"}})

	require.NoError(t, s.RunOnce(context.Background()))

	assert.Equal(t, int64(1), mock.sweepCalls.Load())
	assert.Equal(t, int64(0), mock.reconcileCalls.Load())
	assert.Equal(t, int64(0), mock.generateCalls.Load())
}

func TestRunOnceAggregatesJobErrors(t *testing.T) {
	mock := &mockRentService{reconcileErr: assert.AnError}
	s := newTestScheduler(t, mock, Config{})

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconcile_missing")

	// One failing job does not stop the others.
	assert.Equal(t, int64(1), mock.sweepCalls.Load())
	assert.Equal(t, int64(1), mock.generateCalls.Load())
}

func TestRunOnceTreatsTimeoutAsSoftFailure(t *testing.T) {
	mock := &mockRentService{sweepErr: context.DeadlineExceeded}
	s := newTestScheduler(t, mock, Config{})

	assert.NoError(t, s.RunOnce(context.Background()))
}
