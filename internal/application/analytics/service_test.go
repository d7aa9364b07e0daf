package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dealflow/backend/internal/application/activity"
	"github.com/dealflow/backend/internal/application/usage"
	"github.com/dealflow/backend/internal/domain/link"
	"github.com/dealflow/backend/internal/domain/shared"
	domainusage "github.com/dealflow/backend/internal/domain/usage"
	"github.com/dealflow/backend/internal/infrastructure/container"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockActivityCounter struct {
	mock.Mock
}

func (m *mockActivityCounter) CountForTeam(ctx context.Context, teamID uuid.UUID, from, to time.Time) (int64, error) {
	args := m.Called(ctx, teamID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

type mockUsageReader struct {
	mock.Mock
}

func (m *mockUsageReader) Current(ctx context.Context, teamID uuid.UUID, at time.Time) (*domainusage.Tracker, error) {
	args := m.Called(ctx, teamID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainusage.Tracker), args.Error(1)
}

func (m *mockUsageReader) Utilization(ctx context.Context, teamID uuid.UUID, at time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, teamID, at)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

var testNow = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func TestService_TeamSummary(t *testing.T) {
	ctx := context.Background()
	teamID := uuid.New()
	start, end := domainusage.BillingPeriod(testNow)

	tracker, err := domainusage.NewTracker(teamID, testNow)
	require.NoError(t, err)
	require.NoError(t, tracker.Add(domainusage.MetricDealsCreated, 3))
	require.NoError(t, tracker.Add(domainusage.MetricEmailsSent, 4))

	activities := new(mockActivityCounter)
	activities.On("CountForTeam", ctx, teamID, start, end).Return(int64(12), nil)
	reader := new(mockUsageReader)
	reader.On("Current", ctx, teamID, testNow).Return(tracker, nil)
	reader.On("Utilization", ctx, teamID, testNow).Return(decimal.NewFromFloat(7.5), nil)

	summary, err := NewService(activities, reader, zap.NewNop()).TeamSummary(ctx, teamID, testNow)
	require.NoError(t, err)
	assert.Equal(t, start, summary.PeriodStart)
	assert.Equal(t, end, summary.PeriodEnd)
	assert.Equal(t, int64(12), summary.Activities)
	assert.Equal(t, int64(7), summary.UsageTotal)
	assert.Equal(t, map[domainusage.Metric]int64{
		domainusage.MetricDealsCreated: 3,
		domainusage.MetricEmailsSent:   4,
	}, summary.Usage)
	assert.True(t, decimal.NewFromFloat(7.5).Equal(summary.Utilization))
}

func TestService_TeamSummary_PropagatesErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db down")

	activities := new(mockActivityCounter)
	activities.On("CountForTeam", ctx, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), boom)

	_, err := NewService(activities, new(mockUsageReader), nil).TeamSummary(ctx, uuid.New(), testNow)
	assert.ErrorIs(t, err, boom)
}

type mockTrackerRepository struct {
	mock.Mock
}

func (m *mockTrackerRepository) FindByTeamAndPeriod(ctx context.Context, teamID uuid.UUID, periodStart time.Time) (*domainusage.Tracker, error) {
	args := m.Called(ctx, teamID, periodStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainusage.Tracker), args.Error(1)
}

func (m *mockTrackerRepository) Save(ctx context.Context, tracker *domainusage.Tracker) error {
	return m.Called(ctx, tracker).Error(0)
}

func (m *mockTrackerRepository) Increment(ctx context.Context, seed *domainusage.Tracker, metric domainusage.Metric, qty int64) (*domainusage.Tracker, error) {
	args := m.Called(ctx, seed, metric, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainusage.Tracker), args.Error(1)
}

func (m *mockTrackerRepository) FindByTeam(ctx context.Context, teamID uuid.UUID) ([]*domainusage.Tracker, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]*domainusage.Tracker), args.Error(1)
}

func TestModule_ResolvesDependencies(t *testing.T) {
	c := container.New(nil)
	require.NoError(t, c.Register(Module(nil)))

	_, err := c.Resolve(ModuleKey)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, c.Register(activity.Module(nil, link.NewEntityRegistry(), nil)))
	require.NoError(t, c.Register(usage.Module(new(mockTrackerRepository), 0, nil)))

	svc, err := container.ResolveAs[*Service](c, ModuleKey)
	require.NoError(t, err)
	assert.NotNil(t, svc)

	again, err := container.ResolveAs[*Service](c, ModuleKey)
	require.NoError(t, err)
	assert.Same(t, svc, again)
}
