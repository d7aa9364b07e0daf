package analytics

import (
	"context"
	"time"

	"github.com/dealflow/backend/internal/domain/usage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ActivityCounter counts a team's activities in a time range
type ActivityCounter interface {
	CountForTeam(ctx context.Context, teamID uuid.UUID, from, to time.Time) (int64, error)
}

// UsageReader reads a team's usage tracker
type UsageReader interface {
	Current(ctx context.Context, teamID uuid.UUID, at time.Time) (*usage.Tracker, error)
	Utilization(ctx context.Context, teamID uuid.UUID, at time.Time) (decimal.Decimal, error)
}

// TeamSummary aggregates one billing period of a team
type TeamSummary struct {
	TeamID      uuid.UUID              `json:"team_id"`
	PeriodStart time.Time              `json:"period_start"`
	PeriodEnd   time.Time              `json:"period_end"`
	Activities  int64                  `json:"activities"`
	Usage       map[usage.Metric]int64 `json:"usage"`
	UsageTotal  int64                  `json:"usage_total"`
	Utilization decimal.Decimal        `json:"utilization"`
}

// Service is a read-only aggregation over activity and usage
type Service struct {
	activities ActivityCounter
	usage      UsageReader
	logger     *zap.Logger
}

// NewService creates an analytics service
func NewService(activities ActivityCounter, usage UsageReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		activities: activities,
		usage:      usage,
		logger:     logger,
	}
}

// TeamSummary summarizes the billing period containing at
func (s *Service) TeamSummary(ctx context.Context, teamID uuid.UUID, at time.Time) (*TeamSummary, error) {
	start, end := usage.BillingPeriod(at)

	count, err := s.activities.CountForTeam(ctx, teamID, start, end)
	if err != nil {
		return nil, err
	}
	tracker, err := s.usage.Current(ctx, teamID, at)
	if err != nil {
		return nil, err
	}
	utilization, err := s.usage.Utilization(ctx, teamID, at)
	if err != nil {
		return nil, err
	}

	summary := &TeamSummary{
		TeamID:      teamID,
		PeriodStart: start,
		PeriodEnd:   end,
		Activities:  count,
		Usage:       make(map[usage.Metric]int64, len(tracker.Counts)),
		UsageTotal:  tracker.Total(),
		Utilization: utilization,
	}
	for _, m := range tracker.Metrics() {
		summary.Usage[m] = tracker.Count(m)
	}

	s.logger.Debug("Team summary computed",
		zap.String("team_id", teamID.String()),
		zap.Time("period_start", start),
		zap.Int64("activities", count),
		zap.Int64("usage_total", summary.UsageTotal),
	)
	return summary, nil
}
