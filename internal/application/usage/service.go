package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/dealflow/backend/internal/domain/usage"
	"github.com/dealflow/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service tracks team usage per billing period
type Service struct {
	repo   usage.TrackerRepository
	quota  int64
	logger *zap.Logger
}

// NewService creates a usage service. quota is the per-period allowance, 0 = unlimited.
func NewService(repo usage.TrackerRepository, quota int64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		quota:  quota,
		logger: logger,
	}
}

// Track adds qty units of metric to the team's tracker for the period containing at,
// creating the tracker on first use. The increment is applied by the repository
// so concurrent calls for the same team all count.
func (s *Service) Track(ctx context.Context, teamID uuid.UUID, metric usage.Metric, qty int64, at time.Time) (*usage.Tracker, error) {
	if teamID == uuid.Nil {
		return nil, fmt.Errorf("%w: team ID cannot be empty", shared.ErrInvalidInput)
	}
	if err := usage.ValidateIncrement(metric, qty); err != nil {
		return nil, err
	}
	ctx, log := logger.WithTeamID(ctx, s.logger, teamID.String())

	seed, err := usage.NewTracker(teamID, at)
	if err != nil {
		return nil, err
	}
	tracker, err := s.repo.Increment(ctx, seed, metric, qty)
	if err != nil {
		return nil, err
	}

	log.Debug("Usage tracked",
		zap.String("metric", string(metric)),
		zap.Int64("quantity", qty),
		zap.Int64("period_total", tracker.Total()),
	)
	if s.quota > 0 && tracker.Total() > s.quota {
		log.Warn("Team exceeded usage quota",
			zap.Int64("quota", s.quota),
			zap.Int64("period_total", tracker.Total()),
		)
	}
	return tracker, nil
}

// Current returns the team's tracker for the period containing at. A team
// without usage in the period gets an empty, unsaved tracker.
func (s *Service) Current(ctx context.Context, teamID uuid.UUID, at time.Time) (*usage.Tracker, error) {
	return s.current(ctx, teamID, at)
}

func (s *Service) current(ctx context.Context, teamID uuid.UUID, at time.Time) (*usage.Tracker, error) {
	if teamID == uuid.Nil {
		return nil, fmt.Errorf("%w: team ID cannot be empty", shared.ErrInvalidInput)
	}
	start, _ := usage.BillingPeriod(at)
	tracker, err := s.repo.FindByTeamAndPeriod(ctx, teamID, start)
	if err == nil {
		return tracker, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return usage.NewTracker(teamID, at)
}

// History returns every tracker of the team, newest first
func (s *Service) History(ctx context.Context, teamID uuid.UUID) ([]*usage.Tracker, error) {
	return s.repo.FindByTeam(ctx, teamID)
}

// Utilization returns the period total as a percentage of the quota, rounded
// to two places. Without a quota it is zero.
func (s *Service) Utilization(ctx context.Context, teamID uuid.UUID, at time.Time) (decimal.Decimal, error) {
	if s.quota <= 0 {
		return decimal.Zero, nil
	}
	tracker, err := s.current(ctx, teamID, at)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(tracker.Total()).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(s.quota)).
		Round(2), nil
}

// Quota returns the per-period allowance
func (s *Service) Quota() int64 {
	return s.quota
}
