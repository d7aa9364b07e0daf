package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/dealflow/backend/internal/domain/activity"
	"github.com/dealflow/backend/internal/domain/link"
	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/dealflow/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// RecordInput is a feed entry to record
type RecordInput struct {
	TeamID     uuid.UUID
	Subject    link.Linkable
	SubjectID  string
	Action     string
	ActorID    *uuid.UUID
	Payload    map[string]any
	OccurredAt time.Time
}

// Service records and lists activity of linkable entities
type Service struct {
	repo     activity.Repository
	entities link.Resolver
	logger   *zap.Logger
}

// NewService creates an activity service. Subjects must resolve through entities.
func NewService(repo activity.Repository, entities link.Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		entities: entities,
		logger:   logger,
	}
}

// Record appends an activity to the feed
func (s *Service) Record(ctx context.Context, input RecordInput) (*activity.Activity, error) {
	if err := s.entities.Resolve(input.Subject); err != nil {
		return nil, err
	}

	a, err := activity.NewActivity(input.TeamID, input.Subject, input.SubjectID, input.Action, input.OccurredAt)
	if err != nil {
		return nil, err
	}
	if input.ActorID != nil {
		a.WithActor(*input.ActorID)
	}
	for k, v := range input.Payload {
		a.WithPayload(k, v)
	}

	ctx, log := logger.WithTeamID(ctx, s.logger, a.TeamID.String())
	if err := s.repo.Save(ctx, a); err != nil {
		log.Error("Failed to record activity",
			zap.String("subject", a.Subject.String()),
			zap.String("subject_id", a.SubjectID),
			zap.Error(err),
		)
		return nil, err
	}

	log.Debug("Activity recorded",
		zap.String("subject", a.Subject.String()),
		zap.String("action", a.Action),
	)
	return a, nil
}

// ListFor returns the newest activities of one entity. limit <= 0 uses the default.
func (s *Service) ListFor(ctx context.Context, subject link.Linkable, subjectID string, limit int) ([]*activity.Activity, error) {
	if err := s.entities.Resolve(subject); err != nil {
		return nil, err
	}
	if subjectID == "" {
		return nil, fmt.Errorf("%w: subject ID cannot be empty", shared.ErrInvalidInput)
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	return s.repo.FindBySubject(ctx, subject, subjectID, limit)
}

// CountForTeam counts the team's activities with from <= OccurredAt < to
func (s *Service) CountForTeam(ctx context.Context, teamID uuid.UUID, from, to time.Time) (int64, error) {
	if !from.Before(to) {
		return 0, fmt.Errorf("%w: empty time range", shared.ErrInvalidInput)
	}
	return s.repo.CountByTeam(ctx, teamID, from, to)
}
