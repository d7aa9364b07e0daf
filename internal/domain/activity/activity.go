// Package activity models the append-only feed of things that happened to linkable entities.
package activity

import (
	"context"
	"strings"
	"time"

	"github.com/dealflow/backend/internal/domain/link"
	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Activity is an immutable feed entry
type Activity struct {
	shared.BaseEntity
	TeamID     uuid.UUID
	Subject    link.Linkable
	SubjectID  string
	Action     string
	ActorID    *uuid.UUID
	Payload    map[string]any
	OccurredAt time.Time
}

// NewActivity creates a feed entry. Action is normalised to lower case.
func NewActivity(teamID uuid.UUID, subject link.Linkable, subjectID, action string, occurredAt time.Time) (*Activity, error) {
	if teamID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TEAM", "Team ID cannot be empty")
	}
	if subject.IsZero() || subjectID == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Activity subject cannot be empty")
	}
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		return nil, shared.NewDomainError("INVALID_ACTION", "Activity action cannot be empty")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return &Activity{
		BaseEntity: shared.NewBaseEntity(),
		TeamID:     teamID,
		Subject:    subject,
		SubjectID:  subjectID,
		Action:     action,
		Payload:    make(map[string]any),
		OccurredAt: occurredAt.UTC(),
	}, nil
}

// WithActor sets the user who performed the action
func (a *Activity) WithActor(actorID uuid.UUID) *Activity {
	a.ActorID = &actorID
	return a
}

// WithPayload adds a payload entry
func (a *Activity) WithPayload(key string, value any) *Activity {
	if a.Payload == nil {
		a.Payload = make(map[string]any)
	}
	a.Payload[key] = value
	return a
}

// Repository persists activities
type Repository interface {
	Save(ctx context.Context, a *Activity) error

	// FindBySubject returns the newest activities of one entity first
	FindBySubject(ctx context.Context, subject link.Linkable, subjectID string, limit int) ([]*Activity, error)

	// CountByTeam counts activities with from <= OccurredAt < to
	CountByTeam(ctx context.Context, teamID uuid.UUID, from, to time.Time) (int64, error)
}
