package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/dealflow/backend/internal/domain/activity"
	"github.com/dealflow/backend/internal/domain/link"
	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityModel is the GORM model for activity feed entries
type ActivityModel struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	TeamID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_activities_team_occurred"`
	SubjectModule string         `gorm:"type:varchar(64);not null;index:idx_activities_subject"`
	SubjectEntity string         `gorm:"type:varchar(64);not null;index:idx_activities_subject"`
	SubjectID     string         `gorm:"type:varchar(255);not null;index:idx_activities_subject"`
	Action        string         `gorm:"type:varchar(100);not null"`
	ActorID       *uuid.UUID     `gorm:"type:uuid"`
	Payload       map[string]any `gorm:"serializer:json"`
	OccurredAt    time.Time      `gorm:"not null;index:idx_activities_team_occurred"`
	CreatedAt     time.Time      `gorm:"not null"`
	UpdatedAt     time.Time      `gorm:"not null"`
}

// TableName returns the table name for the model
func (ActivityModel) TableName() string {
	return "activities"
}

// ToEntity converts the model to a domain entity
func (m *ActivityModel) ToEntity() *activity.Activity {
	payload := m.Payload
	if payload == nil {
		payload = make(map[string]any)
	}
	return &activity.Activity{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TeamID:     m.TeamID,
		Subject:    link.NewLinkable(m.SubjectModule, m.SubjectEntity),
		SubjectID:  m.SubjectID,
		Action:     m.Action,
		ActorID:    m.ActorID,
		Payload:    payload,
		OccurredAt: m.OccurredAt.UTC(),
	}
}

// ActivityModelFromEntity creates a model from a domain entity
func ActivityModelFromEntity(e *activity.Activity) *ActivityModel {
	return &ActivityModel{
		ID:            e.ID,
		TeamID:        e.TeamID,
		SubjectModule: e.Subject.Module,
		SubjectEntity: e.Subject.Entity,
		SubjectID:     e.SubjectID,
		Action:        e.Action,
		ActorID:       e.ActorID,
		Payload:       e.Payload,
		OccurredAt:    e.OccurredAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// GormActivityRepository implements activity.Repository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new repository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Save appends an activity
func (r *GormActivityRepository) Save(ctx context.Context, a *activity.Activity) error {
	if err := r.db.WithContext(ctx).Create(ActivityModelFromEntity(a)).Error; err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}
	return nil
}

// FindBySubject returns the newest activities of one entity first
func (r *GormActivityRepository) FindBySubject(ctx context.Context, subject link.Linkable, subjectID string, limit int) ([]*activity.Activity, error) {
	query := r.db.WithContext(ctx).
		Where("subject_module = ? AND subject_entity = ? AND subject_id = ?", subject.Module, subject.Entity, subjectID).
		Order("occurred_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []ActivityModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	out := make([]*activity.Activity, len(models))
	for i := range models {
		out[i] = models[i].ToEntity()
	}
	return out, nil
}

// CountByTeam counts activities with from <= occurred_at < to
func (r *GormActivityRepository) CountByTeam(ctx context.Context, teamID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ActivityModel{}).
		Where("team_id = ? AND occurred_at >= ? AND occurred_at < ?", teamID, from.UTC(), to.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

var _ activity.Repository = (*GormActivityRepository)(nil)
