package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/dealflow/backend/internal/domain/usage"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageTrackerModel is the GORM model for usage trackers.
// (team_id, period_start) is unique: one tracker per team per billing period.
type UsageTrackerModel struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey"`
	TeamID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_usage_trackers_team_period"`
	PeriodStart time.Time        `gorm:"not null;uniqueIndex:idx_usage_trackers_team_period"`
	PeriodEnd   time.Time        `gorm:"not null"`
	Counts      map[string]int64 `gorm:"serializer:json;not null"`
	CreatedAt   time.Time        `gorm:"not null"`
	UpdatedAt   time.Time        `gorm:"not null"`
}

// TableName returns the table name for the model
func (UsageTrackerModel) TableName() string {
	return "usage_trackers"
}

// ToEntity converts the model to a domain entity
func (m *UsageTrackerModel) ToEntity() *usage.Tracker {
	counts := make(map[usage.Metric]int64, len(m.Counts))
	for k, v := range m.Counts {
		counts[usage.Metric(k)] = v
	}
	return &usage.Tracker{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TeamID:      m.TeamID,
		PeriodStart: m.PeriodStart.UTC(),
		PeriodEnd:   m.PeriodEnd.UTC(),
		Counts:      counts,
	}
}

// UsageTrackerModelFromEntity creates a model from a domain entity
func UsageTrackerModelFromEntity(e *usage.Tracker) *UsageTrackerModel {
	counts := make(map[string]int64, len(e.Counts))
	for k, v := range e.Counts {
		counts[string(k)] = v
	}
	return &UsageTrackerModel{
		ID:          e.ID,
		TeamID:      e.TeamID,
		PeriodStart: e.PeriodStart,
		PeriodEnd:   e.PeriodEnd,
		Counts:      counts,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// GormUsageTrackerRepository implements usage.TrackerRepository
type GormUsageTrackerRepository struct {
	database *Database
	db       *gorm.DB
}

// NewGormUsageTrackerRepository creates a new repository
func NewGormUsageTrackerRepository(database *Database) *GormUsageTrackerRepository {
	return &GormUsageTrackerRepository{database: database, db: database.DB}
}

// FindByTeamAndPeriod finds the tracker of a team for the period starting at periodStart
func (r *GormUsageTrackerRepository) FindByTeamAndPeriod(ctx context.Context, teamID uuid.UUID, periodStart time.Time) (*usage.Tracker, error) {
	var model UsageTrackerModel
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND period_start = ?", teamID, periodStart.UTC()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find usage tracker: %w", err)
	}
	return model.ToEntity(), nil
}

// Save inserts the tracker, or updates its counts when it already exists
func (r *GormUsageTrackerRepository) Save(ctx context.Context, tracker *usage.Tracker) error {
	model := UsageTrackerModelFromEntity(tracker)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"counts", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save usage tracker: %w", err)
	}
	return nil
}

// Increment adds qty units of metric inside a transaction that holds the
// tracker row lock, so overlapping increments never overwrite each other.
// The seed insert targets (team_id, period_start); when two callers race to
// create the period's tracker, the loser's insert is a no-op and both then
// update the winner's row.
func (r *GormUsageTrackerRepository) Increment(ctx context.Context, seed *usage.Tracker, metric usage.Metric, qty int64) (*usage.Tracker, error) {
	var tracker *usage.Tracker
	err := r.database.Transaction(ctx, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_id"}, {Name: "period_start"}},
			DoNothing: true,
		}).Create(UsageTrackerModelFromEntity(seed)).Error
		if err != nil {
			return err
		}

		var model UsageTrackerModel
		err = tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Where("team_id = ? AND period_start = ?", seed.TeamID, seed.PeriodStart.UTC()).
			First(&model).Error
		if err != nil {
			return err
		}

		tracker = model.ToEntity()
		if err := tracker.Add(metric, qty); err != nil {
			return err
		}
		updated := UsageTrackerModelFromEntity(tracker)
		return tx.Model(updated).Select("counts", "updated_at").Updates(updated).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to increment usage tracker: %w", err)
	}
	return tracker, nil
}

// FindByTeam returns every tracker of a team, newest period first
func (r *GormUsageTrackerRepository) FindByTeam(ctx context.Context, teamID uuid.UUID) ([]*usage.Tracker, error) {
	var models []UsageTrackerModel
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("period_start DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list usage trackers: %w", err)
	}

	trackers := make([]*usage.Tracker, len(models))
	for i := range models {
		trackers[i] = models[i].ToEntity()
	}
	return trackers, nil
}

var _ usage.TrackerRepository = (*GormUsageTrackerRepository)(nil)
