package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealflow/backend/internal/domain/emaildomain"
	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailDomainModel is the GORM model for team sender domains
type EmailDomainModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TeamID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_email_domains_team_name"`
	Name       string     `gorm:"type:varchar(253);not null;uniqueIndex:idx_email_domains_team_name"`
	Token      string     `gorm:"type:varchar(64);not null"`
	Status     string     `gorm:"type:varchar(20);not null;default:'pending'"`
	VerifiedAt *time.Time
	CheckedAt  *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the model
func (EmailDomainModel) TableName() string {
	return "email_domains"
}

// ToEntity converts the model to a domain entity
func (m *EmailDomainModel) ToEntity() *emaildomain.Domain {
	return &emaildomain.Domain{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TeamID:     m.TeamID,
		Name:       m.Name,
		Token:      m.Token,
		Status:     emaildomain.Status(m.Status),
		VerifiedAt: m.VerifiedAt,
		CheckedAt:  m.CheckedAt,
	}
}

// EmailDomainModelFromEntity creates a model from a domain entity
func EmailDomainModelFromEntity(e *emaildomain.Domain) *EmailDomainModel {
	return &EmailDomainModel{
		ID:         e.ID,
		TeamID:     e.TeamID,
		Name:       e.Name,
		Token:      e.Token,
		Status:     string(e.Status),
		VerifiedAt: e.VerifiedAt,
		CheckedAt:  e.CheckedAt,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// GormEmailDomainRepository implements emaildomain.Repository
type GormEmailDomainRepository struct {
	db *gorm.DB
}

// NewGormEmailDomainRepository creates a new repository
func NewGormEmailDomainRepository(db *gorm.DB) *GormEmailDomainRepository {
	return &GormEmailDomainRepository{db: db}
}

// Save inserts or updates a domain
func (r *GormEmailDomainRepository) Save(ctx context.Context, d *emaildomain.Domain) error {
	if err := r.db.WithContext(ctx).Save(EmailDomainModelFromEntity(d)).Error; err != nil {
		return fmt.Errorf("failed to save email domain: %w", err)
	}
	return nil
}

// FindByID finds a domain by ID
func (r *GormEmailDomainRepository) FindByID(ctx context.Context, id uuid.UUID) (*emaildomain.Domain, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByTeamAndName finds a team's domain by its normalised name
func (r *GormEmailDomainRepository) FindByTeamAndName(ctx context.Context, teamID uuid.UUID, name string) (*emaildomain.Domain, error) {
	return r.first(r.db.WithContext(ctx).Where("team_id = ? AND name = ?", teamID, name))
}

func (r *GormEmailDomainRepository) first(query *gorm.DB) (*emaildomain.Domain, error) {
	var model EmailDomainModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find email domain: %w", err)
	}
	return model.ToEntity(), nil
}

// FindByTeam lists a team's domains by name
func (r *GormEmailDomainRepository) FindByTeam(ctx context.Context, teamID uuid.UUID) ([]*emaildomain.Domain, error) {
	var models []EmailDomainModel
	if err := r.db.WithContext(ctx).Where("team_id = ?", teamID).Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list email domains: %w", err)
	}

	out := make([]*emaildomain.Domain, len(models))
	for i := range models {
		out[i] = models[i].ToEntity()
	}
	return out, nil
}

// FindPending returns unverified domains, never-checked ones first
func (r *GormEmailDomainRepository) FindPending(ctx context.Context, limit int) ([]*emaildomain.Domain, error) {
	var models []EmailDomainModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(emaildomain.StatusPending)).
		Order("checked_at IS NOT NULL, checked_at, created_at").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending email domains: %w", err)
	}

	out := make([]*emaildomain.Domain, len(models))
	for i := range models {
		out[i] = models[i].ToEntity()
	}
	return out, nil
}

var _ emaildomain.Repository = (*GormEmailDomainRepository)(nil)
