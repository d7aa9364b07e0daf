package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealflow/backend/internal/domain/link"
	"github.com/dealflow/backend/internal/domain/notification"
	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationModel is the GORM model for in-app notifications
type NotificationModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TeamID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	RecipientID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_recipient_read"`
	Title         string     `gorm:"type:varchar(200);not null"`
	Body          string     `gorm:"type:text"`
	SubjectModule string     `gorm:"type:varchar(64)"`
	SubjectEntity string     `gorm:"type:varchar(64)"`
	SubjectID     string     `gorm:"type:varchar(255)"`
	ReadAt        *time.Time `gorm:"index:idx_notifications_recipient_read"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the model
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToEntity converts the model to a domain entity
func (m *NotificationModel) ToEntity() *notification.Notification {
	n := &notification.Notification{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TeamID:      m.TeamID,
		RecipientID: m.RecipientID,
		Title:       m.Title,
		Body:        m.Body,
		SubjectID:   m.SubjectID,
	}
	if m.SubjectModule != "" {
		subject := link.NewLinkable(m.SubjectModule, m.SubjectEntity)
		n.Subject = &subject
	}
	if m.ReadAt != nil {
		at := m.ReadAt.UTC()
		n.ReadAt = &at
	}
	return n
}

// NotificationModelFromEntity creates a model from a domain entity
func NotificationModelFromEntity(e *notification.Notification) *NotificationModel {
	m := &NotificationModel{
		ID:          e.ID,
		TeamID:      e.TeamID,
		RecipientID: e.RecipientID,
		Title:       e.Title,
		Body:        e.Body,
		SubjectID:   e.SubjectID,
		ReadAt:      e.ReadAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Subject != nil {
		m.SubjectModule = e.Subject.Module
		m.SubjectEntity = e.Subject.Entity
	}
	return m
}

// GormNotificationRepository implements notification.Repository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new repository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Save inserts or updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	if err := r.db.WithContext(ctx).Save(NotificationModelFromEntity(n)).Error; err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// FindByID finds a notification by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var model NotificationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}
	return model.ToEntity(), nil
}

// FindUnread returns the recipient's unread notifications, newest first
func (r *GormNotificationRepository) FindUnread(ctx context.Context, recipientID uuid.UUID, limit int) ([]*notification.Notification, error) {
	query := r.db.WithContext(ctx).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []NotificationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]*notification.Notification, len(models))
	for i := range models {
		out[i] = models[i].ToEntity()
	}
	return out, nil
}

// CountUnread counts the recipient's unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&NotificationModel{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

var _ notification.Repository = (*GormNotificationRepository)(nil)
