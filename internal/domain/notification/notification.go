// Package notification models in-app notifications for team members.
package notification

import (
	"context"
	"time"

	"github.com/dealflow/backend/internal/domain/link"
	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Notification is a message shown inside the application to one recipient
type Notification struct {
	shared.BaseEntity
	TeamID      uuid.UUID
	RecipientID uuid.UUID
	Title       string
	Body        string
	// Subject optionally points at the entity the notification is about
	Subject   *link.Linkable
	SubjectID string
	ReadAt    *time.Time
}

// New creates an unread notification
func New(teamID, recipientID uuid.UUID, title, body string) (*Notification, error) {
	if teamID == uuid.Nil || recipientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Team and recipient are required")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}
	return &Notification{
		BaseEntity:  shared.NewBaseEntity(),
		TeamID:      teamID,
		RecipientID: recipientID,
		Title:       title,
		Body:        body,
	}, nil
}

// About attaches the entity the notification refers to
func (n *Notification) About(subject link.Linkable, subjectID string) *Notification {
	n.Subject = &subject
	n.SubjectID = subjectID
	return n
}

// IsRead reports whether the recipient has read the notification
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarkRead marks the notification read. Marking twice keeps the first timestamp.
func (n *Notification) MarkRead(now time.Time) {
	if n.ReadAt != nil {
		return
	}
	at := now.UTC()
	n.ReadAt = &at
	n.Touch(at)
}

// Repository persists notifications
type Repository interface {
	Save(ctx context.Context, n *Notification) error

	// FindByID returns shared.ErrNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindUnread returns the recipient's unread notifications, newest first
	FindUnread(ctx context.Context, recipientID uuid.UUID, limit int) ([]*Notification, error)

	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
}
