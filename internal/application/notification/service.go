package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealflow/backend/internal/domain/link"
	"github.com/dealflow/backend/internal/domain/notification"
	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotifyInput describes a notification to deliver
type NotifyInput struct {
	TeamID      uuid.UUID      `validate:"required"`
	RecipientID uuid.UUID      `validate:"required"`
	Title       string         `validate:"required,max=200"`
	Body        string         `validate:"max=4000"`
	Subject     *link.Linkable
	SubjectID   string         `validate:"required_with=Subject"`
}

// Service delivers in-app notifications
type Service struct {
	repo     notification.Repository
	entities link.Resolver
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a notification service
func NewService(repo notification.Repository, entities link.Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		entities: entities,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Notify stores an unread notification for the recipient
func (s *Service) Notify(ctx context.Context, input NotifyInput) (*notification.Notification, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidInput, describe(err))
	}
	if input.Subject != nil {
		if err := s.entities.Resolve(*input.Subject); err != nil {
			return nil, err
		}
	}

	n, err := notification.New(input.TeamID, input.RecipientID, input.Title, input.Body)
	if err != nil {
		return nil, err
	}
	if input.Subject != nil {
		n.About(*input.Subject, input.SubjectID)
	}
	if err := s.repo.Save(ctx, n); err != nil {
		return nil, err
	}

	s.logger.Debug("Notification delivered",
		zap.String("notification_id", n.ID.String()),
		zap.String("recipient_id", n.RecipientID.String()),
	)
	return n, nil
}

// ListUnread returns the recipient's unread notifications, newest first
func (s *Service) ListUnread(ctx context.Context, recipientID uuid.UUID, limit int) ([]*notification.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.FindUnread(ctx, recipientID, limit)
}

// MarkRead marks one of the recipient's notifications read. Other recipients'
// notifications are reported as not found.
func (s *Service) MarkRead(ctx context.Context, recipientID, id uuid.UUID) (*notification.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != recipientID {
		return nil, fmt.Errorf("%w: notification %s", shared.ErrNotFound, id)
	}
	if n.IsRead() {
		return n, nil
	}
	n.MarkRead(s.now())
	if err := s.repo.Save(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// UnreadCount returns the number of unread notifications of the recipient
func (s *Service) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	e := verrs[0]
	return fmt.Sprintf("field %s failed '%s'", e.Field(), e.Tag())
}
