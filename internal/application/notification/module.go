// Package notification is the in-app notification business module.
package notification

import (
	"github.com/dealflow/backend/internal/domain/link"
	"github.com/dealflow/backend/internal/domain/notification"
	"github.com/dealflow/backend/internal/infrastructure/container"
	"github.com/dealflow/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ModuleKey is the container key of the notification service
const ModuleKey = "notificationModuleService"

// Module returns the container registration of the notification service
func Module(repo notification.Repository, entities link.Resolver, log *zap.Logger) container.Registration {
	return container.Registration{
		Key: ModuleKey,
		Factory: func(container.Resolver) (any, error) {
			return NewService(repo, entities, logger.ForModule(log, ModuleKey)), nil
		},
	}
}
