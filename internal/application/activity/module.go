// Package activity is the activity-feed business module.
package activity

import (
	"github.com/dealflow/backend/internal/domain/activity"
	"github.com/dealflow/backend/internal/domain/link"
	"github.com/dealflow/backend/internal/infrastructure/container"
	"github.com/dealflow/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ModuleKey is the container key of the activity service
const ModuleKey = "activityModuleService"

// Module returns the container registration of the activity service
func Module(repo activity.Repository, entities link.Resolver, log *zap.Logger) container.Registration {
	return container.Registration{
		Key: ModuleKey,
		Factory: func(container.Resolver) (any, error) {
			return NewService(repo, entities, logger.ForModule(log, ModuleKey)), nil
		},
	}
}
