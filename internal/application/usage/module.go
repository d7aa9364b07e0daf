// Package usage is the usage-tracking business module.
package usage

import (
	"github.com/dealflow/backend/internal/domain/usage"
	"github.com/dealflow/backend/internal/infrastructure/container"
	"github.com/dealflow/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ModuleKey is the container key of the usage service
const ModuleKey = "usageModuleService"

// Module returns the container registration of the usage service
func Module(repo usage.TrackerRepository, quota int64, log *zap.Logger) container.Registration {
	return container.Registration{
		Key: ModuleKey,
		Factory: func(container.Resolver) (any, error) {
			return NewService(repo, quota, logger.ForModule(log, ModuleKey)), nil
		},
	}
}
