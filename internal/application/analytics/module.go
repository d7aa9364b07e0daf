// Package analytics is the reporting business module. It owns no storage and
// reads through the activity and usage modules.
package analytics

import (
	"github.com/dealflow/backend/internal/application/activity"
	"github.com/dealflow/backend/internal/application/usage"
	"github.com/dealflow/backend/internal/infrastructure/container"
	"github.com/dealflow/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ModuleKey is the container key of the analytics service
const ModuleKey = "analyticsModuleService"

// Module returns the container registration of the analytics service. The
// activity and usage modules must be registered in the same container.
func Module(log *zap.Logger) container.Registration {
	return container.Registration{
		Key: ModuleKey,
		Factory: func(r container.Resolver) (any, error) {
			activities, err := container.ResolveAs[*activity.Service](r, activity.ModuleKey)
			if err != nil {
				return nil, err
			}
			tracker, err := container.ResolveAs[*usage.Service](r, usage.ModuleKey)
			if err != nil {
				return nil, err
			}
			return NewService(activities, tracker, logger.ForModule(log, ModuleKey)), nil
		},
	}
}
