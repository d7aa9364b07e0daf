// Package emaildomain is the sender-domain business module.
package emaildomain

import (
	"github.com/dealflow/backend/internal/domain/emaildomain"
	"github.com/dealflow/backend/internal/infrastructure/container"
	"github.com/dealflow/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ModuleKey is the container key of the email domain service
const ModuleKey = "emailDomainModuleService"

// Module returns the container registration of the email domain service
func Module(repo emaildomain.Repository, txt TXTLookup, prefix string, log *zap.Logger) container.Registration {
	return container.Registration{
		Key: ModuleKey,
		Factory: func(container.Resolver) (any, error) {
			return NewService(repo, txt, prefix, logger.ForModule(log, ModuleKey)), nil
		},
	}
}
