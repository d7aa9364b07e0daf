// Package bootstrap assembles the link schema and the module container at startup.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dealflow/backend/internal/application/activity"
	"github.com/dealflow/backend/internal/application/analytics"
	"github.com/dealflow/backend/internal/application/emaildomain"
	"github.com/dealflow/backend/internal/application/links"
	"github.com/dealflow/backend/internal/application/notification"
	"github.com/dealflow/backend/internal/application/usage"
	"github.com/dealflow/backend/internal/domain/link"
	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/dealflow/backend/internal/infrastructure/config"
	"github.com/dealflow/backend/internal/infrastructure/container"
	"github.com/dealflow/backend/internal/infrastructure/dnstxt"
	"github.com/dealflow/backend/internal/infrastructure/persistence"
	"github.com/dealflow/backend/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// Container keys of the infrastructure services
const (
	DatabaseKey           = "database"
	DomainVerificationKey = "domainVerificationScheduler"
)

// Options configures Boot
type Options struct {
	Config   *config.Config
	Logger   *zap.Logger
	Database *persistence.Database

	// TXT overrides the DNS resolver used for domain verification
	TXT emaildomain.TXTLookup

	// Extra registrations are added after the built-in modules
	Extra []container.Registration
}

// App is a booted application
type App struct {
	Schema    *link.Schema
	Entities  *link.EntityRegistry
	Container *container.Container
	logger    *zap.Logger
}

// Boot builds the link schema, registers every module and starts the container.
// Any error is fatal to startup; nothing is left running when Boot fails.
func Boot(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil || opts.Database == nil {
		return nil, fmt.Errorf("%w: config and database are required", shared.ErrInvalidInput)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	schema, entities, err := links.Schema()
	if err != nil {
		log.Error("Link schema is invalid", zap.Error(err))
		return nil, fmt.Errorf("failed to build link schema: %w", err)
	}
	fingerprint, err := schema.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint link schema: %w", err)
	}
	log.Info("Link schema built",
		zap.Int("entities", entities.Count()),
		zap.Int("relations", schema.Len()),
		zap.String("fingerprint", fingerprint),
	)

	txt := opts.TXT
	if txt == nil {
		txt = dnstxt.NewTXTResolver(opts.Config.EmailDomain.Resolver, opts.Config.EmailDomain.LookupTimeout)
	}

	c := container.New(log)
	if err := c.RegisterAll(Registrations(opts.Config, opts.Database, entities, txt, log)...); err != nil {
		return nil, err
	}
	if opts.Config.EmailDomain.Recheck {
		if err := c.Register(DomainVerification(opts.Config.EmailDomain, log)); err != nil {
			return nil, err
		}
	}
	if err := c.RegisterAll(opts.Extra...); err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}

	log.Info("Application booted", zap.Strings("modules", c.Keys()))
	return &App{
		Schema:    schema,
		Entities:  entities,
		Container: c,
		logger:    log,
	}, nil
}

// Registrations returns the database and the five business modules in boot order
func Registrations(cfg *config.Config, db *persistence.Database, entities link.Resolver, txt emaildomain.TXTLookup, log *zap.Logger) []container.Registration {
	return []container.Registration{
		container.Instance(DatabaseKey, db),
		activity.Module(persistence.NewGormActivityRepository(db.DB), entities, log),
		usage.Module(persistence.NewGormUsageTrackerRepository(db), cfg.Usage.DefaultQuota, log),
		analytics.Module(log),
		emaildomain.Module(persistence.NewGormEmailDomainRepository(db.DB), txt, cfg.EmailDomain.VerificationPrefix, log),
		notification.Module(persistence.NewGormNotificationRepository(db.DB), entities, log),
	}
}

// DomainVerification registers the scheduler that re-checks pending sender domains.
// It depends on the email domain module.
func DomainVerification(cfg config.EmailDomainConfig, log *zap.Logger) container.Registration {
	return container.Registration{
		Key: DomainVerificationKey,
		Factory: func(r container.Resolver) (any, error) {
			domains, err := container.ResolveAs[*emaildomain.Service](r, emaildomain.ModuleKey)
			if err != nil {
				return nil, err
			}
			sc := scheduler.DefaultVerificationConfig()
			sc.Interval = cfg.RecheckInterval
			sc.Workers = cfg.RecheckWorkers
			sc.BatchSize = cfg.RecheckBatchSize
			if cfg.LookupTimeout > 0 {
				sc.JobTimeout = 2 * cfg.LookupTimeout
			}
			return scheduler.NewVerificationScheduler(sc, domains, log.Named("scheduler"))
		},
	}
}

// Shutdown stops every module in reverse start order
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.Container.Shutdown(ctx); err != nil {
		a.logger.Error("Shutdown finished with errors", zap.Error(err))
		return err
	}
	a.logger.Info("Application stopped")
	return nil
}
