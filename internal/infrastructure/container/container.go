// Package container is the dependency-injection context business modules are
// registered into. One Container is built at startup, passed by reference to
// whatever needs services, and shut down explicitly.
package container

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Registration errors
var (
	ErrDuplicateKey       = shared.NewDomainError("DUPLICATE_MODULE_KEY", "Module key is already registered")
	ErrCircularDependency = shared.NewDomainError("CIRCULAR_DEPENDENCY", "Module dependencies form a cycle")
)

// Resolver resolves singleton services by key
type Resolver interface {
	Resolve(key string) (any, error)
}

// Factory builds the service for a registration. Dependencies must be
// resolved through r, never through the container directly.
type Factory func(r Resolver) (any, error)

// Registration associates a stable key with a service factory
type Registration struct {
	Key     string
	Factory Factory
}

// Instance wraps an already constructed service
func Instance(key string, service any) Registration {
	return Registration{
		Key: key,
		Factory: func(Resolver) (any, error) {
			return service, nil
		},
	}
}

// Starter is implemented by services that need work at boot
type Starter interface {
	Start(ctx context.Context) error
}

// Stopper is implemented by services that release resources at shutdown
type Stopper interface {
	Stop(ctx context.Context) error
}

// Container owns one singleton per registered key
type Container struct {
	mu        sync.Mutex
	logger    *zap.Logger
	regs      map[string]Registration
	order     []string
	instances map[string]any
	built     []string
	started   []string
	running   bool
}

// New creates an empty container
func New(logger *zap.Logger) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Container{
		logger:    logger.Named("container"),
		regs:      make(map[string]Registration),
		instances: make(map[string]any),
	}
}

// Register adds a registration. Keys are unique regardless of the implementation behind them.
func (c *Container) Register(reg Registration) error {
	if reg.Key == "" {
		return fmt.Errorf("%w: module key cannot be empty", shared.ErrInvalidInput)
	}
	if reg.Factory == nil {
		return fmt.Errorf("%w: module '%s' has no factory", shared.ErrInvalidInput, reg.Key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("%w: cannot register '%s' after start", shared.ErrInvalidState, reg.Key)
	}
	if _, exists := c.regs[reg.Key]; exists {
		return fmt.Errorf("%w: %w: '%s'", ErrDuplicateKey, shared.ErrAlreadyExists, reg.Key)
	}

	c.regs[reg.Key] = reg
	c.order = append(c.order, reg.Key)
	c.logger.Debug("Module registered", zap.String("key", reg.Key))
	return nil
}

// RegisterAll registers each registration in order and stops at the first error
func (c *Container) RegisterAll(regs ...Registration) error {
	for _, reg := range regs {
		if err := c.Register(reg); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns the singleton for key, constructing it on first use
func (c *Container) Resolve(key string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolve(key, nil)
}

func (c *Container) resolve(key string, path []string) (any, error) {
	if instance, ok := c.instances[key]; ok {
		return instance, nil
	}
	reg, ok := c.regs[key]
	if !ok {
		return nil, fmt.Errorf("%w: module '%s'", shared.ErrNotFound, key)
	}
	if slices.Contains(path, key) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrCircularDependency, strings.Join(path, " -> "), key)
	}

	next := append(slices.Clone(path), key)
	instance, err := reg.Factory(&chain{c: c, path: next})
	if err != nil {
		return nil, fmt.Errorf("failed to build module '%s': %w", key, err)
	}
	if instance == nil {
		return nil, fmt.Errorf("%w: module '%s' factory returned nil", shared.ErrInvalidState, key)
	}

	c.instances[key] = instance
	c.built = append(c.built, key)
	c.logger.Debug("Module instantiated", zap.String("key", key))
	return instance, nil
}

// chain resolves dependencies on behalf of a factory while the container lock is held
type chain struct {
	c    *Container
	path []string
}

func (ch *chain) Resolve(key string) (any, error) {
	return ch.c.resolve(key, ch.path)
}

// ResolveAs resolves key and asserts the service type
func ResolveAs[T any](r Resolver, key string) (T, error) {
	var zero T
	instance, err := r.Resolve(key)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: module '%s' is %T, not %T", shared.ErrInvalidState, key, instance, zero)
	}
	return typed, nil
}

// Start instantiates every registration in registration order and starts
// the services in construction order. When a service fails to start, the
// ones already started are stopped again and the error is returned.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("%w: container already started", shared.ErrInvalidState)
	}

	for _, key := range c.order {
		if _, err := c.resolve(key, nil); err != nil {
			return err
		}
	}

	for _, key := range c.built {
		starter, ok := c.instances[key].(Starter)
		if !ok {
			continue
		}
		if err := starter.Start(ctx); err != nil {
			startErr := fmt.Errorf("failed to start module '%s': %w", key, err)
			if stopErr := c.stopStarted(ctx); stopErr != nil {
				return multierror.Append(startErr, stopErr)
			}
			return startErr
		}
		c.started = append(c.started, key)
	}

	c.running = true
	c.logger.Info("Modules started", zap.Strings("keys", c.built))
	return nil
}

// Shutdown stops started services in reverse order. Every stop is attempted
// and the errors are returned together. Calling Shutdown twice is a no-op.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	c.running = false

	err := c.stopStarted(ctx)
	c.logger.Info("Modules stopped")
	return err
}

func (c *Container) stopStarted(ctx context.Context) error {
	var result *multierror.Error
	for i := len(c.started) - 1; i >= 0; i-- {
		key := c.started[i]
		stopper, ok := c.instances[key].(Stopper)
		if !ok {
			continue
		}
		if err := stopper.Stop(ctx); err != nil {
			c.logger.Error("Failed to stop module", zap.String("key", key), zap.Error(err))
			result = multierror.Append(result, fmt.Errorf("failed to stop module '%s': %w", key, err))
		}
	}
	c.started = nil
	return result.ErrorOrNil()
}

// Keys returns the registered keys in registration order
func (c *Container) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.order)
}

// Has reports whether key is registered
func (c *Container) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.regs[key]
	return ok
}

// Count returns the number of registrations
func (c *Container) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Running reports whether Start succeeded and Shutdown has not been called
func (c *Container) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
