// Package scheduler runs background work owned by the business modules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dealflow/backend/internal/domain/emaildomain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DomainVerifier lists and verifies sender domains
type DomainVerifier interface {
	Pending(ctx context.Context, limit int) ([]*emaildomain.Domain, error)
	Verify(ctx context.Context, id uuid.UUID) (*emaildomain.Domain, error)
}

// VerificationConfig holds configuration for the domain verification scheduler
type VerificationConfig struct {
	// Interval between sweeps over pending domains
	Interval time.Duration

	// Workers is the number of concurrent DNS checks
	Workers int

	// BatchSize caps the domains checked per sweep
	BatchSize int

	// JobTimeout bounds a single domain check
	JobTimeout time.Duration
}

// DefaultVerificationConfig returns default configuration
func DefaultVerificationConfig() VerificationConfig {
	return VerificationConfig{
		Interval:   15 * time.Minute,
		Workers:    2,
		BatchSize:  100,
		JobTimeout: 30 * time.Second,
	}
}

func (c VerificationConfig) validate() error {
	if c.Interval <= 0 || c.Workers <= 0 || c.BatchSize <= 0 || c.JobTimeout <= 0 {
		return fmt.Errorf("%w: interval, workers, batch size and job timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// SweepResult counts the outcome of one sweep
type SweepResult struct {
	Checked  int
	Verified int
	Failed   int
}

type verificationJob struct {
	id    uuid.UUID
	name  string
	batch *sweepBatch
}

type sweepBatch struct {
	wg       sync.WaitGroup
	checked  atomic.Int64
	verified atomic.Int64
	failed   atomic.Int64
}

func (b *sweepBatch) result() SweepResult {
	return SweepResult{
		Checked:  int(b.checked.Load()),
		Verified: int(b.verified.Load()),
		Failed:   int(b.failed.Load()),
	}
}

// VerificationScheduler periodically re-checks the TXT records of pending domains
// with a fixed pool of workers
type VerificationScheduler struct {
	config   VerificationConfig
	verifier DomainVerifier
	logger   *zap.Logger

	jobs      chan verificationJob
	runCtx    context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewVerificationScheduler creates a stopped scheduler
func NewVerificationScheduler(config VerificationConfig, verifier DomainVerifier, logger *zap.Logger) (*VerificationScheduler, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationScheduler{
		config:   config,
		verifier: verifier,
		logger:   logger,
		// unbuffered: a sent job is always owned by a live worker
		jobs: make(chan verificationJob),
	}, nil
}

// Start starts the workers and the sweep loop
func (s *VerificationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}

	s.runCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.isRunning = true

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(s.runCtx, i)
	}
	s.wg.Add(1)
	go s.loop(s.runCtx)

	s.logger.Info("Domain verification scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop cancels in-flight checks and waits for the workers until ctx expires
func (s *VerificationScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Domain verification scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Domain verification scheduler stop timed out")
		return ctx.Err()
	}
}

// Sweep checks one batch of pending domains and waits for the result
func (s *VerificationScheduler) Sweep(ctx context.Context) (SweepResult, error) {
	s.mu.Lock()
	running, runCtx := s.isRunning, s.runCtx
	s.mu.Unlock()
	if !running {
		return SweepResult{}, ErrSchedulerNotRunning
	}

	domains, err := s.verifier.Pending(ctx, s.config.BatchSize)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to list pending domains: %w", err)
	}

	batch := &sweepBatch{}
	for _, d := range domains {
		batch.wg.Add(1)
		select {
		case s.jobs <- verificationJob{id: d.ID, name: d.Name, batch: batch}:
		case <-ctx.Done():
			batch.wg.Done()
			batch.wg.Wait()
			return batch.result(), ctx.Err()
		case <-runCtx.Done():
			batch.wg.Done()
			batch.wg.Wait()
			return batch.result(), ErrSchedulerNotRunning
		}
	}
	batch.wg.Wait()
	return batch.result(), nil
}

func (s *VerificationScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Verification loop stopping")
			return
		case <-ticker.C:
			result, err := s.Sweep(ctx)
			if err != nil {
				s.logger.Warn("Verification sweep incomplete", zap.Error(err))
				continue
			}
			if result.Checked > 0 {
				s.logger.Info("Verification sweep completed",
					zap.Int("checked", result.Checked),
					zap.Int("verified", result.Verified),
					zap.Int("failed", result.Failed),
				)
			}
		}
	}
}

func (s *VerificationScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.process(ctx, job, workerID)
		}
	}
}

func (s *VerificationScheduler) process(ctx context.Context, job verificationJob, workerID int) {
	defer job.batch.wg.Done()
	job.batch.checked.Add(1)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	d, err := s.verifier.Verify(jobCtx, job.id)
	if err != nil {
		job.batch.failed.Add(1)
		s.logger.Warn("Domain check failed",
			zap.Int("worker_id", workerID),
			zap.String("domain", job.name),
			zap.Error(err),
		)
		return
	}
	if d.IsVerified() {
		job.batch.verified.Add(1)
		s.logger.Info("Domain verified",
			zap.String("domain_id", d.ID.String()),
			zap.String("domain", d.Name),
		)
	}
}
