package emaildomain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealflow/backend/internal/domain/emaildomain"
	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TXTLookup resolves the TXT records of a name. A missing name yields no records and no error.
type TXTLookup interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// Service manages the sender domains of teams
type Service struct {
	repo     emaildomain.Repository
	txt      TXTLookup
	prefix   string
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates an email domain service. Verification records are looked up at prefix.<domain>.
func NewService(repo emaildomain.Repository, txt TXTLookup, prefix string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		txt:      txt,
		prefix:   prefix,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Add registers a pending domain for the team and issues its verification token
func (s *Service) Add(ctx context.Context, teamID uuid.UUID, name string) (*emaildomain.Domain, error) {
	name = emaildomain.Normalize(name)
	if err := s.validate.Var(name, "required,fqdn"); err != nil {
		return nil, fmt.Errorf("%w: '%s' is not a valid domain name", shared.ErrInvalidInput, name)
	}

	_, err := s.repo.FindByTeamAndName(ctx, teamID, name)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: domain '%s'", shared.ErrAlreadyExists, name)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	d, err := emaildomain.NewDomain(teamID, name)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("Email domain added",
		zap.String("team_id", teamID.String()),
		zap.String("domain", d.Name),
		zap.String("record_name", s.RecordName(d)),
	)
	return d, nil
}

// RecordName is the DNS name that must carry the verification TXT record
func (s *Service) RecordName(d *emaildomain.Domain) string {
	if s.prefix == "" {
		return d.Name
	}
	return s.prefix + "." + d.Name
}

// Verify looks up the domain's TXT records and marks it verified when the token is present.
// The check time is saved either way.
func (s *Service) Verify(ctx context.Context, id uuid.UUID) (*emaildomain.Domain, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := s.txt.LookupTXT(ctx, s.RecordName(d))
	if err != nil {
		s.logger.Warn("TXT lookup failed",
			zap.String("domain", d.Name),
			zap.Error(err),
		)
		return nil, err
	}

	verified := d.Check(records, s.now())
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("Email domain checked",
		zap.String("domain", d.Name),
		zap.Bool("verified", verified),
		zap.Int("records", len(records)),
	)
	return d, nil
}

// Pending returns up to limit domains still awaiting verification
func (s *Service) Pending(ctx context.Context, limit int) ([]*emaildomain.Domain, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.FindPending(ctx, limit)
}

// List returns the team's domains
func (s *Service) List(ctx context.Context, teamID uuid.UUID) ([]*emaildomain.Domain, error) {
	return s.repo.FindByTeam(ctx, teamID)
}
