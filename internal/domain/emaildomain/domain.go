// Package emaildomain models sender domains a team verifies before sending email.
package emaildomain

import (
	"context"
	"strings"
	"time"

	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status of a sender domain
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
)

// TokenPrefix precedes the token in the TXT record value
const TokenPrefix = "dealflow-verification="

// Domain is a sender domain owned by a team
type Domain struct {
	shared.BaseEntity
	TeamID     uuid.UUID
	Name       string
	Token      string
	Status     Status
	VerifiedAt *time.Time
	CheckedAt  *time.Time
}

// NewDomain creates a pending domain with a fresh verification token.
// The name must already be validated; it is stored lower-cased without a trailing dot.
func NewDomain(teamID uuid.UUID, name string) (*Domain, error) {
	if teamID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TEAM", "Team ID cannot be empty")
	}
	name = Normalize(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_DOMAIN", "Domain name cannot be empty")
	}
	return &Domain{
		BaseEntity: shared.NewBaseEntity(),
		TeamID:     teamID,
		Name:       name,
		Token:      uuid.NewString(),
		Status:     StatusPending,
	}, nil
}

// Normalize lower-cases a domain name and strips the trailing dot
func Normalize(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
}

// RecordValue is the TXT record value that proves ownership
func (d *Domain) RecordValue() string {
	return TokenPrefix + d.Token
}

// IsVerified reports whether ownership was proven
func (d *Domain) IsVerified() bool {
	return d.Status == StatusVerified
}

// Check marks the domain verified when one of records carries the token.
// A verified domain stays verified.
func (d *Domain) Check(records []string, now time.Time) bool {
	at := now.UTC()
	d.CheckedAt = &at
	d.Touch(at)
	if d.IsVerified() {
		return true
	}
	want := d.RecordValue()
	for _, r := range records {
		if strings.TrimSpace(r) == want {
			d.Status = StatusVerified
			d.VerifiedAt = &at
			return true
		}
	}
	return false
}

// Repository persists sender domains
type Repository interface {
	Save(ctx context.Context, d *Domain) error

	// FindByID returns shared.ErrNotFound when missing
	FindByID(ctx context.Context, id uuid.UUID) (*Domain, error)

	// FindByTeamAndName returns shared.ErrNotFound when missing
	FindByTeamAndName(ctx context.Context, teamID uuid.UUID, name string) (*Domain, error)

	FindByTeam(ctx context.Context, teamID uuid.UUID) ([]*Domain, error)

	// FindPending returns up to limit unverified domains, least recently checked first
	FindPending(ctx context.Context, limit int) ([]*Domain, error)
}
