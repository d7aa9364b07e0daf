// Package usage models per-team usage tracking. A team has exactly one
// tracker per billing period; the billing period is the UTC calendar month.
package usage

import (
	"context"
	"sort"
	"time"

	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Metric identifies a tracked quantity
type Metric string

const (
	MetricDealsCreated Metric = "deals_created"
	MetricEmailsSent   Metric = "emails_sent"
	MetricContacts     Metric = "contacts_imported"
	MetricFilesStored  Metric = "files_stored"
)

// IsValid returns true for known metrics
func (m Metric) IsValid() bool {
	switch m {
	case MetricDealsCreated, MetricEmailsSent, MetricContacts, MetricFilesStored:
		return true
	}
	return false
}

// BillingPeriod returns the [start, end) bounds of the period containing at
func BillingPeriod(at time.Time) (time.Time, time.Time) {
	at = at.UTC()
	start := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Tracker accumulates a team's usage over one billing period
type Tracker struct {
	shared.BaseEntity
	TeamID      uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
	Counts      map[Metric]int64
}

// NewTracker creates an empty tracker for the period containing at
func NewTracker(teamID uuid.UUID, at time.Time) (*Tracker, error) {
	if teamID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TEAM", "Team ID cannot be empty")
	}
	start, end := BillingPeriod(at)
	return &Tracker{
		BaseEntity:  shared.NewBaseEntity(),
		TeamID:      teamID,
		PeriodStart: start,
		PeriodEnd:   end,
		Counts:      make(map[Metric]int64),
	}, nil
}

// ValidateIncrement checks that qty units of metric can be recorded
func ValidateIncrement(metric Metric, qty int64) error {
	if !metric.IsValid() {
		return shared.NewDomainError("INVALID_METRIC", "Unknown usage metric: "+string(metric))
	}
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return nil
}

// Add records qty units of metric
func (t *Tracker) Add(metric Metric, qty int64) error {
	if err := ValidateIncrement(metric, qty); err != nil {
		return err
	}
	if t.Counts == nil {
		t.Counts = make(map[Metric]int64)
	}
	t.Counts[metric] += qty
	t.Touch(time.Now().UTC())
	return nil
}

// Count returns the recorded quantity of metric
func (t *Tracker) Count(metric Metric) int64 {
	return t.Counts[metric]
}

// Total returns the sum over all metrics
func (t *Tracker) Total() int64 {
	var total int64
	for _, n := range t.Counts {
		total += n
	}
	return total
}

// Metrics returns the recorded metrics in lexical order
func (t *Tracker) Metrics() []Metric {
	out := make([]Metric, 0, len(t.Counts))
	for m := range t.Counts {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Covers reports whether at falls inside the tracker's billing period
func (t *Tracker) Covers(at time.Time) bool {
	return !at.Before(t.PeriodStart) && at.Before(t.PeriodEnd)
}

// TrackerRepository persists trackers
type TrackerRepository interface {
	// FindByTeamAndPeriod returns shared.ErrNotFound when the team has no tracker for the period
	FindByTeamAndPeriod(ctx context.Context, teamID uuid.UUID, periodStart time.Time) (*Tracker, error)

	// Save inserts or updates a tracker
	Save(ctx context.Context, tracker *Tracker) error

	// Increment adds qty units of metric to the tracker of seed's team and
	// period, inserting seed first when the period has none. Concurrent
	// increments of the same tracker are serialized.
	Increment(ctx context.Context, seed *Tracker, metric Metric, qty int64) (*Tracker, error)

	// FindByTeam returns every tracker of a team, newest period first
	FindByTeam(ctx context.Context, teamID uuid.UUID) ([]*Tracker, error)
}
