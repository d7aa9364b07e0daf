package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dealflow/backend/internal/domain/emaildomain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeVerifier struct {
	mu       sync.Mutex
	domains  map[uuid.UUID]*emaildomain.Domain
	records  map[string][]string
	failing  map[string]bool
	verifies int
}

func newFakeVerifier(t *testing.T, names ...string) *fakeVerifier {
	t.Helper()
	f := &fakeVerifier{
		domains: make(map[uuid.UUID]*emaildomain.Domain),
		records: make(map[string][]string),
		failing: make(map[string]bool),
	}
	teamID := uuid.New()
	for _, name := range names {
		d, err := emaildomain.NewDomain(teamID, name)
		require.NoError(t, err)
		f.domains[d.ID] = d
	}
	return f
}

func (f *fakeVerifier) publish(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.domains {
		if d.Name == name {
			f.records[name] = []string{d.RecordValue()}
		}
	}
}

func (f *fakeVerifier) Pending(_ context.Context, limit int) ([]*emaildomain.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*emaildomain.Domain
	for _, d := range f.domains {
		if !d.IsVerified() && len(out) < limit {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeVerifier) Verify(_ context.Context, id uuid.UUID) (*emaildomain.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifies++
	d := f.domains[id]
	if f.failing[d.Name] {
		return nil, errors.New("SERVFAIL")
	}
	d.Check(f.records[d.Name], time.Now())
	return d, nil
}

func (f *fakeVerifier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifies
}

func testConfig(interval time.Duration) VerificationConfig {
	cfg := DefaultVerificationConfig()
	cfg.Interval = interval
	cfg.Workers = 3
	return cfg
}

func TestNewVerificationScheduler_InvalidConfig(t *testing.T) {
	cfg := DefaultVerificationConfig()
	cfg.Workers = 0
	_, err := NewVerificationScheduler(cfg, newFakeVerifier(t), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestVerificationScheduler_Sweep(t *testing.T) {
	verifier := newFakeVerifier(t, "a.com", "b.com", "c.com", "d.com")
	verifier.publish("a.com")
	verifier.publish("c.com")
	verifier.failing["d.com"] = true

	s, err := NewVerificationScheduler(testConfig(time.Hour), verifier, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	result, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Checked: 4, Verified: 2, Failed: 1}, result)

	result, err = s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Checked: 2, Verified: 0, Failed: 1}, result)
}

func TestVerificationScheduler_SweepRequiresStart(t *testing.T) {
	s, err := NewVerificationScheduler(testConfig(time.Hour), newFakeVerifier(t), nil)
	require.NoError(t, err)

	_, err = s.Sweep(context.Background())
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestVerificationScheduler_RunsOnInterval(t *testing.T) {
	verifier := newFakeVerifier(t, "a.com")

	s, err := NewVerificationScheduler(testConfig(10*time.Millisecond), verifier, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool { return verifier.calls() >= 2 }, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))

	_, err = s.Sweep(context.Background())
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestVerificationScheduler_OutlivesStartContext(t *testing.T) {
	verifier := newFakeVerifier(t, "a.com")
	s, err := NewVerificationScheduler(testConfig(time.Hour), verifier, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	result, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Checked)
	require.NoError(t, s.Stop(context.Background()))
}
