package activity

import (
	"testing"
	"time"

	"github.com/dealflow/backend/internal/domain/link"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var deal = link.NewLinkable("deal", "deal")

func TestNewActivity(t *testing.T) {
	teamID := uuid.New()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	a, err := NewActivity(teamID, deal, "deal-1", "  Stage_Changed ", at)
	require.NoError(t, err)
	assert.Equal(t, "stage_changed", a.Action)
	assert.Equal(t, at, a.OccurredAt)
	assert.NotEqual(t, uuid.Nil, a.ID)

	actor := uuid.New()
	a.WithActor(actor).WithPayload("stage", "diligence")
	assert.Equal(t, actor, *a.ActorID)
	assert.Equal(t, "diligence", a.Payload["stage"])
}

func TestNewActivity_Invalid(t *testing.T) {
	at := time.Now()

	_, err := NewActivity(uuid.Nil, deal, "deal-1", "created", at)
	assert.Error(t, err)
	_, err = NewActivity(uuid.New(), link.Linkable{}, "deal-1", "created", at)
	assert.Error(t, err)
	_, err = NewActivity(uuid.New(), deal, "", "created", at)
	assert.Error(t, err)
	_, err = NewActivity(uuid.New(), deal, "deal-1", "   ", at)
	assert.Error(t, err)
}

func TestNewActivity_DefaultsOccurredAt(t *testing.T) {
	a, err := NewActivity(uuid.New(), deal, "deal-1", "created", time.Time{})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), a.OccurredAt, time.Minute)
}
