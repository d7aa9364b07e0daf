package notification

import (
	"testing"
	"time"

	"github.com/dealflow/backend/internal/domain/link"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	n, err := New(uuid.New(), uuid.New(), "Deal moved", "Acme moved to diligence")
	require.NoError(t, err)
	assert.False(t, n.IsRead())
	assert.Nil(t, n.Subject)

	n.About(link.NewLinkable("deal", "deal"), "deal-1")
	assert.Equal(t, "deal.deal", n.Subject.String())

	_, err = New(uuid.Nil, uuid.New(), "x", "")
	assert.Error(t, err)
	_, err = New(uuid.New(), uuid.New(), "", "")
	assert.Error(t, err)
}

func TestMarkRead_KeepsFirstTimestamp(t *testing.T) {
	n, err := New(uuid.New(), uuid.New(), "Deal moved", "")
	require.NoError(t, err)

	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n.MarkRead(first)
	n.MarkRead(first.Add(time.Hour))

	assert.True(t, n.IsRead())
	assert.Equal(t, first, *n.ReadAt)
}
