package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/dealflow/backend/internal/domain/emaildomain"
	"github.com/dealflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailDomainRepository(t *testing.T) {
	repo := NewGormEmailDomainRepository(setupTestDB(t))
	ctx := context.Background()
	teamID := uuid.New()

	acme, err := emaildomain.NewDomain(teamID, "acme.com")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, acme))
	beta, err := emaildomain.NewDomain(teamID, "beta.io")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, beta))

	found, err := repo.FindByTeamAndName(ctx, teamID, "acme.com")
	require.NoError(t, err)
	assert.Equal(t, acme.Token, found.Token)
	assert.Equal(t, emaildomain.StatusPending, found.Status)

	found.Check([]string{found.RecordValue()}, time.Now())
	require.NoError(t, repo.Save(ctx, found))

	byID, err := repo.FindByID(ctx, acme.ID)
	require.NoError(t, err)
	assert.True(t, byID.IsVerified())
	assert.NotNil(t, byID.VerifiedAt)

	all, err := repo.FindByTeam(ctx, teamID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "acme.com", all[0].Name)

	_, err = repo.FindByTeamAndName(ctx, uuid.New(), "acme.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	dup, err := emaildomain.NewDomain(teamID, "ACME.com")
	require.NoError(t, err)
	assert.Error(t, repo.Save(ctx, dup))
}

func TestEmailDomainRepository_FindPending(t *testing.T) {
	repo := NewGormEmailDomainRepository(setupTestDB(t))
	ctx := context.Background()
	teamID := uuid.New()
	now := time.Now().UTC()

	checked, err := emaildomain.NewDomain(teamID, "checked.com")
	require.NoError(t, err)
	checked.Check(nil, now)
	require.NoError(t, repo.Save(ctx, checked))

	fresh, err := emaildomain.NewDomain(teamID, "fresh.com")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, fresh))

	done, err := emaildomain.NewDomain(teamID, "done.com")
	require.NoError(t, err)
	done.Check([]string{done.RecordValue()}, now)
	require.NoError(t, repo.Save(ctx, done))

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "fresh.com", pending[0].Name)
	assert.Equal(t, "checked.com", pending[1].Name)

	limited, err := repo.FindPending(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
