package agents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/listdist/pkg/db/dbtest"
	"github.com/angelmondragon/listdist/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedAgent(t *testing.T, repo *Repository, name string, active bool, createdAt time.Time) models.Agent {
	t.Helper()
	agent := models.Agent{
		ID:           uuid.New(),
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		CountryCode:  "+1",
		Mobile:       "5550000",
		PasswordHash: "hash",
		Active:       active,
		CreatedAt:    createdAt.UTC(),
		UpdatedAt:    createdAt.UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), &agent))
	return agent
}

func TestRepositoryListActiveOrdersByCreation(t *testing.T) {
	repo := NewRepository(dbtest.Open(t).DB())
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	third := seedAgent(t, repo, "third", true, base.Add(2*time.Minute))
	first := seedAgent(t, repo, "first", true, base)
	seedAgent(t, repo, "inactive", false, base.Add(time.Minute))
	second := seedAgent(t, repo, "second", true, base.Add(time.Minute))

	active, err := repo.ListActive(ctx, 0)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID, third.ID}, []uuid.UUID{active[0].ID, active[1].ID, active[2].ID})

	limited, err := repo.ListActive(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, first.ID, limited[0].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestRepositoryFindUpdateDelete(t *testing.T) {
	repo := NewRepository(dbtest.Open(t).DB())
	ctx := context.Background()
	agent := seedAgent(t, repo, "dana", true, time.Now())

	found, err := repo.FindByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	assert.Equal(t, agent.ID, found.ID)

	found.Active = false
	require.NoError(t, repo.Update(ctx, found))

	reloaded, err := repo.FindByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Active)

	deleted, err := repo.Delete(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(ctx, agent.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
