package lists

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/listdist/pkg/db"
	"github.com/angelmondragon/listdist/pkg/db/dbtest"
	"github.com/angelmondragon/listdist/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedBatch(t *testing.T, client *db.Client, repo *Repository, items []models.ListItem) {
	t.Helper()
	require.NoError(t, client.WithTx(context.Background(), func(tx *gorm.DB) error {
		n, err := repo.BulkInsertWithTx(tx, items)
		if err == nil && n != len(items) {
			t.Fatalf("expected %d inserted, got %d", len(items), n)
		}
		return err
	}))
}

func TestRepositoryListBatchesNewestFirst(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()
	base := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	agent := insertAgent(t, client.DB(), "ana", true, base)

	seedBatch(t, client, repo, makeItems("100", agent.ID, 2, base))
	seedBatch(t, client, repo, makeItems("300", agent.ID, 1, base.Add(2*time.Hour)))
	seedBatch(t, client, repo, makeItems("200", agent.ID, 3, base.Add(time.Hour)))

	first, err := repo.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, []string{"300", "200", "100"}, []string{first[0].Batch, first[1].Batch, first[2].Batch})
	assert.Equal(t, int64(3), first[1].Count)
	assert.True(t, first[1].CreatedAt.Equal(base.Add(time.Hour)), "got %s", first[1].CreatedAt)

	second, err := repo.ListBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second, "listing must be stable without writes")
}

func TestRepositoryListBatchesTieBreaksOnBatchID(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	at := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	agent := insertAgent(t, client.DB(), "ana", true, at)

	seedBatch(t, client, repo, makeItems("a", agent.ID, 1, at))
	seedBatch(t, client, repo, makeItems("b", agent.ID, 1, at))

	batches, err := repo.ListBatches(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "b", batches[0].Batch)
	assert.Equal(t, "a", batches[1].Batch)
}

func TestRepositoryListByBatchJoinsAgents(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	at := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	ana := insertAgent(t, client.DB(), "ana", true, at)
	ben := insertAgent(t, client.DB(), "ben", true, at.Add(time.Second))

	items := append(makeItems("x", ana.ID, 2, at), makeItems("x", ben.ID, 1, at)...)
	items[2].Position = 2
	seedBatch(t, client, repo, items)
	seedBatch(t, client, repo, makeItems("other", ana.ID, 1, at))

	got, err := repo.ListByBatch(context.Background(), "x")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, item := range got {
		assert.Equal(t, items[i].ID, item.ID)
		assert.Equal(t, i, item.Position)
	}
	assert.Equal(t, "ana", got[0].Agent.Name)
	assert.Equal(t, "ben@example.com", got[2].Agent.Email)
	assert.Equal(t, ben.ID, got[2].Agent.ID)
	assert.True(t, got[0].CreatedAt.Equal(at))

	none, err := repo.ListByBatch(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepositoryListByAgentNewestFirst(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	at := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	ana := insertAgent(t, client.DB(), "ana", true, at)
	ben := insertAgent(t, client.DB(), "ben", true, at)

	seedBatch(t, client, repo, makeItems("old", ana.ID, 2, at))
	seedBatch(t, client, repo, makeItems("new", ana.ID, 1, at.Add(time.Hour)))
	seedBatch(t, client, repo, makeItems("new", ben.ID, 1, at.Add(time.Hour)))

	items, err := repo.ListByAgent(context.Background(), ana.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "new", items[0].UploadBatch)
	assert.Equal(t, "old-contact-0", items[1].FirstName)
	assert.Equal(t, "old-contact-1", items[2].FirstName)

	count, err := repo.CountForAgent(context.Background(), ben.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryDeleteAndReassign(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()
	at := time.Now().UTC()
	ana := insertAgent(t, client.DB(), "ana", true, at)
	ben := insertAgent(t, client.DB(), "ben", true, at)

	items := makeItems("x", ana.ID, 3, at)
	seedBatch(t, client, repo, items)

	affected, err := repo.UpdateAgent(ctx, items[1].ID, ben.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	moved, err := repo.FindByID(ctx, items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, ben.ID, moved.AgentID)

	affected, err = repo.UpdateAgent(ctx, uuid.New(), ben.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)

	deleted, err := repo.DeleteBatch(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	_, err = repo.FindByID(ctx, items[0].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryBulkInsertRollsBackOnFailure(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	at := time.Now().UTC()
	agent := insertAgent(t, client.DB(), "ana", true, at)

	items := makeItems("dup", agent.ID, 3, at)
	items[2].ID = items[0].ID

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		_, err := repo.BulkInsertWithTx(tx, items)
		return err
	})
	require.Error(t, err)

	batches, err := repo.ListBatches(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batches, "a failed insert must not leave a partial batch")

	_, err = repo.BulkInsertWithTx(nil, items)
	assert.ErrorIs(t, err, gorm.ErrInvalidTransaction)
}
