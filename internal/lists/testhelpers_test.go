package lists

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/listdist/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func insertAgent(t *testing.T, conn *gorm.DB, name string, active bool, createdAt time.Time) models.Agent {
	t.Helper()
	agent := models.Agent{
		ID:           uuid.New(),
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		CountryCode:  "+1",
		Mobile:       "5550100",
		PasswordHash: "hash",
		Active:       active,
		CreatedAt:    createdAt.UTC(),
		UpdatedAt:    createdAt.UTC(),
	}
	require.NoError(t, conn.WithContext(context.Background()).Create(&agent).Error)
	return agent
}

func makeItems(batch string, agentID uuid.UUID, n int, createdAt time.Time) []models.ListItem {
	items := make([]models.ListItem, n)
	for i := range items {
		items[i] = models.ListItem{
			ID:          uuid.New(),
			FirstName:   fmt.Sprintf("%s-contact-%d", batch, i),
			Phone:       fmt.Sprintf("555-%04d", i),
			AgentID:     agentID,
			UploadBatch: batch,
			Position:    i,
			CreatedAt:   createdAt.UTC(),
		}
	}
	return items
}
