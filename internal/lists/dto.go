package lists

import (
	"time"

	"github.com/angelmondragon/listdist/internal/distribution"
	"github.com/angelmondragon/listdist/pkg/db/models"
	"github.com/google/uuid"
)

// BatchSummary is one row of the batch listing.
type BatchSummary struct {
	Batch     string    `json:"batch"`
	CreatedAt time.Time `json:"created_at"`
	Count     int64     `json:"count"`
}

// BatchItem is a line item with its owning agent resolved.
type BatchItem struct {
	ID        uuid.UUID                  `json:"id"`
	FirstName string                     `json:"first_name"`
	Phone     string                     `json:"phone"`
	Notes     string                     `json:"notes"`
	Position  int                        `json:"position"`
	CreatedAt time.Time                  `json:"created_at"`
	Agent     distribution.AgentSnapshot `json:"agent"`
}

// ListItemDTO exposes a line item without the agent join.
type ListItemDTO struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	Phone       string    `json:"phone"`
	Notes       string    `json:"notes"`
	AgentID     uuid.UUID `json:"agent_id"`
	UploadBatch string    `json:"upload_batch"`
	CreatedAt   time.Time `json:"created_at"`
}

// DistributionEntry summarises one agent's share of an upload.
type DistributionEntry struct {
	Agent     distribution.AgentSnapshot `json:"agent"`
	ItemCount int                        `json:"item_count"`
}

// UploadResult is returned after a successful upload.
type UploadResult struct {
	Count        int                 `json:"count"`
	Batch        string              `json:"batch"`
	Distribution []DistributionEntry `json:"distribution"`
}

// ReassignResult echoes the moved item and its new owner.
type ReassignResult struct {
	ItemID uuid.UUID                  `json:"item_id"`
	Agent  distribution.AgentSnapshot `json:"agent"`
}

// DeleteResult reports how many items a batch delete removed.
type DeleteResult struct {
	Batch        string `json:"batch"`
	DeletedCount int64  `json:"deleted_count"`
}

// FromModel maps the persisted item into a DTO.
func FromModel(m *models.ListItem) ListItemDTO {
	return ListItemDTO{
		ID:          m.ID,
		FirstName:   m.FirstName,
		Phone:       m.Phone,
		Notes:       m.Notes,
		AgentID:     m.AgentID,
		UploadBatch: m.UploadBatch,
		CreatedAt:   m.CreatedAt,
	}
}

func distributionOf(plan distribution.Plan) []DistributionEntry {
	entries := make([]DistributionEntry, 0, len(plan.Allocations))
	for _, alloc := range plan.Allocations {
		entries = append(entries, DistributionEntry{Agent: alloc.Agent, ItemCount: alloc.Quota})
	}
	return entries
}
