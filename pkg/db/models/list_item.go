package models

import (
	"time"

	"github.com/google/uuid"
)

// ListItem is one contact row owned by exactly one agent and one upload batch.
type ListItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName   string    `gorm:"column:first_name;not null"`
	Phone       string    `gorm:"column:phone;not null"`
	Notes       string    `gorm:"column:notes;not null"`
	AgentID     uuid.UUID `gorm:"column:agent_id;type:uuid;not null"`
	UploadBatch string    `gorm:"column:upload_batch;not null"`
	Position    int       `gorm:"column:position;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (ListItem) TableName() string { return "list_items" }
