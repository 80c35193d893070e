package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent is a worker eligible to receive contact list line items.
type Agent struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	CountryCode  string    `gorm:"column:country_code;not null"`
	Mobile       string    `gorm:"column:mobile;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Active       bool      `gorm:"column:active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (Agent) TableName() string { return "agents" }
