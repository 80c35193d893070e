package agents

import (
	"strings"
	"time"

	"github.com/angelmondragon/listdist/pkg/db/models"
	"github.com/google/uuid"
)

// AgentDTO exposes agent data without the password hash.
type AgentDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CountryCode string    `json:"country_code"`
	Mobile      string    `json:"mobile"`
	Active      bool      `json:"active"`
	ItemCount   *int64    `json:"item_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateAgentInput holds creation-time data for a new agent.
type CreateAgentInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	CountryCode string `json:"country_code" validate:"required,max=6"`
	Mobile      string `json:"mobile" validate:"required,max=20"`
	Password    string `json:"password" validate:"required,min=6"`
	Active      *bool  `json:"active,omitempty"`
}

// UpdateAgentInput carries a partial update; nil fields are left untouched.
type UpdateAgentInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	CountryCode *string `json:"country_code,omitempty" validate:"omitempty,max=6"`
	Mobile      *string `json:"mobile,omitempty" validate:"omitempty,max=20"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	Active      *bool   `json:"active,omitempty"`
}

// FromModel maps the persisted agent into a DTO.
func FromModel(m *models.Agent) *AgentDTO {
	if m == nil {
		return nil
	}
	return &AgentDTO{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		CountryCode: m.CountryCode,
		Mobile:      m.Mobile,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// NormalizeEmail lowercases and trims an email for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
