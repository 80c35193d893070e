package agents

import (
	"context"
	"fmt"

	"github.com/angelmondragon/listdist/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// directoryOrder pins the directory sort key so pool selection is reproducible.
const directoryOrder = "created_at ASC, id ASC"

// Repository handles agent persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to agent operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new agent row.
func (r *Repository) Create(ctx context.Context, agent *models.Agent) error {
	if agent == nil {
		return fmt.Errorf("agent is required")
	}
	return r.db.WithContext(ctx).Create(agent).Error
}

// FindByID loads an agent by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// FindByEmail loads an agent by its normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// List returns every agent in directory order.
func (r *Repository) List(ctx context.Context) ([]models.Agent, error) {
	var agents []models.Agent
	if err := r.db.WithContext(ctx).Order(directoryOrder).Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

// ListActive returns up to limit active agents in directory order.
func (r *Repository) ListActive(ctx context.Context, limit int) ([]models.Agent, error) {
	var agents []models.Agent
	query := r.db.WithContext(ctx).Where("active = ?", true).Order(directoryOrder)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

// Update saves the provided agent.
func (r *Repository) Update(ctx context.Context, agent *models.Agent) error {
	if agent == nil {
		return fmt.Errorf("agent is required")
	}
	return r.db.WithContext(ctx).Save(agent).Error
}

// Delete removes the agent row and reports how many rows were affected.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Agent{})
	return res.RowsAffected, res.Error
}
