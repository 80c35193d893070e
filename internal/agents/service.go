package agents

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/listdist/pkg/config"
	"github.com/angelmondragon/listdist/pkg/db"
	"github.com/angelmondragon/listdist/pkg/db/models"
	pkgerrors "github.com/angelmondragon/listdist/pkg/errors"
	"github.com/angelmondragon/listdist/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type agentRepository interface {
	Create(ctx context.Context, agent *models.Agent) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	FindByEmail(ctx context.Context, email string) (*models.Agent, error)
	List(ctx context.Context) ([]models.Agent, error)
	Update(ctx context.Context, agent *models.Agent) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// ItemCounter reports how many line items each agent owns.
type ItemCounter interface {
	CountForAgent(ctx context.Context, agentID uuid.UUID) (int64, error)
}

// ServiceParams groups dependencies for the agent directory service.
type ServiceParams struct {
	Repo     agentRepository
	Items    ItemCounter
	Password config.PasswordConfig
	Now      func() time.Time
}

// Service exposes the agent directory.
type Service interface {
	List(ctx context.Context) ([]AgentDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*AgentDTO, error)
	Create(ctx context.Context, input CreateAgentInput) (*AgentDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateAgentInput) (*AgentDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     agentRepository
	items    ItemCounter
	password config.PasswordConfig
	now      func() time.Time
}

// NewService builds an agent service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent repo is required")
	}
	if params.Items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item counter is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		items:    params.Items,
		password: params.Password,
		now:      now,
	}, nil
}

func (s *service) List(ctx context.Context) ([]AgentDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agents")
	}
	out := make([]AgentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// Get returns the agent with the number of line items it currently owns.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*AgentDTO, error) {
	agent, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.items.CountForAgent(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count agent items")
	}
	dto := FromModel(agent)
	dto.ItemCount = &count
	return dto, nil
}

func (s *service) Create(ctx context.Context, input CreateAgentInput) (*AgentDTO, error) {
	email := NormalizeEmail(input.Email)
	if err := s.ensureEmailAvailable(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	now := s.now().UTC()
	agent := &models.Agent{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		CountryCode:  strings.TrimSpace(input.CountryCode),
		Mobile:       strings.TrimSpace(input.Mobile),
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Active != nil {
		agent.Active = *input.Active
	}

	if err := s.repo.Create(ctx, agent); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "agent with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create agent")
	}
	return FromModel(agent), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateAgentInput) (*AgentDTO, error) {
	agent, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		agent.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := NormalizeEmail(*input.Email)
		if email != agent.Email {
			if err := s.ensureEmailAvailable(ctx, email, agent.ID); err != nil {
				return nil, err
			}
			agent.Email = email
		}
	}
	if input.CountryCode != nil {
		agent.CountryCode = strings.TrimSpace(*input.CountryCode)
	}
	if input.Mobile != nil {
		agent.Mobile = strings.TrimSpace(*input.Mobile)
	}
	if input.Password != nil {
		hash, err := security.HashPassword(*input.Password, s.password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
		}
		agent.PasswordHash = hash
	}
	if input.Active != nil {
		agent.Active = *input.Active
	}
	agent.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, agent); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "agent with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update agent")
	}
	return FromModel(agent), nil
}

// Delete removes an agent that owns no line items.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	count, err := s.items.CountForAgent(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count agent items")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "agent still owns list items, reassign them first").
			WithDetails(map[string]any{"agent_id": id, "item_count": count})
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "agent still owns list items, reassign them first").
				WithDetails(map[string]any{"agent_id": id})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete agent")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id is required")
	}
	agent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "agent not found").
				WithDetails(map[string]any{"agent_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}
	return agent, nil
}

func (s *service) ensureEmailAvailable(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup agent email")
	case existing.ID != self:
		return pkgerrors.New(pkgerrors.CodeConflict, "agent with this email already exists")
	}
	return nil
}
