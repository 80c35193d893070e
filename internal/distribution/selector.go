package distribution

import (
	"context"
	"errors"

	"github.com/angelmondragon/listdist/pkg/db/models"
	pkgerrors "github.com/angelmondragon/listdist/pkg/errors"
)

// MaxPoolSize caps how many agents share a single upload.
const MaxPoolSize = 5

// ErrNoEligibleAgents is returned when the directory has no active agents.
var ErrNoEligibleAgents = errors.New("no active agents")

// AgentSource returns active agents ordered by (created_at, id).
type AgentSource interface {
	ListActive(ctx context.Context, limit int) ([]models.Agent, error)
}

// Selector picks the agent pool for an upload.
type Selector struct {
	source AgentSource
}

// NewSelector builds a selector over the agent directory.
func NewSelector(source AgentSource) (*Selector, error) {
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent source is required")
	}
	return &Selector{source: source}, nil
}

// Select returns at most MaxPoolSize active agents in directory order.
func (s *Selector) Select(ctx context.Context) ([]models.Agent, error) {
	agents, err := s.source.ListActive(ctx, MaxPoolSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load active agents")
	}
	if len(agents) == 0 {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrNoEligibleAgents, "no active agents found, please create agents first")
	}
	if len(agents) > MaxPoolSize {
		agents = agents[:MaxPoolSize]
	}
	return agents, nil
}
