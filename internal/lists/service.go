package lists

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/listdist/internal/distribution"
	"github.com/angelmondragon/listdist/internal/ingest"
	"github.com/angelmondragon/listdist/pkg/db/models"
	pkgerrors "github.com/angelmondragon/listdist/pkg/errors"
	"github.com/angelmondragon/listdist/pkg/logger"
	"github.com/angelmondragon/listdist/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type itemRepository interface {
	BulkInsertWithTx(tx *gorm.DB, items []models.ListItem) (int, error)
	ListBatches(ctx context.Context) ([]BatchSummary, error)
	ListByBatch(ctx context.Context, batch string) ([]BatchItem, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]models.ListItem, error)
	DeleteBatch(ctx context.Context, batch string) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ListItem, error)
	UpdateAgent(ctx context.Context, id, agentID uuid.UUID) (int64, error)
}

// AgentDirectory resolves agents by id.
type AgentDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
}

type poolSelector interface {
	Select(ctx context.Context) ([]models.Agent, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the list service.
type ServiceParams struct {
	Repo          itemRepository
	Agents        AgentDirectory
	Selector      poolSelector
	Tx            txRunner
	BatchIDs      BatchIDGenerator
	Metrics       *metrics.DistributionMetrics
	Logger        *logger.Logger
	UploadTimeout time.Duration
	Now           func() time.Time
}

// Service exposes upload, batch queries and reassignment.
type Service interface {
	Upload(ctx context.Context, fileName string, payload []byte) (*UploadResult, error)
	ListBatches(ctx context.Context) ([]BatchSummary, error)
	GetBatch(ctx context.Context, batch string) ([]BatchItem, error)
	AgentItems(ctx context.Context, agentID uuid.UUID) ([]ListItemDTO, error)
	Reassign(ctx context.Context, itemID, agentID uuid.UUID) (*ReassignResult, error)
	DeleteBatch(ctx context.Context, batch string) (*DeleteResult, error)
}

type service struct {
	repo          itemRepository
	agents        AgentDirectory
	selector      poolSelector
	tx            txRunner
	batchIDs      BatchIDGenerator
	metrics       *metrics.DistributionMetrics
	logg          *logger.Logger
	uploadTimeout time.Duration
	now           func() time.Time
}

// NewService builds a list service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list repo is required")
	}
	if params.Agents == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent directory is required")
	}
	if params.Selector == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent selector is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	batchIDs := params.BatchIDs
	if batchIDs == nil {
		batchIDs = ClockBatchIDs{Now: params.Now}
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:          params.Repo,
		agents:        params.Agents,
		selector:      params.Selector,
		tx:            params.Tx,
		batchIDs:      batchIDs,
		metrics:       params.Metrics,
		logg:          params.Logger,
		uploadTimeout: params.UploadTimeout,
		now:           now,
	}, nil
}

// Upload parses, validates, distributes and stores a contact list.
func (s *service) Upload(ctx context.Context, fileName string, payload []byte) (*UploadResult, error) {
	started := s.now()
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	format, _ := ingest.DetectFormat(fileName)
	result, err := s.upload(ctx, fileName, payload)
	s.metrics.ObserveUpload(string(format), uploadOutcome(err), s.now().Sub(started))
	return result, err
}

func (s *service) upload(ctx context.Context, fileName string, payload []byte) (*UploadResult, error) {
	table, err := ingest.Parse(fileName, payload)
	if err != nil {
		return nil, err
	}
	if err := ingest.Validate(table); err != nil {
		return nil, err
	}

	agents, err := s.selector.Select(ctx)
	if err != nil {
		return nil, err
	}

	plan := distribution.Allocate(table.Rows, agents)

	batch, err := s.batchIDs.Next(ctx)
	if err != nil {
		return nil, err
	}
	items := plan.Items(batch, s.now().UTC())

	var inserted int
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.BulkInsertWithTx(tx, items)
		inserted = n
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store list items")
	}

	s.metrics.ObserveAllocation(plan.QuotaByAgent())
	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithBatch(ctx, batch), map[string]any{
			"file":   fileName,
			"rows":   inserted,
			"agents": len(plan.Allocations),
			"quotas": quotasOf(plan),
		})
		s.logg.Info(logCtx, "list distributed")
	}

	return &UploadResult{
		Count:        inserted,
		Batch:        batch,
		Distribution: distributionOf(plan),
	}, nil
}

func (s *service) ListBatches(ctx context.Context) ([]BatchSummary, error) {
	batches, err := s.repo.ListBatches(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list batches")
	}
	return batches, nil
}

// GetBatch returns the batch's items with their agents, oldest first.
func (s *service) GetBatch(ctx context.Context, batch string) ([]BatchItem, error) {
	batch = strings.TrimSpace(batch)
	if batch == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch id is required")
	}
	items, err := s.repo.ListByBatch(ctx, batch)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load batch")
	}
	if len(items) == 0 {
		return nil, batchNotFound(batch)
	}
	return items, nil
}

// AgentItems returns the agent's items, newest first.
func (s *service) AgentItems(ctx context.Context, agentID uuid.UUID) ([]ListItemDTO, error) {
	if _, err := s.loadAgent(ctx, agentID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agent items")
	}
	out := make([]ListItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

// Reassign moves a single item to agentID. Reassigning to the current owner succeeds.
func (s *service) Reassign(ctx context.Context, itemID, agentID uuid.UUID) (*ReassignResult, error) {
	result, err := s.reassign(ctx, itemID, agentID)
	s.metrics.IncReassignment(reassignOutcome(err))
	return result, err
}

func (s *service) reassign(ctx context.Context, itemID, agentID uuid.UUID) (*ReassignResult, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if _, err := s.repo.FindByID(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, itemNotFound(itemID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load list item")
	}

	agent, err := s.loadAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	affected, err := s.repo.UpdateAgent(ctx, itemID, agent.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reassign list item")
	}
	if affected == 0 {
		return nil, itemNotFound(itemID)
	}

	return &ReassignResult{ItemID: itemID, Agent: distribution.SnapshotOf(*agent)}, nil
}

// DeleteBatch removes every item of the batch.
func (s *service) DeleteBatch(ctx context.Context, batch string) (*DeleteResult, error) {
	batch = strings.TrimSpace(batch)
	if batch == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch id is required")
	}
	deleted, err := s.repo.DeleteBatch(ctx, batch)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete batch")
	}
	if deleted == 0 {
		return nil, batchNotFound(batch)
	}
	s.metrics.AddDeleted(deleted)
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(s.logg.WithBatch(ctx, batch), "deleted", deleted), "batch deleted")
	}
	return &DeleteResult{Batch: batch, DeletedCount: deleted}, nil
}

func (s *service) loadAgent(ctx context.Context, agentID uuid.UUID) (*models.Agent, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id is required")
	}
	agent, err := s.agents.FindByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrapf(pkgerrors.CodeNotFound, ErrAgentNotFound, "agent %s not found", agentID).
				WithDetails(map[string]any{"agent_id": agentID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}
	return agent, nil
}

func batchNotFound(batch string) error {
	return pkgerrors.Wrapf(pkgerrors.CodeNotFound, ErrBatchNotFound, "batch %s not found", batch).
		WithDetails(map[string]any{"batch": batch})
}

func itemNotFound(id uuid.UUID) error {
	return pkgerrors.Wrapf(pkgerrors.CodeNotFound, ErrItemNotFound, "list item %s not found", id).
		WithDetails(map[string]any{"item_id": id})
}

func quotasOf(plan distribution.Plan) []int {
	quotas := make([]int, 0, len(plan.Allocations))
	for _, alloc := range plan.Allocations {
		quotas = append(quotas, alloc.Quota)
	}
	return quotas
}

func uploadOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, distribution.ErrNoEligibleAgents):
		return metrics.ResultNoAgents
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}

func reassignOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return metrics.ResultNotFound
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
