package lists

import (
	"context"

	"github.com/angelmondragon/listdist/internal/distribution"
	"github.com/angelmondragon/listdist/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// insertChunk bounds the number of rows per INSERT statement.
const insertChunk = 500

// Repository handles line item persistence and the batch views over it.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to list item operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// BulkInsertWithTx writes items in slice order using the provided transaction.
func (r *Repository) BulkInsertWithTx(tx *gorm.DB, items []models.ListItem) (int, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	if len(items) == 0 {
		return 0, nil
	}
	if err := tx.CreateInBatches(&items, insertChunk).Error; err != nil {
		return 0, err
	}
	return len(items), nil
}

type batchRow struct {
	UploadBatch    string
	ItemCount      int64
	FirstCreatedAt Timestamp
}

// ListBatches groups items by batch, newest earliest-creation first.
func (r *Repository) ListBatches(ctx context.Context) ([]BatchSummary, error) {
	var rows []batchRow
	err := r.db.WithContext(ctx).
		Model(&models.ListItem{}).
		Select("upload_batch, COUNT(*) AS item_count, MIN(created_at) AS first_created_at").
		Group("upload_batch").
		Order("MIN(created_at) DESC, upload_batch DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]BatchSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, BatchSummary{
			Batch:     row.UploadBatch,
			CreatedAt: row.FirstCreatedAt.Time,
			Count:     row.ItemCount,
		})
	}
	return out, nil
}

type batchItemRow struct {
	ID         uuid.UUID
	FirstName  string
	Phone      string
	Notes      string
	Position   int
	CreatedAt  Timestamp
	AgentID    uuid.UUID
	AgentName  string
	AgentEmail string
}

// ListByBatch returns the batch's items joined with their agent, oldest first.
func (r *Repository) ListByBatch(ctx context.Context, batch string) ([]BatchItem, error) {
	var rows []batchItemRow
	err := r.db.WithContext(ctx).
		Table("list_items AS li").
		Select(`li.id, li.first_name, li.phone, li.notes, li.position, li.created_at,
			a.id AS agent_id, a.name AS agent_name, a.email AS agent_email`).
		Joins("JOIN agents a ON a.id = li.agent_id").
		Where("li.upload_batch = ?", batch).
		Order("li.created_at ASC, li.position ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]BatchItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, BatchItem{
			ID:        row.ID,
			FirstName: row.FirstName,
			Phone:     row.Phone,
			Notes:     row.Notes,
			Position:  row.Position,
			CreatedAt: row.CreatedAt.Time,
			Agent: distribution.AgentSnapshot{
				ID:    row.AgentID,
				Name:  row.AgentName,
				Email: row.AgentEmail,
			},
		})
	}
	return out, nil
}

// ListByAgent returns the agent's items, newest first.
func (r *Repository) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]models.ListItem, error) {
	var items []models.ListItem
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC, position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteBatch removes every item sharing the batch id.
func (r *Repository) DeleteBatch(ctx context.Context, batch string) (int64, error) {
	res := r.db.WithContext(ctx).Where("upload_batch = ?", batch).Delete(&models.ListItem{})
	return res.RowsAffected, res.Error
}

// FindByID loads a single line item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ListItem, error) {
	var item models.ListItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateAgent points the item at a different agent.
func (r *Repository) UpdateAgent(ctx context.Context, id, agentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ListItem{}).
		Where("id = ?", id).
		Update("agent_id", agentID)
	return res.RowsAffected, res.Error
}

// CountForAgent reports how many items the agent owns.
func (r *Repository) CountForAgent(ctx context.Context, agentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ListItem{}).
		Where("agent_id = ?", agentID).
		Count(&count).Error
	return count, err
}
