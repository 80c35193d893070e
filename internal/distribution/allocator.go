package distribution

import (
	"time"

	"github.com/angelmondragon/listdist/internal/ingest"
	"github.com/angelmondragon/listdist/pkg/db/models"
	"github.com/google/uuid"
)

// AgentSnapshot is the identifying subset of an agent echoed back to callers.
type AgentSnapshot struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// SnapshotOf copies the public fields of an agent.
func SnapshotOf(agent models.Agent) AgentSnapshot {
	return AgentSnapshot{ID: agent.ID, Name: agent.Name, Email: agent.Email}
}

// Allocation is one agent's contiguous share of the input rows.
type Allocation struct {
	Agent AgentSnapshot
	Quota int
	Rows  []ingest.Row
}

// Plan is the ordered per-agent partition of an upload.
type Plan struct {
	Allocations []Allocation
}

// Quotas splits n items across k agents. The first n%k agents receive one extra item.
func Quotas(n, k int) []int {
	if k <= 0 {
		return nil
	}
	if n < 0 {
		n = 0
	}
	base, remainder := n/k, n%k
	quotas := make([]int, k)
	for i := range quotas {
		quotas[i] = base
		if i < remainder {
			quotas[i]++
		}
	}
	return quotas
}

// Allocate assigns rows to agents contiguously in input order.
func Allocate(rows []ingest.Row, agents []models.Agent) Plan {
	quotas := Quotas(len(rows), len(agents))
	plan := Plan{Allocations: make([]Allocation, 0, len(agents))}

	offset := 0
	for i, agent := range agents {
		quota := quotas[i]
		plan.Allocations = append(plan.Allocations, Allocation{
			Agent: SnapshotOf(agent),
			Quota: quota,
			Rows:  rows[offset : offset+quota],
		})
		offset += quota
	}
	return plan
}

// Total is the number of rows covered by the plan.
func (p Plan) Total() int {
	total := 0
	for _, alloc := range p.Allocations {
		total += alloc.Quota
	}
	return total
}

// QuotaByAgent maps agent id to its quota.
func (p Plan) QuotaByAgent() map[string]int {
	out := make(map[string]int, len(p.Allocations))
	for _, alloc := range p.Allocations {
		out[alloc.Agent.ID.String()] = alloc.Quota
	}
	return out
}

// Items realises the plan as line items tagged with batch, in plan order.
func (p Plan) Items(batch string, createdAt time.Time) []models.ListItem {
	items := make([]models.ListItem, 0, p.Total())
	position := 0
	for _, alloc := range p.Allocations {
		for _, row := range alloc.Rows {
			items = append(items, models.ListItem{
				ID:          uuid.New(),
				FirstName:   row.Value(ingest.ColumnFirstName),
				Phone:       row.Value(ingest.ColumnPhone),
				Notes:       row.Value(ingest.ColumnNotes),
				AgentID:     alloc.Agent.ID,
				UploadBatch: batch,
				Position:    position,
				CreatedAt:   createdAt,
			})
			position++
		}
	}
	return items
}
