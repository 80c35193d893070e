package lists

import (
	"context"
	"strconv"
	"time"

	pkgerrors "github.com/angelmondragon/listdist/pkg/errors"
	"github.com/angelmondragon/listdist/pkg/logger"
	"github.com/angelmondragon/listdist/pkg/redis"
)

// BatchIDGenerator produces upload batch identifiers.
type BatchIDGenerator interface {
	Next(ctx context.Context) (string, error)
}

// ClockBatchIDs derives ids from the unix millisecond clock.
type ClockBatchIDs struct {
	Now func() time.Time
}

// Next returns the current unix time in milliseconds.
func (c ClockBatchIDs) Next(context.Context) (string, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return strconv.FormatInt(now().UnixMilli(), 10), nil
}

// ReservedBatchIDs claims millisecond ids through Redis SETNX and bumps
// the id by one millisecond when a concurrent upload already holds it.
type ReservedBatchIDs struct {
	reserver    redis.Reserver
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
	logg        *logger.Logger
}

// NewReservedBatchIDs wires the reservation generator.
func NewReservedBatchIDs(reserver redis.Reserver, ttl time.Duration, maxAttempts int, logg *logger.Logger) (*ReservedBatchIDs, error) {
	if reserver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch id reserver is required")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &ReservedBatchIDs{
		reserver:    reserver,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         time.Now,
		logg:        logg,
	}, nil
}

// Next reserves and returns a batch id. When Redis is unreachable the id of the
// current attempt is used unreserved and the failure is logged; ids already
// reported as held are never handed out.
func (g *ReservedBatchIDs) Next(ctx context.Context) (string, error) {
	base := g.now().UnixMilli()
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		id := strconv.FormatInt(base+int64(attempt), 10)
		ok, err := g.reserver.SetNX(ctx, g.reserver.BatchReservationKey(id), "1", g.ttl)
		if err != nil {
			if g.logg != nil {
				g.logg.Warn(g.logg.WithField(ctx, "error", err.Error()), "batch id reservation unavailable, using clock id")
			}
			return id, nil
		}
		if ok {
			return id, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not reserve a batch id, retry the upload").
		WithDetails(map[string]any{"attempts": g.maxAttempts})
}
