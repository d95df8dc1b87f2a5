package sync

import (
	"context"
	"encoding/json"

	"github.com/scholaris-app/scholaris/core/internal/logging"
)

// ReadThrough returns the current records for one entity. While online
// it refreshes the cache with a live pull first; offline, or when the
// pull fails, it serves whatever was last synced. An unauthenticated
// session or an empty cache yields an empty slice, never an error, so
// read surfaces degrade to "no data" instead of breaking.
//
// The returned error is non-nil only when the cache itself cannot be
// read; even then the slice is usable (empty).
func ReadThrough[T any](ctx context.Context, e *Engine, entity EntityType) ([]T, error) {
	tenantID, err := e.session.TenantID()
	if err != nil {
		return []T{}, nil
	}

	if e.monitor.IsOnline() {
		if err := e.SyncEntity(ctx, entity); err != nil {
			logging.Warn("Live read failed, serving cached data", map[string]interface{}{
				"entity": string(entity),
				"error":  err.Error(),
			})
		}
	}

	rows, err := e.cache.List(entity.Collection(), tenantID, 0)
	if err != nil {
		logging.Error("Cache read failed", err, map[string]interface{}{
			"entity": string(entity),
		})
		return []T{}, err
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var item T
		if err := json.Unmarshal(row.Payload, &item); err != nil {
			logging.Warn("Skipping undecodable cache record", map[string]interface{}{
				"entity": string(entity),
				"id":     row.ID,
			})
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
