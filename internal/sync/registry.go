package sync

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/scholaris-app/scholaris/core/internal/api"
	"github.com/scholaris-app/scholaris/core/internal/db"
	apperrors "github.com/scholaris-app/scholaris/core/internal/errors"
	"github.com/scholaris-app/scholaris/core/internal/logging"
	"github.com/scholaris-app/scholaris/core/internal/models"
)

// Pull windows per entity. Records outside a window stay in the cache
// untouched; a pull only ever adds or overwrites.
const (
	studentWindow      = 500
	gradeWindow        = 200
	conversationWindow = 100
	notificationWindow = 100
	attendanceLookback = 30 * 24 * time.Hour
)

// fetchFunc retrieves one entity's window from the remote API.
type fetchFunc[T any] func(ctx context.Context, c *api.Client) ([]T, error)

// registerPull builds the pull pipeline for one entity: fetch the remote
// window, stamp each record with tenant and sync time, then merge the
// batch into the cache atomically and bump the entity's sync metadata.
func registerPull[T any](
	e *Engine,
	entity EntityType,
	fetch fetchFunc[T],
	keyOf func(T) string,
	stamp func(*T, string, int64),
) {
	e.pulls[entity] = func(ctx context.Context, tenantID string) error {
		remote, err := fetch(ctx, e.gateway)
		if err != nil {
			return err
		}

		now := time.Now().Unix()
		records := make([]db.CacheRecord, 0, len(remote))
		for i := range remote {
			stamp(&remote[i], tenantID, now)
			payload, err := json.Marshal(remote[i])
			if err != nil {
				return apperrors.Wrap(apperrors.ErrDecode,
					"failed to encode "+string(entity)+" record", err)
			}
			records = append(records, db.CacheRecord{
				ID:           keyOf(remote[i]),
				Payload:      payload,
				LastSyncedAt: now,
			})
		}

		if err := e.cache.UpsertBatch(entity.Collection(), tenantID, records); err != nil {
			return err
		}
		if err := e.meta.Touch(entity.Collection()); err != nil {
			return err
		}

		logging.Debug("Entity pull merged", map[string]interface{}{
			"entity":  string(entity),
			"records": len(records),
		})
		return nil
	}
}

func (e *Engine) registerDefaultPulls() {
	registerPull(e, EntityStudents,
		func(ctx context.Context, c *api.Client) ([]models.Student, error) {
			return api.Get[[]models.Student](ctx, c, "/students",
				url.Values{"limit": {strconv.Itoa(studentWindow)}})
		},
		models.Student.Key,
		func(s *models.Student, tenantID string, at int64) {
			s.SchoolID = tenantID
			s.LastSyncedAt = at
		})

	registerPull(e, EntityAttendance,
		func(ctx context.Context, c *api.Client) ([]models.AttendanceRecord, error) {
			from := time.Now().Add(-attendanceLookback).Format("2006-01-02")
			return api.Get[[]models.AttendanceRecord](ctx, c, "/attendance",
				url.Values{"date_from": {from}})
		},
		models.AttendanceRecord.Key,
		func(a *models.AttendanceRecord, tenantID string, at int64) {
			a.SchoolID = tenantID
			a.LastSyncedAt = at
		})

	registerPull(e, EntityGrades,
		func(ctx context.Context, c *api.Client) ([]models.GradeResult, error) {
			return api.Get[[]models.GradeResult](ctx, c, "/grades",
				url.Values{"limit": {strconv.Itoa(gradeWindow)}})
		},
		models.GradeResult.Key,
		func(g *models.GradeResult, tenantID string, at int64) {
			g.SchoolID = tenantID
			g.LastSyncedAt = at
		})

	registerPull(e, EntityConversations,
		func(ctx context.Context, c *api.Client) ([]models.Conversation, error) {
			return api.Get[[]models.Conversation](ctx, c, "/conversations",
				url.Values{"limit": {strconv.Itoa(conversationWindow)}})
		},
		models.Conversation.Key,
		func(c *models.Conversation, tenantID string, at int64) {
			c.SchoolID = tenantID
			c.LastSyncedAt = at
		})

	registerPull(e, EntityNotifications,
		func(ctx context.Context, c *api.Client) ([]models.Notification, error) {
			return api.Get[[]models.Notification](ctx, c, "/notifications",
				url.Values{"limit": {strconv.Itoa(notificationWindow)}})
		},
		models.Notification.Key,
		func(n *models.Notification, tenantID string, at int64) {
			n.SchoolID = tenantID
			n.LastSyncedAt = at
		})
}
