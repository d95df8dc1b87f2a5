package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/scholaris-app/scholaris/core/internal/api"
	"github.com/scholaris-app/scholaris/core/internal/db"
	apperrors "github.com/scholaris-app/scholaris/core/internal/errors"
	"github.com/scholaris-app/scholaris/core/internal/logging"
	"github.com/scholaris-app/scholaris/core/internal/models"
	"github.com/scholaris-app/scholaris/core/internal/session"
	"github.com/scholaris-app/scholaris/core/internal/sync/queue"
)

// EntityType identifies a synchronized collection.
type EntityType string

const (
	EntityStudents      EntityType = "students"
	EntityAttendance    EntityType = "attendance"
	EntityGrades        EntityType = "grades"
	EntityConversations EntityType = "conversations"
	EntityNotifications EntityType = "notifications"
)

// Collection returns the cache collection name for the entity type.
func (t EntityType) Collection() string {
	return string(t)
}

// AllEntityTypes lists every collection a full sync pulls.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityStudents,
		EntityAttendance,
		EntityGrades,
		EntityConversations,
		EntityNotifications,
	}
}

// pullFunc fetches one entity's current window from the remote API and
// merges it into the local cache for the given tenant.
type pullFunc func(ctx context.Context, tenantID string) error

// Engine orchestrates the full offline-first cycle: draining the pending
// mutation queue, pulling every entity collection, merging into the
// cache and maintaining per-entity sync metadata.
//
// At most one full sync runs at a time. Concurrent RunFullSync calls
// return immediately instead of queueing a follow-up sync.
type Engine struct {
	gateway *api.Client
	cache   *db.CacheStore
	queue   *queue.ActionQueue
	meta    *MetadataTracker
	session session.Provider
	monitor api.ReachabilityMonitor

	// syncSlot is a capacity-1 try-lock guarding the full sync cycle.
	syncSlot chan struct{}
	// drainMu serializes queue drains so an enqueue-triggered drain and
	// a full sync never replay the same action twice.
	drainMu sync.Mutex

	events *broadcaster
	pulls  map[EntityType]pullFunc

	// bg tracks drains spawned by the enqueue trigger so Close can wait
	// them out before the database goes away.
	bg sync.WaitGroup
}

// NewEngine wires the orchestrator and registers the default entity
// pulls. The queue's drain trigger is pointed at this engine so that
// enqueueing while online kicks off an asynchronous drain.
func NewEngine(
	gateway *api.Client,
	cache *db.CacheStore,
	q *queue.ActionQueue,
	meta *MetadataTracker,
	provider session.Provider,
	monitor api.ReachabilityMonitor,
) *Engine {
	e := &Engine{
		gateway:  gateway,
		cache:    cache,
		queue:    q,
		meta:     meta,
		session:  provider,
		monitor:  monitor,
		syncSlot: make(chan struct{}, 1),
		events:   newBroadcaster(),
		pulls:    make(map[EntityType]pullFunc),
	}
	e.registerDefaultPulls()

	// The trigger runs on the enqueueing goroutine; register with bg
	// before handing off so Close never misses an in-flight drain.
	q.SetDrainTrigger(func() {
		e.bg.Add(1)
		go func() {
			defer e.bg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			defer cancel()
			if err := e.DrainPending(ctx); err != nil {
				logging.Error("Background queue drain failed", err, nil)
			}
		}()
	})

	return e
}

const drainTimeout = 2 * time.Minute

// Subscribe returns a channel of sync lifecycle events. The channel is
// buffered; slow consumers miss events rather than blocking the engine.
func (e *Engine) Subscribe() <-chan Event {
	return e.events.subscribe()
}

// Unsubscribe closes and removes a channel returned by Subscribe.
func (e *Engine) Unsubscribe(ch <-chan Event) {
	e.events.unsubscribe(ch)
}

// QueueAction records a mutation in the durable queue. The queue's
// drain trigger fires asynchronously, so while online the action is
// usually replayed within moments; offline it waits for the next drain.
// Without an authenticated tenant the action is rejected.
func (e *Engine) QueueAction(endpoint, method string, payload []byte) (*models.PendingAction, error) {
	if _, err := e.session.TenantID(); err != nil {
		logging.Warn("Rejecting action without tenant", map[string]interface{}{
			"endpoint": endpoint,
			"method":   method,
		})
		return nil, err
	}
	return e.queue.Enqueue(endpoint, method, payload)
}

// RunFullSync performs one complete cycle: drain the pending queue,
// then pull every registered entity concurrently. It returns a
// per-entity error map so callers can surface partial failures; a nil
// map means the sync was skipped (offline, no tenant, or already
// running).
//
// The sync.completed event fires exactly once per executed cycle,
// even when some or all pulls fail.
func (e *Engine) RunFullSync(ctx context.Context) map[EntityType]error {
	tenantID, err := e.session.TenantID()
	if err != nil {
		logging.Debug("Skipping full sync: no tenant", nil)
		return nil
	}
	if !e.monitor.IsOnline() {
		logging.Debug("Skipping full sync: offline", nil)
		return nil
	}

	select {
	case e.syncSlot <- struct{}{}:
	default:
		logging.Debug("Full sync already in progress", nil)
		return nil
	}
	defer func() { <-e.syncSlot }()

	started := time.Now()
	e.events.publish(Event{Type: EventSyncStarted, Timestamp: started})
	logging.Info("Starting full sync", map[string]interface{}{
		"school_id": tenantID,
	})

	// Replay local mutations first so pulls observe their effects.
	if err := e.drain(ctx); err != nil {
		logging.Error("Queue drain failed during full sync", err, nil)
	}

	results := make(map[EntityType]error, len(e.pulls))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for entity, pull := range e.pulls {
		wg.Add(1)
		go func(entity EntityType, pull pullFunc) {
			defer wg.Done()
			pullErr := pull(ctx, tenantID)
			if pullErr != nil {
				logging.ErrorWithCode("Entity pull failed",
					string(apperrors.CodeOf(pullErr)), pullErr,
					map[string]interface{}{"entity": string(entity)})
			}
			mu.Lock()
			results[entity] = pullErr
			mu.Unlock()
		}(entity, pull)
	}
	wg.Wait()

	failed := 0
	for _, pullErr := range results {
		if pullErr != nil {
			failed++
		}
	}

	e.events.publish(Event{Type: EventSyncCompleted, Timestamp: time.Now()})
	logging.Info("Full sync completed", map[string]interface{}{
		"entities": len(results),
		"failed":   failed,
		"duration": time.Since(started).String(),
	})

	return results
}

// SyncEntity pulls a single entity collection and merges it into the
// cache. It is a no-op without a tenant and fails for unknown entities.
func (e *Engine) SyncEntity(ctx context.Context, entity EntityType) error {
	tenantID, err := e.session.TenantID()
	if err != nil {
		logging.Debug("Skipping entity sync: no tenant", map[string]interface{}{
			"entity": string(entity),
		})
		return nil
	}

	pull, ok := e.pulls[entity]
	if !ok {
		return apperrors.New(apperrors.ErrInvalid,
			fmt.Sprintf("unknown entity type: %s", entity))
	}
	return pull(ctx, tenantID)
}

// DrainPending replays eligible queued actions against the remote API,
// oldest first. It is a no-op while offline or without a tenant.
func (e *Engine) DrainPending(ctx context.Context) error {
	if _, err := e.session.TenantID(); err != nil {
		return nil
	}
	if !e.monitor.IsOnline() {
		return nil
	}
	return e.drain(ctx)
}

// drain walks the eligible queue sequentially. Each action is attempted
// at most once per drain; failures increment the retry count and wait
// for backoff, they do not abort the pass.
func (e *Engine) drain(ctx context.Context) error {
	e.drainMu.Lock()
	defer e.drainMu.Unlock()

	actions, err := e.queue.ListPending()
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		return nil
	}

	now := time.Now()
	attempted, completed := 0, 0
	for _, action := range actions {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !e.queue.ReadyForAttempt(action, now) {
			continue
		}
		if err := e.queue.MarkSyncing(action); err != nil {
			logging.Error("Failed to mark action syncing", err, map[string]interface{}{
				"action_id": action.ID.String(),
			})
			continue
		}

		attempted++
		_, sendErr := e.gateway.Do(ctx, action.Method, action.Endpoint, nil, action.Payload)
		if sendErr != nil {
			if err := e.queue.MarkFailed(action, sendErr); err != nil {
				logging.Error("Failed to record action failure", err, nil)
				continue
			}
			if action.Terminal(queue.MaxRetries) {
				e.events.publish(Event{
					Type:      EventActionFailed,
					Timestamp: time.Now(),
					ActionID:  action.ID.String(),
					Error:     action.LastError,
				})
			}
			continue
		}

		if err := e.queue.MarkCompleted(action); err != nil {
			logging.Error("Failed to mark action completed", err, nil)
			continue
		}
		completed++
	}

	if attempted > 0 {
		logging.Info("Queue drain finished", map[string]interface{}{
			"attempted": attempted,
			"completed": completed,
		})
	}
	return nil
}

// Close waits for background drains spawned by the enqueue trigger.
// Call it before closing the database the engine writes to.
func (e *Engine) Close() {
	e.bg.Wait()
}

// QueueStats exposes per-status action counts for diagnostics surfaces.
func (e *Engine) QueueStats() (map[string]int, error) {
	return e.queue.Stats()
}

// Metadata exposes per-entity sync bookkeeping for diagnostics surfaces.
func (e *Engine) Metadata() ([]*models.SyncMetadata, error) {
	return e.meta.List()
}
