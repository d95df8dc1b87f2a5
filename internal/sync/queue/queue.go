// Package queue provides the durable pending-action queue for offline
// mutations. Actions survive restarts: rows live in SQLite, ordered by
// creation, and terminal rows stay behind as an audit trail.
package queue

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/scholaris-app/scholaris/core/internal/db"
	apperrors "github.com/scholaris-app/scholaris/core/internal/errors"
	"github.com/scholaris-app/scholaris/core/internal/logging"
	"github.com/scholaris-app/scholaris/core/internal/models"
)

// MaxRetries is the retry ceiling: an action that fails this many drain
// attempts becomes terminally failed and must surface to the user instead
// of retrying forever.
const MaxRetries = 3

// actionInput is validated before anything touches the database.
type actionInput struct {
	Endpoint string `validate:"required,startswith=/"`
	Method   string `validate:"required,oneof=POST PUT PATCH DELETE"`
}

// ActionQueue manages pending mutations. It owns status transitions and
// retry bookkeeping; the orchestrator owns when drains actually run.
type ActionQueue struct {
	repo     *db.Repository
	validate *validator.Validate

	// onEnqueue, when set, is invoked asynchronously after a successful
	// enqueue so the orchestrator can attempt an immediate drain.
	onEnqueue func()
}

// NewActionQueue creates a queue over the given repository.
func NewActionQueue(repo *db.Repository) *ActionQueue {
	return &ActionQueue{
		repo:     repo,
		validate: validator.New(),
	}
}

// SetDrainTrigger installs the callback fired after each enqueue. The
// callback runs on the enqueueing goroutine and must not block; it is
// expected to hand actual work off itself.
func (q *ActionQueue) SetDrainTrigger(fn func()) {
	q.onEnqueue = fn
}

// Enqueue persists a new action with status pending and retry count 0,
// then fires the drain trigger.
func (q *ActionQueue) Enqueue(endpoint, method string, payload []byte) (*models.PendingAction, error) {
	in := actionInput{Endpoint: endpoint, Method: method}
	if err := q.validate.Struct(in); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid pending action", err)
	}

	action := &models.PendingAction{
		Endpoint: endpoint,
		Method:   method,
		Payload:  payload,
	}
	if err := q.repo.CreatePendingAction(action); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to enqueue action", err)
	}

	logging.Info("Enqueued pending action", map[string]interface{}{
		"action_id": action.ID.String(),
		"endpoint":  endpoint,
		"method":    method,
	})

	if q.onEnqueue != nil {
		q.onEnqueue()
	}
	return action, nil
}

// ListPending returns all actions a drain pass may process, oldest first:
// status pending, or failed with retry count below the ceiling. Timing
// (backoff) is the caller's concern, not the queue's.
func (q *ActionQueue) ListPending() ([]*models.PendingAction, error) {
	actions, err := q.repo.ListEligibleActions(MaxRetries)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list pending actions", err)
	}
	return actions, nil
}

// MarkSyncing transitions an action to syncing and records the attempt
// time. Terminal actions are left untouched.
func (q *ActionQueue) MarkSyncing(action *models.PendingAction) error {
	if action.Terminal(MaxRetries) {
		return nil
	}
	action.Status = models.ActionStatusSyncing
	action.LastAttemptAt = time.Now().Unix()
	return q.update(action)
}

// MarkCompleted transitions an action to completed. Calling it twice is a
// no-op, not an error.
func (q *ActionQueue) MarkCompleted(action *models.PendingAction) error {
	if action.Status == models.ActionStatusCompleted {
		return nil
	}
	action.Status = models.ActionStatusCompleted
	action.LastError = ""
	return q.update(action)
}

// MarkFailed transitions an action to failed, increments its retry count
// and stores the error description. At the retry ceiling the action
// becomes terminal; below it, the next drain picks it up again.
func (q *ActionQueue) MarkFailed(action *models.PendingAction, cause error) error {
	if action.Status == models.ActionStatusCompleted {
		return nil
	}
	if action.Status == models.ActionStatusFailed && action.RetryCount >= MaxRetries {
		return nil
	}

	action.Status = models.ActionStatusFailed
	action.RetryCount++
	if cause != nil {
		action.LastError = cause.Error()
	}
	if err := q.update(action); err != nil {
		return err
	}

	if action.RetryCount >= MaxRetries {
		logging.ErrorWithCode("Pending action failed permanently",
			string(apperrors.ErrSyncFailed), cause, map[string]interface{}{
				"action_id": action.ID.String(),
				"endpoint":  action.Endpoint,
				"retries":   action.RetryCount,
			})
	} else {
		logging.Warn("Pending action failed, will retry", map[string]interface{}{
			"action_id": action.ID.String(),
			"endpoint":  action.Endpoint,
			"retry":     action.RetryCount,
			"max":       MaxRetries,
			"backoff":   BackoffDelay(action.RetryCount).String(),
		})
	}
	return nil
}

// BackoffDelay returns how long a failed action must wait after its last
// attempt before the next one: 2^retryCount seconds (2s, 4s, 8s).
func BackoffDelay(retryCount int) time.Duration {
	if retryCount < 1 {
		return 0
	}
	if retryCount > MaxRetries {
		retryCount = MaxRetries
	}
	return time.Duration(1<<uint(retryCount)) * time.Second
}

// ReadyForAttempt reports whether an action's backoff window has elapsed.
// Fresh pending actions are always ready; failed ones wait out their
// exponential delay.
func (q *ActionQueue) ReadyForAttempt(action *models.PendingAction, now time.Time) bool {
	if action.Status == models.ActionStatusPending && action.RetryCount == 0 {
		return true
	}
	due := action.LastAttemptTime().Add(BackoffDelay(action.RetryCount))
	return !now.Before(due)
}

// Stats returns queue counts grouped by status, for diagnostics.
func (q *ActionQueue) Stats() (map[string]int, error) {
	counts, err := q.repo.CountActionsByStatus()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to count actions", err)
	}
	return counts, nil
}

func (q *ActionQueue) update(action *models.PendingAction) error {
	if err := q.repo.UpdatePendingAction(action); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to update action "+action.ID.String(), err)
	}
	return nil
}
