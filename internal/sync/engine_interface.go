package sync

import (
	"context"

	"github.com/scholaris-app/scholaris/core/internal/models"
)

// Orchestrator captures the engine operations consumed by schedulers
// and presentation shells, so they can be tested against fakes.
type Orchestrator interface {
	RunFullSync(ctx context.Context) map[EntityType]error
	SyncEntity(ctx context.Context, entity EntityType) error
	QueueAction(endpoint, method string, payload []byte) (*models.PendingAction, error)
	DrainPending(ctx context.Context) error
	Subscribe() <-chan Event
	Unsubscribe(ch <-chan Event)
	QueueStats() (map[string]int, error)
	Metadata() ([]*models.SyncMetadata, error)
}

var _ Orchestrator = (*Engine)(nil)
