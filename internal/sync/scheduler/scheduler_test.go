package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/scholaris-app/scholaris/core/internal/models"
	syncpkg "github.com/scholaris-app/scholaris/core/internal/sync"
)

type fakeEngine struct {
	mu        sync.Mutex
	fullSyncs int
	drains    int
	skipSyncs bool
}

func (f *fakeEngine) RunFullSync(ctx context.Context) map[syncpkg.EntityType]error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullSyncs++
	if f.skipSyncs {
		return nil
	}
	return map[syncpkg.EntityType]error{}
}

func (f *fakeEngine) SyncEntity(ctx context.Context, entity syncpkg.EntityType) error {
	return nil
}

func (f *fakeEngine) QueueAction(endpoint, method string, payload []byte) (*models.PendingAction, error) {
	return nil, nil
}

func (f *fakeEngine) DrainPending(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drains++
	return nil
}

func (f *fakeEngine) Subscribe() <-chan syncpkg.Event     { return nil }
func (f *fakeEngine) Unsubscribe(ch <-chan syncpkg.Event) {}
func (f *fakeEngine) QueueStats() (map[string]int, error) { return nil, nil }
func (f *fakeEngine) Metadata() ([]*models.SyncMetadata, error) {
	return nil, nil
}

func (f *fakeEngine) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fullSyncs, f.drains
}

type fakeMonitor struct {
	mu     sync.Mutex
	online bool
}

func (m *fakeMonitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *fakeMonitor) set(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = online
}

func testConfig() *Config {
	return &Config{
		SyncInterval:  30 * time.Millisecond,
		QueueInterval: 20 * time.Millisecond,
		ProbeInterval: 10 * time.Millisecond,
	}
}

func TestScheduler_PeriodicSyncAndDrain(t *testing.T) {
	engine := &fakeEngine{}
	monitor := &fakeMonitor{online: true}
	s := NewScheduler(engine, monitor, testConfig())

	s.Start(context.Background())
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	syncs, drains := engine.counts()
	if syncs == 0 {
		t.Error("expected at least one scheduled full sync")
	}
	if drains == 0 {
		t.Error("expected at least one scheduled queue drain")
	}
	if s.LastSyncTime().IsZero() {
		t.Error("expected last sync time to be recorded")
	}
}

func TestScheduler_ReconnectTriggersCatchUpSync(t *testing.T) {
	engine := &fakeEngine{}
	monitor := &fakeMonitor{online: false}
	cfg := testConfig()
	cfg.SyncInterval = time.Hour // only the reconnect path may sync
	s := NewScheduler(engine, monitor, cfg)

	s.Start(context.Background())
	time.Sleep(50 * time.Millisecond)

	before, _ := engine.counts()
	monitor.set(true)
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	after, _ := engine.counts()
	if after <= before {
		t.Errorf("expected a catch-up sync after reconnect, counts %d -> %d", before, after)
	}
}

func TestScheduler_SkippedSyncDoesNotRecordTime(t *testing.T) {
	engine := &fakeEngine{skipSyncs: true}
	monitor := &fakeMonitor{online: true}
	s := NewScheduler(engine, monitor, testConfig())

	s.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if !s.LastSyncTime().IsZero() {
		t.Error("expected skipped syncs to leave last sync time unset")
	}
}

func TestScheduler_StartStopIdempotent(t *testing.T) {
	engine := &fakeEngine{}
	monitor := &fakeMonitor{online: true}
	s := NewScheduler(engine, monitor, testConfig())

	s.Start(context.Background())
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}
