// Package scheduler provides background scheduling for the sync engine:
// periodic full syncs, regular queue drains, and an immediate catch-up
// cycle when connectivity returns.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/scholaris-app/scholaris/core/internal/api"
	apperrors "github.com/scholaris-app/scholaris/core/internal/errors"
	"github.com/scholaris-app/scholaris/core/internal/logging"
	syncpkg "github.com/scholaris-app/scholaris/core/internal/sync"
)

// Config holds scheduler intervals.
type Config struct {
	SyncInterval  time.Duration // full sync cadence while online (default: 15 minutes)
	QueueInterval time.Duration // queue drain cadence (default: 1 minute)
	ProbeInterval time.Duration // connectivity poll cadence (default: 10 seconds)
}

// DefaultConfig returns the default scheduler intervals.
func DefaultConfig() *Config {
	return &Config{
		SyncInterval:  15 * time.Minute,
		QueueInterval: 1 * time.Minute,
		ProbeInterval: 10 * time.Second,
	}
}

// Scheduler drives the engine in the background. The engine itself
// enforces single-flight full syncs and offline no-ops; the scheduler
// only decides when to poke it.
type Scheduler struct {
	engine  syncpkg.Orchestrator
	monitor api.ReachabilityMonitor
	config  *Config

	stopCh chan struct{}
	wg     sync.WaitGroup

	mu           sync.RWMutex
	isRunning    bool
	wasOnline    bool
	lastSyncTime time.Time
}

// NewScheduler creates a scheduler for the given engine.
func NewScheduler(engine syncpkg.Orchestrator, monitor api.ReachabilityMonitor, config *Config) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Scheduler{
		engine:  engine,
		monitor: monitor,
		config:  config,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the background loops. Calling Start on a running
// scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.wasOnline = s.monitor.IsOnline()
	s.mu.Unlock()

	s.wg.Add(3)
	go s.fullSyncLoop(ctx)
	go s.queueDrainLoop(ctx)
	go s.connectivityLoop(ctx)

	logging.Info("Sync scheduler started", map[string]interface{}{
		"sync_interval":  s.config.SyncInterval.String(),
		"queue_interval": s.config.QueueInterval.String(),
	})
}

// Stop shuts the loops down and waits for them to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	logging.Info("Sync scheduler stopped", nil)
}

// LastSyncTime returns when the scheduler last completed a full sync.
// The zero time means no scheduled sync has run yet.
func (s *Scheduler) LastSyncTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSyncTime
}

// fullSyncLoop runs a full sync on every tick. The engine skips the
// cycle itself when offline, tenantless, or already syncing.
func (s *Scheduler) fullSyncLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runFullSync(ctx)
		}
	}
}

// queueDrainLoop retries eligible pending actions on a shorter cadence
// than full syncs, so failed mutations come out of backoff promptly.
func (s *Scheduler) queueDrainLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.QueueInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			drainCtx, cancel := context.WithTimeout(ctx, s.config.QueueInterval)
			if err := s.engine.DrainPending(drainCtx); err != nil {
				logging.ErrorWithCode("Scheduled queue drain failed",
					string(apperrors.CodeOf(err)), err, nil)
			}
			cancel()
		}
	}
}

// connectivityLoop watches for the offline-to-online transition and
// kicks off an immediate full sync so queued work is not stuck waiting
// for the next scheduled tick.
func (s *Scheduler) connectivityLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			online := s.monitor.IsOnline()

			s.mu.Lock()
			reconnected := online && !s.wasOnline
			s.wasOnline = online
			s.mu.Unlock()

			if reconnected {
				logging.Info("Connectivity restored, starting catch-up sync", nil)
				s.runFullSync(ctx)
			}
		}
	}
}

func (s *Scheduler) runFullSync(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	results := s.engine.RunFullSync(syncCtx)
	if results == nil {
		return
	}

	s.mu.Lock()
	s.lastSyncTime = time.Now()
	s.mu.Unlock()
}
