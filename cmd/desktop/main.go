package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scholaris-app/scholaris/core/cmd/desktop/handlers"
	"github.com/scholaris-app/scholaris/core/internal/api"
	"github.com/scholaris-app/scholaris/core/internal/config"
	"github.com/scholaris-app/scholaris/core/internal/db"
	"github.com/scholaris-app/scholaris/core/internal/logging"
	"github.com/scholaris-app/scholaris/core/internal/session"
	syncpkg "github.com/scholaris-app/scholaris/core/internal/sync"
	"github.com/scholaris-app/scholaris/core/internal/sync/queue"
	"github.com/scholaris-app/scholaris/core/internal/sync/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logging.Init(logging.LogLevel(cfg.LogLevel), logging.LogFormat(cfg.LogFormat))

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		logging.Error("Failed to open database", err, nil)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.EnsureSchema(database.DB); err != nil {
		logging.Error("Failed to apply schema", err, nil)
		os.Exit(1)
	}

	provider := session.NewTokenProvider()
	monitor := api.NewProbeMonitor(cfg.APIBaseURL, 5*time.Second, 10*time.Second)
	repo := db.NewRepository(database.DB)
	engine := syncpkg.NewEngine(
		api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, provider),
		db.NewCacheStore(database.DB),
		queue.NewActionQueue(repo),
		syncpkg.NewMetadataTracker(repo),
		provider,
		monitor,
	)
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(engine, monitor, &scheduler.Config{
		SyncInterval:  cfg.SyncInterval,
		QueueInterval: cfg.QueueInterval,
		ProbeInterval: 10 * time.Second,
	})
	sched.Start(ctx)
	defer sched.Stop()

	hub := NewWSHub()
	events := engine.Subscribe()
	defer engine.Unsubscribe(events)
	go hub.BridgeEngineEvents(events)

	syncHandler := handlers.NewSyncHandler(engine)
	readHandler := handlers.NewReadHandler(engine)
	sessionHandler := handlers.NewSessionHandler(provider)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"scholaris-core"}`))
	})
	mux.HandleFunc("/api/sync", syncHandler.TriggerSync)
	mux.HandleFunc("/api/sync/status", syncHandler.Status)
	mux.HandleFunc("/api/actions", syncHandler.EnqueueAction)
	mux.HandleFunc("/api/session", sessionHandler.SetToken)
	mux.HandleFunc("/api/students", readHandler.Students)
	mux.HandleFunc("/api/attendance", readHandler.Attendance)
	mux.HandleFunc("/api/grades", readHandler.Grades)
	mux.HandleFunc("/api/conversations", readHandler.Conversations)
	mux.HandleFunc("/api/notifications", readHandler.Notifications)
	mux.HandleFunc("/ws", hub.ServeWS)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 6 * time.Minute, // a triggered sync can take a while
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logging.Info("Scholaris desktop shell listening", map[string]interface{}{
		"addr": cfg.ListenAddr,
		"api":  cfg.APIBaseURL,
	})

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Error("Server exited", err, nil)
		os.Exit(1)
	}
}
