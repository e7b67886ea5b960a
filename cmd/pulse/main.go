package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/themclloyd/storefy-pulse/internal/alerts"
	"github.com/themclloyd/storefy-pulse/internal/api"
	"github.com/themclloyd/storefy-pulse/internal/collector"
	"github.com/themclloyd/storefy-pulse/internal/config"
	"github.com/themclloyd/storefy-pulse/internal/store"
	"github.com/themclloyd/storefy-pulse/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envPath := flag.String("env", "", "load environment variables from this .env file before resolving *_env config fields")
	uiDir := flag.String("ui-dir", "", "serve the dashboard UI static files from this directory (e.g. ui/dist); leave empty to disable")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("pulse starting", "config", *configPath)

	if *envPath != "" {
		if err := godotenv.Load(*envPath); err != nil {
			slog.Error("failed to load env file", "path", *envPath, "err", err)
			os.Exit(1)
		}
	} else {
		// Best effort: a local .env is optional.
		_ = godotenv.Load()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"snapshot_ttl", cfg.Server.Snapshot.TTL,
		"poll_interval", cfg.Collector.PollInterval,
		"sources", len(cfg.Collector.Sources),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Snapshot store with background TTL eviction.
	st := store.New(cfg.Server.Snapshot.TTL)
	go st.Run(ctx)

	// Alerts engine — evaluates rules on every snapshot, polled or pushed.
	alertEngine := alerts.New(cfg.Server.Alerts)

	// The net-margin target is the one setting worth hot-reloading: finance
	// adjusts it mid-quarter more often than sources change.
	var targetMu sync.RWMutex
	target := cfg.Collector.Targets.TargetMargin
	currentTarget := func() float64 {
		targetMu.RLock()
		defer targetMu.RUnlock()
		return target
	}

	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			targetMu.Lock()
			target = updated.Collector.Targets.TargetMargin
			targetMu.Unlock()
			slog.Info("config hot-reloaded", "target_margin", updated.Collector.Targets.TargetMargin)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Build source + engine instances from the initial config.
	// Hot-reload does not rebuild sources; restart to add or remove one.
	type pipeline struct {
		src config.Source
		s   collector.Source
	}
	var pipelines []pipeline
	for _, src := range cfg.Collector.Sources {
		s, err := collector.New(src)
		if err != nil {
			slog.Error("skipping source — could not build it", "source", src.ID, "err", err)
			continue
		}
		pipelines = append(pipelines, pipeline{src: src, s: s})
		slog.Info("registered source", "id", src.ID, "type", src.Type, "endpoint", src.Endpoint)
	}

	if len(pipelines) == 0 {
		slog.Warn("no sources configured — only push ingestion via /api/v1/report is active")
	}

	// Poll loop: fetch every PollInterval, derive the dashboard, store, alert.
	engine := collector.NewEngine()
	go func() {
		ticker := time.NewTicker(cfg.Collector.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				for _, p := range pipelines {
					rep, _ := p.s.Fetch(ctx) // fetch errors ride along in rep.Err
					snap := engine.Process(rep, currentTarget(), t)
					st.Put(snap)
					alertEngine.Evaluate(snap)
					slog.Debug("dashboard updated",
						"source", p.src.ID,
						"health", snap.Health,
					)
				}
			}
		}
	}()

	// WebSocket hub — broadcasts dashboards to UI clients.
	hub := ws.New(st, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	// Combined HTTP server: REST API + WebSocket hub, behind API key auth.
	handler := api.APIKeyMiddleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
		api.New(st, alertEngine, cfg.Collector.Targets.TargetMargin),
	)
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", handler)
	httpMux.Handle("/ws/stream", hub)

	// Optional: serve the pre-built dashboard UI from a local directory.
	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		fs := http.FileServer(http.Dir(*uiDir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := *uiDir + r.URL.Path
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, *uiDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("pulse shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
