package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dgallion1/dofcatalog/internal/api"
	"github.com/dgallion1/dofcatalog/internal/config"
	"github.com/dgallion1/dofcatalog/internal/pagecount"
	"github.com/dgallion1/dofcatalog/internal/reindex"
	"github.com/dgallion1/dofcatalog/internal/resolve"
	"github.com/dgallion1/dofcatalog/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	flags := pflag.NewFlagSet("dofcatalog", pflag.ExitOnError)
	configPath := flags.String("config", os.Getenv("DOF_CONFIG"), "path to a YAML config file")
	port := flags.String("port", "", "listen port (overrides PORT)")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("load configuration", "error", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}

	level, levelErr := cfg.SlogLevel()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	if levelErr != nil {
		log.Error("invalid configuration", "error", levelErr)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.Open(cfg.DatabasePath, store.WithMkdirAll())
	if err != nil {
		log.Error("open catalog", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	st := store.New(db)

	// Resolution chains.
	stats := resolve.NewFetchStats(cfg.RemoteStatsWindow)
	opts := resolve.Options{
		ProjectRoot:    cfg.ProjectRoot,
		DocumentRoot:   cfg.DocumentRoot,
		FetchTimeout:   cfg.RemoteFetchTimeout,
		MaxRemoteBytes: cfg.MaxRemoteBytes,
		Stats:          stats,
	}
	downloads := resolve.New(opts, log)
	inspector := pagecount.NewInspector(resolve.NewLocal(opts, log), log)

	// Page-count sweeps.
	sweeper := reindex.NewSweeper(st, inspector, reindex.NewRunStore(cfg.ReindexRunTTL), log)
	sched := reindex.NewScheduler(sweeper, log)
	if err := sched.Start(ctx, cfg.ReindexSchedule); err != nil {
		log.Error("start reindex scheduler", "error", err)
		os.Exit(1)
	}
	var sweeps sync.WaitGroup
	if cfg.ReindexOnStart {
		sweeps.Go(func() {
			if _, err := sweeper.Run(ctx, "startup"); err != nil {
				log.Warn("startup reindex failed", "error", err)
			}
		})
	}

	srv := api.NewServer(st, downloads, sweeper, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RemoteFetchTimeout + 60*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		log.Error("listen", "addr", httpServer.Addr, "error", err)
		os.Exit(1)
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	log.Info("starting dofcatalog",
		"port", cfg.Port,
		"database", cfg.DatabasePath,
		"document_root", opts.LocalRoot(),
		"reindex_schedule", cfg.ReindexSchedule,
	)
	err = serve(sigCtx, httpServer, ln, func() {
		cancel()
		sched.Stop()
		sweeps.Wait()
	}, log)
	if err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("stopped")
}

// serve runs srv on ln until ctx is done, then stops background work and
// drains in-flight requests. It returns only after both have finished, so
// callers may close shared resources afterwards.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, stopBackground func(), log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		stopBackground()
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down...")

	stopBackground()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return shutdownErr
}
