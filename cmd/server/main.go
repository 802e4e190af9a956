// Command server wires config, logging, the Postgres fingerprint store, the
// background ingest worker pool, and the gin router together, then serves
// the HTTP surface until SIGINT/SIGTERM, draining the worker pool and
// closing the store on shutdown.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/shazoom/fingerprint/internal/api"
	"github.com/shazoom/fingerprint/internal/config"
	"github.com/shazoom/fingerprint/internal/engine"
	"github.com/shazoom/fingerprint/internal/logging"
	"github.com/shazoom/fingerprint/internal/store"
	"github.com/shazoom/fingerprint/internal/worker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "optional config.yaml overlay path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Get().Error("loading config", "error", logging.Wrap(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fpStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Get().Error("connecting to fingerprint store", "error", logging.Wrap(err))
		os.Exit(1)
	}
	defer fpStore.Close()

	pool := worker.New(cfg.IngestQueueSize, cfg.IngestWorkers)

	eng := engine.New(fpStore, cfg.MinMatchCount)
	server := api.New(eng, pool)

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: server.Router(),
	}

	go func() {
		logging.Get().Info("listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Get().Error("http server failed", "error", logging.Wrap(err))
		}
	}()

	<-ctx.Done()
	logging.Get().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Get().Error("http shutdown", "error", logging.Wrap(err))
	}
	pool.Shutdown(shutdownCtx)
}
