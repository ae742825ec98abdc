// Command curatord runs the review session daemon. It holds the in-memory
// queue for one curation session and exposes it to the curator CLI over a
// JSON-RPC Unix socket. Queue state is discarded when the process exits.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"curator/internal/backend"
	"curator/internal/config"
	"curator/internal/daemon"
	"curator/internal/ipc"
	"curator/internal/logging"
	"curator/internal/review"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg, "curatord.log")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	transport, err := backend.NewClient(cfg.Backend.BaseURL, cfg.BackendTimeout())
	if err != nil {
		logger.Error("create backend client", logging.Error(err))
		os.Exit(1)
	}

	store := review.NewStore(cfg.Backend.PriorityForum)
	pipeline := review.NewPipeline(store, transport, logger)

	d, err := daemon.New(cfg, pipeline, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		os.Exit(1)
	}

	ipcServer, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		os.Exit(1)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	<-ctx.Done()
	logger.Info("curatord shutting down")
}
