package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/codec"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/config"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/logging"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/orchestrator"
	"github.com/danielpatrickdp/perazzi-guardrails/go-controller/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the guardrail gRPC server",
	Long: `Serves perazzi.guardrails.v1.Pipeline and grpc.health.v1.Health.

With --config the file is watched and changes apply on the next request.
Turn is available only when server.collaborator_addr (or
PERAZZI_COLLABORATOR_ADDR) names the search and generation service.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// #region serve
func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source config.Source = config.EnvSource{Base: cfg}
	var watcher *config.Watcher
	if configPath != "" {
		w, err := config.NewWatcher(configPath, nil, logger)
		if err != nil {
			return err
		}
		watcher, source = w, w
	}

	store, err := session.NewStore(cfg.Server.SessionDB)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	var pipeline *orchestrator.Pipeline
	if addr := cfg.Server.CollaboratorAddr; addr != "" {
		collab, err := codec.NewCollaboratorClient(addr)
		if err != nil {
			return err
		}
		defer collab.Close()

		pipeline, err = orchestrator.New(source, orchestrator.Deps{
			Searcher:  collab,
			Generator: collab,
			Store:     store,
			Journal:   logging.NewJournal(store.DB()),
			Logger:    logger,
		})
		if err != nil {
			return err
		}
	} else {
		logger.Info("no collaborator configured; Turn is disabled")
	}

	gs, hs := codec.NewGRPCServer(codec.NewServer(source, pipeline, logger), logger)
	lis, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("guardrail server listening",
			zap.String("addr", lis.Addr().String()),
			zap.String("session_db", cfg.Server.SessionDB))
		return gs.Serve(lis)
	})
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		hs.Shutdown()
		gs.GracefulStop()
		return nil
	})
	return g.Wait()
}

// #endregion serve
