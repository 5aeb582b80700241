package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/swipetrip/internal/pkg/config"
	"github.com/FACorreiaa/swipetrip/internal/pkg/logger"
	"github.com/FACorreiaa/swipetrip/internal/routes"
	"github.com/FACorreiaa/swipetrip/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.LogLevel, zap.String("service", cfg.Observability.ServiceName)); err != nil {
		return err
	}
	lg := logger.Log
	defer func() { _ = lg.Sync() }()

	otelShutdown, err := server.InitObservability(cfg.Observability, lg)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			lg.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	app, err := routes.NewApp(cfg, lg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := server.New(cfg, lg)
	srv.SetRouter(server.SetupRouter(cfg, app, lg))
	httpServer := srv.HTTPServer()
	pprofServer := server.NewPprofServer(cfg.Observability.PprofAddr, lg)

	ctx, stop := server.SignalContext(context.Background())
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, httpServer)
	})
	g.Go(func() error {
		return srv.Run(gctx, pprofServer)
	})
	g.Go(func() error {
		app.Watcher.Start(gctx)
		<-gctx.Done()
		app.Watcher.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		lg.Error("Server stopped with error", zap.Error(err))
		return err
	}
	lg.Info("Graceful shutdown complete")
	return nil
}
