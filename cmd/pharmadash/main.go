package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/goliatone/go-pharmadash/components/dashboard/gorouter"
	"github.com/goliatone/go-pharmadash/pkg/config"
	"github.com/goliatone/go-pharmadash/pkg/logging"
)

type cli struct {
	Config  string   `short:"c" type:"path" help:"Path to the pharmadash YAML config file."`
	EnvFile []string `name:"env-file" type:"path" help:"Dotenv files to load before reading the environment (defaults to .env)."`
	Addr    string   `help:"Listen address, overrides server.addr."`
}

func main() {
	var args cli
	kctx := kong.Parse(&args,
		kong.Name("pharmadash"),
		kong.Description("Pharmacy operations dashboard server."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(args.Run())
}

// Run loads configuration, wires the dashboard and serves it until SIGINT or SIGTERM.
func (c *cli) Run() error {
	cfg, err := config.Load(c.Config, c.EnvFile...)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dash, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	server := router.NewFiberAdapter()
	server.WrappedRouter().Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	if err := gorouter.Mount(server.Router(), dash.basePath, dash.routes(logger)); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("pharmadash listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("base_path", dash.basePath),
			zap.Bool("mock_backend", cfg.Backend.BaseURL == ""),
		)
		errCh <- server.Serve(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("pharmadash stopped")
	return nil
}
