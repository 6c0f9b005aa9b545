package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doudizhu/internal/app"
	"doudizhu/internal/bot"
	"doudizhu/internal/config"
	"doudizhu/internal/logging"
	"doudizhu/internal/ports"
	"doudizhu/internal/ports/httpapi"
	"doudizhu/internal/ports/natsbus"
	"doudizhu/internal/ports/ws"
)

const (
	envPrefix       = "DDZ_"
	tickInterval    = time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "data/server_config.json", "path to the JSON game config")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := logging.New(*debug)
	if err := run(*configPath, logger); err != nil {
		logger.Error("server: %v", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *logging.Logger) error {
	if err := config.LoadGameConfig(configPath); err != nil {
		return err
	}
	cfg, err := config.ApplyEnv(config.GetGameConfig(), envPrefix, config.Environ())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	brain, err := bot.NewBrain(cfg.TimeoutPolicy)
	if err != nil {
		return err
	}
	factory := func(id string, fixed bool) *app.Room {
		return app.NewRoom(id, app.RoomOptions{
			Fixed:              fixed,
			Jokers:             cfg.Jokers,
			TurnTimeout:        cfg.TurnTimeout(),
			EndGameOnDeparture: cfg.EndGameOnDeparture,
			Brain:              brain,
		})
	}
	svc := app.NewService(app.NewRegistry(cfg.RoomCount, cfg.AllowAdhocRooms, factory), logger.With("component", "service"))

	var sessions ws.Sessions
	if cfg.TokenSecret != "" {
		sessions = app.NewTokenService(cfg.TokenSecret, cfg.TokenIssuer, cfg.TokenTTL())
	} else {
		logger.Warn("server: token_secret is empty, reconnect tokens are disabled")
	}

	var mirror ports.EventMirror
	if cfg.NatsURL != "" {
		nc, err := natsbus.Connect(cfg.NatsURL, "doudizhu-server")
		if err != nil {
			return err
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("server: nats drain: %v", err)
			}
		}()
		mirror = natsbus.NewPublisher(nc, cfg.NatsSubjectPrefix)
		logger.Info("server: mirroring room events to %s", cfg.NatsURL)
	}

	gateway := ws.NewGateway(svc, sessions, mirror, logger.With("component", "ws"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go gateway.Run(ctx, tickInterval)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(svc, gateway),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("server: listening on %s with %d rooms", cfg.HTTPAddr, cfg.RoomCount)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
