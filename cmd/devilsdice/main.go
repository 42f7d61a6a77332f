// Package main starts the dice game server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/config"
	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/logging"
	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/server"
	"github.com/ramonabrendel1204-sketch/Devilsdice/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("build logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.OTelEndpoint, telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn().Err(err).Msg("shutdown telemetry")
		}
	}()

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	srv, err := server.New(policy, server.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		MsgsPerSecond:  cfg.MsgsPerSecond,
		MsgBurst:       cfg.MsgBurst,
		SendBuffer:     cfg.SendBuffer,
	}, logger)
	if err != nil {
		return err
	}

	logger.Info().
		Str("hold_broadcast", string(policy.HoldBroadcast)).
		Bool("allow_recommit", policy.AllowRecommit).
		Bool("enforce_turn", policy.EnforceTurn).
		Bool("tracing", cfg.OTelEndpoint != "").
		Msg("starting devilsdice")
	return srv.ListenAndServe(ctx, cfg.Addr(), cfg.ShutdownTimeout)
}
