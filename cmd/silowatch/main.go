package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automabit/silowatch/internal/alerter"
	"github.com/automabit/silowatch/internal/api"
	"github.com/automabit/silowatch/internal/config"
	"github.com/automabit/silowatch/internal/evaluator"
	"github.com/automabit/silowatch/internal/notifier"
	"github.com/automabit/silowatch/internal/simulator"
	"github.com/automabit/silowatch/internal/types"
	"github.com/automabit/silowatch/internal/version"
	"github.com/automabit/silowatch/internal/webui"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (defaults are used when empty)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}

	// Keep the last 1000 log lines for /api/logs
	logBuffer := webui.NewLogBuffer(1000)

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logLevelParsed, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logLevelParsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevelParsed)

	multiWriter := io.MultiWriter(os.Stdout, logBuffer)
	logger := zerolog.New(multiWriter).With().
		Timestamp().
		Str("version", version.Version).
		Str("commit", version.Commit).
		Logger()

	logger.Info().Msg("Starting SiloWatch")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("config_path", *configPath).
			Msg("Failed to load configuration")
	}

	logger.Info().
		Dur("cooldown", cfg.Alerts.Cooldown).
		Int("channel_count", len(cfg.Notifier.Channels)).
		Msg("Configuration loaded")

	toasts := notifier.NewToastQueue(cfg.Notifier, logger)
	defer toasts.Stop()

	apprise := notifier.NewApprise(cfg.Notifier, os.Getenv("APPRISE_API_URL"), logger)
	sink := notifier.Multi(toasts, apprise)

	eval := evaluator.NewEvaluator(cfg, logger)
	alertEngine := alerter.NewEngine(eval, sink, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiServer := api.NewServer(alertEngine, toasts, logger, cfg.API.Port)
	apiServer.SetLogBuffer(logBuffer)
	apiServer.SetConfig(cfg)

	if cfg.SimulatorEnabled() {
		sim := simulator.New(cfg.Simulator)
		apiServer.SetSiloManager(sim)

		runner := simulator.NewRunner(sim, cfg.Simulator.Interval, func(snapshot []types.Silo) {
			alertEngine.ProcessSnapshot(snapshot)
		}, logger)

		go func() {
			if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("Simulator stopped")
			}
		}()

		logger.Info().
			Int("silo_count", len(cfg.Simulator.Silos)).
			Dur("interval", cfg.Simulator.Interval).
			Msg("Simulator started")
	} else {
		logger.Info().Msg("Simulator disabled, waiting for readings on /api/readings")
	}

	apiServer.SetReloadFunc(func() (*config.Config, error) {
		logger.Info().Str("config_path", *configPath).Msg("Reloading configuration")
		newCfg, err := config.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		// Thresholds and cooldown take effect on the next snapshot; the
		// simulator and notifier keep their startup settings.
		alertEngine.SetEvaluator(evaluator.NewEvaluator(newCfg, logger))
		return newCfg, nil
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().
				Err(err).
				Msg("API server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info().Msg("SiloWatch running, press Ctrl+C to stop")

	<-sigChan
	logger.Info().Msg("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error shutting down API server")
	}

	logger.Info().Msg("SiloWatch stopped")
}
