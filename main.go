// main.go
// Application entry point: loads configuration, wires the contest engine to Discord and serves the observer API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/erilali/spamcontest/internal/api"
	"github.com/erilali/spamcontest/internal/config"
	"github.com/erilali/spamcontest/internal/contest"
	"github.com/erilali/spamcontest/internal/discord"
	"github.com/erilali/spamcontest/internal/hub"
	"github.com/erilali/spamcontest/internal/logger"
	"github.com/erilali/spamcontest/internal/metrics"
	"github.com/nats-io/nats.go"
	"github.com/spf13/pflag"
)

const (
	exitOK = iota
	exitRuntime
	exitConfig
	exitGateway
)

func main() {
	os.Exit(run())
}

func run() int {
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	loggerConfig := pflag.String("logger-config", "logger_config.json", "logger configuration file")
	logLevel := pflag.String("log-level", "", "override the log level (debug, info, warn, error)")
	pflag.Parse()

	envErr := config.LoadEnvFile(*envFile)

	logConfig, err := config.LoadLoggerConfig(*loggerConfig)
	if err != nil {
		fmt.Printf("Error loading logger config: %v, using defaults\n", err)
		logConfig = logger.DefaultLogConfig()
	}
	// an invalid environment is reported once the logger is up
	cfg, cfgErr := config.Load()
	logConfig = cfg.LoggerConfig(logConfig, *logLevel)
	logger.InitLogger(logConfig)
	serverLogger := logger.NewLogger("server")
	serverLogger.WithFields(map[string]interface{}{
		"level":       logConfig.Level,
		"log_to_file": logConfig.LogToFile,
		"log_to_json": logConfig.LogToJSON,
		"file_path":   logConfig.FilePath,
	}).Info("Logger initialized")

	if envErr != nil {
		if errors.Is(envErr, fs.ErrNotExist) {
			serverLogger.Warnf("No env file at %s, using the process environment", *envFile)
		} else {
			serverLogger.WithError(envErr).Warn("Failed to load env file")
		}
	}

	if cfgErr != nil {
		serverLogger.WithError(cfgErr).Error("Invalid configuration")
		return exitConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		nc *nats.Conn
		js nats.JetStreamContext
	)
	if cfg.NatsEnabled {
		nc, js = api.ConnectJetStream(cfg.NatsURL, cfg.JetStreamRetention, serverLogger)
	} else {
		serverLogger.Info("NATS disabled, contest journal is off")
	}
	if nc != nil {
		defer nc.Close()
	}

	registry := contest.NewRegistry(cfg.SinkCapacity)
	collector := metrics.New()
	observerHub := hub.NewHub(nc, js, logger.NewLogger("hub"), registry.Active)
	go observerHub.Run(ctx)

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		serverLogger.WithError(err).Error("Failed to create Discord session")
		return exitGateway
	}

	// Contests outlive ctx until the gateway is closed, so no message arrives after they are abandoned.
	contestCtx, abandon := context.WithCancel(context.Background())
	defer abandon()
	orchestrator := contest.NewOrchestrator(contestCtx, registry,
		discord.NewGateway(session, logger.NewLogger("discord")),
		contest.Options{
			Observer: contest.Observers{observerHub, collector},
			Logger:   logger.NewLogger("contest"),
		})
	discord.NewEvents(contestCtx, orchestrator, logger.NewLogger("discord")).Register(session)

	if err := discord.Connect(ctx, session, serverLogger); err != nil {
		serverLogger.WithError(err).Error("Failed to connect to Discord")
		return exitGateway
	}
	serverLogger.Info("Connected to Discord")

	server := &api.Server{
		Addr:     cfg.HTTPAddr,
		Hub:      observerHub,
		Registry: registry,
		Gatherer: collector.Registry(),
		NatsConn: nc,
		Js:       js,
		Logger:   logger.NewLogger("api"),
	}
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Run(ctx) }()

	code := exitOK
	select {
	case <-ctx.Done():
		serverLogger.Info("Shutting down")
	case err := <-serverErr:
		serverLogger.WithError(err).Error("HTTP server failed")
		code = exitRuntime
		stop()
	}

	if err := session.Close(); err != nil {
		serverLogger.WithError(err).Warn("Failed to close Discord session")
	}
	abandon()
	orchestrator.Wait()

	if code == exitOK {
		if err := <-serverErr; err != nil {
			serverLogger.WithError(err).Error("HTTP server shutdown failed")
			code = exitRuntime
		}
	}
	serverLogger.Info("Bye")
	return code
}
