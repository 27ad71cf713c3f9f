package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"culligan/config"
	"culligan/internal/api"
	"culligan/internal/ayla"
	"culligan/internal/logging"
	"culligan/internal/mqtt"
	"culligan/internal/poller"

	"github.com/carlmjohnson/versioninfo"
)

const (
	shutdownTimeout   = 10 * time.Second
	signInTimeout     = 30 * time.Second
	defaultConfigPath = "config.json"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Parse command-line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file (.json, .yaml or .yml)")
	useEnv := flag.Bool("env", false, "Load configuration from SOFTENER_* environment variables")
	versioninfo.AddFlag(flag.CommandLine)
	flag.Parse()

	// Load configuration
	var cfg *config.Config
	var err error

	if *useEnv {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.Load(*configPath)
	}

	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LoggerConfig())
	slog.SetDefault(logger)

	// Provider client and session
	clientCfg, err := cfg.ClientConfig(logger)
	if err != nil {
		return fmt.Errorf("failed to build provider client: %w", err)
	}
	client := ayla.NewClient(clientCfg)
	session := ayla.NewSession(client, cfg.Credentials(), logger)

	signInCtx, signInCancel := context.WithTimeout(context.Background(), signInTimeout)
	if err := session.Authenticate(signInCtx); err != nil {
		// The poller retries sign-in; the API answers 503 until then
		logger.Warn("Initial sign-in failed, continuing unauthenticated", "error", err)
	}
	signInCancel()

	deviceAPI := logging.NewDeviceAPILogger(session, logger)

	routerCfg := api.RouterConfig{
		API:     deviceAPI,
		Session: session,
		APIKey:  cfg.Bridge.APIKey,
		Logger:  logger,
	}

	// MQTT publishing and polling
	var (
		mqttClient *mqtt.Client
		poll       *poller.Poller
	)
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(mqtt.Config{
			BrokerURL:   cfg.MQTT.BrokerURL,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			QoS:         byte(cfg.MQTT.QoS),
			TopicPrefix: cfg.MQTT.TopicPrefix,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		defer mqttClient.Close()

		poll = poller.New(deviceAPI, session, mqttClient, cfg.PollInterval(), logger)
		go poll.Start()
		routerCfg.Poller = poll
	} else {
		logger.Info("MQTT disabled, polling is off")
	}

	// Local REST API
	router := api.NewRouter(routerCfg)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*time.Duration(cfg.API.TimeoutSeconds)*time.Second + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", cfg.Addr(), "version", versioninfo.Version)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if poll != nil {
			poll.Stop()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Starting graceful shutdown", "signal", sig.String())

		if poll != nil {
			logger.Info("Stopping poller")
			poll.Stop()
		}

		logger.Info("Shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		session.SignOut()
		logger.Info("Graceful shutdown complete")
	}

	return nil
}
