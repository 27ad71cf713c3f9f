package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"culligan/config"
	"culligan/internal/ayla"
	"culligan/internal/logging"

	"github.com/carlmjohnson/versioninfo"
)

// actions lists what -action accepts, in help order
var actions = []string{"signin", "profile", "devices", "properties"}

func validAction(action string) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// deviceReport is one device with its properties, as printed by -action properties
type deviceReport struct {
	ayla.Device
	Properties []ayla.Property `json:"properties"`
}

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file (.json, .yaml or .yml)")
	useEnv := flag.Bool("env", false, "Load configuration from SOFTENER_* environment variables")
	action := flag.String("action", "devices", "Action to perform: "+strings.Join(actions, ", "))
	dsn := flag.String("dsn", "", "Device serial number for -action properties (default: every device)")
	debug := flag.Bool("debug", false, "Log API requests to stderr")
	versioninfo.AddFlag(flag.CommandLine)
	flag.Parse()

	if err := run(*configPath, *useEnv, *action, *dsn, *debug, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, useEnv bool, action, dsn string, debug bool, out io.Writer) error {
	if !validAction(action) {
		return fmt.Errorf("unknown action %q (use %s)", action, strings.Join(actions, ", "))
	}

	var cfg *config.Config
	var err error

	if useEnv {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.Load(configPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger := logging.NewLogger(logging.LoggerConfig{Format: "text", Level: level, Output: "stderr"})

	clientCfg, err := cfg.ClientConfig(logger)
	if err != nil {
		return err
	}
	session := ayla.NewSession(ayla.NewClient(clientCfg), cfg.Credentials(), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := session.Authenticate(ctx); err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}

	var result interface{}

	switch action {
	case "signin":
		token, _ := session.Token()
		result = map[string]interface{}{
			"session_id":  session.ID(),
			"state":       session.State(),
			"obtained_at": token.ObtainedAt,
		}

	case "profile":
		profile, err := session.UserProfile(ctx)
		if err != nil {
			return fmt.Errorf("failed to read profile: %w", err)
		}
		result = profile

	case "devices":
		devices, err := session.ListDevices(ctx)
		if err != nil {
			return fmt.Errorf("failed to list devices: %w", err)
		}
		result = devices

	case "properties":
		if dsn != "" {
			properties, err := session.GetProperties(ctx, dsn)
			if err != nil {
				return fmt.Errorf("failed to get properties of %s: %w", dsn, err)
			}
			result = properties
			break
		}

		devices, err := session.ListDevices(ctx)
		if err != nil {
			return fmt.Errorf("failed to list devices: %w", err)
		}
		reports := make([]deviceReport, 0, len(devices))
		for _, device := range devices {
			properties, err := session.GetProperties(ctx, device.DSN)
			if err != nil {
				return fmt.Errorf("failed to get properties of %s: %w", device.DSN, err)
			}
			reports = append(reports, deviceReport{Device: device, Properties: properties})
		}
		result = reports
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
