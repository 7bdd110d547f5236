// Command lomesh-inspect is an interactive inspector for LoMesh
// node-state snapshots.
//
// It boots a device-state aggregate against a snapshot file the same
// way firmware does (load-or-defaults, node number allocation,
// channel apply), then drops into an interactive shell for examining
// the node table, injecting synthetic observations and exercising the
// save path.
//
// Usage:
//
//	lomesh-inspect [flags]
//
// Flags:
//
//	-db string         Snapshot file path (default "db.snap")
//	-events string     Diagnostics event file (empty = console only)
//	-config string     YAML configuration file path
//	-mac string        Hardware MAC address (default "de:ad:be:ef:00:01")
//	-capacity int      Node table capacity (default 32)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-hw-model string   Hardware model string (default "lomesh-inspect")
//	-firmware string   Firmware version string (default "0.0.0-dev")
//
// Examples:
//
//	# Inspect a snapshot pulled off a device
//	lomesh-inspect -db /tmp/db.snap
//
//	# Simulate with diagnostics capture
//	lomesh-inspect -db dev.snap -events dev.llog -log-level debug
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lomesh-protocol/lomesh-go/pkg/device"
	"github.com/lomesh-protocol/lomesh-go/pkg/log"
	"github.com/lomesh-protocol/lomesh-go/pkg/persistence"
)

// Config holds the inspector configuration. Flags override file
// values.
type Config struct {
	DB       string `yaml:"db"`
	Events   string `yaml:"events"`
	MAC      string `yaml:"mac"`
	Capacity int    `yaml:"capacity"`
	LogLevel string `yaml:"log_level"`

	HWModel         string `yaml:"hw_model"`
	FirmwareVersion string `yaml:"firmware_version"`

	ConfigFile string `yaml:"-"`
}

var config Config

func init() {
	flag.StringVar(&config.DB, "db", "db.snap", "Snapshot file path")
	flag.StringVar(&config.Events, "events", "", "Diagnostics event file (empty = console only)")
	flag.StringVar(&config.ConfigFile, "config", "", "YAML configuration file path")
	flag.StringVar(&config.MAC, "mac", "de:ad:be:ef:00:01", "Hardware MAC address")
	flag.IntVar(&config.Capacity, "capacity", 32, "Node table capacity")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&config.HWModel, "hw-model", "lomesh-inspect", "Hardware model string")
	flag.StringVar(&config.FirmwareVersion, "firmware", "0.0.0-dev", "Firmware version string")
}

func main() {
	flag.Parse()

	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if config.ConfigFile != "" {
		if err := loadConfigFile(config.ConfigFile, &config, explicit); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config file: %v\n", err)
			os.Exit(1)
		}
	}

	logger := setupLogging(config.LogLevel)

	mac, err := parseMAC(config.MAC)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid MAC address %q: %v\n", config.MAC, err)
		os.Exit(1)
	}

	diag := log.Logger(log.NewSlogAdapter(logger))
	var fileLog *log.FileLogger
	if config.Events != "" {
		fileLog, err = log.NewFileLogger(config.Events)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open event file: %v\n", err)
			os.Exit(1)
		}
		defer fileLog.Close()
		diag = log.NewMultiLogger(diag, fileLog)
	}

	power := &loggingPowerSink{logger: logger}
	plugins := &loggingPluginDispatcher{logger: logger}
	cipher := &recordingCipher{}

	svc, err := device.New(device.Config{
		Capacity:        config.Capacity,
		Store:           persistence.NewStore(config.DB),
		Cipher:          cipher,
		MAC:             macSource{addr: mac},
		Clock:           systemClock{},
		Random:          newSystemRandom(),
		Power:           power,
		Plugins:         plugins,
		Logger:          logger,
		Diagnostics:     diag,
		HWModel:         config.HWModel,
		FirmwareVersion: config.FirmwareVersion,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create device service: %v\n", err)
		os.Exit(1)
	}

	svc.Init()

	insp, err := newInspector(svc, cipher, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start interactive mode: %v\n", err)
		os.Exit(1)
	}
	insp.run()
}

// loadConfigFile merges YAML configuration under the flag values.
// Flags named in explicit were set on the command line and always
// win, even at their default value; everything else may be filled
// from the file.
func loadConfigFile(path string, cfg *Config, explicit map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if !explicit["db"] && file.DB != "" {
		cfg.DB = file.DB
	}
	if !explicit["events"] && file.Events != "" {
		cfg.Events = file.Events
	}
	if !explicit["capacity"] && file.Capacity > 0 {
		cfg.Capacity = file.Capacity
	}
	if !explicit["mac"] && file.MAC != "" {
		cfg.MAC = file.MAC
	}
	if !explicit["log-level"] && file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if !explicit["hw-model"] && file.HWModel != "" {
		cfg.HWModel = file.HWModel
	}
	if !explicit["firmware"] && file.FirmwareVersion != "" {
		cfg.FirmwareVersion = file.FirmwareVersion
	}
	return nil
}

// setupLogging configures the process-wide slog logger.
func setupLogging(level string) *slog.Logger {
	var lv slog.Level
	switch level {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
	slog.SetDefault(logger)
	return logger
}
