package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"zigbee-things/internal/adapter"
	"zigbee-things/internal/classifier"
	"zigbee-things/internal/coordinator"
	"zigbee-things/internal/store"
	"zigbee-things/internal/web"
	"zigbee-things/internal/zcl"
	"zigbee-things/internal/zcl/clusters"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

type Config struct {
	Coordinator coordinator.Config `yaml:"coordinator"`
	Classifier  classifier.Config  `yaml:"classifier"`
	Adapter     adapter.Config     `yaml:"adapter"`
	Web         struct {
		Listen         string   `yaml:"listen"`
		APIKey         string   `yaml:"api_key"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"web"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	MQTT struct {
		Enabled      bool   `yaml:"enabled"`
		Broker       string `yaml:"broker"`
		Username     string `yaml:"username"`
		Password     string `yaml:"password"`
		TopicPrefix  string `yaml:"topic_prefix"`
		RemotePrefix string `yaml:"remote_prefix"`
	} `yaml:"mqtt"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

func (c *Config) validate() error {
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	if c.MQTT.RemotePrefix != "" && c.MQTT.RemotePrefix == c.MQTT.TopicPrefix {
		return fmt.Errorf("mqtt.remote_prefix must differ from mqtt.topic_prefix")
	}
	if c.Coordinator.LocalIEEE != "" {
		if _, err := coordinator.ParseIEEE(c.Coordinator.LocalIEEE); err != nil {
			return fmt.Errorf("coordinator.local_ieee: %w", err)
		}
	}
	if c.Adapter.Port != "" && c.Adapter.Baud <= 0 {
		return fmt.Errorf("adapter.baud must be positive, got %d", c.Adapter.Baud)
	}
	return nil
}

func main() {
	// Temporary logger for config loading errors.
	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if len(os.Args) > 2 {
		var err error
		switch os.Args[1] {
		case "classify":
			err = runClassify(os.Args[2], os.Stdout)
		case "expose":
			err = runExpose(os.Args[2], os.Stdout)
		default:
			err = fmt.Errorf("unknown command %q (usage: zigbee-things [config.yaml] | classify <descriptor.yaml> | expose <devices.json>)", os.Args[1])
		}
		if err != nil {
			bootLogger.Error(os.Args[1], "err", err)
			os.Exit(1)
		}
		return
	}

	cfgPath := "config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		bootLogger.Error("load config", "err", err)
		os.Exit(1)
	}

	if err := cfg.validate(); err != nil {
		bootLogger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("zigbee-things starting", "version", version)

	registry := zcl.NewRegistry(logger)
	clusters.RegisterStandard(registry)
	logger.Info("ZCL registry initialized", "clusters", registry.Len())

	db, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		logger.Error("open store", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	cls := classifier.New(registry, db, cfg.Classifier, logger)

	// The bridge is needed before the coordinator when it carries the
	// adapter traffic.
	mqtt := initMQTT(cfg, logger)

	var transport coordinator.Transport
	var radio *adapter.Adapter
	switch {
	case cfg.Adapter.Port != "":
		radio, err = adapter.OpenSerial(cfg.Adapter, logger)
		if err != nil {
			logger.Error("open adapter", "err", err)
			mqtt.Stop()
			os.Exit(1)
		}
		transport = radio
	case mqtt.Transport() != nil:
		transport = mqtt.Transport()
	default:
		logger.Warn("no adapter or MQTT broker configured, device requests are only logged")
		transport = &logTransport{logger: logger.With("component", "dry_run")}
	}

	events := coordinator.NewEventBus(logger)
	coord, err := coordinator.New(transport, db, registry, cls, events, cfg.Coordinator, logger)
	if err != nil {
		logger.Error("create coordinator", "err", err)
		os.Exit(1)
	}
	if err := coord.Start(); err != nil {
		logger.Error("start coordinator", "err", err)
		os.Exit(1)
	}
	if radio != nil {
		radio.OnEvent(coord.Dispatch)
	}
	mqtt.Start(coord)

	var webOpts []web.ServerOption
	if cfg.Web.APIKey != "" {
		webOpts = append(webOpts, web.WithAPIKey(cfg.Web.APIKey))
	}
	if len(cfg.Web.AllowedOrigins) > 0 {
		webOpts = append(webOpts, web.WithAllowedOrigins(cfg.Web.AllowedOrigins))
	}
	webOpts = append(webOpts, web.WithVersion(version))
	webServer := web.NewServer(coord, logger, webOpts...)

	httpServer := &http.Server{
		Addr:         cfg.Web.Listen,
		Handler:      webServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("web server starting", "addr", cfg.Web.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	signal.Stop(sigCh)
	logger.Info("shutting down", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "err", err)
	}
	webServer.Stop()
	mqtt.Stop()
	coord.Stop()
	if radio != nil {
		if err := radio.Close(); err != nil {
			logger.Error("close adapter", "err", err)
		}
	}

	logger.Info("goodbye")
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Web.Listen == "" {
		cfg.Web.Listen = "127.0.0.1:8080"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "zigbee-things.db"
	}
	if cfg.Adapter.Baud == 0 {
		cfg.Adapter.Baud = 460800
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "zigbee2mqtt"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	return &cfg, nil
}

func newLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
