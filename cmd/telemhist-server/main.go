// Package main provides the entry point for telemhist-server.
//
// telemhist-server samples subsystem telemetry into a circular
// persistent record log and serves capacity management and history
// paging requests over the ground link.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/calliope-space/telemhist/internal/collector"
	"github.com/calliope-space/telemhist/internal/history"
	"github.com/calliope-space/telemhist/internal/infra/buildinfo"
	"github.com/calliope-space/telemhist/internal/infra/confloader"
	"github.com/calliope-space/telemhist/internal/infra/shutdown"
	"github.com/calliope-space/telemhist/internal/server/config"
	"github.com/calliope-space/telemhist/internal/server/linkserver"
	"github.com/calliope-space/telemhist/internal/storage"
	"github.com/calliope-space/telemhist/internal/telemetry/logger"
	"github.com/calliope-space/telemhist/internal/telemetry/metric"
	"github.com/calliope-space/telemhist/pkg/crypto/sealer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("telemhist-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting telemhist-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	metrics := metric.NewRegistry()

	records, err := initStorage(cfg, log, metrics)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	store, err := history.New(records, history.Config{
		Capacity:          cfg.History.Capacity,
		Tolerance:         time.Duration(cfg.History.Tolerance) * time.Second,
		LockDuringPersist: cfg.History.LockDuringPersist,
		Logger:            log,
		Metrics:           metrics,
	})
	if err != nil {
		return fmt.Errorf("init history store: %w", err)
	}

	linkSrv, err := linkserver.New(linkserver.Config{
		Addr:      cfg.Link.Addr,
		MaxFrame:  cfg.Link.MaxFrame,
		RateLimit: cfg.Link.RateLimit,
		RateBurst: cfg.Link.RateBurst,
		Handler:   linkserver.NewHandler(store, log, metrics),
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("init link server: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	shutdownHandler.OnShutdown(func(_ context.Context) error {
		log.Info("shutting down record storage")
		return records.Close()
	})

	if cfg.Collector.Enabled {
		coll, err := collector.New(collector.Config{
			Interval: cfg.Collector.Interval,
			Sampler:  collector.NewBenchSampler(),
			Store:    store,
			Logger:   log,
		})
		if err != nil {
			return fmt.Errorf("init collector: %w", err)
		}
		coll.Start()
		shutdownHandler.OnShutdown(func(_ context.Context) error {
			log.Info("stopping collector")
			coll.Stop()
			return nil
		})
	}

	if cfg.Metrics.Enabled {
		metricsSrv := &http.Server{
			Addr:    cfg.Metrics.Addr,
			Handler: metricsMux(metrics),
		}
		go func() {
			log.Info("metrics server listening", "addr", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server error", "error", err)
			}
		}()
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return metricsSrv.Shutdown(ctx)
		})
	}

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down link server")
		return linkSrv.Shutdown(ctx)
	})

	go func() {
		if err := linkSrv.ListenAndServe(); err != nil {
			log.Error("link server error", "error", err)
		}
	}()

	if *configFile != "" {
		stopWatch, err := watchConfig(*configFile, log)
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(_ context.Context) error {
				return stopWatch()
			})
		}
	}

	log.Info("server started")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment on top of
// the defaults.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// initStorage builds the record store selected by the configuration.
func initStorage(cfg *config.ServerConfig, log logger.Logger, metrics *metric.Registry) (storage.RecordStore, error) {
	switch cfg.Storage.Engine {
	case "memory":
		log.Warn("memory storage engine selected, records are not persistent")
		return storage.NewMemoryStore(), nil

	case "badger":
		badgerCfg := storage.DefaultBadgerConfig(cfg.Storage.DataDir)
		badgerCfg.Logger = log
		badgerCfg.Metrics = metrics
		badgerCfg.SyncWrites = cfg.Storage.SyncWrites
		if cfg.Storage.GCInterval > 0 {
			badgerCfg.GCInterval = cfg.Storage.GCInterval
		}
		if cfg.Storage.GCThreshold > 0 {
			badgerCfg.GCThreshold = cfg.Storage.GCThreshold
		}

		if cfg.Security.EncryptionKey != "" {
			s, err := initSealer(&cfg.Security)
			if err != nil {
				return nil, err
			}
			badgerCfg.Sealer = s
			log.Info("record sealing enabled", "algorithm", s.Algorithm())
		}

		return storage.NewBadgerStore(badgerCfg)

	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.Storage.Engine)
	}
}

// initSealer builds the at-rest record sealer from the security section.
func initSealer(sec *config.SecuritySection) (sealer.Sealer, error) {
	key, err := hex.DecodeString(sec.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}

	switch sec.Cipher {
	case "":
		return sealer.New(key)
	case "aes-gcm":
		return sealer.NewWithAlgorithm(key, sealer.AlgorithmAESGCM)
	case "chacha20-poly1305":
		return sealer.NewWithAlgorithm(key, sealer.AlgorithmChaCha20)
	default:
		return nil, fmt.Errorf("unknown cipher %q", sec.Cipher)
	}
}

// metricsMux serves the Prometheus endpoint.
func metricsMux(metrics *metric.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// watchConfig hot-reloads the log level when the config file changes.
func watchConfig(path string, log logger.Logger) (func() error, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		return nil, err
	}

	watcher.OnChange(func(changed string) {
		loader := confloader.NewLoader(confloader.WithConfigFile(path))
		cfg := config.Default()
		if err := loader.Load(cfg); err != nil {
			log.Warn("config reload failed", "file", changed, "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level reloaded", "level", cfg.Log.Level)
	})

	watcher.StartAsync()
	return watcher.Stop, nil
}
