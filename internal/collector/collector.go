package collector

import (
	"context"
	"time"

	"github.com/calliope-space/telemhist/internal/core/domain"
	"github.com/calliope-space/telemhist/internal/history"
	"github.com/calliope-space/telemhist/internal/telemetry/logger"
)

// DefaultInterval is the default sampling period.
const DefaultInterval = 30 * time.Second

// Sampler produces one telemetry snapshot per call. Implementations
// talk to the subsystem buses; the bench sampler fabricates values.
type Sampler interface {
	Sample(ctx context.Context) (*domain.Snapshot, error)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(ctx context.Context) (*domain.Snapshot, error)

func (f SamplerFunc) Sample(ctx context.Context) (*domain.Snapshot, error) {
	return f(ctx)
}

// Config configures the collector.
type Config struct {
	// Interval between samples. Defaults to DefaultInterval.
	Interval time.Duration

	// Sampler produces the snapshots. Required.
	Sampler Sampler

	// Store receives the snapshots. Required.
	Store *history.Store

	// Logger is the structured logger.
	Logger logger.Logger
}

// Collector drives the periodic sample-and-write cycle.
type Collector struct {
	interval time.Duration
	sampler  Sampler
	store    *history.Store
	logger   logger.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a collector. It does not start sampling until Start.
func New(cfg Config) (*Collector, error) {
	if cfg.Sampler == nil {
		return nil, domain.ErrMissingArgument.WithDetails("sampler is required")
	}
	if cfg.Store == nil {
		return nil, domain.ErrMissingArgument.WithDetails("store is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	return &Collector{
		interval: cfg.Interval,
		sampler:  cfg.Sampler,
		store:    cfg.Store,
		logger:   cfg.Logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start launches the sampling loop on its own goroutine.
func (c *Collector) Start() {
	go c.run()
	c.logger.Info("collector started", "interval", c.interval)
}

func (c *Collector) run() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.CollectOnce(context.Background()); err != nil {
				c.logger.Warn("collection cycle failed", "error", err)
			}

		case <-c.stopCh:
			return
		}
	}
}

// CollectOnce runs a single sample-and-write cycle.
func (c *Collector) CollectOnce(ctx context.Context) error {
	snap, err := c.sampler.Sample(ctx)
	if err != nil {
		return domain.ErrNotAvailable.WithDetails("sample telemetry").Wrap(err)
	}

	slot, err := c.store.Write(ctx, snap)
	if err != nil {
		return err
	}

	c.logger.Debug("snapshot recorded",
		"slot", slot,
		"timestamp", snap.TimeOrder.Timestamp)
	return nil
}

// Stop halts the sampling loop and waits for it to drain.
func (c *Collector) Stop() {
	close(c.stopCh)
	<-c.doneCh
	c.logger.Info("collector stopped")
}
