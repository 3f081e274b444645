package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/calliope-space/telemhist/internal/core/domain"
	"github.com/calliope-space/telemhist/internal/telemetry/logger"
	"github.com/calliope-space/telemhist/internal/telemetry/metric"
	"github.com/calliope-space/telemhist/pkg/crypto/sealer"
)

// Default Badger tuning for the flight target: small caches, no fsync
// per write (the log tolerates losing the record in flight; the next
// collection cycle writes a fresh one).
const (
	DefaultGCInterval              = 10 * time.Minute
	DefaultGCThreshold             = 0.5
	DefaultCacheSize         int64 = 16 << 20  // 16MB
	DefaultValueLogFileSize  int64 = 256 << 20 // 256MB
	DefaultNumMemtables            = 2
	DefaultNumLevelZeroTbls        = 5
)

// recordKeyPrefix namespaces snapshot records inside the database.
var recordKeyPrefix = []byte("rec/")

// BadgerConfig configures the Badger-backed record store.
type BadgerConfig struct {
	// Dir is the storage directory.
	Dir string

	// GCInterval is the interval between value-log GC runs.
	GCInterval time.Duration

	// GCThreshold is the GC discard ratio (0.0–1.0).
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	ValueLogFileSize int64

	// SyncWrites enables fsync after each write.
	SyncWrites bool

	// Sealer optionally encrypts records at rest.
	Sealer sealer.Sealer

	// Logger is the structured logger.
	Logger logger.Logger

	// Metrics is the telemetry registry.
	Metrics *metric.Registry
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:              dir,
		GCInterval:       DefaultGCInterval,
		GCThreshold:      DefaultGCThreshold,
		CacheSize:        DefaultCacheSize,
		ValueLogFileSize: DefaultValueLogFileSize,
	}
}

// BadgerStore implements RecordStore on Badger v3.
type BadgerStore struct {
	db      *badger.DB
	cfg     BadgerConfig
	sealer  sealer.Sealer
	logger  logger.Logger
	metrics *metric.Registry

	closed atomic.Bool
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerStore opens (or creates) the record database.
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.NewRegistry()
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = DefaultGCInterval
	}
	if cfg.GCThreshold <= 0 {
		cfg.GCThreshold = DefaultGCThreshold
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: cfg.Logger}
	if cfg.CacheSize > 0 {
		opts.BlockCacheSize = cfg.CacheSize
	}
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}
	opts.NumMemtables = DefaultNumMemtables
	opts.NumLevelZeroTables = DefaultNumLevelZeroTbls
	opts.SyncWrites = cfg.SyncWrites
	opts.DetectConflicts = false // single writer per slot

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &BadgerStore{
		db:      db,
		cfg:     cfg,
		sealer:  cfg.Sealer,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	go s.gcLoop()

	cfg.Logger.Info("badger record store opened",
		"dir", cfg.Dir,
		"cache_size", cfg.CacheSize,
		"gc_interval", cfg.GCInterval,
		"sealed", cfg.Sealer != nil)

	return s, nil
}

// recordKey builds the database key for a slot.
func recordKey(slot domain.SlotID) []byte {
	key := make([]byte, len(recordKeyPrefix)+2)
	copy(key, recordKeyPrefix)
	binary.BigEndian.PutUint16(key[len(recordKeyPrefix):], uint16(slot))
	return key
}

// Put persists the encoded record for a slot.
func (s *BadgerStore) Put(_ context.Context, slot domain.SlotID, data []byte) error {
	if s.closed.Load() {
		return domain.ErrStoreClosed
	}

	value := data
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(data, recordKey(slot))
		if err != nil {
			return domain.ErrStorageFailure.WithDetails("seal record").Wrap(err)
		}
		value = sealed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(slot), value)
	})
	if err != nil {
		return domain.ErrStorageFailure.WithDetails("persist record").Wrap(err)
	}
	return nil
}

// Get retrieves the encoded record for a slot.
func (s *BadgerStore) Get(_ context.Context, slot domain.SlotID) ([]byte, error) {
	if s.closed.Load() {
		return nil, domain.ErrStoreClosed
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(slot))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, domain.ErrStorageFailure.WithDetails("load record").Wrap(err)
	}

	if s.sealer != nil {
		plain, err := s.sealer.Open(value, recordKey(slot))
		if err != nil {
			return nil, domain.ErrStorageFailure.WithDetails("unseal record").Wrap(err)
		}
		return plain, nil
	}
	return value, nil
}

// Delete removes the record for a slot. Absent slots are a no-op.
func (s *BadgerStore) Delete(_ context.Context, slot domain.SlotID) error {
	if s.closed.Load() {
		return domain.ErrStoreClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(slot))
	})
	if err != nil {
		return domain.ErrStorageFailure.WithDetails("delete record").Wrap(err)
	}
	return nil
}

// gcLoop runs periodic value-log garbage collection and refreshes the
// storage size gauge.
func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runGC()
			lsm, vlog := s.db.Size()
			s.metrics.StorageSize.Set(float64(lsm + vlog))

		case <-s.stopCh:
			return
		}
	}
}

func (s *BadgerStore) runGC() {
	start := time.Now()
	cycles := 0
	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("value log gc failed", "error", err)
			}
			break
		}
		cycles++
		// Badger reports no exact byte count; one rewritten value log
		// file per successful cycle is the usable approximation.
		s.metrics.StorageGCReclaimed.Add(float64(s.cfg.ValueLogFileSize))
	}

	if cycles > 0 {
		s.logger.Info("value log gc completed",
			"cycles", cycles,
			"elapsed", time.Since(start))
	}
}

// Close stops the GC loop and closes the database. Operations after
// Close fail with ErrStoreClosed.
func (s *BadgerStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close: %w", err)
	}
	s.logger.Info("badger record store closed")
	return nil
}

// badgerLogger adapts Badger's logger interface to the application logger.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf("badger: "+format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf("badger: "+format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf("badger: "+format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf("badger: "+format, args...))
}
