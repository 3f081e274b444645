package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/calliope-space/telemhist/internal/core/codec"
	"github.com/calliope-space/telemhist/internal/core/domain"
	"github.com/calliope-space/telemhist/internal/storage"
	"github.com/calliope-space/telemhist/internal/telemetry/logger"
	"github.com/calliope-space/telemhist/internal/telemetry/metric"
)

// Default configuration values.
const (
	DefaultCapacity  uint16 = 500
	DefaultTolerance        = 15 * time.Second
)

// Config configures the record store.
type Config struct {
	// Capacity is the initial slot count, in [1, 65535].
	Capacity uint16

	// Tolerance is the maximum timestamp distance accepted by nearest
	// lookups. Tune together with the collection interval; the default
	// assumes a ~30s cadence.
	Tolerance time.Duration

	// LockDuringPersist keeps the store mutex held across the
	// persistent write. Disable only when storage latency is known to
	// starve readers; see the package comment for the trade-off.
	LockDuringPersist bool

	// Clock supplies write timestamps. Defaults to time.Now.
	Clock func() time.Time

	// Logger is the structured logger.
	Logger logger.Logger

	// Metrics is the telemetry registry.
	Metrics *metric.Registry
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:          DefaultCapacity,
		Tolerance:         DefaultTolerance,
		LockDuringPersist: true,
	}
}

// Store owns the circular housekeeping log.
//
// The triple (capacity, cursor, index) is the only shared mutable state
// and is guarded by one mutex. Persisted records are not locked per
// slot; correctness relies on the single-writer discipline of the
// collection loop.
type Store struct {
	records storage.RecordStore

	tolerance         uint32
	lockDuringPersist bool
	clock             func() time.Time
	logger            logger.Logger
	metrics           *metric.Registry

	mu       sync.Mutex
	capacity uint16
	cursor   domain.SlotID
	index    *TimestampIndex
}

// New creates a store over the given record storage.
func New(records storage.RecordStore, cfg Config) (*Store, error) {
	if records == nil {
		return nil, domain.ErrMissingArgument.WithDetails("record storage is required")
	}
	if cfg.Capacity < 1 {
		return nil, domain.ErrInvalidArgument.WithDetails("capacity must be at least 1")
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.NewRegistry()
	}

	s := &Store{
		records:           records,
		tolerance:         uint32(cfg.Tolerance / time.Second),
		lockDuringPersist: cfg.LockDuringPersist,
		clock:             cfg.Clock,
		logger:            cfg.Logger,
		metrics:           cfg.Metrics,
		capacity:          cfg.Capacity,
		cursor:            1,
		index:             NewTimestampIndex(cfg.Capacity),
	}
	s.metrics.Capacity.Set(float64(cfg.Capacity))
	return s, nil
}

// Write stamps the snapshot with the current time and the target slot,
// persists it, and advances the cursor. On persistence failure the
// cursor and index are untouched and the slot is left in whatever
// partial state the storage write produced.
func (s *Store) Write(ctx context.Context, snap *domain.Snapshot) (domain.SlotID, error) {
	s.mu.Lock()

	slot := s.cursor
	ts := uint32(s.clock().Unix())
	snap.TimeOrder.Timestamp = ts
	snap.TimeOrder.DataPosition = uint16(slot)
	data := codec.EncodeSnapshot(snap)

	if s.lockDuringPersist {
		defer s.mu.Unlock()
		if err := s.records.Put(ctx, slot, data); err != nil {
			s.metrics.WriteFailures.Inc()
			return domain.SlotNone, domain.ErrStorageFailure.Wrap(err)
		}
		s.commitWriteLocked(slot, ts)
		return slot, nil
	}

	// Optimistic variant: persist outside the lock, confirm after. Safe
	// only because there is a single periodic writer; a concurrent
	// resize invalidates the reservation and the write is discarded.
	s.mu.Unlock()
	if err := s.records.Put(ctx, slot, data); err != nil {
		s.metrics.WriteFailures.Inc()
		return domain.SlotNone, domain.ErrStorageFailure.Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor != slot || uint16(slot) > s.capacity {
		s.logger.Warn("write overlapped a resize, record dropped", "slot", slot)
		return domain.SlotNone, domain.ErrNotAvailable.WithDetails("store resized during write")
	}
	s.commitWriteLocked(slot, ts)
	return slot, nil
}

func (s *Store) commitWriteLocked(slot domain.SlotID, ts uint32) {
	s.index.Set(slot, ts)
	s.cursor = slot.Next(s.capacity)
	s.metrics.RecordsWritten.Inc()
}

// Load reads and decodes the record in the given slot. No lock is held:
// a concurrent write or resize may occur between an index lookup and
// the load, so the result is a best-effort snapshot.
func (s *Store) Load(ctx context.Context, slot domain.SlotID) (*domain.Snapshot, error) {
	if slot == domain.SlotNone {
		return nil, domain.ErrInvalidArgument.WithDetails("slot 0 is reserved")
	}
	data, err := s.records.Get(ctx, slot)
	if err != nil {
		return nil, err
	}
	snap, err := codec.DecodeSnapshot(data)
	if err != nil {
		return nil, domain.ErrStorageFailure.WithDetails(
			fmt.Sprintf("slot %d holds an undecodable record", slot)).Wrap(err)
	}
	return snap, nil
}

// Capacity returns the current slot count.
func (s *Store) Capacity() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity
}

// Cursor returns the next slot to be written.
func (s *Store) Cursor() domain.SlotID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// FindNearest returns the slot holding the record closest in time to
// target, or SlotNone when nothing lies within tolerance.
func (s *Store) FindNearest(target uint32) domain.SlotID {
	s.mu.Lock()
	slot := s.index.FindNearest(target, s.cursor, s.tolerance)
	s.mu.Unlock()

	if slot == domain.SlotNone {
		s.metrics.NearestLookups.WithLabelValues("miss").Inc()
	} else {
		s.metrics.NearestLookups.WithLabelValues("hit").Inc()
	}
	return slot
}

// Resize changes the store capacity.
//
// The capacity swap, index reallocation and cursor reset to slot 1 are
// atomic with respect to writers. Shrinking then deletes every record
// in (newCapacity, oldCapacity] outside the lock; a failed delete
// leaves an orphan, which is logged and not escalated. A resize breaks
// the temporal-continuity invariant of the index until the next full
// wrap; it is a deliberate breaking operation.
func (s *Store) Resize(ctx context.Context, newCapacity uint16) error {
	if newCapacity < 1 {
		return domain.ErrInvalidArgument.WithDetails("capacity must be at least 1")
	}

	s.mu.Lock()
	oldCapacity := s.capacity
	s.capacity = newCapacity
	s.cursor = 1
	s.index.Resize(newCapacity)
	s.mu.Unlock()

	s.metrics.Capacity.Set(float64(newCapacity))
	s.metrics.Resizes.Inc()
	s.logger.Info("store resized",
		"old_capacity", oldCapacity,
		"new_capacity", newCapacity)

	if newCapacity >= oldCapacity {
		return nil
	}

	// Best-effort cleanup. A reader paging concurrently may still load
	// one of these slots before its delete lands; that race is accepted.
	for slot := int(newCapacity) + 1; slot <= int(oldCapacity); slot++ {
		if err := s.records.Delete(ctx, domain.SlotID(slot)); err != nil {
			s.metrics.OrphanedRecords.Inc()
			s.logger.Warn("record orphaned after shrink",
				"slot", slot,
				"error", err)
		}
	}
	return nil
}

// Tolerance returns the configured lookup tolerance in seconds.
func (s *Store) Tolerance() uint32 {
	return s.tolerance
}
