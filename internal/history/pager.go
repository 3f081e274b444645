package history

import (
	"context"

	"github.com/calliope-space/telemhist/internal/core/domain"
)

// EmitFunc receives one page record at a time, most-recent-first.
// Returning an error aborts the remainder of the page.
type EmitFunc func(*domain.Snapshot) error

// FetchPage walks backward through the log and emits up to limit
// records, most-recent-first.
//
// The starting point resolves in order: a non-zero beforeTime is looked
// up in the timestamp index; a usable beforeSlot is taken as given; and
// anything unresolved (no match, zero, out of range) falls back to the
// write cursor, i.e. "most recent". limit is clamped to the capacity
// and a zero limit succeeds without emitting anything.
//
// The index lookup runs under the store mutex; loads and emits do not,
// so a record may be overwritten or deleted while the page streams.
// Records already emitted are never rolled back: a mid-page failure
// aborts the rest and surfaces as ErrNotAvailable.
func (s *Store) FetchPage(ctx context.Context, limit uint16, beforeSlot domain.SlotID, beforeTime uint32, emit EmitFunc) error {
	s.mu.Lock()
	capacity := s.capacity
	start := beforeSlot
	if beforeTime != 0 {
		start = s.index.FindNearest(beforeTime, s.cursor, s.tolerance)
	}
	if start == domain.SlotNone || uint16(start) > capacity {
		start = s.cursor
	}
	s.mu.Unlock()

	if limit == 0 {
		s.logger.Debug("page request with zero limit")
		return nil
	}
	if limit > capacity {
		limit = capacity
	}

	slot := start
	for i := uint16(0); i < limit; i++ {
		slot = slot.Prev(capacity)

		snap, err := s.Load(ctx, slot)
		if err != nil {
			s.metrics.PageFailures.Inc()
			return domain.ErrNotAvailable.WithDetails("page aborted").Wrap(err)
		}
		if err := emit(snap); err != nil {
			s.metrics.PageFailures.Inc()
			return domain.ErrNotAvailable.WithDetails("page delivery failed").Wrap(err)
		}
		s.metrics.PageRecords.Inc()
	}

	s.metrics.PagesServed.Inc()
	return nil
}
