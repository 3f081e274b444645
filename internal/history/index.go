package history

import "github.com/calliope-space/telemhist/internal/core/domain"

// indexEntry is one slot's timestamp, with explicit emptiness instead
// of a magic zero sentinel.
type indexEntry struct {
	ts  uint32
	set bool
}

// TimestampIndex maps slot ids to write timestamps and answers
// nearest-match lookups over the store's valid window.
//
// Invariant: at a fixed collection cadence, slots are overwritten
// oldest-first, so the timestamps read from the oldest slot circularly
// through the whole window are non-decreasing. A resize breaks this
// invariant until the store wraps again; lookups during that period are
// best-effort, matching the documented breaking nature of a resize.
type TimestampIndex struct {
	entries []indexEntry // len = capacity+1, entry 0 unused
}

// NewTimestampIndex creates an empty index for the given capacity.
func NewTimestampIndex(capacity uint16) *TimestampIndex {
	return &TimestampIndex{entries: make([]indexEntry, int(capacity)+1)}
}

// Capacity returns the number of indexable slots.
func (ix *TimestampIndex) Capacity() uint16 {
	return uint16(len(ix.entries) - 1)
}

// Set records the timestamp for a slot.
func (ix *TimestampIndex) Set(slot domain.SlotID, ts uint32) {
	ix.entries[slot] = indexEntry{ts: ts, set: true}
}

// Get returns the timestamp for a slot and whether it has ever been set.
func (ix *TimestampIndex) Get(slot domain.SlotID) (uint32, bool) {
	e := ix.entries[slot]
	return e.ts, e.set
}

// at returns the slot's timestamp, 0 if never set. Used only inside the
// search, where unset entries sort before any real timestamp.
func (ix *TimestampIndex) at(slot domain.SlotID) uint32 {
	return ix.entries[slot].ts
}

// Resize reallocates the index for a new capacity. Entries within the
// overlapping range are preserved, new entries start empty.
func (ix *TimestampIndex) Resize(newCapacity uint16) {
	next := make([]indexEntry, int(newCapacity)+1)
	copy(next, ix.entries[:min(len(ix.entries), len(next))])
	ix.entries = next
}

// window returns the oldest slot of the valid window and the window
// length, given the current write cursor.
//
// Before the first wrap the valid window is [1, cursor-1]; once the
// store has wrapped (the cursor's own slot holds a record) it is the
// full circular range starting at the cursor, oldest first.
func (ix *TimestampIndex) window(cursor domain.SlotID) (domain.SlotID, int) {
	if _, wrapped := ix.Get(cursor); !wrapped {
		if cursor == 1 {
			return domain.SlotNone, 0
		}
		return 1, int(cursor) - 1
	}
	return cursor, int(ix.Capacity())
}

// physicalSlot maps a logical position within the circular window
// (0 = oldest) back to a physical slot id.
func physicalSlot(oldest domain.SlotID, pos int, capacity uint16) domain.SlotID {
	s := int(oldest) + pos
	if s > int(capacity) {
		s -= int(capacity)
	}
	return domain.SlotID(s)
}

// withinTolerance reports whether two timestamps differ by at most tol
// seconds, in either direction.
func withinTolerance(ts, target, tol uint32) bool {
	if ts >= target {
		return ts-target <= tol
	}
	return target-ts <= tol
}

// FindNearest returns the slot whose timestamp is closest to target
// within tol seconds, or SlotNone if no record is close enough.
//
// It performs a leftmost binary search over the valid window for the
// first slot with timestamp >= target, then picks between that slot and
// its immediate predecessor. Ties resolve toward the earlier slot; the
// window edges have only one neighbour and are handled by the same two
// checks degenerating naturally.
func (ix *TimestampIndex) FindNearest(target uint32, cursor domain.SlotID, tol uint32) domain.SlotID {
	oldest, n := ix.window(cursor)
	if n == 0 {
		return domain.SlotNone
	}
	capacity := ix.Capacity()

	lo, hi := 0, n-1
	for lo < hi {
		mid := (lo + hi) / 2
		if ix.at(physicalSlot(oldest, mid, capacity)) < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	// lo is the leftmost position with timestamp >= target, or the last
	// position of the window when every timestamp is smaller.
	if lo > 0 {
		prev := physicalSlot(oldest, lo-1, capacity)
		if pts, ok := ix.Get(prev); ok && withinTolerance(pts, target, tol) {
			return prev
		}
	}
	slot := physicalSlot(oldest, lo, capacity)
	if ts, ok := ix.Get(slot); ok && withinTolerance(ts, target, tol) {
		return slot
	}
	return domain.SlotNone
}
