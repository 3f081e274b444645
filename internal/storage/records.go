package storage

import (
	"context"

	"github.com/calliope-space/telemhist/internal/core/domain"
)

// RecordStore is keyed storage for encoded snapshots, addressed by slot.
//
// Implementation requirements:
//   - Get returns domain.ErrRecordNotFound for a slot never written or
//     already deleted; any other failure maps to domain.ErrStorageFailure.
//   - Delete of an absent slot is not an error.
//   - Implementations must be safe for concurrent use: the write path
//     and the paging engine run on different goroutines.
type RecordStore interface {
	// Put persists the encoded record for a slot, overwriting any
	// previous record in that slot.
	Put(ctx context.Context, slot domain.SlotID, data []byte) error

	// Get retrieves the encoded record for a slot.
	Get(ctx context.Context, slot domain.SlotID) ([]byte, error)

	// Delete removes the record for a slot.
	Delete(ctx context.Context, slot domain.SlotID) error

	// Close gracefully shuts down the store.
	Close() error
}
