package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/calliope-space/telemhist/internal/core/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	if err := m.Put(ctx, 1, []byte{0xAA, 0xBB}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := m.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got) != 2 || got[0] != 0xAA || got[1] != 0xBB {
		t.Fatalf("Get returned %v", got)
	}
}

func TestMemoryStoreCopiesData(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	data := []byte{1, 2, 3}
	if err := m.Put(ctx, 1, data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	data[0] = 99

	got, _ := m.Get(ctx, 1)
	if got[0] != 1 {
		t.Fatalf("caller mutation leaked into the store: %v", got)
	}

	got[1] = 99
	again, _ := m.Get(ctx, 1)
	if again[1] != 2 {
		t.Fatalf("reader mutation leaked into the store: %v", again)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	m := NewMemoryStore()
	if _, err := m.Get(context.Background(), 7); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("got %v, want ErrRecordNotFound", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	if err := m.Put(ctx, 1, []byte{1}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := m.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get(ctx, 1); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("record survived delete: %v", err)
	}

	// Deleting an absent slot is not an error.
	if err := m.Delete(ctx, 42); err != nil {
		t.Fatalf("Delete of absent slot failed: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("Len = %d, want 0", m.Len())
	}
}
