package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/calliope-space/telemhist/internal/core/domain"
	"github.com/calliope-space/telemhist/pkg/crypto/sealer"
)

func newTestBadger(t *testing.T, seal sealer.Sealer) *BadgerStore {
	t.Helper()
	cfg := DefaultBadgerConfig(t.TempDir())
	cfg.Sealer = seal
	s, err := NewBadgerStore(cfg)
	if err != nil {
		t.Fatalf("NewBadgerStore failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return s
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	s := newTestBadger(t, nil)
	ctx := context.Background()

	want := []byte{0x01, 0x02, 0x03, 0x04}
	if err := s.Put(ctx, 3, want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(ctx, 3)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Get = %v, want %v", got, want)
	}
}

func TestBadgerStoreNotFound(t *testing.T) {
	s := newTestBadger(t, nil)
	if _, err := s.Get(context.Background(), 9); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("got %v, want ErrRecordNotFound", err)
	}
}

func TestBadgerStoreDelete(t *testing.T) {
	s := newTestBadger(t, nil)
	ctx := context.Background()

	if err := s.Put(ctx, 1, []byte{0xFF}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, 1); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("record survived delete: %v", err)
	}
	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("repeated delete failed: %v", err)
	}
}

func TestBadgerStoreSealedRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x5A}, sealer.KeySize)
	seal, err := sealer.NewWithAlgorithm(key, sealer.AlgorithmChaCha20)
	if err != nil {
		t.Fatalf("sealer setup failed: %v", err)
	}

	s := newTestBadger(t, seal)
	ctx := context.Background()

	want := []byte("housekeeping record payload")
	if err := s.Put(ctx, 2, want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("sealed round trip = %q, want %q", got, want)
	}
}

func TestBadgerStoreClosed(t *testing.T) {
	cfg := DefaultBadgerConfig(t.TempDir())
	s, err := NewBadgerStore(cfg)
	if err != nil {
		t.Fatalf("NewBadgerStore failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	ctx := context.Background()
	if err := s.Put(ctx, 1, []byte{1}); !errors.Is(err, domain.ErrStoreClosed) {
		t.Fatalf("Put after close: %v", err)
	}
	if _, err := s.Get(ctx, 1); !errors.Is(err, domain.ErrStoreClosed) {
		t.Fatalf("Get after close: %v", err)
	}
	if err := s.Delete(ctx, 1); !errors.Is(err, domain.ErrStoreClosed) {
		t.Fatalf("Delete after close: %v", err)
	}
}

func TestBadgerStoreSlotKeysAreDistinct(t *testing.T) {
	a := recordKey(1)
	b := recordKey(256)
	if bytes.Equal(a, b) {
		t.Fatalf("slots 1 and 256 share key %v", a)
	}
}
