package linkserver

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/calliope-space/telemhist/internal/core/codec"
	"github.com/calliope-space/telemhist/internal/core/domain"
	"github.com/calliope-space/telemhist/internal/history"
	"github.com/calliope-space/telemhist/internal/storage"
)

func newTestHandler(t *testing.T, capacity uint16) (*Handler, *history.Store) {
	t.Helper()

	ts := time.Unix(1000, 0)
	cfg := history.DefaultConfig()
	cfg.Capacity = capacity
	cfg.Clock = func() time.Time {
		ts = ts.Add(30 * time.Second)
		return ts
	}

	store, err := history.New(storage.NewMemoryStore(), cfg)
	if err != nil {
		t.Fatalf("history.New failed: %v", err)
	}
	return NewHandler(store, nil, nil), store
}

func handleCollect(t *testing.T, h *Handler, req []byte) [][]byte {
	t.Helper()
	var frames [][]byte
	err := h.Handle(context.Background(), req, func(payload []byte) error {
		frames = append(frames, payload)
		return nil
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	return frames
}

func TestHandleGetCapacity(t *testing.T) {
	h, _ := newTestHandler(t, 7)

	frames := handleCollect(t, h, []byte{SubserviceGetCapacity})
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	resp := frames[0]
	if resp[0] != SubserviceGetCapacity || resp[1] != StatusOK {
		t.Fatalf("response header = %02x %02x", resp[0], resp[1])
	}
	if got := binary.BigEndian.Uint16(resp[2:]); got != 7 {
		t.Fatalf("capacity = %d, want 7", got)
	}
}

func TestHandleSetCapacity(t *testing.T) {
	h, store := newTestHandler(t, 7)

	req := []byte{SubserviceSetCapacity, 0x00, 0x03}
	frames := handleCollect(t, h, req)
	if len(frames) != 1 || frames[0][1] != StatusOK {
		t.Fatalf("set-capacity response = %v", frames)
	}
	if store.Capacity() != 3 {
		t.Fatalf("capacity = %d, want 3", store.Capacity())
	}
}

func TestHandleSetCapacityRejectsZero(t *testing.T) {
	h, store := newTestHandler(t, 7)

	frames := handleCollect(t, h, []byte{SubserviceSetCapacity, 0x00, 0x00})
	if len(frames) != 1 || frames[0][1] != StatusFailed {
		t.Fatalf("zero capacity response = %v", frames)
	}
	if store.Capacity() != 7 {
		t.Fatalf("capacity changed to %d on a rejected request", store.Capacity())
	}
}

func TestHandleSetCapacityMalformedPayload(t *testing.T) {
	h, _ := newTestHandler(t, 7)

	frames := handleCollect(t, h, []byte{SubserviceSetCapacity, 0x01})
	if len(frames) != 1 || frames[0][1] != StatusFailed {
		t.Fatalf("malformed payload response = %v", frames)
	}
}

func TestHandleGetHistoryStreamsRecords(t *testing.T) {
	h, store := newTestHandler(t, 5)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Write(ctx, &domain.Snapshot{}); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	req := make([]byte, 9)
	req[0] = SubserviceGetHistory
	binary.BigEndian.PutUint16(req[1:3], 2) // limit
	frames := handleCollect(t, h, req)

	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}

	var timestamps []uint32
	for _, frame := range frames {
		if frame[0] != SubserviceGetHistory || frame[1] != StatusOK {
			t.Fatalf("frame header = %02x %02x", frame[0], frame[1])
		}
		snap, err := codec.DecodeSnapshot(frame[2:])
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		timestamps = append(timestamps, snap.TimeOrder.Timestamp)
	}

	// Writes land at 1030, 1060, 1090; the page is most-recent-first.
	if timestamps[0] != 1090 || timestamps[1] != 1060 {
		t.Fatalf("timestamps = %v, want [1090 1060]", timestamps)
	}
}

func TestHandleGetHistoryZeroLimit(t *testing.T) {
	h, _ := newTestHandler(t, 5)

	req := make([]byte, 9)
	req[0] = SubserviceGetHistory
	frames := handleCollect(t, h, req)
	if len(frames) != 0 {
		t.Fatalf("zero limit produced %d frames", len(frames))
	}
}

func TestHandleGetHistoryFailureStatus(t *testing.T) {
	h, _ := newTestHandler(t, 5)

	// Empty store: the page walk hits an unwritten slot immediately.
	req := make([]byte, 9)
	req[0] = SubserviceGetHistory
	binary.BigEndian.PutUint16(req[1:3], 3)
	frames := handleCollect(t, h, req)

	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1 failure frame", len(frames))
	}
	if frames[0][0] != SubserviceGetHistory || frames[0][1] != StatusFailed {
		t.Fatalf("failure frame = %v", frames[0])
	}
}

func TestHandleIllegalSubservice(t *testing.T) {
	h, _ := newTestHandler(t, 5)

	frames := handleCollect(t, h, []byte{0x7E})
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0][0] != 0x7E || frames[0][1] != StatusFailed {
		t.Fatalf("illegal subservice frame = %v", frames[0])
	}
}

func TestHandleEmptyRequestIsError(t *testing.T) {
	h, _ := newTestHandler(t, 5)

	err := h.Handle(context.Background(), nil, func([]byte) error { return nil })
	if err == nil {
		t.Fatalf("empty request accepted")
	}
}
