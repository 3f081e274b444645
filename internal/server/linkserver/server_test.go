package linkserver

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/calliope-space/telemhist/internal/core/domain"
	"github.com/calliope-space/telemhist/internal/history"
	"github.com/calliope-space/telemhist/internal/storage"
)

func startTestServer(t *testing.T) (*Server, *history.Store) {
	t.Helper()

	cfg := history.DefaultConfig()
	cfg.Capacity = 5
	store, err := history.New(storage.NewMemoryStore(), cfg)
	if err != nil {
		t.Fatalf("history.New failed: %v", err)
	}

	srv, err := New(Config{
		Addr:    "127.0.0.1:0",
		Handler: NewHandler(store, nil, nil),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			t.Errorf("ListenAndServe: %v", err)
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil {
		if time.Now().After(deadline) {
			t.Fatal("server did not start listening")
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	})
	return srv, store
}

func TestServerServesCapacityRequests(t *testing.T) {
	srv, store := startTestServer(t)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := WriteFrame(conn, []byte{SubserviceGetCapacity}); err != nil {
		t.Fatalf("write request: %v", err)
	}
	resp, err := ReadFrame(conn, MaxFrameSize)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if len(resp) != 4 || resp[1] != StatusOK {
		t.Fatalf("response = %v", resp)
	}
	if got := binary.BigEndian.Uint16(resp[2:]); got != 5 {
		t.Fatalf("capacity = %d, want 5", got)
	}

	// Same connection, second request: shrink the store.
	if err := WriteFrame(conn, []byte{SubserviceSetCapacity, 0x00, 0x02}); err != nil {
		t.Fatalf("write request: %v", err)
	}
	resp, err = ReadFrame(conn, MaxFrameSize)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp[1] != StatusOK {
		t.Fatalf("set-capacity failed: %v", resp)
	}
	if store.Capacity() != 2 {
		t.Fatalf("capacity = %d, want 2", store.Capacity())
	}
}

func TestServerStreamsHistory(t *testing.T) {
	srv, store := startTestServer(t)

	for i := 0; i < 3; i++ {
		if _, err := store.Write(context.Background(), &domain.Snapshot{}); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := make([]byte, 9)
	req[0] = SubserviceGetHistory
	binary.BigEndian.PutUint16(req[1:3], 3)
	if err := WriteFrame(conn, req); err != nil {
		t.Fatalf("write request: %v", err)
	}

	for i := 0; i < 3; i++ {
		frame, err := ReadFrame(conn, MaxFrameSize)
		if err != nil {
			t.Fatalf("read frame %d: %v", i, err)
		}
		if frame[0] != SubserviceGetHistory || frame[1] != StatusOK {
			t.Fatalf("frame %d header = %02x %02x", i, frame[0], frame[1])
		}
	}
}

func TestServerRejectsOversizedFrames(t *testing.T) {
	cfg := history.DefaultConfig()
	cfg.Capacity = 5
	store, err := history.New(storage.NewMemoryStore(), cfg)
	if err != nil {
		t.Fatalf("history.New failed: %v", err)
	}

	srv, err := New(Config{
		Addr:     "127.0.0.1:0",
		MaxFrame: 16,
		Handler:  NewHandler(store, nil, nil),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	go srv.ListenAndServe() //nolint:errcheck
	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil {
		if time.Now().After(deadline) {
			t.Fatal("server did not start listening")
		}
		time.Sleep(5 * time.Millisecond)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx) //nolint:errcheck
	}()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// 64-byte frame against a 16-byte limit: the server drops the link.
	if err := WriteFrame(conn, make([]byte, 64)); err != nil {
		t.Fatalf("write request: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	if _, err := ReadFrame(conn, MaxFrameSize); err == nil {
		t.Fatalf("oversized frame was answered")
	}
}
