package config

import (
	"strings"
	"testing"
)

func testConfig(t *testing.T) *ServerConfig {
	t.Helper()
	cfg := Default()
	cfg.Storage.DataDir = t.TempDir()
	return cfg
}

func TestDefaultConfigVerifies(t *testing.T) {
	if err := Verify(testConfig(t)); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
}

func TestVerifyRejectsUnknownEngine(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Engine = "punchcards"
	if err := Verify(cfg); err == nil || !strings.Contains(err.Error(), "storage.engine") {
		t.Fatalf("got %v, want storage.engine error", err)
	}
}

func TestVerifyMemoryEngineNeedsNoDataDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.Engine = "memory"
	cfg.Storage.DataDir = ""
	if err := Verify(cfg); err != nil {
		t.Fatalf("memory engine rejected: %v", err)
	}
}

func TestVerifyRejectsBadLinkSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.Link.Addr = ""
	if err := Verify(cfg); err == nil {
		t.Fatalf("empty link addr accepted")
	}

	cfg = testConfig(t)
	cfg.Link.MaxFrame = 4
	if err := Verify(cfg); err == nil {
		t.Fatalf("tiny max_frame accepted")
	}

	cfg = testConfig(t)
	cfg.Link.MaxFrame = 1 << 20
	if err := Verify(cfg); err == nil {
		t.Fatalf("oversized max_frame accepted")
	}
}

func TestVerifyRejectsZeroCapacity(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Capacity = 0
	if err := Verify(cfg); err == nil {
		t.Fatalf("zero capacity accepted")
	}
}

func TestVerifyRejectsBadGCThreshold(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.GCThreshold = 1.5
	if err := Verify(cfg); err == nil {
		t.Fatalf("gc_threshold above 1.0 accepted")
	}
}

func TestVerifyEncryptionKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.EncryptionKey = "not-hex"
	if err := Verify(cfg); err == nil {
		t.Fatalf("non-hex key accepted")
	}

	cfg = testConfig(t)
	cfg.Security.EncryptionKey = "abcd"
	if err := Verify(cfg); err == nil {
		t.Fatalf("short key accepted")
	}

	cfg = testConfig(t)
	cfg.Security.EncryptionKey = strings.Repeat("ab", 32)
	if err := Verify(cfg); err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}

	cfg.Security.Cipher = "rot13"
	if err := Verify(cfg); err == nil {
		t.Fatalf("unknown cipher accepted")
	}
	cfg.Security.Cipher = "chacha20-poly1305"
	if err := Verify(cfg); err != nil {
		t.Fatalf("valid cipher rejected: %v", err)
	}
}
