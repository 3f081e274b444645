package confloader

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Link struct {
		Addr     string `koanf:"addr"`
		MaxFrame int    `koanf:"max_frame"`
	} `koanf:"link"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "link:\n  addr: 10.0.0.5:5170\n  max_frame: 2048\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var cfg testConfig
	loader := NewLoader(WithConfigFile(path))
	if err := loader.Load(&cfg); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Link.Addr != "10.0.0.5:5170" {
		t.Fatalf("link.addr = %q", cfg.Link.Addr)
	}
	if cfg.Link.MaxFrame != 2048 {
		t.Fatalf("link.max_frame = %d", cfg.Link.MaxFrame)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log.level = %q", cfg.Log.Level)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TELEMHIST_LOG_LEVEL", "warn")

	var cfg testConfig
	loader := NewLoader(WithConfigFile(path))
	if err := loader.Load(&cfg); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("log.level = %q, want env override warn", cfg.Log.Level)
	}
}

func TestCustomEnvPrefix(t *testing.T) {
	t.Setenv("FLATSAT_LOG_LEVEL", "error")

	var cfg testConfig
	loader := NewLoader(WithEnvPrefix("FLATSAT_"))
	if err := loader.Load(&cfg); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Fatalf("log.level = %q, want error", cfg.Log.Level)
	}
}

func TestLoadMap(t *testing.T) {
	loader := NewLoader()
	if err := loader.LoadMap(map[string]any{"link.addr": "localhost:9"}); err != nil {
		t.Fatalf("LoadMap failed: %v", err)
	}
	if got := loader.GetString("link.addr"); got != "localhost:9" {
		t.Fatalf("link.addr = %q", got)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	var cfg testConfig
	loader := NewLoader(WithConfigFile("/nonexistent/config.yaml"))
	if err := loader.Load(&cfg); err == nil {
		t.Fatalf("missing file accepted")
	}
}
