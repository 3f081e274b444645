package config

import "time"

// ServerConfig is the root configuration for telemhist-server.
type ServerConfig struct {
	Link      LinkSection      `koanf:"link"`
	Metrics   MetricsSection   `koanf:"metrics"`
	Storage   StorageSection   `koanf:"storage"`
	History   HistorySection   `koanf:"history"`
	Collector CollectorSection `koanf:"collector"`
	Security  SecuritySection  `koanf:"security"`
	Log       LogSection       `koanf:"log"`
}

// LinkSection configures the ground link TCP server.
type LinkSection struct {
	// Addr is the TCP listen address.
	Addr string `koanf:"addr"`

	// MaxFrame is the maximum accepted request frame size in bytes.
	MaxFrame int `koanf:"max_frame"`

	// RateLimit is the per-connection request rate in requests/second.
	// Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the per-connection burst allowance.
	RateBurst int `koanf:"rate_burst"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// StorageSection configures record persistence.
type StorageSection struct {
	// Engine selects the record store: "badger" or "memory".
	Engine string `koanf:"engine"`

	// DataDir is the Badger storage directory.
	DataDir string `koanf:"data_dir"`

	// GCInterval is the Badger value-log GC interval.
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCThreshold is the Badger GC discard ratio (0.0-1.0).
	GCThreshold float64 `koanf:"gc_threshold"`

	// SyncWrites enables fsync after each record write.
	SyncWrites bool `koanf:"sync_writes"`
}

// HistorySection configures the history store.
type HistorySection struct {
	// Capacity is the initial slot count of the circular log.
	Capacity uint16 `koanf:"capacity"`

	// Tolerance is the timestamp match tolerance in seconds.
	Tolerance uint32 `koanf:"tolerance"`

	// LockDuringPersist keeps the store lock held across the record
	// persist call, serializing writers against readers.
	LockDuringPersist bool `koanf:"lock_during_persist"`
}

// CollectorSection configures the telemetry sampling loop.
type CollectorSection struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// SecuritySection configures at-rest encryption.
type SecuritySection struct {
	// EncryptionKey is a hex-encoded 32-byte key. Empty disables
	// record sealing.
	EncryptionKey string `koanf:"encryption_key"`

	// Cipher selects the AEAD: "aes-gcm", "chacha20-poly1305", or
	// empty for auto-selection by CPU.
	Cipher string `koanf:"cipher"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
