package config

import "time"

// Default configuration values.
const (
	DefaultLinkAddr  = "127.0.0.1:5170"
	DefaultMaxFrame  = 4096
	DefaultRateLimit = 50.0
	DefaultRateBurst = 25

	DefaultMetricsAddr = "127.0.0.1:5171"

	DefaultStorageEngine = "badger"
	DefaultDataDir       = "/var/lib/telemhist-server/data"
	DefaultGCInterval    = 10 * time.Minute
	DefaultGCThreshold   = 0.5

	DefaultCapacity  uint16 = 500
	DefaultTolerance uint32 = 15

	DefaultCollectorInterval = 30 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Link: LinkSection{
			Addr:      DefaultLinkAddr,
			MaxFrame:  DefaultMaxFrame,
			RateLimit: DefaultRateLimit,
			RateBurst: DefaultRateBurst,
		},
		Metrics: MetricsSection{
			Enabled: true,
			Addr:    DefaultMetricsAddr,
		},
		Storage: StorageSection{
			Engine:      DefaultStorageEngine,
			DataDir:     DefaultDataDir,
			GCInterval:  DefaultGCInterval,
			GCThreshold: DefaultGCThreshold,
		},
		History: HistorySection{
			Capacity:          DefaultCapacity,
			Tolerance:         DefaultTolerance,
			LockDuringPersist: true,
		},
		Collector: CollectorSection{
			Enabled:  true,
			Interval: DefaultCollectorInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
