package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "telemhist"

// Registry holds all application metrics, backed by its own Prometheus
// registry so tests can create registries independently.
type Registry struct {
	// Write path
	RecordsWritten prometheus.Counter
	WriteFailures  prometheus.Counter

	// Paging engine
	PagesServed  prometheus.Counter
	PageRecords  prometheus.Counter
	PageFailures prometheus.Counter

	// Index lookups, labelled hit/miss
	NearestLookups *prometheus.CounterVec

	// Capacity management
	Capacity        prometheus.Gauge
	Resizes         prometheus.Counter
	OrphanedRecords prometheus.Counter

	// Link server
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Storage backend
	StorageSize        prometheus.Gauge
	StorageGCReclaimed prometheus.Counter

	reg *prometheus.Registry
}

// NewRegistry creates a registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		RecordsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Housekeeping records successfully persisted.",
		}),
		WriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_failures_total",
			Help:      "Housekeeping writes aborted by storage failure.",
		}),
		PagesServed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_served_total",
			Help:      "History pages completed without failure.",
		}),
		PageRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_records_total",
			Help:      "Records emitted by the paging engine.",
		}),
		PageFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_failures_total",
			Help:      "History pages aborted mid-stream.",
		}),
		NearestLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nearest_lookups_total",
			Help:      "Timestamp index nearest-match lookups by result.",
		}, []string{"result"}),
		Capacity: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_capacity_slots",
			Help:      "Configured slot capacity of the record store.",
		}),
		Resizes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_resizes_total",
			Help:      "Capacity changes applied to the record store.",
		}),
		OrphanedRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_records_total",
			Help:      "Records left behind by failed shrink cleanup deletes.",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_requests_total",
			Help:      "Link requests by subservice and status.",
		}, []string{"subservice", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "link_request_duration_seconds",
			Help:      "Link request handling latency by subservice.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"subservice"}),
		StorageSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "storage_size_bytes",
			Help:      "Total on-disk size of the record storage backend.",
		}),
		StorageGCReclaimed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_gc_reclaimed_bytes_total",
			Help:      "Bytes reclaimed by storage garbage collection.",
		}),
		reg: reg,
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
