// Package metric provides Prometheus metrics for telemhist.
//
// It exposes counters and gauges for the write path, the paging engine,
// capacity changes and the storage backend, served over HTTP in
// Prometheus exposition format.
package metric
