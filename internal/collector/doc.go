// Package collector samples subsystem telemetry on a fixed interval
// and appends each snapshot to the history store.
package collector
