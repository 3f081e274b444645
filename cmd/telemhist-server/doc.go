// Package main provides the entry point for telemhist-server.
//
// The server is the telemetry history service that provides:
//
//   - Periodic collection of subsystem telemetry snapshots
//   - A circular, capacity-reconfigurable persistent record log
//   - Ground link access for capacity management and history paging
//   - A Prometheus metrics endpoint
//
// Usage:
//
//	telemhist-server [flags]
//	telemhist-server --config /path/to/config.yaml
//
// The server loads configuration, initializes storage and the history
// store, and starts the collector and link listeners.
package main
