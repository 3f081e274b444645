// Package domain defines the core domain models for telemhist:
// the housekeeping snapshot, its per-subsystem telemetry records,
// slot addressing, and the structured error model.
package domain
