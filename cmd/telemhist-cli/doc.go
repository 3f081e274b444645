// Package main provides the entry point for telemhist-cli.
//
// The CLI tool provides command-line access to telemhist-server for:
//
//   - Record log capacity management (get, set)
//   - Historic telemetry retrieval with paging
//
// Usage:
//
//	telemhist-cli [command] [flags]
//	telemhist-cli capacity get
//	telemhist-cli history --limit 20 --before-time 1755950000
package main
