// Package codec serializes housekeeping snapshots to and from the
// fixed-order binary record layout.
//
// The layout is a concatenation of named sub-records, one per subsystem,
// in the order returned by SubRecords(). All multi-byte fields are
// network (big-endian) byte order; the same canonical layout is used for
// persisted records and for the wire, so a record read back is byte for
// byte the record that was written.
package codec
