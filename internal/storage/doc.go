// Package storage provides slot-keyed persistent storage for encoded
// housekeeping records.
//
// RecordStore abstracts the storage medium so the history core never
// touches filenames or key layout: the Badger-backed implementation is
// the flight configuration, the in-memory implementation serves tests
// and bench runs without persistent media.
package storage
