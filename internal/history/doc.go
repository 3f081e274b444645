// Package history implements the housekeeping record store and
// retrieval engine: a circular, capacity-reconfigurable log of
// snapshots on persistent storage, an in-memory timestamp index with
// nearest-match lookup, and the backward-walking pagination used to
// answer retrieval requests.
//
// All shared mutable state (capacity, write cursor and timestamp
// index) lives inside Store behind a single mutex. The write path
// holds the mutex across the whole write-and-index-update; the read
// path holds it only for index lookups and releases it before storage
// loads, so a reader may observe a slot being concurrently overwritten
// or deleted. That eventual-consistency window is part of the contract.
package history
