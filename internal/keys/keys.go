package keys

import "path/filepath"

// Package keys centralizes Redis key and segment path construction.
// It is kept in internal to avoid leaking storage formats to public API.

// Prefix namespaces every key and segment file written by taskmgr.
const Prefix = "taskmgr"

// Slot returns the Redis key holding the single shared record for a channel.
// The hash tag keeps it cluster-safe.
func Slot(name string) string { return Prefix + ":{" + name + "}:slot" }

// SegmentFile returns the file name of a shared memory segment.
func SegmentFile(name string) string { return Prefix + "-" + name + ".seg" }

// SegmentPath joins dir and the segment file name for a channel.
func SegmentPath(dir, name string) string { return filepath.Join(dir, SegmentFile(name)) }
