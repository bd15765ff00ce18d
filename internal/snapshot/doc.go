// Package snapshot keeps the last successfully fetched workflow list so the
// explorer can fall back to it when the n8n instance is unreachable.
//
// The snapshot is written as one value (workflows plus sync time) under a
// single store key, so a reader never observes a partially written list.
package snapshot
