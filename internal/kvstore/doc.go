// Package kvstore persists small JSON documents under string keys.
//
// Three backends satisfy Store: a SQLite database (the default), a single
// JSON file guarded by an advisory file lock so several processes can share
// it, and an in-memory map for tests and ephemeral runs. Open selects a
// backend from configuration.
package kvstore
