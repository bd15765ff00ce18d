// Package explorer orchestrates a workflow sync.
//
// Controller.Refresh fetches the workflow list, stores it as the new snapshot
// and organizes it into a folder tree. When the fetch fails the last snapshot
// is organized instead and the outcome is marked stale; with no snapshot the
// outcome is empty. Only one refresh runs at a time: a call that arrives while
// another is in flight returns ErrRefreshInProgress without waiting.
//
// The controller keeps its state in the Controller value; there is no
// package-level state, so several controllers (one per store) can coexist.
package explorer
