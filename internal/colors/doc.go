// Package colors persists user-chosen colors for folder paths.
//
// Assignments are keyed by the folder's display path and live independently
// of any organized tree: a folder rebuilt on the next sync picks up its color
// again by path. Entries are only removed by an explicit Reset.
package colors
