// Package api exposes the explorer over a local HTTP API and defines the
// wire-format types a UI renderer consumes.
//
// # Key Types
//
// TreeResponse: the organized folder tree with per-folder colors, the
// untagged and archived buckets, the sync state and any fetch error.
//
// ColorsResponse: every stored folder color plus the selectable palette.
//
// # Converters
//
// FromOutcome: explorer.Outcome -> TreeResponse, resolving each folder's
// color by path so colors survive tree rebuilds. The CLI uses the same
// converter for its JSON and YAML output.
//
// # Server
//
// Server wires the routes onto a gin engine: GET /health, GET /api/tree,
// POST /api/refresh (409 while a refresh is running), GET, PUT and DELETE
// /api/colors, GET /api/settings and PUT /api/settings/dark-mode. Scheduler
// triggers refreshes on a cron schedule while the server runs. WithToken
// puts the /api routes behind a bearer token; /health stays open.
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
package api
