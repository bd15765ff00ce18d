// Package n8n talks to the public REST API of an n8n automation server.
//
// Client.FetchWorkflows retrieves the full workflow list under a hard
// timeout, normalizes the response envelope (bare array, {data: [...]} or
// {workflows: [...]}) and reports every failure as a *FetchError whose Kind
// belongs to a closed taxonomy: auth, permission, not_found, http, timeout or
// network. Callers never see an unclassified error from the fetch path.
//
// The Workflow and Tag types mirror the subset of the API payload the rest of
// the repository consumes.
package n8n
