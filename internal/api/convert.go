package api

import (
	"time"

	"n8nexplorer/internal/colors"
	"n8nexplorer/internal/explorer"
	"n8nexplorer/internal/hierarchy"
	"n8nexplorer/internal/n8n"
)

// ColorLookup resolves a folder path to its color.
type ColorLookup func(path string) colors.Color

// FromOutcome converts a refresh outcome into its API representation. A nil
// lookup paints every folder with the default color; an empty baseURL omits
// workflow links.
func FromOutcome(outcome explorer.Outcome, lookup ColorLookup, baseURL string) TreeResponse {
	if lookup == nil {
		lookup = func(string) colors.Color { return colors.Default }
	}
	resp := TreeResponse{
		State:         string(outcome.State),
		Stale:         outcome.Stale,
		SyncedAt:      formatTime(outcome.SyncedAt),
		WorkflowCount: outcome.WorkflowCount,
		CorrelationID: outcome.CorrelationID,
		Message:       outcome.Message(),
		Folders:       FromFolders(outcome.Result.Roots(), lookup, baseURL),
		Untagged:      FromWorkflows(outcome.Result.Untagged, baseURL),
		Archived:      FromWorkflows(outcome.Result.Archived, baseURL),
	}
	if outcome.Err != nil {
		resp.Error = &ErrorInfo{
			Kind:    string(outcome.Err.Kind),
			Status:  outcome.Err.Status,
			Message: outcome.Err.Error(),
			Hint:    outcome.Err.Hint(),
		}
	}
	return resp
}

// FromFolders converts folders, and recursively their children, in the given order.
func FromFolders(folders []*hierarchy.Folder, lookup ColorLookup, baseURL string) []FolderView {
	out := make([]FolderView, 0, len(folders))
	for _, folder := range folders {
		color := lookup(folder.Path)
		out = append(out, FolderView{
			Name:      folder.Name,
			Path:      folder.Path,
			Depth:     folder.Depth,
			Count:     folder.Total,
			Color:     color.String(),
			ColorHex:  color.Hex(),
			CreatedAt: formatTime(folder.CreatedAt),
			Workflows: FromWorkflows(folder.Workflows, baseURL),
			Children:  FromFolders(folder.SortedChildren(), lookup, baseURL),
		})
	}
	return out
}

// FromWorkflows converts workflows preserving order.
func FromWorkflows(workflows []n8n.Workflow, baseURL string) []WorkflowView {
	out := make([]WorkflowView, 0, len(workflows))
	for _, wf := range workflows {
		view := WorkflowView{
			ID:        wf.ID,
			Name:      wf.Name,
			Active:    wf.Active,
			Archived:  wf.IsArchived,
			CreatedAt: formatTime(wf.CreatedAt),
			UpdatedAt: formatTime(wf.UpdatedAt),
			Tags:      make([]string, 0, len(wf.Tags)),
		}
		if baseURL != "" {
			view.URL = n8n.WorkflowURL(baseURL, wf.ID)
		}
		for _, tag := range hierarchy.OrderedTags(wf.Tags) {
			view.Tags = append(view.Tags, tag.Name)
		}
		out = append(out, view)
	}
	return out
}

// Palette lists every selectable color.
func Palette() []PaletteEntry {
	all := colors.All()
	out := make([]PaletteEntry, 0, len(all))
	for _, c := range all {
		out = append(out, PaletteEntry{Token: c.String(), Label: c.Label(), Hex: c.Hex()})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
