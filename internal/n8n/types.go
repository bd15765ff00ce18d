package n8n

import (
	"net/url"
	"strings"
	"time"
)

// Tag is a named, timestamped label attached to a workflow.
type Tag struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// Workflow is a single automation record as returned by the n8n API.
type Workflow struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Active     bool      `json:"active" yaml:"active"`
	IsArchived bool      `json:"isArchived" yaml:"is_archived"`
	CreatedAt  time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt,omitzero" yaml:"updated_at,omitempty"`
	Tags       []Tag     `json:"tags" yaml:"tags,omitempty"`
}

// WorkflowURL returns the editor link for a workflow on the given instance.
func WorkflowURL(baseURL, workflowID string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return base + "/workflow/" + url.PathEscape(strings.TrimSpace(workflowID))
}
