package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// TreeResponse is the organized view of the workflow list.
type TreeResponse struct {
	State         string         `json:"state" yaml:"state"`
	Stale         bool           `json:"stale" yaml:"stale"`
	SyncedAt      string         `json:"syncedAt,omitempty" yaml:"synced_at,omitempty"`
	WorkflowCount int            `json:"workflowCount" yaml:"workflow_count"`
	CorrelationID string         `json:"correlationId,omitempty" yaml:"correlation_id,omitempty"`
	Message       string         `json:"message,omitempty" yaml:"message,omitempty"`
	Error         *ErrorInfo     `json:"error,omitempty" yaml:"error,omitempty"`
	Folders       []FolderView   `json:"folders" yaml:"folders"`
	Untagged      []WorkflowView `json:"untagged" yaml:"untagged"`
	Archived      []WorkflowView `json:"archived" yaml:"archived"`
}

// ErrorInfo describes a classified fetch failure.
type ErrorInfo struct {
	Kind    string `json:"kind" yaml:"kind"`
	Status  int    `json:"status,omitempty" yaml:"status,omitempty"`
	Message string `json:"message" yaml:"message"`
	Hint    string `json:"hint" yaml:"hint"`
}

// FolderView is one folder with its children in display order.
type FolderView struct {
	Name      string         `json:"name" yaml:"name"`
	Path      string         `json:"path" yaml:"path"`
	Depth     int            `json:"depth" yaml:"depth"`
	Count     int            `json:"count" yaml:"count"`
	Color     string         `json:"color" yaml:"color"`
	ColorHex  string         `json:"colorHex" yaml:"color_hex"`
	CreatedAt string         `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	Workflows []WorkflowView `json:"workflows" yaml:"workflows,omitempty"`
	Children  []FolderView   `json:"children" yaml:"children,omitempty"`
}

// WorkflowView is a workflow as shown in the tree.
type WorkflowView struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Active    bool     `json:"active" yaml:"active"`
	Archived  bool     `json:"archived" yaml:"archived"`
	URL       string   `json:"url,omitempty" yaml:"url,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt string   `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
	Tags      []string `json:"tags" yaml:"tags,omitempty"`
}

// ColorsResponse lists stored assignments and the selectable palette.
type ColorsResponse struct {
	Assignments map[string]string `json:"assignments"`
	Palette     []PaletteEntry    `json:"palette"`
}

// PaletteEntry is one selectable color.
type PaletteEntry struct {
	Token string `json:"token"`
	Label string `json:"label"`
	Hex   string `json:"hex"`
}

// SetColorRequest assigns a color to a folder path.
type SetColorRequest struct {
	Path  string `json:"path" binding:"required"`
	Color string `json:"color" binding:"required"`
}

// SettingsResponse reports credential presence and display preferences.
type SettingsResponse struct {
	Configured       bool   `json:"configured"`
	BaseURL          string `json:"baseUrl,omitempty"`
	CredentialSource string `json:"credentialSource"`
	DarkMode         bool   `json:"darkMode"`
}

// DarkModeRequest sets the display preference.
type DarkModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
