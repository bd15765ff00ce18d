package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"n8nexplorer/internal/api"
	"n8nexplorer/internal/colors"
	"n8nexplorer/internal/explorer"
	"n8nexplorer/internal/kvstore"
	"n8nexplorer/internal/n8n"
	"n8nexplorer/internal/settings"
	"n8nexplorer/internal/snapshot"
	"n8nexplorer/internal/testsupport"
)

type fixture struct {
	server   *api.Server
	store    *kvstore.MemoryStore
	prefs    *settings.Manager
	upstream *httptest.Server
	status   atomic.Int32
}

const workflowsBody = `{"data":[
	{"id":"1","name":"Invoice sync","active":true,"createdAt":"2024-01-01T00:00:00Z",
	 "tags":[{"id":"t2","name":"EU","createdAt":"2024-01-02T00:00:00Z"},{"id":"t1","name":"Sales","createdAt":"2024-01-01T00:00:00Z"}]},
	{"id":"2","name":"Loose","active":false,"createdAt":"2024-01-01T00:00:00Z","tags":[]},
	{"id":"3","name":"Old","isArchived":true,"createdAt":"2024-01-01T00:00:00Z","tags":[{"id":"t3","name":"Ops","createdAt":"2024-01-01T00:00:00Z"}]}
]}`

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: kvstore.NewMemory()}
	f.status.Store(http.StatusOK)
	f.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := int(f.status.Load())
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(workflowsBody))
	}))
	t.Cleanup(f.upstream.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithN8N(f.upstream.URL, "secret"))
	client := n8n.New()
	f.prefs = settings.New(f.store, client, cfg, nil)
	controller, err := explorer.New(explorer.Dependencies{
		Fetcher:     client,
		Credentials: f.prefs,
		Snapshots:   snapshot.NewCache(f.store),
		Timeout:     cfg.FetchTimeout(),
		IDs:         &testsupport.StubIDGenerator{},
	})
	if err != nil {
		t.Fatalf("explorer.New: %v", err)
	}
	f.server = api.NewServer(controller, colors.NewRegistry(f.store, nil), f.prefs, nil)
	return f
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[api.HealthResponse](t, rec)
	if resp.Status != "ok" || resp.State != string(explorer.StateIdle) {
		t.Fatalf("unexpected health %+v", resp)
	}
}

func TestTreeBeforeAnyRefreshIsEmpty(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/tree", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[api.TreeResponse](t, rec)
	if resp.State != string(explorer.StateIdle) || len(resp.Folders) != 0 || resp.WorkflowCount != 0 {
		t.Fatalf("unexpected tree %+v", resp)
	}
}

func TestRefreshBuildsTree(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	resp := decode[api.TreeResponse](t, rec)
	if resp.State != string(explorer.StateRendered) || resp.Stale {
		t.Fatalf("unexpected state %q stale=%v", resp.State, resp.Stale)
	}
	if resp.CorrelationID != "id-1" {
		t.Fatalf("correlation id = %q", resp.CorrelationID)
	}
	if len(resp.Folders) != 1 || resp.Folders[0].Path != "Sales" || resp.Folders[0].Count != 1 {
		t.Fatalf("unexpected roots %+v", resp.Folders)
	}
	eu := resp.Folders[0].Children
	if len(eu) != 1 || eu[0].Path != "Sales/EU" || eu[0].Depth != 2 {
		t.Fatalf("unexpected children %+v", eu)
	}
	if got := eu[0].Workflows[0].URL; got != f.upstream.URL+"/workflow/1" {
		t.Fatalf("workflow url = %q", got)
	}
	if len(resp.Untagged) != 1 || resp.Untagged[0].ID != "2" {
		t.Fatalf("untagged = %+v", resp.Untagged)
	}
	if len(resp.Archived) != 1 || resp.Archived[0].ID != "3" {
		t.Fatalf("archived = %+v", resp.Archived)
	}

	tree := decode[api.TreeResponse](t, f.do(t, http.MethodGet, "/api/tree", nil))
	if tree.CorrelationID != "id-1" || tree.WorkflowCount != 3 {
		t.Fatalf("GET /api/tree should return the last outcome, got %+v", tree)
	}
}

func TestRefreshFailureFallsBackToSnapshot(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(t, http.MethodPost, "/api/refresh", nil); rec.Code != http.StatusOK {
		t.Fatalf("first refresh status = %d", rec.Code)
	}
	f.status.Store(http.StatusUnauthorized)

	resp := decode[api.TreeResponse](t, f.do(t, http.MethodPost, "/api/refresh", nil))
	if resp.State != string(explorer.StateRenderedStale) || !resp.Stale {
		t.Fatalf("unexpected state %q stale=%v", resp.State, resp.Stale)
	}
	if resp.Error == nil || resp.Error.Kind != string(n8n.KindAuth) || resp.Error.Status != http.StatusUnauthorized {
		t.Fatalf("unexpected error info %+v", resp.Error)
	}
	if !strings.Contains(resp.Message, "Showing cached workflows") {
		t.Fatalf("message = %q", resp.Message)
	}
	if len(resp.Folders) != 1 {
		t.Fatalf("stale tree should still hold folders, got %+v", resp.Folders)
	}
}

func TestTreeServesSnapshotAfterRestart(t *testing.T) {
	f := newFixture(t)
	if _, err := snapshot.NewCache(f.store).Store(context.Background(), []n8n.Workflow{
		testsupport.Workflow("a", testsupport.Tag("Ops", 0)),
	}); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	resp := decode[api.TreeResponse](t, f.do(t, http.MethodGet, "/api/tree", nil))
	if !resp.Stale || resp.WorkflowCount != 1 || len(resp.Folders) != 1 {
		t.Fatalf("expected cached tree, got %+v", resp)
	}
}

func TestColorRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/api/colors", api.SetColorRequest{Path: "Sales/EU", Color: "Purple"})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d body=%s", rec.Code, rec.Body.String())
	}
	resp := decode[api.ColorsResponse](t, rec)
	if resp.Assignments["Sales/EU"] != "purple" {
		t.Fatalf("assignments = %v", resp.Assignments)
	}
	if len(resp.Palette) != len(colors.All()) {
		t.Fatalf("palette has %d entries", len(resp.Palette))
	}

	f.do(t, http.MethodPost, "/api/refresh", nil)
	tree := decode[api.TreeResponse](t, f.do(t, http.MethodGet, "/api/tree", nil))
	eu := tree.Folders[0].Children[0]
	if eu.Color != "purple" || eu.ColorHex != colors.Purple.Hex() {
		t.Fatalf("folder color = %s %s", eu.Color, eu.ColorHex)
	}
	if tree.Folders[0].Color != "default" {
		t.Fatalf("unassigned folder color = %s", tree.Folders[0].Color)
	}

	rec = f.do(t, http.MethodDelete, "/api/colors?path=Sales/EU", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	if got := decode[api.ColorsResponse](t, rec).Assignments; len(got) != 0 {
		t.Fatalf("assignments after reset = %v", got)
	}
}

func TestColorRoutesRejectBadInput(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name   string
		method string
		target string
		body   any
	}{
		{name: "unknown color", method: http.MethodPut, target: "/api/colors", body: api.SetColorRequest{Path: "Ops", Color: "mauve"}},
		{name: "missing path", method: http.MethodPut, target: "/api/colors", body: map[string]string{"color": "info"}},
		{name: "blank path", method: http.MethodPut, target: "/api/colors", body: api.SetColorRequest{Path: "  ", Color: "info"}},
		{name: "reset without path", method: http.MethodDelete, target: "/api/colors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.target, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
			}
			if decode[api.ErrorResponse](t, rec).Error == "" {
				t.Fatal("expected error message")
			}
		})
	}
}

func TestSettingsRoutes(t *testing.T) {
	f := newFixture(t)
	resp := decode[api.SettingsResponse](t, f.do(t, http.MethodGet, "/api/settings", nil))
	if !resp.Configured || resp.CredentialSource != settings.SourceConfig || resp.DarkMode {
		t.Fatalf("unexpected settings %+v", resp)
	}

	enabled := true
	rec := f.do(t, http.MethodPut, "/api/settings/dark-mode", api.DarkModeRequest{Enabled: &enabled})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if !decode[api.SettingsResponse](t, rec).DarkMode {
		t.Fatal("dark mode not enabled")
	}
	if !f.prefs.DarkMode(context.Background()) {
		t.Fatal("dark mode not persisted")
	}

	rec = f.do(t, http.MethodPut, "/api/settings/dark-mode", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing enabled status = %d", rec.Code)
	}
}

type stubExplorer struct {
	err error
}

func (s stubExplorer) Refresh(context.Context) (explorer.Outcome, error) {
	return explorer.Outcome{}, s.err
}

func (stubExplorer) Cached(context.Context) (explorer.Outcome, bool) { return explorer.Outcome{}, false }

func (stubExplorer) Last() (explorer.Outcome, bool) { return explorer.Outcome{}, false }

func (stubExplorer) State() explorer.State { return explorer.StateFetching }

func TestRefreshErrorStatuses(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: explorer.ErrRefreshInProgress, want: http.StatusConflict},
		{err: explorer.ErrNotConfigured, want: http.StatusPreconditionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			server := api.NewServer(stubExplorer{err: tt.err}, nil, nil, nil)
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if got := decode[api.ErrorResponse](t, rec).Error; got != tt.err.Error() {
				t.Fatalf("error = %q", got)
			}
		})
	}
}

func TestRoutesWithoutRegistryReportUnavailable(t *testing.T) {
	server := api.NewServer(stubExplorer{}, nil, nil, nil)
	for _, target := range []string{"/api/colors", "/api/settings"} {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s status = %d", target, rec.Code)
		}
	}
}

func TestServerStartAndStop(t *testing.T) {
	server := api.NewServer(stubExplorer{}, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := server.Start(ctx, "127.0.0.1:0"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer server.Stop()

	resp, err := http.Get("http://" + server.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var health api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.State != string(explorer.StateFetching) {
		t.Fatalf("state = %q", health.State)
	}
}

func TestServerStartRejectsEmptyBind(t *testing.T) {
	server := api.NewServer(stubExplorer{}, nil, nil, nil)
	if err := server.Start(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty bind")
	}
}

func TestTokenProtectsAPIRoutes(t *testing.T) {
	server := api.NewServer(stubExplorer{}, nil, nil, nil, api.WithToken("s3cret"))
	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{name: "health stays open", target: "/health", want: http.StatusOK},
		{name: "missing header", target: "/api/tree", want: http.StatusUnauthorized},
		{name: "wrong scheme", target: "/api/tree", header: "Basic s3cret", want: http.StatusUnauthorized},
		{name: "wrong token", target: "/api/tree", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid token", target: "/api/tree", header: "Bearer s3cret", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
