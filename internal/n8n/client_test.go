package n8n_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"n8nexplorer/internal/n8n"
)

const sampleWorkflow = `{"id":"wf1","name":"Invoice sync","active":true,"isArchived":false,"createdAt":"2024-01-02T03:04:05.000Z","tags":[{"id":"t1","name":"Finance","createdAt":"2024-01-01T00:00:00.000Z"}]}`

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchWorkflowsEnvelopes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCount int
	}{
		{name: "bare array", body: "[" + sampleWorkflow + "]", wantCount: 1},
		{name: "data envelope", body: `{"data":[` + sampleWorkflow + `],"nextCursor":null}`, wantCount: 1},
		{name: "workflows envelope", body: `{"workflows":[` + sampleWorkflow + `]}`, wantCount: 1},
		{name: "unexpected object", body: `{"items":[` + sampleWorkflow + `]}`, wantCount: 0},
		{name: "scalar", body: `42`, wantCount: 0},
		{name: "empty array", body: `[]`, wantCount: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})
			client := n8n.New()
			workflows, err := client.FetchWorkflows(context.Background(), srv.URL, "key", time.Second)
			if err != nil {
				t.Fatalf("FetchWorkflows returned error: %v", err)
			}
			if workflows == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(workflows) != tt.wantCount {
				t.Fatalf("expected %d workflows, got %d", tt.wantCount, len(workflows))
			}
		})
	}
}

func TestFetchWorkflowsDecodesFields(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[" + sampleWorkflow + "]"))
	})
	workflows, err := n8n.New().FetchWorkflows(context.Background(), srv.URL, "key", time.Second)
	if err != nil {
		t.Fatalf("FetchWorkflows: %v", err)
	}
	wf := workflows[0]
	if wf.ID != "wf1" || wf.Name != "Invoice sync" || !wf.Active || wf.IsArchived {
		t.Fatalf("unexpected workflow: %+v", wf)
	}
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if !wf.CreatedAt.Equal(want) {
		t.Fatalf("createdAt = %v, want %v", wf.CreatedAt, want)
	}
	if len(wf.Tags) != 1 || wf.Tags[0].Name != "Finance" {
		t.Fatalf("unexpected tags: %+v", wf.Tags)
	}
}

func TestFetchWorkflowsSendsHeadersAndTrimsBase(t *testing.T) {
	var gotPath, gotKey, gotAccept string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-N8N-API-KEY")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`[]`))
	})
	if _, err := n8n.New().FetchWorkflows(context.Background(), srv.URL+"/", "secret", time.Second); err != nil {
		t.Fatalf("FetchWorkflows: %v", err)
	}
	if gotPath != "/api/v1/workflows" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("api key header = %q", gotKey)
	}
	if gotAccept != "application/json" {
		t.Fatalf("accept header = %q", gotAccept)
	}
}

func TestFetchWorkflowsStatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		kind     n8n.Kind
		sentinel error
	}{
		{status: http.StatusUnauthorized, kind: n8n.KindAuth, sentinel: n8n.ErrAuth},
		{status: http.StatusForbidden, kind: n8n.KindPermission, sentinel: n8n.ErrPermission},
		{status: http.StatusNotFound, kind: n8n.KindNotFound, sentinel: n8n.ErrNotFound},
		{status: http.StatusInternalServerError, kind: n8n.KindHTTP, sentinel: n8n.ErrHTTP},
		{status: http.StatusTooManyRequests, kind: n8n.KindHTTP, sentinel: n8n.ErrHTTP},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})
			_, err := n8n.New().FetchWorkflows(context.Background(), srv.URL, "key", time.Second)
			fetchErr, ok := n8n.AsFetchError(err)
			if !ok {
				t.Fatalf("expected FetchError, got %T %v", err, err)
			}
			if fetchErr.Kind != tt.kind {
				t.Fatalf("kind = %q, want %q", fetchErr.Kind, tt.kind)
			}
			if fetchErr.Status != tt.status {
				t.Fatalf("status = %d, want %d", fetchErr.Status, tt.status)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
			if fetchErr.Hint() == "" {
				t.Fatal("expected non-empty hint")
			}
		})
	}
}

func TestFetchWorkflowsHTTPHintIncludesStatus(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := n8n.New().FetchWorkflows(context.Background(), srv.URL, "key", time.Second)
	fetchErr, ok := n8n.AsFetchError(err)
	if !ok {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !strings.Contains(fetchErr.Hint(), "502") {
		t.Fatalf("hint %q should mention status", fetchErr.Hint())
	}
}

func TestFetchWorkflowsInvalidJSONIsHTTPError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>login</html>`))
	})
	_, err := n8n.New().FetchWorkflows(context.Background(), srv.URL, "key", time.Second)
	fetchErr, ok := n8n.AsFetchError(err)
	if !ok {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Kind != n8n.KindHTTP || fetchErr.Status != http.StatusOK {
		t.Fatalf("unexpected error: kind=%s status=%d", fetchErr.Kind, fetchErr.Status)
	}
}

func TestFetchWorkflowsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	start := time.Now()
	_, err := n8n.New().FetchWorkflows(context.Background(), srv.URL, "key", 50*time.Millisecond)
	if !errors.Is(err, n8n.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}
}

func TestFetchWorkflowsCallerCancelIsTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	_, err := n8n.New().FetchWorkflows(ctx, srv.URL, "key", time.Second)
	if !errors.Is(err, n8n.ErrTimeout) {
		t.Fatalf("expected timeout kind for canceled context, got %v", err)
	}
}

func TestFetchWorkflowsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := n8n.New().FetchWorkflows(context.Background(), base, "key", 2*time.Second)
	if !errors.Is(err, n8n.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestFetchWorkflowsRejectsEmptyBase(t *testing.T) {
	_, err := n8n.New().FetchWorkflows(context.Background(), "  ", "key", time.Second)
	if !errors.Is(err, n8n.ErrNetwork) {
		t.Fatalf("expected network error for empty base, got %v", err)
	}
}

func TestFetchWorkflowsFollowsCursor(t *testing.T) {
	var cursors []string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		cursor := r.URL.Query().Get("cursor")
		cursors = append(cursors, cursor)
		switch cursor {
		case "":
			_, _ = w.Write([]byte(`{"data":[{"id":"a","name":"A"}],"nextCursor":"page2"}`))
		case "page2":
			_, _ = w.Write([]byte(`{"data":[{"id":"b","name":"B"}],"nextCursor":null}`))
		default:
			t.Errorf("unexpected cursor %q", cursor)
		}
	})
	workflows, err := n8n.New().FetchWorkflows(context.Background(), srv.URL, "key", time.Second)
	if err != nil {
		t.Fatalf("FetchWorkflows: %v", err)
	}
	if len(workflows) != 2 || workflows[0].ID != "a" || workflows[1].ID != "b" {
		t.Fatalf("unexpected workflows: %+v", workflows)
	}
	if len(cursors) != 2 {
		t.Fatalf("expected 2 requests, got %v", cursors)
	}
}

func TestFetchWorkflowsStopsOnRepeatedCursor(t *testing.T) {
	requests := 0
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"data":[{"id":"x","name":"X"}],"nextCursor":"same"}`))
	})
	workflows, err := n8n.New().FetchWorkflows(context.Background(), srv.URL, "key", time.Second)
	if err != nil {
		t.Fatalf("FetchWorkflows: %v", err)
	}
	if requests != 2 {
		t.Fatalf("expected 2 requests before loop detection, got %d", requests)
	}
	if len(workflows) != 2 {
		t.Fatalf("expected 2 workflows, got %d", len(workflows))
	}
}

func TestFetchWorkflowsWarnsOnUnexpectedShape(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	})
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := n8n.New(n8n.WithLogger(logger))
	if _, err := client.FetchWorkflows(context.Background(), srv.URL, "key", time.Second); err != nil {
		t.Fatalf("FetchWorkflows: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "workflow_response_unrecognized") {
		t.Fatalf("expected warning log, got %q", out)
	}
}

type recordingDoer struct {
	requests []*http.Request
	resp     *http.Response
}

func (d *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	d.requests = append(d.requests, req)
	return d.resp, nil
}

func TestTestConnectionUsesInjectedClient(t *testing.T) {
	doer := &recordingDoer{resp: &http.Response{
		StatusCode: http.StatusUnauthorized,
		Body:       http.NoBody,
		Header:     http.Header{},
	}}
	client := n8n.New(n8n.WithHTTPClient(doer))
	err := client.TestConnection(context.Background(), "https://n8n.example.com/", "bad", 0)
	if !errors.Is(err, n8n.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if len(doer.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(doer.requests))
	}
	if got := doer.requests[0].URL.String(); got != "https://n8n.example.com/api/v1/workflows" {
		t.Fatalf("unexpected url %q", got)
	}
	if _, ok := doer.requests[0].Context().Deadline(); !ok {
		t.Fatal("expected default deadline on connection test")
	}
}

func TestWorkflowURL(t *testing.T) {
	got := n8n.WorkflowURL("https://n8n.example.com/", "abc 1")
	if got != "https://n8n.example.com/workflow/abc%201" {
		t.Fatalf("WorkflowURL = %q", got)
	}
}
