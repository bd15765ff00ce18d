package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

const workflowsFixture = `{"data":[
	{"id":"1","name":"Invoice sync","active":true,"createdAt":"2024-01-01T00:00:00Z",
	 "tags":[{"id":"t2","name":"EU","createdAt":"2024-01-02T00:00:00Z"},{"id":"t1","name":"Sales","createdAt":"2024-01-01T00:00:00Z"}]},
	{"id":"2","name":"Loose end","active":false,"createdAt":"2024-01-01T00:00:00Z","tags":[]},
	{"id":"3","name":"Old report","isArchived":true,"createdAt":"2024-01-01T00:00:00Z","tags":[{"id":"t3","name":"Ops","createdAt":"2024-01-01T00:00:00Z"}]}
]}`

type cliTestEnv struct {
	baseDir    string
	configPath string
	upstream   *httptest.Server
	status     atomic.Int32
	requests   atomic.Int32
}

type envOptions struct {
	withCredentials bool
	ntfyTopic       string
}

// setupCLITestEnv writes a config backed by a JSON state file and a fake n8n
// instance. The instance key is "secret".
func setupCLITestEnv(t *testing.T, opts envOptions) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("N8N_API_URL", "")
	t.Setenv("N8N_API_KEY", "")

	env := &cliTestEnv{baseDir: base}
	env.status.Store(http.StatusOK)
	env.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.requests.Add(1)
		if r.Header.Get("X-N8N-API-KEY") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if status := int(env.status.Load()); status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(workflowsFixture))
	}))
	t.Cleanup(env.upstream.Close)

	baseURL, apiKey := "", ""
	if opts.withCredentials {
		baseURL, apiKey = env.upstream.URL, "secret"
	}
	stateDir := filepath.Join(base, "state")
	content := fmt.Sprintf(`[n8n]
base_url = %q
api_key = %q

[paths]
state_dir = %q
log_dir = %q

[store]
backend = "json"
path = %q

[serve]
bind = "127.0.0.1:0"

[notifications]
ntfy_topic = %q

[logging]
level = "error"
`, baseURL, apiKey, stateDir, filepath.Join(base, "logs"), filepath.Join(stateDir, "state.json"), opts.ntfyTopic)

	env.configPath = filepath.Join(base, "config.toml")
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRunCLI(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	out, stderr, err := runCLI(t, env, args...)
	if err != nil {
		t.Fatalf("%s: %v\nstdout:\n%s\nstderr:\n%s", strings.Join(args, " "), err, out, stderr)
	}
	return out
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
