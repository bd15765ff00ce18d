package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"n8nexplorer/internal/logging"
)

const (
	workflowsPath = "/api/v1/workflows"
	apiKeyHeader  = "X-N8N-API-KEY"

	// DefaultFetchTimeout bounds a workflow list request.
	DefaultFetchTimeout = 15 * time.Second
	// DefaultConnectionTestTimeout bounds a credential check.
	DefaultConnectionTestTimeout = 10 * time.Second

	maxPages        = 500
	errorBodyLimit  = 512
	maxResponseSize = 64 << 20
)

// HTTPDoer describes the HTTP client used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher is the workflow retrieval contract consumed by the sync controller.
type Fetcher interface {
	FetchWorkflows(ctx context.Context, baseURL, apiKey string, timeout time.Duration) ([]Workflow, error)
}

// Client retrieves workflows from an n8n instance.
type Client struct {
	httpClient HTTPDoer
	logger     *slog.Logger
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for response-shape warnings and request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client. Deadlines come from the per-call timeout, so the
// default HTTP client carries none of its own.
func New(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "n8n")
	return client
}

// FetchWorkflows returns every workflow visible to apiKey. The whole
// operation, including cursor pagination, is bounded by timeout; a
// non-positive timeout falls back to DefaultFetchTimeout. Every error is a
// *FetchError.
func (c *Client) FetchWorkflows(ctx context.Context, baseURL, apiKey string, timeout time.Duration) ([]Workflow, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	endpoint, err := workflowsEndpoint(baseURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := logging.WithContext(ctx, c.logger)
	start := time.Now()

	var (
		all    []Workflow
		cursor string
		seen   = map[string]struct{}{}
	)
	for page := 0; page < maxPages; page++ {
		list, err := c.fetchPage(ctx, endpoint, apiKey, cursor)
		if err != nil {
			logger.Debug("workflow fetch failed",
				logging.String(logging.FieldEventType, "workflow_fetch_failed"),
				logging.Duration("latency", time.Since(start)),
				logging.Error(err))
			return nil, err
		}
		if !list.recognized {
			logging.WarnWithContext(logger, "unexpected workflow list response shape",
				"workflow_response_unrecognized",
				logging.String("response_keys", strings.Join(list.keys, ",")),
				logging.String(logging.FieldErrorHint, "verify the base URL points at an n8n instance"),
				logging.String(logging.FieldImpact, "no workflows will be shown for this sync"))
		}
		all = append(all, list.workflows...)

		if list.nextCursor == "" {
			break
		}
		if _, dup := seen[list.nextCursor]; dup {
			logging.WarnWithContext(logger, "workflow pagination cursor repeated", "workflow_cursor_loop",
				logging.String(logging.FieldImpact, "workflow list may be incomplete"))
			break
		}
		seen[list.nextCursor] = struct{}{}
		cursor = list.nextCursor
	}

	if all == nil {
		all = []Workflow{}
	}
	logger.Debug("workflows fetched",
		logging.String(logging.FieldEventType, "workflow_fetch_completed"),
		logging.Int("workflow_count", len(all)),
		logging.Duration("latency", time.Since(start)))
	return all, nil
}

// TestConnection issues the workflow list request once to verify the base URL
// and API key. A non-positive timeout falls back to DefaultConnectionTestTimeout.
func (c *Client) TestConnection(ctx context.Context, baseURL, apiKey string, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		timeout = DefaultConnectionTestTimeout
	}
	endpoint, err := workflowsEndpoint(baseURL)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err = c.fetchPage(ctx, endpoint, apiKey, "")
	return err
}

type workflowList struct {
	workflows  []Workflow
	nextCursor string
	recognized bool
	keys       []string
}

func (c *Client) fetchPage(ctx context.Context, endpoint *url.URL, apiKey, cursor string) (workflowList, error) {
	target := *endpoint
	if cursor != "" {
		query := target.Query()
		query.Set("cursor", cursor)
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return workflowList{}, &FetchError{Kind: KindNetwork, Message: "build request", Err: err}
	}
	req.Header.Set(apiKeyHeader, apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return workflowList{}, transportError(ctx, "execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return workflowList{}, statusError(resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return workflowList{}, transportError(ctx, "read response", err)
	}

	list, err := decodeWorkflowList(body)
	if err != nil {
		return workflowList{}, &FetchError{
			Kind:    KindHTTP,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("HTTP %d: invalid JSON body", resp.StatusCode),
			Err:     err,
		}
	}
	return list, nil
}

// decodeWorkflowList accepts a bare array, {data: [...]} or {workflows: [...]}.
// Any other JSON value decodes to an empty, unrecognized list.
func decodeWorkflowList(body []byte) (workflowList, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return workflowList{}, errors.New("empty response body")
	}

	switch trimmed[0] {
	case '[':
		var workflows []Workflow
		if err := json.Unmarshal(trimmed, &workflows); err != nil {
			return workflowList{}, fmt.Errorf("decode workflow array: %w", err)
		}
		return workflowList{workflows: workflows, recognized: true}, nil
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return workflowList{}, fmt.Errorf("decode workflow envelope: %w", err)
		}
		list := workflowList{keys: sortedKeys(envelope)}
		for _, key := range []string{"data", "workflows"} {
			raw, ok := envelope[key]
			if !ok || !isJSONArray(raw) {
				continue
			}
			if err := json.Unmarshal(raw, &list.workflows); err != nil {
				return workflowList{}, fmt.Errorf("decode %s: %w", key, err)
			}
			list.recognized = true
			break
		}
		if list.recognized {
			if raw, ok := envelope["nextCursor"]; ok {
				var next *string
				if err := json.Unmarshal(raw, &next); err == nil && next != nil {
					list.nextCursor = strings.TrimSpace(*next)
				}
			}
		}
		return list, nil
	default:
		if !json.Valid(trimmed) {
			return workflowList{}, errors.New("response is not valid JSON")
		}
		return workflowList{}, nil
	}
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func workflowsEndpoint(baseURL string) (*url.URL, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, &FetchError{Kind: KindNetwork, Message: "base url is empty"}
	}
	endpoint, err := url.Parse(base + workflowsPath)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Message: "parse base url", Err: err}
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, &FetchError{Kind: KindNetwork, Message: fmt.Sprintf("unsupported url scheme %q", endpoint.Scheme)}
	}
	return endpoint, nil
}

// transportError maps a failure without an HTTP status. Any abort of the
// request context, whether from the fetch deadline or the caller, is a
// timeout.
func transportError(ctx context.Context, op string, err error) *FetchError {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &FetchError{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &FetchError{Kind: KindNetwork, Message: op, Err: err}
}
