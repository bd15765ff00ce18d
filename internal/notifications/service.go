package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"n8nexplorer/internal/config"
)

const userAgent = "n8nexplorer/0.1.0"

// Event identifies a notification type.
type Event string

const (
	EventSyncFailed    Event = "sync_failed"
	EventSyncRecovered Event = "sync_recovered"
	EventTest          Event = "test"
)

// Payload carries event fields. Keys are event specific.
type Payload map[string]any

// Service publishes notifications.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether cfg routes notifications anywhere.
func Enabled(cfg *config.Config) bool {
	return cfg != nil && strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	instance := payload.string("instance")
	if instance == "" {
		instance = "n8n"
	}
	switch event {
	case EventSyncFailed:
		body := fmt.Sprintf("Sync with %s failed: %s", instance, payload.string("hint"))
		if cached, _ := payload["cached"].(bool); cached {
			body += "\nShowing cached workflows."
		}
		return message{
			title:    "n8nexplorer - Sync Failed",
			body:     body,
			tags:     []string{"n8nexplorer", "sync", "failed"},
			priority: "high",
		}, true
	case EventSyncRecovered:
		return message{
			title: "n8nexplorer - Sync Recovered",
			body:  fmt.Sprintf("Sync with %s recovered: %v workflows", instance, payload["workflowCount"]),
			tags:  []string{"n8nexplorer", "sync", "recovered"},
		}, true
	case EventTest:
		return message{
			title:    "n8nexplorer - Test",
			body:     "Notification system test",
			tags:     []string{"n8nexplorer", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (p Payload) string(key string) string {
	value, _ := p[key].(string)
	return strings.TrimSpace(value)
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
