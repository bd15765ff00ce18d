package notifications

import (
	"context"
	"log/slog"
	"sync"

	"n8nexplorer/internal/explorer"
	"n8nexplorer/internal/logging"
)

// Monitor turns a stream of refresh outcomes into failure and recovery alerts.
type Monitor struct {
	service  Service
	instance string
	logger   *slog.Logger

	mu      sync.Mutex
	failing bool
}

// NewMonitor creates a monitor for the named instance. A nil service
// disables publishing.
func NewMonitor(service Service, instance string, logger *slog.Logger) *Monitor {
	if service == nil {
		service = noopService{}
	}
	return &Monitor{
		service:  service,
		instance: instance,
		logger:   logging.NewComponentLogger(logger, "notifications"),
	}
}

// Observe records outcome and publishes when sync health changed.
func (m *Monitor) Observe(ctx context.Context, outcome explorer.Outcome) {
	failing := outcome.Err != nil

	m.mu.Lock()
	changed := failing != m.failing
	m.failing = failing
	m.mu.Unlock()
	if !changed {
		return
	}

	event := EventSyncRecovered
	payload := Payload{"instance": m.instance, "workflowCount": outcome.WorkflowCount}
	if failing {
		event = EventSyncFailed
		payload = Payload{
			"instance": m.instance,
			"hint":     outcome.Err.Hint(),
			"kind":     string(outcome.Err.Kind),
			"cached":   outcome.State == explorer.StateRenderedStale,
		}
	}
	if err := m.service.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "failed to send notification", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "sync health alert was not delivered"))
	}
}
