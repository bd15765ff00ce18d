package explorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"n8nexplorer/internal/clock"
	"n8nexplorer/internal/hierarchy"
	"n8nexplorer/internal/logging"
	"n8nexplorer/internal/n8n"
	"n8nexplorer/internal/settings"
	"n8nexplorer/internal/snapshot"
)

var (
	// ErrRefreshInProgress is returned when a refresh is requested while one is running.
	ErrRefreshInProgress = errors.New("refresh already in progress")
	// ErrNotConfigured is returned when no base URL or API key is available.
	ErrNotConfigured = errors.New("n8n credentials are not configured")
)

// CredentialSource supplies the instance to sync from.
type CredentialSource interface {
	Credentials(ctx context.Context) settings.Credentials
}

// SnapshotCache persists the last successful workflow list.
type SnapshotCache interface {
	Store(ctx context.Context, workflows []n8n.Workflow) (snapshot.Snapshot, error)
	Load(ctx context.Context) (snapshot.Snapshot, bool)
}

// Dependencies are the collaborators of a Controller. Fetcher, Credentials
// and Snapshots are required.
type Dependencies struct {
	Fetcher     n8n.Fetcher
	Credentials CredentialSource
	Snapshots   SnapshotCache
	Timeout     time.Duration
	Clock       clock.Clock
	IDs         clock.IDGenerator
	Logger      *slog.Logger
}

// Outcome describes the result of one refresh.
type Outcome struct {
	State         State
	Result        hierarchy.Result
	Err           *n8n.FetchError
	Stale         bool
	SyncedAt      time.Time
	WorkflowCount int
	CorrelationID string
}

// Message returns the user-facing notice for the outcome, or "" when there is
// nothing to report.
func (o Outcome) Message() string {
	switch o.State {
	case StateRendered:
		if o.WorkflowCount == 0 {
			return "No workflows found. Create some workflows in n8n to see them here."
		}
		return ""
	case StateRenderedStale:
		return fmt.Sprintf("%s Showing cached workflows from %s.", o.Err.Hint(), o.SyncedAt.Local().Format(time.DateTime))
	case StateEmpty:
		return o.Err.Hint()
	default:
		return ""
	}
}

// Controller runs refreshes one at a time and remembers the latest outcome.
type Controller struct {
	fetcher   n8n.Fetcher
	creds     CredentialSource
	snapshots SnapshotCache
	timeout   time.Duration
	clock     clock.Clock
	ids       clock.IDGenerator
	logger    *slog.Logger

	inFlight atomic.Bool

	mu      sync.RWMutex
	state   State
	last    Outcome
	hasLast bool
}

// New validates deps and returns an idle Controller.
func New(deps Dependencies) (*Controller, error) {
	if deps.Fetcher == nil {
		return nil, errors.New("explorer: fetcher is required")
	}
	if deps.Credentials == nil {
		return nil, errors.New("explorer: credential source is required")
	}
	if deps.Snapshots == nil {
		return nil, errors.New("explorer: snapshot cache is required")
	}
	c := &Controller{
		fetcher:   deps.Fetcher,
		creds:     deps.Credentials,
		snapshots: deps.Snapshots,
		timeout:   deps.Timeout,
		clock:     deps.Clock,
		ids:       deps.IDs,
		logger:    logging.NewComponentLogger(deps.Logger, "explorer"),
		state:     StateIdle,
	}
	if c.timeout <= 0 {
		c.timeout = n8n.DefaultFetchTimeout
	}
	if c.clock == nil {
		c.clock = clock.Real{}
	}
	if c.ids == nil {
		c.ids = clock.UUIDGenerator{}
	}
	return c, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Last returns the most recent completed outcome.
func (c *Controller) Last() (Outcome, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last, c.hasLast
}

// Cached organizes the stored snapshot without contacting the instance. The
// controller state is not changed.
func (c *Controller) Cached(ctx context.Context) (Outcome, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	snap, ok := c.snapshots.Load(ctx)
	if !ok {
		return Outcome{}, false
	}
	return Outcome{
		State:         c.State(),
		Result:        hierarchy.Organize(snap.Workflows),
		Stale:         true,
		SyncedAt:      snap.SyncedAt,
		WorkflowCount: len(snap.Workflows),
	}, true
}

// Refresh performs one sync. Fetch failures are recovered locally and reported
// through Outcome.Err; the returned error is ErrRefreshInProgress or
// ErrNotConfigured, in which case the state is left unchanged.
func (c *Controller) Refresh(ctx context.Context) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return Outcome{}, ErrRefreshInProgress
	}
	defer c.inFlight.Store(false)

	creds := c.creds.Credentials(ctx)
	if !creds.Configured() {
		return Outcome{}, ErrNotConfigured
	}

	correlationID := c.ids.New()
	ctx = logging.WithCorrelationID(ctx, correlationID)
	logger := logging.WithContext(ctx, c.logger)
	c.setState(StateFetching)

	start := c.clock.Now()
	logger.Info("refresh started",
		logging.String(logging.FieldEventType, "refresh_started"),
		logging.String("base_url", creds.BaseURL),
		logging.String("credential_source", creds.Source))

	workflows, err := c.fetcher.FetchWorkflows(ctx, creds.BaseURL, creds.APIKey, c.timeout)
	// Persistence outlives a caller that gave up after the fetch returned.
	persistCtx := context.WithoutCancel(ctx)

	var outcome Outcome
	if err == nil {
		outcome = c.rendered(persistCtx, logger, workflows)
	} else {
		outcome = c.fallback(persistCtx, logger, asFetchError(err))
	}
	outcome.CorrelationID = correlationID

	logger.Info("refresh finished",
		logging.String(logging.FieldEventType, "refresh_finished"),
		logging.String("state", string(outcome.State)),
		logging.Int("workflow_count", outcome.WorkflowCount),
		logging.Int("folder_count", outcome.Result.FolderCount()),
		logging.Bool("stale", outcome.Stale),
		logging.Duration("elapsed", c.clock.Now().Sub(start)))

	c.finish(outcome)
	return outcome, nil
}

func (c *Controller) rendered(ctx context.Context, logger *slog.Logger, workflows []n8n.Workflow) Outcome {
	snap, err := c.snapshots.Store(ctx, workflows)
	if err != nil {
		logging.WarnWithContext(logger, "failed to store workflow snapshot", "snapshot_store_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the state store path and permissions"),
			logging.String(logging.FieldImpact, "offline fallback will show an older snapshot"))
	}
	return Outcome{
		State:         StateRendered,
		Result:        hierarchy.Organize(workflows),
		SyncedAt:      snap.SyncedAt,
		WorkflowCount: len(workflows),
	}
}

func (c *Controller) fallback(ctx context.Context, logger *slog.Logger, fetchErr *n8n.FetchError) Outcome {
	logging.WarnWithContext(logger, "workflow fetch failed", "refresh_fetch_failed",
		logging.String(logging.FieldErrorKind, string(fetchErr.Kind)),
		logging.Int("status", fetchErr.Status),
		logging.Error(fetchErr),
		logging.String(logging.FieldErrorHint, fetchErr.Hint()),
		logging.String(logging.FieldImpact, "showing cached workflows if available"))

	snap, ok := c.snapshots.Load(ctx)
	if !ok {
		return Outcome{
			State:  StateEmpty,
			Result: hierarchy.Organize(nil),
			Err:    fetchErr,
		}
	}
	return Outcome{
		State:         StateRenderedStale,
		Result:        hierarchy.Organize(snap.Workflows),
		Err:           fetchErr,
		Stale:         true,
		SyncedAt:      snap.SyncedAt,
		WorkflowCount: len(snap.Workflows),
	}
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func (c *Controller) finish(outcome Outcome) {
	c.mu.Lock()
	c.state = outcome.State
	c.last = outcome
	c.hasLast = true
	c.mu.Unlock()
}

// asFetchError keeps the taxonomy closed for fetchers that return plain errors.
func asFetchError(err error) *n8n.FetchError {
	if fetchErr, ok := n8n.AsFetchError(err); ok {
		return fetchErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &n8n.FetchError{Kind: n8n.KindTimeout, Message: "request timed out", Err: err}
	}
	return &n8n.FetchError{Kind: n8n.KindNetwork, Message: "fetch workflows", Err: err}
}
