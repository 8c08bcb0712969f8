package eventboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultPollInterval is the spacing between scheduled polls.
	DefaultPollInterval = 30 * time.Second
	// DefaultTemplate is the board template rendered by RenderHTML.
	DefaultTemplate = "board.html"
	// DefaultBasePath is where transports mount the board routes.
	DefaultBasePath = "/board"
)

// Options configures the Controller. Every collaborator is injected so the
// owner decides lifetimes; nothing is registered globally.
type Options struct {
	Source        Source
	Logos         LogoMapping
	Demo          Snapshot
	Clock         Clock
	Logger        *zap.Logger
	Telemetry     Telemetry
	RefreshHook   RefreshHook
	Renderer      Renderer
	Chart         *ChartRenderer
	Template      string
	BasePath      string
	PollInterval  time.Duration
	PulseDuration time.Duration
	// DiscardStale drops a poll result when a poll started later has already
	// been applied. Off by default: the poll that resolves last wins.
	DiscardStale bool
}

// Controller orchestrates periodic data acquisition and rendering for the
// registration board and owns its UI state.
type Controller struct {
	opts   Options
	pulses *pulseTracker

	mu       sync.RWMutex
	snapshot Snapshot
	state    UIState
	issued   uint64
	applied  uint64
}

// NewController wires the options into a controller with safe defaults. The
// loading indicator starts visible.
func NewController(opts Options) *Controller {
	if opts.Logos.paths == nil {
		opts.Logos = DefaultLogoMapping()
	}
	if len(opts.Demo) == 0 {
		opts.Demo = DemoSnapshot()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.PulseDuration <= 0 {
		opts.PulseDuration = DefaultPulseDuration
	}
	return &Controller{
		opts:   opts,
		pulses: newPulseTracker(opts.Clock),
		state: UIState{
			LoadingVisible: true,
			Origin:         OriginNone,
		},
	}
}

type attempt struct {
	id  string
	seq uint64
}

func (c *Controller) beginAttempt() attempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return attempt{id: uuid.NewString(), seq: c.issued}
}

// FetchSnapshot performs one poll. Every failure is handled here: the error
// banner is shown, the loading indicator cleared and, when nothing has ever
// loaded, the demo snapshot is rendered. The returned error is informational
// only; it has already been logged and reflected in the UI state.
func (c *Controller) FetchSnapshot(ctx context.Context) error {
	att := c.beginAttempt()
	logger := c.opts.Logger.With(zap.String("attempt_id", att.id), zap.Uint64("seq", att.seq))

	snapshot, err := c.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// The owner tore the poller down; a cancelled poll is not a failure.
			logger.Debug("poll cancelled", zap.Error(err))
			return err
		}
		c.handleFailure(ctx, att, logger, err)
		return err
	}
	c.applySnapshot(ctx, att, logger, snapshot)
	return nil
}

// Refresh triggers a manual poll.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.FetchSnapshot(ctx)
}

func (c *Controller) fetch(ctx context.Context) (Snapshot, error) {
	if c.opts.Source == nil {
		return nil, &ConfigurationError{Reason: "registration source not configured"}
	}
	if err := ValidateEndpoint(c.opts.Source.Endpoint()); err != nil {
		return nil, err
	}
	return c.opts.Source.FetchSnapshot(ctx)
}

func (c *Controller) applySnapshot(ctx context.Context, att attempt, logger *zap.Logger, snapshot Snapshot) {
	now := c.opts.Clock.Now()
	c.mu.Lock()
	if c.opts.DiscardStale && att.seq < c.applied {
		c.mu.Unlock()
		logger.Debug("discarding stale snapshot", zap.Uint64("applied_seq", c.applied))
		return
	}
	c.applied = att.seq
	c.snapshot = snapshot.Clone()
	c.state.ErrorVisible = false
	c.state.LoadingVisible = false
	c.state.LastUpdated = &now
	c.state.Origin = OriginRemote
	c.state.LastError = ""
	state := c.state
	c.mu.Unlock()

	logger.Info("snapshot loaded", zap.Int("events", snapshot.Len()))
	c.opts.Telemetry.Record(ctx, "eventboard.poll.success", map[string]any{
		"attempt_id": att.id,
		"events":     snapshot.Len(),
	})
	c.publish(ctx, BoardEvent{Type: EventSnapshotUpdated, AttemptID: att.id, State: state})
}

func (c *Controller) handleFailure(ctx context.Context, att attempt, logger *zap.Logger, cause error) {
	now := c.opts.Clock.Now()
	c.mu.Lock()
	if c.opts.DiscardStale && att.seq < c.applied {
		c.mu.Unlock()
		logger.Debug("discarding stale failure", zap.Error(cause))
		return
	}
	c.applied = att.seq
	c.state.ErrorVisible = true
	c.state.LoadingVisible = false
	c.state.LastError = cause.Error()
	demo := len(c.snapshot) == 0
	if demo {
		c.snapshot = c.opts.Demo.Clone()
		c.state.LastUpdated = &now
		c.state.Origin = OriginDemo
	}
	state := c.state
	c.mu.Unlock()

	kind := ErrorKind(cause)
	logger.Error("failed to fetch data", zap.String("kind", kind), zap.Error(cause))
	c.opts.Telemetry.Record(ctx, "eventboard.poll.error", map[string]any{
		"attempt_id": att.id,
		"kind":       kind,
	})
	c.publish(ctx, BoardEvent{Type: EventSnapshotError, AttemptID: att.id, State: state})
	if demo {
		logger.Info("loading demo data", zap.Int("events", len(c.opts.Demo)))
		c.publish(ctx, BoardEvent{Type: EventDemoLoaded, AttemptID: att.id, State: state})
	}
}

func (c *Controller) publish(ctx context.Context, event BoardEvent) {
	event.At = c.opts.Clock.Now()
	event.LastUpdatedText = LastUpdatedText(event.State)
	if event.Type != EventCardPulse && event.Type != EventCardPulseEnd {
		event.Cards = c.Render()
	}
	if err := c.opts.RefreshHook.BoardUpdated(ctx, event); err != nil {
		c.opts.Logger.Warn("refresh hook failed", zap.String("event", event.Type), zap.Error(err))
	}
}

// Render projects the current snapshot into cards. Re-rendering always
// replaces the previous output.
func (c *Controller) Render() []Card {
	c.mu.RLock()
	snapshot := c.snapshot
	c.mu.RUnlock()
	return RenderCards(snapshot, c.opts.Logos, c.pulses.active())
}

// Snapshot returns a copy of the snapshot on screen.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Clone()
}

// State returns the current UI flags.
func (c *Controller) State() UIState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Payload bundles cards and state for JSON transports.
func (c *Controller) Payload() BoardPayload {
	c.mu.RLock()
	snapshot := c.snapshot.Clone()
	state := c.state
	c.mu.RUnlock()
	cards := RenderCards(snapshot, c.opts.Logos, c.pulses.active())
	if snapshot == nil {
		snapshot = Snapshot{}
	}
	return BoardPayload{
		Cards:           cards,
		State:           state,
		Snapshot:        snapshot,
		LastUpdatedText: LastUpdatedText(state),
	}
}

// ActivateCard highlights the count of the named card for the pulse duration.
// The underlying count is never touched.
func (c *Controller) ActivateCard(ctx context.Context, name string) error {
	c.mu.RLock()
	_, ok := c.snapshot.Count(name)
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCard, name)
	}
	c.pulses.activate(name, c.opts.PulseDuration, func() {
		c.publish(context.Background(), BoardEvent{Type: EventCardPulseEnd, Card: name, State: c.State()})
	})
	c.opts.Telemetry.Record(ctx, "eventboard.card.activate", map[string]any{"card": name})
	c.publish(ctx, BoardEvent{Type: EventCardPulse, Card: name, State: c.State()})
	return nil
}

// RenderHTML renders the board template into out.
func (c *Controller) RenderHTML(ctx context.Context, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errMissingRenderer
	}
	payload := c.Payload()
	data := map[string]any{
		"cards":             cardsTemplateData(payload.Cards),
		"error_visible":     payload.State.ErrorVisible,
		"loading_visible":   payload.State.LoadingVisible,
		"last_updated_text": payload.LastUpdatedText,
		"origin":            string(payload.State.Origin),
		"chart_html":        "",
		"base_path":         strings.TrimRight(c.opts.BasePath, "/"),
	}
	if c.opts.Chart != nil {
		html, err := c.opts.Chart.Render(payload.Cards)
		if err != nil {
			c.opts.Logger.Warn("chart render failed", zap.Error(err))
		} else {
			data["chart_html"] = html
		}
	}
	if _, err := c.opts.Renderer.Render(c.opts.Template, data, out); err != nil {
		return fmt.Errorf("eventboard: render %s: %w", c.opts.Template, err)
	}
	c.opts.Telemetry.Record(ctx, "eventboard.board.render", map[string]any{"cards": len(payload.Cards)})
	return nil
}

// BasePath returns the mount point transports should use for board routes.
func (c *Controller) BasePath() string {
	return c.opts.BasePath
}

// PollInterval returns the configured poll spacing.
func (c *Controller) PollInterval() time.Duration {
	return c.opts.PollInterval
}

// Close stops pending pulse timers.
func (c *Controller) Close() error {
	c.pulses.stopAll()
	return nil
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
