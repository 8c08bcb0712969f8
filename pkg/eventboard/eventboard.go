// Package eventboard is the public entry point for embedding the registration
// board: it re-exports the controller types and assembles a board from Config.
package eventboard

import (
	"fmt"

	"go.uber.org/zap"

	core "github.com/goliatone/go-eventboard/components/eventboard"
	"github.com/goliatone/go-eventboard/pkg/registrations"
)

// Controller exposes the underlying components/eventboard.Controller type.
type Controller = core.Controller

// Options re-export for convenience.
type Options = core.Options

// Poller re-export for convenience.
type Poller = core.Poller

// Config re-export for convenience.
type Config = core.Config

// NewController proxies to the internal constructor.
func NewController(opts Options) *Controller {
	return core.NewController(opts)
}

// LoadConfig proxies to the internal loader.
func LoadConfig(path string) (Config, error) {
	return core.LoadConfig(path)
}

// Board bundles a controller with the collaborators transports need.
type Board struct {
	Controller *Controller
	Broadcast  *core.BroadcastHook
	Telemetry  core.Telemetry
	Logos      core.LogoMapping
}

type buildOptions struct {
	ui     bool
	source core.Source
}

// Option customizes New.
type Option func(*buildOptions)

// WithUI builds the HTML template, chart, and broadcast hook.
func WithUI() Option {
	return func(o *buildOptions) { o.ui = true }
}

// WithSource replaces the HTTP registration client built from Config.
func WithSource(source core.Source) Option {
	return func(o *buildOptions) { o.source = source }
}

// New assembles a board from cfg. The HTTP client targets cfg.Endpoint unless
// WithSource is given.
func New(cfg Config, logger *zap.Logger, options ...Option) (*Board, error) {
	var bo buildOptions
	for _, opt := range options {
		opt(&bo)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logos, err := core.LoadLogoMapping(cfg.LogoFile)
	if err != nil {
		return nil, err
	}
	source := bo.source
	if source == nil {
		source = registrations.NewHTTPClient(registrations.HTTPConfig{
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.RequestTimeout,
		})
	}
	telemetry := core.LogTelemetry{Logger: logger.Named("telemetry")}
	opts := Options{
		Source:        source,
		Logos:         logos,
		Logger:        logger,
		Telemetry:     telemetry,
		BasePath:      cfg.BasePath,
		PollInterval:  cfg.PollInterval,
		PulseDuration: cfg.PulseDuration,
		DiscardStale:  cfg.DiscardStale,
	}
	board := &Board{Telemetry: telemetry, Logos: logos}
	if bo.ui {
		renderer, err := core.NewTemplateRenderer()
		if err != nil {
			return nil, fmt.Errorf("eventboard: templates: %w", err)
		}
		chartOpts := []core.ChartOption{core.WithChartCache(core.NewChartCache(cfg.ChartCacheTTL))}
		if cfg.ChartTheme != "" {
			chartOpts = append(chartOpts, core.WithChartTheme(cfg.ChartTheme))
		}
		board.Broadcast = core.NewBroadcastHook()
		opts.Renderer = renderer
		opts.Chart = core.NewChartRenderer(chartOpts...)
		opts.RefreshHook = board.Broadcast
	}
	board.Controller = core.NewController(opts)
	return board, nil
}
