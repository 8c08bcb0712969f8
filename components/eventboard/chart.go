package eventboard

import (
	"bytes"
	"errors"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "320px"
	defaultChartTitle  = "Registrations"
)

// ChartRenderer draws the registration counts as a go-echarts bar chart.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	title      string
	assetsHost string
}

// ChartOption customizes chart rendering.
type ChartOption func(*ChartRenderer)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) ChartOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartTitle overrides the chart title.
func WithChartTitle(title string) ChartOption {
	return func(r *ChartRenderer) {
		if title != "" {
			r.title = title
		}
	}
}

// WithChartAssetsHost rewrites the assets host so the echarts runtime loads
// from a CDN or self-hosted bucket.
func WithChartAssetsHost(host string) ChartOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a chart renderer with a five minute cache.
func NewChartRenderer(options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{
		cache: NewChartCache(5 * time.Minute),
		theme: types.ThemeWesteros,
		title: defaultChartTitle,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render returns chart HTML for the cards. An empty board renders nothing.
func (r *ChartRenderer) Render(cards []Card) (string, error) {
	if r == nil {
		return "", errors.New("eventboard: chart renderer is nil")
	}
	if len(cards) == 0 {
		return "", nil
	}
	render := func() (string, error) {
		return r.renderBar(cards)
	}
	if r.cache == nil {
		return render()
	}
	return r.cache.GetOrRender(cardsHash(r.theme, cards), render)
}

func (r *ChartRenderer) renderBar(cards []Card) (string, error) {
	names := make([]string, len(cards))
	data := make([]opts.BarData, len(cards))
	for i, card := range cards {
		names[i] = card.EventName
		data[i] = opts.BarData{Name: card.EventName, Value: card.Count}
	}
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: r.title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)
	bar.SetXAxis(names)
	bar.AddSeries(r.title, data)
	return renderChart(bar)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
