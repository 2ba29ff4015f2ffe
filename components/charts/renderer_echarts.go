package charts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// EChartsRenderer draws plotted traces as go-echarts markup written into a
// Sink. Level-like plots become smooth lines; change-like plots become bars
// with per-point colors. Gaps stay gaps: a nil value renders as a break.
type EChartsRenderer struct {
	sink       Sink
	cache      RenderCache
	theme      string
	height     string
	assetsHost string
}

// RendererOption customizes the ECharts renderer.
type RendererOption func(*EChartsRenderer)

// WithRenderCache injects a render cache.
func WithRenderCache(cache RenderCache) RendererOption {
	return func(r *EChartsRenderer) {
		r.cache = cache
	}
}

// WithRendererTheme sets the chart theme (defaults to Westeros).
func WithRendererTheme(theme string) RendererOption {
	return func(r *EChartsRenderer) {
		r.theme = theme
	}
}

// WithRendererHeight sets the default chart height.
func WithRendererHeight(height string) RendererOption {
	return func(r *EChartsRenderer) {
		r.height = height
	}
}

// WithAssetsHost rewrites the assets host so the ECharts runtime loads from a
// CDN or self-hosted bucket.
func WithAssetsHost(host string) RendererOption {
	return func(r *EChartsRenderer) {
		r.assetsHost = host
	}
}

// NewEChartsRenderer builds a renderer writing into the given sink.
func NewEChartsRenderer(sink Sink, options ...RendererOption) *EChartsRenderer {
	r := &EChartsRenderer{
		sink:   sink,
		cache:  NewChartCache(5 * time.Minute),
		theme:  types.ThemeWesteros,
		height: defaultChartHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Draw renders the plot into the container. The container id is stable across
// redraws so the host can replace markup in place.
func (r *EChartsRenderer) Draw(_ context.Context, containerID string, plot Plot, layout ChartLayout) error {
	renderFn := func() (string, error) {
		switch plot.Kind {
		case KindBar:
			return r.renderBar(containerID, plot, layout)
		default:
			return r.renderLine(containerID, plot, layout)
		}
	}

	var (
		html string
		err  error
	)
	if r.cache != nil {
		key := containerID + ":" + plotHash(plot, layout)
		html, err = r.cache.GetOrRender(key, renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return err
	}
	return r.sink.Write(containerID, html)
}

// Clear frees the container's rendered markup.
func (r *EChartsRenderer) Clear(containerID string) error {
	return r.sink.Remove(containerID)
}

func (r *EChartsRenderer) renderLine(containerID string, plot Plot, layout ChartLayout) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalOptions(containerID, plot, layout)...)
	line.SetXAxis(plot.Dates)
	line.AddSeries(layout.Title, toLineData(plot.Values))
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))
	return renderChart(line)
}

func (r *EChartsRenderer) renderBar(containerID string, plot Plot, layout ChartLayout) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOptions(containerID, plot, layout)...)
	bar.SetXAxis(plot.Dates)
	bar.AddSeries(layout.Title, toBarData(plot.Values, plot.PointColors))
	return renderChart(bar)
}

func (r *EChartsRenderer) globalOptions(containerID string, plot Plot, layout ChartLayout) []charts.GlobalOpts {
	height := layout.Height
	if height == "" {
		height = r.height
	}
	yLabel := layout.YLabel
	if yLabel == "" {
		yLabel = plot.YLabel
	}
	initOpts := opts.Initialization{
		ChartID: containerID,
		Theme:   r.theme,
		Width:   "100%",
		Height:  height,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: layout.Title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", fmt.Errorf("charts: echarts render: %w", err)
	}
	return buf.String(), nil
}

func toLineData(values []*float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		if v == nil {
			// "-" is the ECharts missing-value marker; it draws a gap
			data[i] = opts.LineData{Value: "-"}
			continue
		}
		data[i] = opts.LineData{Value: *v}
	}
	return data
}

func toBarData(values []*float64, colors []string) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		item := opts.BarData{}
		if v == nil {
			item.Value = "-"
		} else {
			item.Value = *v
		}
		if i < len(colors) && colors[i] != "" {
			item.ItemStyle = &opts.ItemStyle{Color: colors[i]}
		}
		data[i] = item
	}
	return data
}
