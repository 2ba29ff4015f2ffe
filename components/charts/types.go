package charts

import "context"

// Frequency is the observation cadence of a dataset.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// Lookback returns the number of periods that make up one year.
func (f Frequency) Lookback() int {
	if f == FrequencyQuarterly {
		return 4
	}
	return 12
}

// Valid reports whether the frequency is a recognized cadence.
func (f Frequency) Valid() bool {
	return f == FrequencyMonthly || f == FrequencyQuarterly
}

// Observation is a single dated value. A nil Value means "no data for this
// period"; it is never coerced to zero and never dropped from the sequence.
type Observation struct {
	Date  string   `json:"date" yaml:"date"`
	Value *float64 `json:"value" yaml:"value"`
}

// Series is a chronologically ordered observation sequence with a stable id.
type Series struct {
	ID   string        `json:"id" yaml:"id"`
	Name string        `json:"name" yaml:"name"`
	Data []Observation `json:"data" yaml:"data"`
}

// Metadata describes a dataset as a whole.
type Metadata struct {
	Title     string    `json:"title" yaml:"title"`
	Unit      string    `json:"unit" yaml:"unit"`
	Frequency Frequency `json:"frequency" yaml:"frequency"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"`
}

// Dataset is the payload fetched once per page load. Series order is
// significant: it is the default and fallback display order.
type Dataset struct {
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	Series   []Series `json:"series" yaml:"series"`
}

// ComputedSeries declares a derived series equal to sources[0] − sources[1]
// at matching dates. Sources index the series list as it stands when the
// directive is applied, so later directives may reference earlier results.
type ComputedSeries struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Sources [2]int `json:"sources" yaml:"sources,flow"`
}

// Category defines a contiguous sub-range of series (by trailing numeric id
// suffix) plus the aggregate series used as the share-mode denominator.
type Category struct {
	Key     string    `json:"key" yaml:"key"`
	Label   string    `json:"label" yaml:"label"`
	TotalID string    `json:"total_id" yaml:"total_id"`
	Range   [2]string `json:"range" yaml:"range,flow"`
}

// Filter narrows the visible series. By default the key is matched as an id
// prefix; when Suffixes is set the filter matches any of the listed id
// suffixes instead. Filters may be partitioned into named groups; at most one
// group is active at a time, and at most one filter within it.
type Filter struct {
	Key      string   `json:"key" yaml:"key"`
	Label    string   `json:"label" yaml:"label"`
	Group    string   `json:"group,omitempty" yaml:"group,omitempty"`
	Suffixes []string `json:"suffixes,omitempty" yaml:"suffixes,omitempty"`
}

// CityFilter is an independent id-prefix filter, combinable with component
// filters.
type CityFilter struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Mode selects the analytical transform applied to a series before plotting.
type Mode string

const (
	ModeRaw    Mode = "raw"
	ModeYoY    Mode = "yoy"
	ModePct    Mode = "pct"
	ModePctEx  Mode = "pct_ex"
	ModeSpread Mode = "spread"
	ModePoP    Mode = "pop"
	ModePoP3   Mode = "pop3"
	ModeShare  Mode = "share"
)

// Valid reports whether the mode is one of the recognized transforms.
func (m Mode) Valid() bool {
	switch m {
	case ModeRaw, ModeYoY, ModePct, ModePctEx, ModeSpread, ModePoP, ModePoP3, ModeShare:
		return true
	}
	return false
}

// Change reports whether the mode plots period changes rather than levels.
// Change-like modes render as colored bars, level-like modes as lines.
func (m Mode) Change() bool {
	switch m {
	case ModeYoY, ModePoP, ModePoP3:
		return true
	}
	return false
}

// ChartKind is the rendering style of a plotted trace.
type ChartKind string

const (
	KindLine ChartKind = "line"
	KindBar  ChartKind = "bar"
)

// Kind returns the default rendering style for the mode.
func (m Mode) Kind() ChartKind {
	if m.Change() {
		return KindBar
	}
	return KindLine
}

// ViewState is the full user-facing selection driving visibility and
// transforms. Transitions happen only through Controller setters.
type ViewState struct {
	Mode        Mode
	Horizon     int // trailing months shown; 0 = full history
	Filter      string
	FilterGroup string
	Category    *Category
	City        string
}

// Plot is the transformed, render-ready shape of one series.
type Plot struct {
	Dates       []string
	Values      []*float64
	YLabel      string
	Kind        ChartKind
	PointColors []string // per-point bar colors; empty for line plots
}

// ChartLayout carries per-chart presentation hints to the renderer.
type ChartLayout struct {
	Title  string
	Height string
	YLabel string
}

// ChartRenderer is the contract with the external charting library: draw a
// plotted trace into a stable container, or clear it to free resources.
type ChartRenderer interface {
	Draw(ctx context.Context, containerID string, plot Plot, layout ChartLayout) error
	Clear(containerID string) error
}

// Viewport tracks chart placeholders for on-screen appearance. Watch invokes
// onAppear when the container enters the margin-expanded viewport; callers
// use the returned cancel to stop tracking after the first appearance.
type Viewport interface {
	Watch(containerID string, onAppear func()) (cancel func())
}

// immediateViewport treats every placeholder as on-screen right away. It is
// the default for server-side and static builds, where there is no viewport.
type immediateViewport struct{}

// NewImmediateViewport returns a viewport that fires appearance synchronously.
func NewImmediateViewport() Viewport { return immediateViewport{} }

func (immediateViewport) Watch(_ string, onAppear func()) func() {
	onAppear()
	return func() {}
}

// FramePump yields control between scheduler batches, deferring work to the
// host's next cooperative tick.
type FramePump interface {
	Next(fn func())
}

// FramePumpFunc adapts a function to the FramePump interface.
type FramePumpFunc func(fn func())

func (f FramePumpFunc) Next(fn func()) { f(fn) }

// NewImmediatePump returns a pump that runs continuations synchronously.
func NewImmediatePump() FramePump {
	return FramePumpFunc(func(fn func()) { fn() })
}
