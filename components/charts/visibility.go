package charts

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ViewConfig enumerates every recognized view option and its default. It is
// validated at construction time; unrecognized combinations fail fast instead
// of being silently ignored.
type ViewConfig struct {
	Filters        []Filter
	FilterGroups   []string
	Cities         []CityFilter
	Categories     []Category
	Computed       []ComputedSeries
	Exclude        []string // id substrings never shown, unconditionally
	TotalID        string   // denominator series for pct and spread modes
	ExcludedID     string   // series subtracted from the total for pct_ex
	DefaultMode    Mode
	DefaultHorizon int
}

// Validate checks the configuration for combinations that can never work.
func (cfg ViewConfig) Validate() error {
	if cfg.DefaultMode != "" && !cfg.DefaultMode.Valid() {
		return fmt.Errorf("charts: unknown default mode %q", cfg.DefaultMode)
	}
	if cfg.DefaultMode == ModeShare {
		return ErrShareNeedsCategory
	}
	if cfg.DefaultHorizon < 0 {
		return errNegativeHorizon
	}
	groups := make(map[string]bool, len(cfg.FilterGroups))
	for _, g := range cfg.FilterGroups {
		groups[g] = true
	}
	seen := make(map[string]bool, len(cfg.Filters))
	for _, f := range cfg.Filters {
		if f.Key == "" {
			return fmt.Errorf("charts: filter with empty key")
		}
		if seen[f.Key] {
			return fmt.Errorf("charts: duplicate filter key %s", f.Key)
		}
		seen[f.Key] = true
		if f.Group != "" && len(cfg.FilterGroups) > 0 && !groups[f.Group] {
			return fmt.Errorf("charts: filter %s references unknown group %s", f.Key, f.Group)
		}
	}
	for _, c := range cfg.Categories {
		if c.Key == "" {
			return fmt.Errorf("charts: category with empty key")
		}
		if _, ok := trailingNumber(c.Range[0]); !ok {
			return fmt.Errorf("charts: category %s range start %q has no numeric suffix", c.Key, c.Range[0])
		}
		if _, ok := trailingNumber(c.Range[1]); !ok {
			return fmt.Errorf("charts: category %s range end %q has no numeric suffix", c.Key, c.Range[1])
		}
	}
	return nil
}

// ControllerOptions wires a Controller. Series is the full, ordered series
// list (computed series included) the controller filters over.
type ControllerOptions struct {
	Config    ViewConfig
	Series    []Series
	Hook      ViewHook
	Telemetry Telemetry
}

// Controller owns the current filter/category/city/mode selection and
// determines the ordered subset of series that should be present for
// rendering. It is an explicit, independently constructible object: no
// global state, one instance per pipeline.
type Controller struct {
	cfg       ViewConfig
	series    []Series
	hook      ViewHook
	telemetry Telemetry

	mu    sync.RWMutex
	state ViewState
}

// NewController validates the configuration and seeds the initial view state.
func NewController(opts ControllerOptions) (*Controller, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	mode := opts.Config.DefaultMode
	if mode == "" {
		mode = ModeYoY
	}
	group := ""
	if len(opts.Config.FilterGroups) > 0 {
		group = opts.Config.FilterGroups[0]
	}
	return &Controller{
		cfg:       opts.Config,
		series:    opts.Series,
		hook:      normalizeViewHook(opts.Hook),
		telemetry: normalizeTelemetry(opts.Telemetry),
		state: ViewState{
			Mode:        mode,
			Horizon:     opts.Config.DefaultHorizon,
			FilterGroup: group,
		},
	}, nil
}

// State returns a copy of the current view state.
func (c *Controller) State() ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Mode returns the active display mode, used to seed summary panels.
func (c *Controller) Mode() Mode { return c.State().Mode }

// Horizon returns the active trailing window in months.
func (c *Controller) Horizon() int { return c.State().Horizon }

// Config returns the validated view configuration.
func (c *Controller) Config() ViewConfig { return c.cfg }

// VisibleIndices computes the ordered visible subset under the current state.
func (c *Controller) VisibleIndices() []int {
	return VisibleIndices(c.State(), c.series, c.cfg)
}

// VisibleIndices applies the filtering rules conjunctively, in series-array
// order (never re-sorted): administrative exclusion, component filter, city
// filter, then category range containment.
func VisibleIndices(state ViewState, series []Series, cfg ViewConfig) []int {
	filter := findFilter(cfg.Filters, state.Filter)
	out := make([]int, 0, len(series))
	for i, s := range series {
		if excluded(s.ID, cfg.Exclude) {
			continue
		}
		if filter != nil && !matchFilter(s.ID, *filter) {
			continue
		}
		if state.City != "" && !strings.HasPrefix(s.ID, state.City) {
			continue
		}
		if state.Category != nil && !inCategoryRange(s.ID, *state.Category) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// SetMode switches the display mode. Share mode is rejected while no category
// is active; the state is left unchanged.
func (c *Controller) SetMode(ctx context.Context, mode Mode) ([]int, error) {
	if !mode.Valid() {
		return nil, errUnknownMode
	}
	c.mu.Lock()
	if mode == ModeShare && c.state.Category == nil {
		c.mu.Unlock()
		return nil, ErrShareNeedsCategory
	}
	c.state.Mode = mode
	visible := VisibleIndices(c.state, c.series, c.cfg)
	c.mu.Unlock()

	c.emit(ctx, ModeChanged{Mode: mode})
	return visible, nil
}

// SetHorizon changes the trailing window, in months. Zero is unbounded.
func (c *Controller) SetHorizon(ctx context.Context, months int) ([]int, error) {
	if months < 0 {
		return nil, errNegativeHorizon
	}
	c.mu.Lock()
	c.state.Horizon = months
	visible := VisibleIndices(c.state, c.series, c.cfg)
	c.mu.Unlock()

	c.emit(ctx, HorizonChanged{Months: months})
	return visible, nil
}

// SetFilter activates the component filter with the given key, or the
// "all" selection when the key is empty. Selecting a filter from another
// group also switches the active group.
func (c *Controller) SetFilter(ctx context.Context, key string) ([]int, error) {
	var group string
	if key != "" {
		f := findFilter(c.cfg.Filters, key)
		if f == nil {
			return nil, errUnknownFilter
		}
		group = f.Group
	}
	c.mu.Lock()
	c.state.Filter = key
	if group != "" {
		c.state.FilterGroup = group
	}
	visible := VisibleIndices(c.state, c.series, c.cfg)
	event := FilterChanged{Key: key, Group: c.state.FilterGroup}
	c.mu.Unlock()

	c.emit(ctx, event)
	return visible, nil
}

// SetFilterGroup switches the active filter group and resets the in-group
// selection to "all". It does not, by itself, change mode or category.
func (c *Controller) SetFilterGroup(ctx context.Context, group string) ([]int, error) {
	if group != "" && len(c.cfg.FilterGroups) > 0 {
		known := false
		for _, g := range c.cfg.FilterGroups {
			if g == group {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("charts: unknown filter group %s", group)
		}
	}
	c.mu.Lock()
	c.state.FilterGroup = group
	c.state.Filter = ""
	visible := VisibleIndices(c.state, c.series, c.cfg)
	c.mu.Unlock()

	c.emit(ctx, FilterChanged{Key: "", Group: group})
	return visible, nil
}

// SetCategory activates the category with the given key, or clears the
// category when the key is empty. Clearing while share mode is active forces
// the mode back to yoy and signals both changes.
func (c *Controller) SetCategory(ctx context.Context, key string) ([]int, error) {
	var category *Category
	if key != "" {
		for i := range c.cfg.Categories {
			if c.cfg.Categories[i].Key == key {
				cat := c.cfg.Categories[i]
				category = &cat
				break
			}
		}
		if category == nil {
			return nil, errUnknownCategory
		}
	}
	c.mu.Lock()
	c.state.Category = category
	var modeReset bool
	if category == nil && c.state.Mode == ModeShare {
		c.state.Mode = ModeYoY
		modeReset = true
	}
	visible := VisibleIndices(c.state, c.series, c.cfg)
	c.mu.Unlock()

	if modeReset {
		c.emit(ctx, ModeChanged{Mode: ModeYoY})
	}
	c.emit(ctx, CategoryChanged{Category: category})
	return visible, nil
}

// SetCity activates the city prefix filter, or clears it for an empty key.
func (c *Controller) SetCity(ctx context.Context, key string) ([]int, error) {
	if key != "" {
		known := false
		for _, city := range c.cfg.Cities {
			if city.Key == key {
				known = true
				break
			}
		}
		if !known {
			return nil, errUnknownCity
		}
	}
	c.mu.Lock()
	c.state.City = key
	visible := VisibleIndices(c.state, c.series, c.cfg)
	c.mu.Unlock()

	c.emit(ctx, CityChanged{Key: key})
	return visible, nil
}

func (c *Controller) emit(ctx context.Context, event ViewEvent) {
	if err := c.hook.ViewChanged(ctx, event); err != nil {
		c.telemetry.Record(ctx, "charts.view.hook_error", map[string]any{
			"event": event.EventName(),
			"error": err.Error(),
		})
	}
	c.telemetry.Record(ctx, "charts.view."+event.EventName(), map[string]any{})
}

func findFilter(filters []Filter, key string) *Filter {
	if key == "" {
		return nil
	}
	for i := range filters {
		if filters[i].Key == key {
			return &filters[i]
		}
	}
	return nil
}

func matchFilter(id string, f Filter) bool {
	if len(f.Suffixes) > 0 {
		for _, suffix := range f.Suffixes {
			if strings.HasSuffix(id, strings.TrimSpace(suffix)) {
				return true
			}
		}
		return false
	}
	return strings.HasPrefix(id, f.Key)
}

func excluded(id string, denylist []string) bool {
	for _, substr := range denylist {
		if substr != "" && strings.Contains(id, substr) {
			return true
		}
	}
	return false
}

func inCategoryRange(id string, cat Category) bool {
	n, ok := trailingNumber(id)
	if !ok {
		return false
	}
	start, ok := trailingNumber(cat.Range[0])
	if !ok {
		return false
	}
	end, ok := trailingNumber(cat.Range[1])
	if !ok {
		return false
	}
	return n >= start && n <= end
}

// trailingNumber extracts the numeric suffix of a series id.
func trailingNumber(id string) (int64, bool) {
	end := len(id)
	start := end
	for start > 0 && id[start-1] >= '0' && id[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	// cap at 18 digits to stay within int64
	if end-start > 18 {
		start = end - 18
	}
	var n int64
	for _, ch := range id[start:end] {
		n = n*10 + int64(ch-'0')
	}
	return n, true
}
