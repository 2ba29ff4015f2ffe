package charts

import (
	"context"
	"fmt"
	"sync"

	"github.com/ettle/strcase"
	"github.com/google/uuid"
)

// Options wires a Pipeline. Loader and Renderer are required; everything else
// has a safe default.
type Options struct {
	Loader    Loader
	Renderer  ChartRenderer
	Viewport  Viewport
	Pump      FramePump
	Hook      ViewHook
	Telemetry Telemetry

	Config      ViewConfig
	Overrides   map[string]ChartOverride
	BatchSize   int
	ClearHidden bool
	Title       string
}

// Pipeline is the page-level orchestrator: it loads the dataset once, owns
// the store, the view controller, and the render scheduler, and translates
// view-state changes into scheduler work. One instance per page.
type Pipeline struct {
	id        string
	opts      Options
	telemetry Telemetry

	mu         sync.RWMutex
	store      *Store
	controller *Controller
	scheduler  *Scheduler
}

// NewPipeline validates the wiring. The pipeline does not touch the network
// until Start.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Loader == nil {
		return nil, errMissingLoader
	}
	if opts.Renderer == nil {
		return nil, errMissingRenderer
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		id:        uuid.NewString(),
		opts:      opts,
		telemetry: normalizeTelemetry(opts.Telemetry),
	}, nil
}

// ID returns the pipeline instance id.
func (p *Pipeline) ID() string { return p.id }

// Start fetches the dataset, derives computed series, and arms appearance
// tracking for the initially visible charts. A load failure is terminal: no
// controller or scheduler is constructed and the error is returned as-is.
func (p *Pipeline) Start(ctx context.Context) error {
	ds, err := p.opts.Loader.Load(ctx)
	if err != nil {
		p.telemetry.Record(ctx, "charts.load.error", map[string]any{
			"pipeline": p.id,
			"error":    err.Error(),
		})
		return err
	}

	store, err := NewStore(ds, p.opts.Config.Computed)
	if err != nil {
		return err
	}

	controller, err := NewController(ControllerOptions{
		Config:    p.opts.Config,
		Series:    store.All(),
		Hook:      p.opts.Hook,
		Telemetry: p.telemetry,
	})
	if err != nil {
		return err
	}

	scheduler, err := NewScheduler(SchedulerOptions{
		Viewport:    p.opts.Viewport,
		Pump:        p.opts.Pump,
		Render:      func(index int) error { return p.renderIndex(ctx, index) },
		Clear:       p.opts.Renderer.Clear,
		ContainerID: func(index int) string { return p.containerFor(store, index) },
		BatchSize:   p.opts.BatchSize,
		ClearHidden: p.opts.ClearHidden,
		Telemetry:   p.telemetry,
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.store = store
	p.controller = controller
	p.scheduler = scheduler
	p.mu.Unlock()

	p.telemetry.Record(ctx, "charts.pipeline.started", map[string]any{
		"pipeline": p.id,
		"series":   store.Len(),
	})

	for _, index := range controller.VisibleIndices() {
		scheduler.Observe(index)
	}
	return nil
}

// renderIndex draws a single chart under the current view state.
func (p *Pipeline) renderIndex(ctx context.Context, index int) error {
	p.mu.RLock()
	store := p.store
	controller := p.controller
	p.mu.RUnlock()

	s, err := store.Series(index)
	if err != nil {
		return err
	}
	state := controller.State()

	tc := TransformContext{
		Frequency: store.Metadata().Frequency,
		Unit:      store.Metadata().Unit,
		Total:     store.auxiliary(p.opts.Config.TotalID),
		Excluded:  store.auxiliary(p.opts.Config.ExcludedID),
	}
	if state.Category != nil {
		tc.CategoryTotal = store.auxiliary(state.Category.TotalID)
	}

	plot := Transform(s, state.Mode, state.Horizon, tc)

	layout := ChartLayout{Title: s.Name}
	if layout.Title == "" {
		layout.Title = s.ID
	}
	if override, ok := p.opts.Overrides[s.ID]; ok {
		if override.Kind != "" {
			plot.Kind = override.Kind
		}
		layout.Height = override.Height
	}

	if err := p.opts.Renderer.Draw(ctx, p.containerFor(store, index), plot, layout); err != nil {
		return &RenderError{Index: index, SeriesID: s.ID, Err: err}
	}
	return nil
}

func (p *Pipeline) containerFor(store *Store, index int) string {
	s, err := store.Series(index)
	if err != nil {
		return fmt.Sprintf("chart-%d", index)
	}
	return "chart-" + strcase.ToKebab(s.ID)
}

// ContainerID maps a series index to its placeholder container id.
func (p *Pipeline) ContainerID(index int) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.store == nil {
		return fmt.Sprintf("chart-%d", index)
	}
	return p.containerFor(p.store, index)
}

func (p *Pipeline) components() (*Controller, *Scheduler, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.controller == nil || p.scheduler == nil {
		return nil, nil, fmt.Errorf("charts: pipeline not started")
	}
	return p.controller, p.scheduler, nil
}

// SetMode switches the display mode and re-arms rendering.
func (p *Pipeline) SetMode(ctx context.Context, mode Mode) error {
	controller, scheduler, err := p.components()
	if err != nil {
		return err
	}
	visible, err := controller.SetMode(ctx, mode)
	if err != nil {
		return err
	}
	scheduler.OnViewChange(visible)
	return nil
}

// SetHorizon changes the trailing window in months and re-arms rendering.
func (p *Pipeline) SetHorizon(ctx context.Context, months int) error {
	controller, scheduler, err := p.components()
	if err != nil {
		return err
	}
	visible, err := controller.SetHorizon(ctx, months)
	if err != nil {
		return err
	}
	scheduler.OnViewChange(visible)
	return nil
}

// SetFilter activates a component filter and re-arms rendering.
func (p *Pipeline) SetFilter(ctx context.Context, key string) error {
	controller, scheduler, err := p.components()
	if err != nil {
		return err
	}
	visible, err := controller.SetFilter(ctx, key)
	if err != nil {
		return err
	}
	scheduler.OnViewChange(visible)
	return nil
}

// SetFilterGroup switches the active filter group and re-arms rendering.
func (p *Pipeline) SetFilterGroup(ctx context.Context, group string) error {
	controller, scheduler, err := p.components()
	if err != nil {
		return err
	}
	visible, err := controller.SetFilterGroup(ctx, group)
	if err != nil {
		return err
	}
	scheduler.OnViewChange(visible)
	return nil
}

// SetCategory activates or clears a category and re-arms rendering.
func (p *Pipeline) SetCategory(ctx context.Context, key string) error {
	controller, scheduler, err := p.components()
	if err != nil {
		return err
	}
	visible, err := controller.SetCategory(ctx, key)
	if err != nil {
		return err
	}
	scheduler.OnViewChange(visible)
	return nil
}

// SetCity activates or clears the city filter and re-arms rendering.
func (p *Pipeline) SetCity(ctx context.Context, key string) error {
	controller, scheduler, err := p.components()
	if err != nil {
		return err
	}
	visible, err := controller.SetCity(ctx, key)
	if err != nil {
		return err
	}
	scheduler.OnViewChange(visible)
	return nil
}

// RevealAll queues every visible chart directly, skipping appearance tracking.
func (p *Pipeline) RevealAll(ctx context.Context) error {
	controller, scheduler, err := p.components()
	if err != nil {
		return err
	}
	scheduler.EnqueueVisible(controller.VisibleIndices())
	p.telemetry.Record(ctx, "charts.reveal_all", map[string]any{"pipeline": p.id})
	return nil
}

// State returns the current view state.
func (p *Pipeline) State() (ViewState, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.controller == nil {
		return ViewState{}, fmt.Errorf("charts: pipeline not started")
	}
	return p.controller.State(), nil
}

// VisibleIndices returns the ordered visible subset under the current state.
func (p *Pipeline) VisibleIndices() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.controller == nil {
		return nil
	}
	return p.controller.VisibleIndices()
}

// Rendered returns the indices drawn at least once, ascending.
func (p *Pipeline) Rendered() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.scheduler == nil {
		return nil
	}
	return p.scheduler.Rendered()
}

// Store returns the dataset store, nil before Start.
func (p *Pipeline) Store() *Store {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store
}

// Summary describes the page for transports and status panels.
type Summary struct {
	Pipeline string    `json:"pipeline"`
	Title    string    `json:"title"`
	Mode     Mode      `json:"mode"`
	Horizon  int       `json:"horizon"`
	Filter   string    `json:"filter,omitempty"`
	Group    string    `json:"group,omitempty"`
	Category string    `json:"category,omitempty"`
	City     string    `json:"city,omitempty"`
	Series   int       `json:"series"`
	Visible  int       `json:"visible"`
	Rendered int       `json:"rendered"`
	Unit     string    `json:"unit,omitempty"`
	Freq     Frequency `json:"frequency,omitempty"`
}

// Summary snapshots the pipeline for the status endpoint.
func (p *Pipeline) Summary() (Summary, error) {
	p.mu.RLock()
	store := p.store
	controller := p.controller
	scheduler := p.scheduler
	p.mu.RUnlock()
	if store == nil || controller == nil || scheduler == nil {
		return Summary{}, fmt.Errorf("charts: pipeline not started")
	}

	state := controller.State()
	out := Summary{
		Pipeline: p.id,
		Title:    p.opts.Title,
		Mode:     state.Mode,
		Horizon:  state.Horizon,
		Filter:   state.Filter,
		Group:    state.FilterGroup,
		City:     state.City,
		Series:   store.Len(),
		Visible:  len(controller.VisibleIndices()),
		Rendered: len(scheduler.Rendered()),
		Unit:     store.Metadata().Unit,
		Freq:     store.Metadata().Frequency,
	}
	if out.Title == "" {
		out.Title = store.Metadata().Title
	}
	if state.Category != nil {
		out.Category = state.Category.Key
	}
	return out, nil
}
