package charts

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// DefaultBatchSize bounds the synchronous work done per scheduler tick.
const DefaultBatchSize = 8

// SchedulerOptions configures a Scheduler. Render draws the chart for a
// series index; ContainerID maps an index to its placeholder container.
type SchedulerOptions struct {
	Viewport    Viewport
	Pump        FramePump
	Render      func(index int) error
	Clear       func(containerID string) error
	ContainerID func(index int) string
	BatchSize   int
	ClearHidden bool
	Telemetry   Telemetry
}

// Scheduler observes chart placeholders for on-screen appearance, queues
// their indices, and drains the queue in fixed-size batches, yielding control
// between batches. The render queue and the rendered set are owned
// exclusively by the scheduler; collaborators reach them only through
// Observe, EnqueueVisible, and OnViewChange.
type Scheduler struct {
	opts SchedulerOptions

	mu       sync.Mutex
	queue    []int
	queued   map[int]bool
	watched  map[int]func()
	rendered map[int]bool
	draining bool
}

// NewScheduler builds a scheduler with safe defaults: immediate viewport and
// pump, batch size 8.
func NewScheduler(opts SchedulerOptions) (*Scheduler, error) {
	if opts.Render == nil {
		return nil, errMissingRender
	}
	if opts.Viewport == nil {
		opts.Viewport = NewImmediateViewport()
	}
	if opts.Pump == nil {
		opts.Pump = NewImmediatePump()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.ContainerID == nil {
		opts.ContainerID = func(index int) string { return fmt.Sprintf("chart-%d", index) }
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Scheduler{
		opts:     opts,
		queued:   map[int]bool{},
		watched:  map[int]func(){},
		rendered: map[int]bool{},
	}, nil
}

// Observe registers a not-yet-rendered chart's placeholder for appearance
// tracking. On first appearance the index is enqueued and tracking stops: an
// index is drawn at most once through this path.
func (s *Scheduler) Observe(index int) {
	s.mu.Lock()
	if s.rendered[index] || s.queued[index] {
		s.mu.Unlock()
		return
	}
	if _, ok := s.watched[index]; ok {
		s.mu.Unlock()
		return
	}
	// reserve the slot before Watch: an immediate viewport fires synchronously
	s.watched[index] = func() {}
	s.mu.Unlock()

	cancel := s.opts.Viewport.Watch(s.opts.ContainerID(index), func() {
		s.appeared(index)
	})
	s.mu.Lock()
	if _, ok := s.watched[index]; ok {
		s.watched[index] = cancel
	} else {
		// appeared already; tracking is done
		cancel()
	}
	s.mu.Unlock()
}

func (s *Scheduler) appeared(index int) {
	s.mu.Lock()
	if cancel, ok := s.watched[index]; ok {
		delete(s.watched, index)
		defer cancel()
	}
	s.mu.Unlock()
	s.enqueue(index)
}

// EnqueueVisible queues every not-yet-rendered index directly, bypassing
// appearance tracking. Bulk reveals ("show all") use it so the batch drain
// still bounds per-tick work.
func (s *Scheduler) EnqueueVisible(indices []int) {
	for _, index := range indices {
		s.enqueue(index)
	}
}

func (s *Scheduler) enqueue(index int) {
	s.mu.Lock()
	if s.rendered[index] || s.queued[index] {
		s.mu.Unlock()
		return
	}
	s.queued[index] = true
	s.queue = append(s.queue, index)
	start := !s.draining
	if start {
		s.draining = true
	}
	s.mu.Unlock()

	if start {
		s.opts.Pump.Next(s.drain)
	}
}

// drain processes one batch to completion, then yields to the pump if work
// remains.
func (s *Scheduler) drain() {
	s.mu.Lock()
	n := s.opts.BatchSize
	if n > len(s.queue) {
		n = len(s.queue)
	}
	batch := make([]int, n)
	copy(batch, s.queue[:n])
	s.queue = s.queue[n:]
	s.mu.Unlock()

	for _, index := range batch {
		s.renderOne(index)
	}

	s.mu.Lock()
	more := len(s.queue) > 0
	if !more {
		s.draining = false
	}
	s.mu.Unlock()
	if more {
		s.opts.Pump.Next(s.drain)
	}
}

// renderOne draws a single chart. Failures are recorded and do not abort the
// batch; the index stays out of the rendered set so a later view change can
// retry it.
func (s *Scheduler) renderOne(index int) {
	err := s.safeRender(index)

	s.mu.Lock()
	delete(s.queued, index)
	if err == nil {
		s.rendered[index] = true
	}
	s.mu.Unlock()

	if err != nil {
		s.opts.Telemetry.Record(context.Background(), "charts.render.error", map[string]any{
			"index": index,
			"error": err.Error(),
		})
	}
}

func (s *Scheduler) safeRender(index int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("charts: render panic: %v", r)
		}
	}()
	return s.opts.Render(index)
}

// OnViewChange re-arms the scheduler after a visibility change: newly visible
// never-rendered indices are observed, visible already-rendered indices are
// redrawn once layout has settled (one pump tick), and hidden indices are
// left untouched unless ClearHidden frees their containers.
func (s *Scheduler) OnViewChange(visible []int) {
	visibleSet := make(map[int]bool, len(visible))
	var redraw []int

	s.mu.Lock()
	for _, index := range visible {
		visibleSet[index] = true
		if s.rendered[index] {
			redraw = append(redraw, index)
		}
	}
	var cleared []int
	if s.opts.ClearHidden && s.opts.Clear != nil {
		for index := range s.rendered {
			if !visibleSet[index] {
				cleared = append(cleared, index)
			}
		}
	}
	s.mu.Unlock()

	for _, index := range visible {
		s.mu.Lock()
		seen := s.rendered[index] || s.queued[index]
		s.mu.Unlock()
		if !seen {
			s.Observe(index)
		}
	}

	for _, index := range cleared {
		if err := s.opts.Clear(s.opts.ContainerID(index)); err != nil {
			s.opts.Telemetry.Record(context.Background(), "charts.clear.error", map[string]any{
				"index": index,
				"error": err.Error(),
			})
		}
	}

	if len(redraw) > 0 {
		s.opts.Pump.Next(func() {
			for _, index := range redraw {
				s.renderOne(index)
			}
		})
	}
}

// Rendered returns the indices drawn at least once, in ascending order. The
// set grows monotonically.
func (s *Scheduler) Rendered() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.rendered))
	for index := range s.rendered {
		out = append(out, index)
	}
	sort.Ints(out)
	return out
}

// IsRendered reports whether the index has been drawn at least once.
func (s *Scheduler) IsRendered(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rendered[index]
}
