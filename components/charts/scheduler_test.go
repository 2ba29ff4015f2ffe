package charts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// manualPump queues continuations and runs them only when told to, so tests
// can count batches.
type manualPump struct {
	mu    sync.Mutex
	queue []func()
}

func (p *manualPump) Next(fn func()) {
	p.mu.Lock()
	p.queue = append(p.queue, fn)
	p.mu.Unlock()
}

func (p *manualPump) tick() bool {
	p.mu.Lock()
	if len(p.queue) == 0 {
		p.mu.Unlock()
		return false
	}
	fn := p.queue[0]
	p.queue = p.queue[1:]
	p.mu.Unlock()
	fn()
	return true
}

func (p *manualPump) drainAll() int {
	ticks := 0
	for p.tick() {
		ticks++
	}
	return ticks
}

type renderRecorder struct {
	mu    sync.Mutex
	calls []int
	fail  map[int]error
}

func (r *renderRecorder) render(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, index)
	if err, ok := r.fail[index]; ok {
		return err
	}
	return nil
}

func (r *renderRecorder) count(index int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == index {
			n++
		}
	}
	return n
}

func TestSchedulerDrainsInBatches(t *testing.T) {
	pump := &manualPump{}
	rec := &renderRecorder{}
	s, err := NewScheduler(SchedulerOptions{
		Pump:   pump,
		Render: rec.render,
	})
	if err != nil {
		t.Fatalf("NewScheduler returned error: %v", err)
	}

	indices := make([]int, 20)
	for i := range indices {
		indices[i] = i
	}
	s.EnqueueVisible(indices)

	// first tick renders one batch of 8
	if !pump.tick() {
		t.Fatal("expected queued drain")
	}
	if len(rec.calls) != 8 {
		t.Fatalf("expected 8 renders after first batch, got %d", len(rec.calls))
	}

	ticks := pump.drainAll()
	if ticks != 2 {
		t.Fatalf("expected 2 more batches (8+4), got %d ticks", ticks)
	}
	if len(rec.calls) != 20 {
		t.Fatalf("expected 20 renders total, got %d", len(rec.calls))
	}
	// FIFO order
	for i, index := range rec.calls {
		if index != i {
			t.Fatalf("expected FIFO render order, got %v", rec.calls)
		}
	}
	if got := len(s.Rendered()); got != 20 {
		t.Fatalf("expected 20 rendered, got %d", got)
	}
}

func TestSchedulerRendersEachIndexOnce(t *testing.T) {
	pump := &manualPump{}
	rec := &renderRecorder{}
	s, err := NewScheduler(SchedulerOptions{Pump: pump, Render: rec.render})
	if err != nil {
		t.Fatalf("NewScheduler returned error: %v", err)
	}

	s.Observe(3)
	s.Observe(3)
	s.EnqueueVisible([]int{3, 3})
	pump.drainAll()
	s.Observe(3)
	s.EnqueueVisible([]int{3})
	pump.drainAll()

	if got := rec.count(3); got != 1 {
		t.Fatalf("expected index rendered once, got %d", got)
	}
}

func TestSchedulerRenderFailureContinuesBatch(t *testing.T) {
	pump := &manualPump{}
	rec := &renderRecorder{fail: map[int]error{1: errors.New("boom")}}
	var events []string
	s, err := NewScheduler(SchedulerOptions{
		Pump:   pump,
		Render: rec.render,
		Telemetry: TelemetryFunc(func(_ context.Context, event string, _ map[string]any) {
			events = append(events, event)
		}),
	})
	if err != nil {
		t.Fatalf("NewScheduler returned error: %v", err)
	}

	s.EnqueueVisible([]int{0, 1, 2})
	pump.drainAll()

	if len(rec.calls) != 3 {
		t.Fatalf("expected all three render attempts, got %v", rec.calls)
	}
	if s.IsRendered(1) {
		t.Fatal("failed index must stay out of the rendered set")
	}
	if !s.IsRendered(0) || !s.IsRendered(2) {
		t.Fatal("successful indices must be marked rendered")
	}
	found := false
	for _, event := range events {
		if event == "charts.render.error" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected render error telemetry, got %v", events)
	}
}

func TestSchedulerRenderPanicRecovered(t *testing.T) {
	pump := &manualPump{}
	s, err := NewScheduler(SchedulerOptions{
		Pump: pump,
		Render: func(index int) error {
			if index == 0 {
				panic("kaboom")
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewScheduler returned error: %v", err)
	}

	s.EnqueueVisible([]int{0, 1})
	pump.drainAll()

	if s.IsRendered(0) {
		t.Fatal("panicking index must not be marked rendered")
	}
	if !s.IsRendered(1) {
		t.Fatal("panic must not abort the batch")
	}
}

func TestSchedulerOnViewChangeRedrawsRendered(t *testing.T) {
	pump := &manualPump{}
	rec := &renderRecorder{}
	s, err := NewScheduler(SchedulerOptions{Pump: pump, Render: rec.render})
	if err != nil {
		t.Fatalf("NewScheduler returned error: %v", err)
	}

	s.EnqueueVisible([]int{0, 1, 2})
	pump.drainAll()

	s.OnViewChange([]int{0, 2, 5})
	pump.drainAll()

	if got := rec.count(0); got != 2 {
		t.Fatalf("expected visible rendered index redrawn, got %d draws", got)
	}
	if got := rec.count(1); got != 1 {
		t.Fatalf("hidden index must not be redrawn, got %d draws", got)
	}
	if got := rec.count(5); got != 1 {
		t.Fatalf("expected newly visible index drawn once, got %d", got)
	}
	// rendered set is monotonic: hidden indices stay in it
	if !s.IsRendered(1) {
		t.Fatal("rendered set must not shrink on view change")
	}
}

func TestSchedulerClearHidden(t *testing.T) {
	pump := &manualPump{}
	rec := &renderRecorder{}
	var cleared []string
	s, err := NewScheduler(SchedulerOptions{
		Pump:        pump,
		Render:      rec.render,
		Clear:       func(containerID string) error { cleared = append(cleared, containerID); return nil },
		ClearHidden: true,
	})
	if err != nil {
		t.Fatalf("NewScheduler returned error: %v", err)
	}

	s.EnqueueVisible([]int{0, 1})
	pump.drainAll()
	s.OnViewChange([]int{0})
	pump.drainAll()

	if len(cleared) != 1 || cleared[0] != fmt.Sprintf("chart-%d", 1) {
		t.Fatalf("expected container for index 1 cleared, got %v", cleared)
	}
}

func TestSchedulerRequiresRender(t *testing.T) {
	if _, err := NewScheduler(SchedulerOptions{}); err == nil {
		t.Fatal("expected error without render function")
	}
}
