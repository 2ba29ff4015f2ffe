package charts

import "context"

// ViewEvent is a tagged view-state change record. Each discrete user action
// produces exactly one event type with an explicit payload; there is no
// untyped broadcast detail.
type ViewEvent interface {
	// EventName returns the stable wire name of the event.
	EventName() string
	viewEvent()
}

// ModeChanged reports a new display mode, including the forced reset to yoy
// when a category is cleared while share mode is active.
type ModeChanged struct {
	Mode Mode `json:"mode"`
}

// HorizonChanged reports a new trailing window in months (0 = unbounded).
type HorizonChanged struct {
	Months int `json:"months"`
}

// FilterChanged reports the active component filter; an empty key means the
// in-group "all" selection.
type FilterChanged struct {
	Key   string `json:"key"`
	Group string `json:"group,omitempty"`
}

// CategoryChanged reports the active category, nil when cleared.
type CategoryChanged struct {
	Category *Category `json:"category"`
}

// CityChanged reports the active city prefix filter, empty when cleared.
type CityChanged struct {
	Key string `json:"key"`
}

func (ModeChanged) EventName() string     { return "mode_changed" }
func (HorizonChanged) EventName() string  { return "horizon_changed" }
func (FilterChanged) EventName() string   { return "filter_changed" }
func (CategoryChanged) EventName() string { return "category_changed" }
func (CityChanged) EventName() string     { return "city_changed" }

func (ModeChanged) viewEvent()     {}
func (HorizonChanged) viewEvent()  {}
func (FilterChanged) viewEvent()   {}
func (CategoryChanged) viewEvent() {}
func (CityChanged) viewEvent()     {}

// ViewHook notifies collaborators (scheduler re-arm, transports, summary
// panels) about view-state changes.
type ViewHook interface {
	ViewChanged(ctx context.Context, event ViewEvent) error
}

// ViewHookFunc adapts a function to the ViewHook interface.
type ViewHookFunc func(ctx context.Context, event ViewEvent) error

func (f ViewHookFunc) ViewChanged(ctx context.Context, event ViewEvent) error {
	return f(ctx, event)
}

type noopViewHook struct{}

func (noopViewHook) ViewChanged(context.Context, ViewEvent) error { return nil }

func normalizeViewHook(h ViewHook) ViewHook {
	if h == nil {
		return noopViewHook{}
	}
	return h
}
