package charts

import (
	"errors"
	"fmt"
)

var (
	errMissingLoader      = errors.New("charts: dataset loader not configured")
	errMissingRenderer    = errors.New("charts: chart renderer not configured")
	errMissingRender      = errors.New("charts: scheduler render function is required")
	errUnknownMode        = errors.New("charts: unknown display mode")
	errUnknownFilter      = errors.New("charts: filter key not configured")
	errUnknownCategory    = errors.New("charts: category key not configured")
	errUnknownCity        = errors.New("charts: city key not configured")
	errNegativeHorizon    = errors.New("charts: horizon months must not be negative")
	ErrShareNeedsCategory = errors.New("charts: share mode requires an active category")
)

// LoadError is a terminal dataset fetch/parse failure. It halts the pipeline
// before any chart is constructed; there is no retry.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("charts: load dataset %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SeriesNotFoundError marks a series id with no matching index. It affects a
// single chart, never the page.
type SeriesNotFoundError struct {
	ID string
}

func (e *SeriesNotFoundError) Error() string {
	return fmt.Sprintf("charts: series %s not found", e.ID)
}

// RenderError wraps a charting-library failure for one chart. The scheduler
// records it and continues with the next queued index.
type RenderError struct {
	Index    int
	SeriesID string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("charts: render series %s (index %d): %v", e.SeriesID, e.Index, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
