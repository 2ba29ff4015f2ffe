package econdata

import (
	"context"

	charts "github.com/andreadrechsler18/ndrechslermacrocharts/components/charts"
)

// SeriesQuery identifies one upstream series and an optional date window.
// Dates use YYYY-MM-DD; empty bounds mean the provider's full history.
type SeriesQuery struct {
	ID    string
	Start string
	End   string
}

// SeriesClient fetches a single observation series from an upstream economic
// data provider.
type SeriesClient interface {
	FetchSeries(ctx context.Context, query SeriesQuery) (charts.Series, error)
}
