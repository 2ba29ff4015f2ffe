package econdata

import (
	"context"
	"fmt"

	charts "github.com/andreadrechsler18/ndrechslermacrocharts/components/charts"
)

// SeriesSpec names one series to include in an assembled dataset.
type SeriesSpec struct {
	ID   string
	Name string
}

// DatasetLoader assembles a charts dataset by fetching each named series from
// an upstream provider. It satisfies the charts loader contract, so a
// pipeline can load directly from a data API instead of a prebuilt document.
type DatasetLoader struct {
	Client SeriesClient
	Meta   charts.Metadata
	Specs  []SeriesSpec
	Start  string
	End    string
}

var _ charts.Loader = (*DatasetLoader)(nil)

// Load fetches every series in spec order. Any fetch failure is terminal.
func (l *DatasetLoader) Load(ctx context.Context) (charts.Dataset, error) {
	if l.Client == nil {
		return charts.Dataset{}, &charts.LoadError{
			Source: l.Meta.Source,
			Err:    fmt.Errorf("econdata: series client is required"),
		}
	}
	series := make([]charts.Series, 0, len(l.Specs))
	for _, spec := range l.Specs {
		s, err := l.Client.FetchSeries(ctx, SeriesQuery{ID: spec.ID, Start: l.Start, End: l.End})
		if err != nil {
			return charts.Dataset{}, &charts.LoadError{Source: spec.ID, Err: err}
		}
		if spec.Name != "" {
			s.Name = spec.Name
		}
		series = append(series, s)
	}
	return charts.Dataset{Metadata: l.Meta, Series: series}, nil
}
