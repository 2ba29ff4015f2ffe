package econdata

import (
	"context"
	"sync"

	charts "github.com/andreadrechsler18/ndrechslermacrocharts/components/charts"
)

// MockClient implements SeriesClient using in-memory fixtures, keyed by
// series id.
type MockClient struct {
	mu     sync.RWMutex
	series map[string]charts.Series
}

// NewMockClient builds a mock observations client from the provided fixtures.
func NewMockClient(fixtures ...charts.Series) *MockClient {
	series := make(map[string]charts.Series, len(fixtures))
	for _, s := range fixtures {
		series[s.ID] = s
	}
	return &MockClient{series: series}
}

// FetchSeries returns the configured fixture, ignoring the date window.
func (c *MockClient) FetchSeries(_ context.Context, query SeriesQuery) (charts.Series, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.series[query.ID]
	if !ok {
		return charts.Series{}, &charts.SeriesNotFoundError{ID: query.ID}
	}
	return cloneSeries(s), nil
}

// Put replaces the fixture for a series id.
func (c *MockClient) Put(s charts.Series) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series[s.ID] = s
}

func cloneSeries(s charts.Series) charts.Series {
	out := charts.Series{ID: s.ID, Name: s.Name, Data: make([]charts.Observation, len(s.Data))}
	copy(out.Data, s.Data)
	return out
}
