package charts

import "fmt"

// Store owns the fetched series collection plus metadata. Computed-series
// directives are applied once at construction, appended in directive order,
// and the id→index lookup built afterwards covers native and computed series
// alike. The store is read-only after NewStore returns.
type Store struct {
	meta   Metadata
	series []Series
	index  map[string]int
}

// NewStore builds a store from a loaded dataset, deriving every computed
// series before any other component consumes the list.
func NewStore(ds Dataset, directives []ComputedSeries) (*Store, error) {
	series := make([]Series, len(ds.Series))
	copy(series, ds.Series)

	for _, d := range directives {
		derived, err := deriveSeries(series, d)
		if err != nil {
			return nil, err
		}
		series = append(series, derived)
	}

	index := make(map[string]int, len(series))
	for i, s := range series {
		if s.ID == "" {
			return nil, fmt.Errorf("charts: series at position %d has no id", i)
		}
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("charts: duplicate series id %s", s.ID)
		}
		index[s.ID] = i
	}

	return &Store{meta: ds.Metadata, series: series, index: index}, nil
}

func deriveSeries(series []Series, d ComputedSeries) (Series, error) {
	if d.ID == "" {
		return Series{}, fmt.Errorf("charts: computed series directive has no id")
	}
	for _, src := range d.Sources {
		if src < 0 || src >= len(series) {
			return Series{}, fmt.Errorf("charts: computed series %s references index %d out of range", d.ID, src)
		}
	}
	a := series[d.Sources[0]]
	b := series[d.Sources[1]]

	byDate := make(map[string]*float64, len(b.Data))
	for _, obs := range b.Data {
		byDate[obs.Date] = obs.Value
	}

	data := make([]Observation, len(a.Data))
	for i, obs := range a.Data {
		out := Observation{Date: obs.Date}
		if bv, ok := byDate[obs.Date]; ok && obs.Value != nil && bv != nil {
			diff := *obs.Value - *bv
			out.Value = &diff
		}
		data[i] = out
	}
	return Series{ID: d.ID, Name: d.Name, Data: data}, nil
}

// Metadata returns the dataset metadata.
func (s *Store) Metadata() Metadata { return s.meta }

// Len returns the number of series, computed series included.
func (s *Store) Len() int { return len(s.series) }

// Series returns the series at the given display position.
func (s *Store) Series(i int) (Series, error) {
	if i < 0 || i >= len(s.series) {
		return Series{}, fmt.Errorf("charts: series index %d out of range", i)
	}
	return s.series[i], nil
}

// All returns the ordered series list. Callers must treat it as read-only.
func (s *Store) All() []Series { return s.series }

// Lookup resolves a series id to its display position. This is the sole
// mechanism other components use to resolve category totals and directive
// sources to positions.
func (s *Store) Lookup(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// ByID returns the series with the given id.
func (s *Store) ByID(id string) (Series, error) {
	i, ok := s.index[id]
	if !ok {
		return Series{}, &SeriesNotFoundError{ID: id}
	}
	return s.series[i], nil
}

// auxiliary resolves an optional helper series (total, excluded, category
// total). A missing id yields nil, which transforms treat as "all null",
// never as an error.
func (s *Store) auxiliary(id string) *Series {
	if id == "" {
		return nil
	}
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return &s.series[i]
}
