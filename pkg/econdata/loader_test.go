package econdata

import (
	"context"
	"errors"
	"testing"

	charts "github.com/andreadrechsler18/ndrechslermacrocharts/components/charts"
)

func fp(v float64) *float64 { return &v }

func TestDatasetLoaderAssemblesDataset(t *testing.T) {
	client := NewMockClient(
		charts.Series{ID: "CES0000000001", Data: []charts.Observation{
			{Date: "2024-01-01", Value: fp(100)},
		}},
		charts.Series{ID: "CES6054000001", Data: []charts.Observation{
			{Date: "2024-01-01", Value: fp(10)},
		}},
	)
	loader := &DatasetLoader{
		Client: client,
		Meta:   charts.Metadata{Title: "Employment", Unit: "thousands", Frequency: charts.FrequencyMonthly},
		Specs: []SeriesSpec{
			{ID: "CES0000000001", Name: "Total"},
			{ID: "CES6054000001", Name: "PBS"},
		},
	}

	ds, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(ds.Series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(ds.Series))
	}
	if ds.Series[0].Name != "Total" || ds.Series[1].Name != "PBS" {
		t.Fatalf("spec names must override: %#v", ds.Series)
	}
	if ds.Metadata.Frequency != charts.FrequencyMonthly {
		t.Fatalf("metadata must carry through: %#v", ds.Metadata)
	}
}

func TestDatasetLoaderFetchFailureIsLoadError(t *testing.T) {
	loader := &DatasetLoader{
		Client: NewMockClient(),
		Specs:  []SeriesSpec{{ID: "missing"}},
	}
	_, err := loader.Load(context.Background())
	var loadErr *charts.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
}

func TestDatasetLoaderRequiresClient(t *testing.T) {
	loader := &DatasetLoader{}
	var loadErr *charts.LoadError
	if _, err := loader.Load(context.Background()); !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
}

func TestMockClientCopiesFixtures(t *testing.T) {
	client := NewMockClient(charts.Series{ID: "a", Data: []charts.Observation{
		{Date: "2024-01-01", Value: fp(1)},
	}})

	first, err := client.FetchSeries(context.Background(), SeriesQuery{ID: "a"})
	if err != nil {
		t.Fatalf("FetchSeries returned error: %v", err)
	}
	first.Data[0].Value = fp(99)

	second, err := client.FetchSeries(context.Background(), SeriesQuery{ID: "a"})
	if err != nil {
		t.Fatalf("FetchSeries returned error: %v", err)
	}
	if *second.Data[0].Value != 1 {
		t.Fatal("fixtures must not alias returned series")
	}
}
