package charts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Loader fetches the structured dataset once per page load. Implementations
// wrap failures in *LoadError; the pipeline treats those as terminal.
type Loader interface {
	Load(ctx context.Context) (Dataset, error)
}

// HTTPLoaderConfig configures the HTTP dataset loader.
type HTTPLoaderConfig struct {
	URL        string
	HTTPClient *http.Client
}

// HTTPLoader fetches a dataset JSON document over HTTP. One request, no
// retries: a network or parse failure is a terminal LoadError.
type HTTPLoader struct {
	url    string
	client *http.Client
}

// NewHTTPLoader builds a loader for the given dataset endpoint.
func NewHTTPLoader(cfg HTTPLoaderConfig) (*HTTPLoader, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("charts: dataset url is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPLoader{url: cfg.URL, client: client}, nil
}

// Load performs the dataset request and decodes the payload.
func (l *HTTPLoader) Load(ctx context.Context) (Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return Dataset{}, &LoadError{Source: l.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := l.client.Do(req)
	if err != nil {
		return Dataset{}, &LoadError{Source: l.url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Dataset{}, &LoadError{Source: l.url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	var ds Dataset
	if err := json.NewDecoder(resp.Body).Decode(&ds); err != nil {
		return Dataset{}, &LoadError{Source: l.url, Err: err}
	}
	if err := validateDataset(ds); err != nil {
		return Dataset{}, &LoadError{Source: l.url, Err: err}
	}
	return ds, nil
}

// FileLoader reads a dataset JSON document from disk. Static-site builds use
// it in place of the HTTP fetch.
type FileLoader struct {
	Path string
}

// Load reads and decodes the dataset file.
func (l FileLoader) Load(_ context.Context) (Dataset, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return Dataset{}, &LoadError{Source: l.Path, Err: err}
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return Dataset{}, &LoadError{Source: l.Path, Err: err}
	}
	if err := validateDataset(ds); err != nil {
		return Dataset{}, &LoadError{Source: l.Path, Err: err}
	}
	return ds, nil
}

func validateDataset(ds Dataset) error {
	if ds.Metadata.Frequency != "" && !ds.Metadata.Frequency.Valid() {
		return fmt.Errorf("unknown frequency %q", ds.Metadata.Frequency)
	}
	for i, s := range ds.Series {
		if s.ID == "" {
			return fmt.Errorf("series at position %d has no id", i)
		}
	}
	return nil
}
