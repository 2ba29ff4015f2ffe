package econdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	charts "github.com/andreadrechsler18/ndrechslermacrocharts/components/charts"
)

// HTTPConfig configures the HTTP observations client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient talks to a FRED-style observations API: one GET per series,
// JSON responses, "." as the missing-value marker.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client capable of hitting live observations APIs.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("econdata: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// FetchSeries implements SeriesClient by calling the observations endpoint.
func (c *HTTPClient) FetchSeries(ctx context.Context, query SeriesQuery) (charts.Series, error) {
	if query.ID == "" {
		return charts.Series{}, fmt.Errorf("econdata: series id is required")
	}
	params := url.Values{}
	params.Set("series_id", query.ID)
	params.Set("file_type", "json")
	if query.Start != "" {
		params.Set("observation_start", query.Start)
	}
	if query.End != "" {
		params.Set("observation_end", query.End)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	var resp observationsResponse
	if err := c.do(ctx, "/series/observations?"+params.Encode(), &resp); err != nil {
		return charts.Series{}, err
	}
	return resp.toSeries(query.ID)
}

func (c *HTTPClient) do(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("econdata: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("econdata: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("econdata: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("econdata: decode response: %w", err)
	}
	return nil
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type observationsResponse struct {
	Observations []observation `json:"observations"`
}

func (r observationsResponse) toSeries(id string) (charts.Series, error) {
	data := make([]charts.Observation, len(r.Observations))
	for i, obs := range r.Observations {
		out := charts.Observation{Date: obs.Date}
		// "." marks a missing observation; keep the date, leave the value nil
		if obs.Value != "" && obs.Value != "." {
			v, err := strconv.ParseFloat(obs.Value, 64)
			if err != nil {
				return charts.Series{}, fmt.Errorf("econdata: parse observation %s %q: %w", obs.Date, obs.Value, err)
			}
			out.Value = &v
		}
		data[i] = out
	}
	return charts.Series{ID: id, Data: data}, nil
}
