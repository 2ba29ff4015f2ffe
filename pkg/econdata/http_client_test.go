package econdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientFetchSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/series/observations" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("series_id") != "CES6054150001" {
			t.Fatalf("expected series id, got %s", q.Get("series_id"))
		}
		if q.Get("api_key") != "secret" {
			t.Fatalf("expected api key, got %s", q.Get("api_key"))
		}
		if q.Get("observation_start") != "2023-01-01" {
			t.Fatalf("expected start bound, got %s", q.Get("observation_start"))
		}
		resp := observationsResponse{Observations: []observation{
			{Date: "2023-01-01", Value: "2314.5"},
			{Date: "2023-02-01", Value: "."},
			{Date: "2023-03-01", Value: "2317.1"},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	series, err := client.FetchSeries(context.Background(), SeriesQuery{
		ID:    "CES6054150001",
		Start: "2023-01-01",
	})
	if err != nil {
		t.Fatalf("fetch series: %v", err)
	}
	if series.ID != "CES6054150001" || len(series.Data) != 3 {
		t.Fatalf("unexpected series: %#v", series)
	}
	if series.Data[0].Value == nil || *series.Data[0].Value != 2314.5 {
		t.Fatalf("unexpected first observation: %#v", series.Data[0])
	}
	if series.Data[1].Value != nil {
		t.Fatal("'.' marker must decode to a nil value")
	}
	if series.Data[1].Date != "2023-02-01" {
		t.Fatal("missing observations must keep their date")
	}
}

func TestHTTPClientRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.FetchSeries(context.Background(), SeriesQuery{ID: "X"}); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestHTTPClientBadValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := observationsResponse{Observations: []observation{
			{Date: "2023-01-01", Value: "not-a-number"},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.FetchSeries(context.Background(), SeriesQuery{ID: "X"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestHTTPClientRequiresConfig(t *testing.T) {
	if _, err := NewHTTPClient(HTTPConfig{}); err == nil {
		t.Fatal("expected error without base url")
	}
	client, err := NewHTTPClient(HTTPConfig{BaseURL: "http://localhost:0"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.FetchSeries(context.Background(), SeriesQuery{}); err == nil {
		t.Fatal("expected error without series id")
	}
}
