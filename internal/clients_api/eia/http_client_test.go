package eia

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"energy-trends/internal/config"
)

func testConfig(baseURL string) config.EIAConfig {
	return config.EIAConfig{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		Frequency:      "annual",
		StartYear:      2015,
		EndYear:        2023,
		FuelTypes:      []string{"SUN", "WND"},
		RequestTimeout: 5,
		MaxRetries:     0,
	}
}

func testQuery() GenerationQuery {
	return GenerationQuery{
		Frequency: "annual",
		StartYear: 2015,
		EndYear:   2023,
		FuelTypes: []string{"SUN", "WND"},
	}
}

func TestGetGeneration_Success(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"total":"2","data":[
			{"period":"2020","fueltypeid":"SUN","generation":132629.7,"generation-units":"thousand megawatthours"},
			{"period":"2020","fueltypeid":"WND","generation":"337938.0","generation-units":"thousand megawatthours"}
		]}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	resp, err := client.GetGeneration(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("GetGeneration failed: %v", err)
	}
	if len(resp.Response.Data) != 2 {
		t.Fatalf("expected 2 records, got %d", len(resp.Response.Data))
	}

	params, err := url.ParseQuery(gotQuery)
	if err != nil {
		t.Fatalf("failed to re-parse query: %v", err)
	}
	if params.Get("api_key") != "test-key" {
		t.Fatalf("api_key not sent, query was %q", gotQuery)
	}
	if params.Get("frequency") != "annual" {
		t.Fatalf("frequency not sent, query was %q", gotQuery)
	}
	if params.Get("start") != "2015" || params.Get("end") != "2023" {
		t.Fatalf("date range not sent, query was %q", gotQuery)
	}
	facets := params["facets[fueltypeid][]"]
	if len(facets) != 2 || facets[0] != "SUN" || facets[1] != "WND" {
		t.Fatalf("fueltypeid facets not sent, got %v", facets)
	}
}

func TestGetGeneration_Unauthorized(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 3 // 401 must not be retried regardless

	client := NewClient(cfg)
	_, err := client.GetGeneration(context.Background(), testQuery())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Op != "status" || fetchErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401 fetch error, got %+v", fetchErr)
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Fatalf("401 should fail fast with one request, got %d", n)
	}
}

func TestGetGeneration_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.GetGeneration(context.Background(), testQuery())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Op != "decode" {
		t.Fatalf("expected decode fetch error, got %+v", fetchErr)
	}
}

func TestGetGeneration_NetworkUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(testConfig(server.URL))
	_, err := client.GetGeneration(context.Background(), testQuery())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Op != "request" {
		t.Fatalf("expected request fetch error, got %+v", fetchErr)
	}
}

func TestGetGeneration_RetriesServerErrors(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			http.Error(w, "temporary", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"response":{"data":[{"period":"2020","fueltypeid":"SUN","generation":1}]}}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 1

	client := NewClient(cfg)
	resp, err := client.GetGeneration(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if len(resp.Response.Data) != 1 {
		t.Fatalf("expected 1 record, got %d", len(resp.Response.Data))
	}
	if n := atomic.LoadInt32(&requests); n != 2 {
		t.Fatalf("expected 2 requests (1 retry), got %d", n)
	}
}
