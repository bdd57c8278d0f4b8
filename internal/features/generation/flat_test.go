package generation

import (
	"encoding/json"
	"errors"
	"testing"

	"energy-trends/internal/clients_api/eia"
)

func decodeResponse(t *testing.T, body string) *eia.GenerationResponse {
	t.Helper()
	var resp eia.GenerationResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	return &resp
}

func TestNormalize_CoercesValues(t *testing.T) {
	resp := decodeResponse(t, `{"response":{"total":"4","data":[
		{"period":"2020","fueltypeid":"SUN","generation":132629.7},
		{"period":"2021","fueltypeid":"SUN","generation":"164289.0"},
		{"period":"2022","fueltypeid":"SUN","generation":null},
		{"period":"2023","fueltypeid":"SUN","generation":"n/a"}
	]}}`)

	flat, stats, err := Normalize(resp)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(flat) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(flat))
	}
	if stats.MissingValues != 2 {
		t.Fatalf("expected 2 missing values, got %d", stats.MissingValues)
	}

	if v := flat[0].Value; !v.Valid || v.Float64 != 132629.7 {
		t.Fatalf("number value not coerced: %+v", v)
	}
	if v := flat[1].Value; !v.Valid || v.Float64 != 164289.0 {
		t.Fatalf("numeric string not coerced: %+v", v)
	}
	if flat[2].Value.Valid {
		t.Fatalf("null should stay missing, got %+v", flat[2].Value)
	}
	if flat[3].Value.Valid {
		t.Fatalf("non-numeric string should stay missing, got %+v", flat[3].Value)
	}
	// Missing must never be coerced to zero generation.
	if flat[2].Value.Float64 != 0 || flat[2].Value.Valid {
		t.Fatalf("missing marker corrupted: %+v", flat[2].Value)
	}
}

func TestNormalize_ExcludesRecordsMissingFields(t *testing.T) {
	resp := decodeResponse(t, `{"response":{"data":[
		{"period":"2020","fueltypeid":"SUN","generation":1},
		{"period":"","fueltypeid":"WND","generation":2},
		{"period":"not-a-year","fueltypeid":"WND","generation":3},
		{"period":"2020","fueltypeid":"","generation":4}
	]}}`)

	flat, stats, err := Normalize(resp)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(flat) != 1 {
		t.Fatalf("expected 1 row, got %d", len(flat))
	}
	if stats.Excluded != 3 {
		t.Fatalf("expected 3 excluded, got %d", stats.Excluded)
	}
	if flat[0].Series != "Solar" || flat[0].Period != 2020 {
		t.Fatalf("unexpected surviving row: %+v", flat[0])
	}
}

func TestNormalize_EmptyDataArray(t *testing.T) {
	resp := decodeResponse(t, `{"response":{"data":[]}}`)

	flat, stats, err := Normalize(resp)
	if err != nil {
		t.Fatalf("Normalize failed on empty data: %v", err)
	}
	if len(flat) != 0 {
		t.Fatalf("expected empty flat table, got %d rows", len(flat))
	}
	if stats.Total != 0 {
		t.Fatalf("expected total 0, got %d", stats.Total)
	}
}

func TestNormalize_AllRecordsUnusable(t *testing.T) {
	resp := decodeResponse(t, `{"response":{"data":[
		{"period":"","fueltypeid":"","generation":1},
		{"period":"","fueltypeid":"","generation":2}
	]}}`)

	_, _, err := Normalize(resp)
	var shapeErr *DataShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected DataShapeError, got %v", err)
	}
}

func TestNormalize_NilResponse(t *testing.T) {
	_, _, err := Normalize(nil)
	var shapeErr *DataShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected DataShapeError for nil response, got %v", err)
	}
}

func TestNormalize_SeriesLabels(t *testing.T) {
	resp := decodeResponse(t, `{"response":{"data":[
		{"period":"2020","fueltypeid":"WND","generation":1},
		{"period":"2020","fueltypeid":"NUC","fuelTypeDescription":"nuclear","generation":2},
		{"period":"2020","fueltypeid":"XYZ","generation":3}
	]}}`)

	flat, _, err := Normalize(resp)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if flat[0].Series != "Wind" {
		t.Fatalf("known code should map to display name, got %q", flat[0].Series)
	}
	if flat[1].Series != "nuclear" {
		t.Fatalf("unknown code should fall back to description, got %q", flat[1].Series)
	}
	if flat[2].Series != "XYZ" {
		t.Fatalf("unknown code without description should keep the code, got %q", flat[2].Series)
	}
}
