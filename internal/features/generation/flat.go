package generation

// Normalizer stage: flattens the EIA response envelope into rows of
// (period, series, value). Records missing a required field are excluded and
// counted, never fatal on their own.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"energy-trends/internal/clients_api/eia"
	"energy-trends/internal/infra/log"

	"go.uber.org/zap"
)

// SeriesNames maps EIA fueltypeid codes to the display labels used in the
// chart legend.
var SeriesNames = map[string]string{
	"SUN": "Solar",
	"WND": "Wind",
	"HYC": "Hydroelectric",
	"GEO": "Geothermal",
	"BIO": "Biomass",
}

// PreferredOrder fixes the column and legend order for known series; unknown
// series sort alphabetically after these.
var PreferredOrder = []string{"Solar", "Wind", "Hydroelectric", "Geothermal", "Biomass"}

// Observation is one row of the flat table.
type Observation struct {
	Period int    // calendar year
	Series string // display label
	Value  Value
}

// FlatTable is the normalizer output, in source order.
type FlatTable []Observation

// NormalizeStats counts what happened to the raw records.
type NormalizeStats struct {
	Total         int
	Excluded      int // missing period or series identifier
	MissingValues int // kept rows whose value is null or non-numeric
}

// DataShapeError reports a response whose records cannot be used at all.
type DataShapeError struct {
	Reason string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("data shape error: %s", e.Reason)
}

// Normalize turns the raw response into a FlatTable. An empty data array is
// a valid empty table; a non-empty array where every record is unusable is a
// *DataShapeError.
func Normalize(resp *eia.GenerationResponse) (FlatTable, NormalizeStats, error) {
	var stats NormalizeStats
	if resp == nil {
		return nil, stats, &DataShapeError{Reason: "nil response"}
	}

	records := resp.Response.Data
	stats.Total = len(records)

	flat := make(FlatTable, 0, len(records))
	for _, rec := range records {
		period, ok := parsePeriod(rec.Period)
		if !ok {
			stats.Excluded++
			continue
		}

		series := seriesLabel(rec)
		if series == "" {
			stats.Excluded++
			continue
		}

		value := coerceValue(rec.Generation)
		if !value.Valid {
			stats.MissingValues++
		}

		flat = append(flat, Observation{Period: period, Series: series, Value: value})
	}

	if len(records) > 0 && len(flat) == 0 {
		return nil, stats, &DataShapeError{
			Reason: fmt.Sprintf("all %d records missing period or series identifier", len(records)),
		}
	}

	if stats.Excluded > 0 {
		log.LogWarn("Excluded records with missing fields",
			zap.Int("excluded", stats.Excluded),
			zap.Int("total", stats.Total))
	}
	log.LogInfo("Normalized raw records",
		zap.Int("rows", len(flat)),
		zap.Int("missing_values", stats.MissingValues))

	return flat, stats, nil
}

// parsePeriod reads an annual period ("2015") as a year.
func parsePeriod(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 3000 {
		return 0, false
	}
	return year, true
}

// seriesLabel picks the display label: known code mapping first, then the
// API's own description, then the raw code.
func seriesLabel(rec eia.RawRecord) string {
	code := strings.TrimSpace(rec.FuelTypeID)
	if code == "" {
		return ""
	}
	if name, ok := SeriesNames[code]; ok {
		return name
	}
	if desc := strings.TrimSpace(rec.FuelTypeDescription); desc != "" {
		return desc
	}
	return code
}

// coerceValue interprets the raw generation field. Numbers and numeric
// strings become valid values; null, absent and non-numeric stay missing.
func coerceValue(raw json.RawMessage) Value {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Missing()
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return Some(f)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return Some(f)
		}
	}

	return Missing()
}
