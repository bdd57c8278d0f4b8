package eia

import "encoding/json"

// GenerationResponse is the envelope the EIA v2 API wraps every dataset
// answer in. Fields we never read (request echo, api version) are omitted.
type GenerationResponse struct {
	Response struct {
		// Total arrives as a number in some datasets and a quoted string in
		// others, so it is kept raw.
		Total       json.RawMessage `json:"total"`
		Description string          `json:"description"`
		Data        []RawRecord     `json:"data"`
	} `json:"response"`
}

// RawRecord is one (period, facet, value) entry of the data array.
type RawRecord struct {
	Period              string `json:"period"`
	FuelTypeID          string `json:"fueltypeid"`
	FuelTypeDescription string `json:"fuelTypeDescription"`
	Location            string `json:"location"`
	// Generation is a number, a numeric string, null, or absent depending on
	// the dataset and period. Coercion happens in the normalizer.
	Generation json.RawMessage `json:"generation"`
	Units      string          `json:"generation-units"`
}

// GenerationQuery is the immutable parameter set for one fetch.
type GenerationQuery struct {
	Frequency string
	StartYear int
	EndYear   int
	FuelTypes []string // EIA fueltypeid codes
}
