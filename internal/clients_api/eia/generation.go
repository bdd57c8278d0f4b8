package eia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"energy-trends/internal/infra/log"

	"go.uber.org/zap"
)

// generationEndpoint is the electric-power-operational-data dataset route of
// the v2 API.
const generationEndpoint = "/electricity/electric-power-operational-data/data/"

// GetGeneration fetches annual US-wide generation for the requested fuel
// types in one request. Decode failures of the envelope are a *FetchError;
// the caller normalizes record-level problems.
func (c *Client) GetGeneration(ctx context.Context, query GenerationQuery) (*GenerationResponse, error) {
	params := url.Values{}
	params.Set("frequency", query.Frequency)
	params.Add("data[0]", "generation")
	for _, code := range query.FuelTypes {
		params.Add("facets[fueltypeid][]", code)
	}
	params.Add("facets[location][]", "US")
	params.Add("facets[sectorid][]", "99") // all sectors
	params.Set("start", strconv.Itoa(query.StartYear))
	params.Set("end", strconv.Itoa(query.EndYear))
	params.Set("sort[0][column]", "period")
	params.Set("sort[0][direction]", "asc")
	params.Set("offset", "0")
	params.Set("length", "5000")

	respBody, err := c.MakeRequest(ctx, generationEndpoint, params)
	if err != nil {
		return nil, err
	}

	var genResp GenerationResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, &FetchError{Op: "decode", Err: fmt.Errorf("failed to unmarshal generation response: %w", err)}
	}

	log.LogInfo("Generation response decoded",
		zap.Int("records", len(genResp.Response.Data)),
		zap.Int("fuel_types", len(query.FuelTypes)))

	return &genResp, nil
}
