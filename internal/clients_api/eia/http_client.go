package eia

// Package eia contains the client for the EIA (U.S. Energy Information
// Administration) v2 open data API.
// This file is the transport layer - it knows how to perform requests and
// surface failures, not what the data means.

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"energy-trends/internal/config"
	"energy-trends/internal/infra/log"
	"energy-trends/internal/infra/retry"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public EIA v2 API root.
const DefaultBaseURL = "https://api.eia.gov/v2"

// Client holds everything needed to talk to the API: base URL, key, HTTP
// client, rate limiter and circuit breaker.
type Client struct {
	baseURL         string
	apiKey          string
	httpClient      *http.Client
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	maxResponseSize int64
	retryOpts       retry.Options
}

// NewClient builds a Client from the EIA section of the configuration.
func NewClient(cfg config.EIAConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	maxResponseSize := cfg.MaxResponseSize
	if maxResponseSize <= 0 {
		maxResponseSize = 10 * 1024 * 1024
	}

	// The EIA API allows 5 requests per second per key; stay well under it.
	rateLimiter := rate.NewLimiter(rate.Limit(2), 4)

	circuitBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "EIAAPI",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL:         baseURL,
		apiKey:          cfg.APIKey,
		rateLimiter:     rateLimiter,
		circuitBreaker:  circuitBreaker,
		maxResponseSize: maxResponseSize,
		retryOpts: retry.Options{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  300 * time.Millisecond,
			MaxDelay:   5 * time.Second,
			Backoff:    2.0,
		},
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DisableKeepAlives: false,
				MaxIdleConns:      10,
				IdleConnTimeout:   90 * time.Second,
			},
		},
	}
}

// MakeRequest performs a GET against endpoint with params, adding the API
// key. Retryable HTTP failures (429, 5xx) go through the retry policy; every
// terminal failure comes back as a *FetchError.
func (c *Client) MakeRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	requestID := log.GenerateRequestID()
	startTime := time.Now()

	if ctx.Err() != nil {
		return nil, &FetchError{Op: "request", Err: ctx.Err()}
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, &FetchError{Op: "request", Err: err}
		}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	fullURL := c.baseURL + endpoint + "?" + params.Encode()

	var respBody []byte
	doOnce := func() error {
		body, err := c.doGET(ctx, requestID, endpoint, fullURL, startTime)
		if err != nil {
			return err
		}
		respBody = body
		return nil
	}

	var err error
	if c.circuitBreaker != nil {
		_, err = c.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, retry.Do(ctx, c.retryOpts, doOnce)
		})
	} else {
		err = retry.Do(ctx, c.retryOpts, doOnce)
	}
	if err != nil {
		var he *retry.HTTPError
		if errors.As(err, &he) {
			return nil, &FetchError{Op: "status", StatusCode: he.StatusCode, Err: he}
		}
		log.LogError("EIA request failed", zap.String("request_id", requestID), zap.String("endpoint", endpoint), zap.Error(err))
		return nil, &FetchError{Op: "request", Err: err}
	}

	duration := time.Since(startTime).Milliseconds()
	log.LogSuccess("EIA data fetched", zap.String("endpoint", endpoint), zap.Int64("duration_ms", duration))

	return respBody, nil
}

// doGET performs a single HTTP round trip. The API key is redacted from log
// lines.
func (c *Client) doGET(ctx context.Context, requestID, endpoint, fullURL string, startTime time.Time) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "energy-trends/1.0")

	log.LogRequest(requestID, http.MethodGet, endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		log.LogResponse(requestID, 0, duration, zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	limitedReader := io.LimitReader(resp.Body, c.maxResponseSize)
	respBody, err := io.ReadAll(limitedReader)
	if err != nil {
		duration := time.Since(startTime).Milliseconds()
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	duration := time.Since(startTime).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint))
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	log.LogResponse(requestID, resp.StatusCode, duration, zap.String("endpoint", endpoint))

	return respBody, nil
}
