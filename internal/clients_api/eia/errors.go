package eia

import "fmt"

// FetchError covers every way the fetch stage can fail: the request never
// completing, a non-2xx status, or an envelope that is not valid JSON.
type FetchError struct {
	Op         string // "request", "status" or "decode"
	StatusCode int    // set for Op == "status"
	Err        error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "fetch error: <nil>"
	}
	if e.Op == "status" {
		return fmt.Sprintf("fetch error: unexpected status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error (%s): %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
