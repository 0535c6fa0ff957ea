package model

import (
	"net/http"
	"strconv"
)

// StatusError is the status label reported when no HTTP response was
// obtained at all (timeout, DNS failure, connection refused).
// It is reserved strictly for no-response conditions; a 4xx or 5xx
// response always reports its numeric code instead.
const StatusError = "ERROR"

// WorkItem is one pending fetch in the crawl queue.
// Items are created when a link is discovered and consumed exactly once
// when dequeued; they are never mutated.
type WorkItem struct {
	// Target is the normalized absolute URL to fetch.
	Target string `json:"target"`

	// Referrer is the page the link was found on.
	// Empty for the seed URL.
	Referrer string `json:"referrer,omitempty"`
}

// Outcome records the result of fetching one URL.
//
// Design decision: We model the success/failure split as a closed tagged
// variant (the Responded flag) rather than inspecting error values because:
//  1. "ERROR vs numeric code" becomes an explicit, testable branch
//  2. An HTTP error status is data, not a Go error
//  3. Report writers never need to know about transport internals
type Outcome struct {
	// Target is the URL that was fetched.
	Target string `json:"target"`

	// Referrer is the page that linked to Target. Empty for the seed.
	Referrer string `json:"referrer,omitempty"`

	// Responded is true when any HTTP response was obtained,
	// regardless of status code.
	Responded bool `json:"responded"`

	// StatusCode is the HTTP status of the response.
	// Zero when Responded is false.
	StatusCode int `json:"status_code,omitempty"`

	// Body is the response body, capped at the fetcher's size limit.
	// Excluded from JSON: it only feeds link extraction.
	Body []byte `json:"-"`
}

// Broken reports whether the outcome represents a broken link:
// either no response was obtained, or the server answered with a
// 4xx/5xx status.
func (o *Outcome) Broken() bool {
	return !o.Responded || o.StatusCode >= http.StatusBadRequest
}

// StatusLabel returns the status text used in report lines:
// the numeric code when a response was obtained, StatusError otherwise.
func (o *Outcome) StatusLabel() string {
	if !o.Responded {
		return StatusError
	}
	return strconv.Itoa(o.StatusCode)
}
