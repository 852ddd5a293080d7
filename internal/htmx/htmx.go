// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package htmx reads htmx request headers and sets htmx response headers.
package htmx

import (
	"net/http"
	"net/url"
)

// Request headers sent by htmx.
const (
	HeaderRequest        = "HX-Request"
	HeaderBoosted        = "HX-Boosted"
	HeaderCurrentURL     = "HX-Current-URL"
	HeaderHistoryRestore = "HX-History-Restore-Request"
	HeaderTarget         = "HX-Target"
	HeaderTrigger        = "HX-Trigger"
)

// Response headers understood by htmx.
const (
	HeaderRedirect        = "HX-Redirect"
	HeaderReswap          = "HX-Reswap"
	HeaderRetarget        = "HX-Retarget"
	HeaderTriggerResponse = "HX-Trigger"
)

// Request describes the htmx side of an incoming request.
type Request struct { //nolint:govet // fieldalignment not critical
	IsHtmx           bool
	IsBoosted        bool
	IsHistoryRestore bool
	CurrentURL       string // browser address of the page that issued the request
	Target           string
	Trigger          string
}

// ParseRequest extracts htmx information from request headers.
func ParseRequest(r *http.Request) *Request {
	return &Request{
		IsHtmx:           r.Header.Get(HeaderRequest) == "true",
		IsBoosted:        r.Header.Get(HeaderBoosted) == "true",
		IsHistoryRestore: r.Header.Get(HeaderHistoryRestore) == "true",
		CurrentURL:       r.Header.Get(HeaderCurrentURL),
		Target:           r.Header.Get(HeaderTarget),
		Trigger:          r.Header.Get(HeaderTrigger),
	}
}

// Partial reports whether the response should be a fragment rather than a
// full page. Boosted navigation and history restores need the whole page.
func (r *Request) Partial() bool {
	return r.IsHtmx && !r.IsBoosted && !r.IsHistoryRestore
}

// PageAddress returns the address shown in the browser when r was issued.
// For htmx requests this is HX-Current-URL, otherwise the request URL.
func PageAddress(r *http.Request) *url.URL {
	if current := r.Header.Get(HeaderCurrentURL); current != "" {
		if u, err := url.Parse(current); err == nil {
			return u
		}
	}
	return r.URL
}

// Redirect makes htmx perform a full page navigation to target.
func Redirect(w http.ResponseWriter, target string) {
	w.Header().Set(HeaderRedirect, target)
}

// Reswap overrides the hx-swap strategy of the triggering element.
func Reswap(w http.ResponseWriter, strategy string) {
	w.Header().Set(HeaderReswap, strategy)
}

// Retarget swaps the response into selector instead of the original target.
func Retarget(w http.ResponseWriter, selector string) {
	w.Header().Set(HeaderRetarget, selector)
}

// Trigger fires a client side event once the response is received.
func Trigger(w http.ResponseWriter, event string) {
	w.Header().Set(HeaderTriggerResponse, event)
}
