package upstream

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// PacedTransport waits for a token before each round trip. It keeps a
// client under an API's published request rate independently of how the
// dispatcher batches work.
type PacedTransport struct {
	// Base performs the request. Nil means http.DefaultTransport.
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

// RoundTrip implements http.RoundTripper.
func (t *PacedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("upstream: pacing: %w", err)
		}
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
