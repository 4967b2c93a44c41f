package inference

import (
	"context"
	"fmt"
)

// Params are per-call generation knobs.
type Params struct {
	MaxNewTokens int
	Temperature  float64
}

// Client is a minimal text-generation interface to allow pluggable providers.
// Generate issues exactly one synchronous call; providers never retry.
type Client interface {
	Generate(ctx context.Context, prompt string, params Params) (string, error)
}

// HTTPError reports a non-success status from the endpoint. It is returned as
// a value rather than escalated so one failed clause never aborts a batch.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Status)
}

// TransportError wraps timeouts, connection failures and malformed response
// bodies.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
