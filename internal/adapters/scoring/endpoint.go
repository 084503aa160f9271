// Package scoring implements the clients that submit feature rows to a
// binary-classification inference endpoint.
package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/okian/fraudstream/internal/domain/model"
)

// Sentinel kinds for endpoint failures.
var (
	ErrInvoke    = errors.New("scoring endpoint invocation failed")
	ErrThrottled = errors.New("scoring rate limit exceeded")
)

// Endpoint invokes a scoring service and returns the raw response body.
type Endpoint interface {
	Invoke(ctx context.Context, req model.ScoringRequest) ([]byte, error)
}

// EndpointFunc adapts a function to Endpoint.
type EndpointFunc func(ctx context.Context, req model.ScoringRequest) ([]byte, error)

// Invoke calls f.
func (f EndpointFunc) Invoke(ctx context.Context, req model.ScoringRequest) ([]byte, error) {
	return f(ctx, req)
}

type timeoutEndpoint struct {
	next    Endpoint
	timeout time.Duration
}

// NewTimeout bounds every call to next by d. A non-positive d returns next.
func NewTimeout(next Endpoint, d time.Duration) Endpoint {
	if d <= 0 {
		return next
	}
	return &timeoutEndpoint{next: next, timeout: d}
}

func (t *timeoutEndpoint) Invoke(ctx context.Context, req model.ScoringRequest) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Invoke(ctx, req)
}
