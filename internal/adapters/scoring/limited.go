package scoring

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/fraudstream/internal/domain/model"
	"github.com/okian/fraudstream/pkg/metrics"
)

// Limited throttles calls to the wrapped endpoint. A call that would wait
// longer than maxWait for a token fails fast with ErrThrottled.
type Limited struct {
	next    Endpoint
	limiter *rate.Limiter
	maxWait time.Duration
}

// NewLimited wraps next with a token bucket of rps tokens per second.
// A non-positive rps returns next unchanged.
func NewLimited(next Endpoint, rps float64, burst int, maxWait time.Duration) Endpoint {
	if rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		maxWait: maxWait,
	}
}

// Invoke implements Endpoint.
func (l *Limited) Invoke(ctx context.Context, req model.ScoringRequest) ([]byte, error) {
	r := l.limiter.Reserve()
	if !r.OK() {
		return nil, ErrThrottled
	}
	delay := r.Delay()
	if delay > l.maxWait {
		r.Cancel()
		return nil, fmt.Errorf("%w: wait %s exceeds %s", ErrThrottled, delay, l.maxWait)
	}
	if delay > 0 {
		metrics.RecordThrottleWait(float64(delay.Milliseconds()))
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			r.Cancel()
			return nil, fmt.Errorf("%w: %w", ErrThrottled, ctx.Err())
		case <-t.C:
		}
	}
	return l.next.Invoke(ctx, req)
}
