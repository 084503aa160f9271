package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/fraudstream/internal/domain/model"
)

// Default simulation constants.
const (
	defaultMinLatency      = 20 * time.Millisecond
	defaultMaxLatency      = 60 * time.Millisecond
	defaultRandomSeed      = 42
	defaultAmountThreshold = 1000.0
	fraudThreshold         = 0.5
	steepnessDivisor       = 10
)

// SimulatedOption configures a SimulatedEndpoint.
type SimulatedOption func(*SimulatedEndpoint)

// WithLatencyRange sets the simulated inference latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) SimulatedOption {
	return func(s *SimulatedEndpoint) {
		if minLatency >= 0 && maxLatency > minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// WithAmountThreshold sets the amount at which the score crosses 0.5.
func WithAmountThreshold(threshold float64) SimulatedOption {
	return func(s *SimulatedEndpoint) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithSeed seeds the latency generator. Zero keeps the default.
func WithSeed(seed int64) SimulatedOption {
	return func(s *SimulatedEndpoint) {
		if seed != 0 {
			s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible latency only
		}
	}
}

// SimulatedEndpoint scores rows locally. The last CSV column is treated as
// the transaction amount and mapped through a logistic curve centred on the
// configured threshold.
type SimulatedEndpoint struct {
	threshold  float64
	minLatency time.Duration
	maxLatency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedEndpoint creates a local endpoint for development and tests.
func NewSimulatedEndpoint(opts ...SimulatedOption) *SimulatedEndpoint {
	s := &SimulatedEndpoint{
		threshold:  defaultAmountThreshold,
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // reproducible latency only
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invoke implements Endpoint.
func (s *SimulatedEndpoint) Invoke(ctx context.Context, req model.ScoringRequest) ([]byte, error) {
	if req.ContentType != model.ContentTypeCSV {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrInvoke, req.ContentType)
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrInvoke, ctx.Err())
	case <-time.After(s.latency()):
	}

	amount, err := lastColumn(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvoke, err)
	}
	score := s.Score(amount)
	label := 0
	if score >= fraudThreshold {
		label = model.LabelFraudulent
	}
	return json.Marshal(model.ScoringResponse{
		Predictions: []model.Prediction{{PredictedLabel: label, Score: score}},
	})
}

// Score maps an amount onto (0,1).
func (s *SimulatedEndpoint) Score(amount float64) float64 {
	scale := s.threshold / steepnessDivisor
	return 1 / (1 + math.Exp(-(amount-s.threshold)/scale))
}

func (s *SimulatedEndpoint) latency() time.Duration {
	span := int64(s.maxLatency - s.minLatency)
	if span <= 0 {
		return s.minLatency
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minLatency + time.Duration(s.rng.Int63n(span))
}

func lastColumn(body []byte) (float64, error) {
	row := strings.TrimSpace(string(body))
	if row == "" {
		return 0, errors.New("empty row")
	}
	cols := strings.Split(row, ",")
	v, err := strconv.ParseFloat(cols[len(cols)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("amount column: %w", err)
	}
	return v, nil
}
