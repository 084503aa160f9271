// Package transform scores and annotates delivery-stream records.
package transform

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/okian/fraudstream/internal/domain/features"
	"github.com/okian/fraudstream/internal/domain/location"
	"github.com/okian/fraudstream/internal/domain/model"
	"github.com/okian/fraudstream/pkg/logger"
	"github.com/okian/fraudstream/pkg/metrics"
)

// ErrNoPredictions is returned when the endpoint answers with an empty
// prediction list.
var ErrNoPredictions = errors.New("No predictions were returned") //nolint:staticcheck // wire text

// Scoring error kinds.
const (
	KindParse         = "parse"
	KindEndpoint      = "endpoint"
	KindMalformed     = "malformed"
	KindNoPredictions = "no_predictions"
	KindCanceled      = "canceled"
	KindPanic         = "panic"
)

// Endpoint invokes the scoring service.
type Endpoint interface {
	Invoke(ctx context.Context, req model.ScoringRequest) ([]byte, error)
}

// Alerter delivers fraud and failure notifications.
type Alerter interface {
	Fraud(ctx context.Context, recordID string, row []byte) error
	Failure(ctx context.Context, inv model.Invocation, cause error) error
}

type nopAlerter struct{}

func (nopAlerter) Fraud(context.Context, string, []byte) error            { return nil }
func (nopAlerter) Failure(context.Context, model.Invocation, error) error { return nil }

// Transformer converts one record into its scored output row.
type Transformer struct {
	endpoint     Endpoint
	endpointName string
	alerter      Alerter
	picker       *location.Picker
	log          logger.Logger
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithEndpointName sets the scoring endpoint identifier.
func WithEndpointName(name string) Option {
	return func(t *Transformer) { t.endpointName = name }
}

// WithAlerter sets the alert sink.
func WithAlerter(a Alerter) Option {
	return func(t *Transformer) {
		if a != nil {
			t.alerter = a
		}
	}
}

// WithPicker sets the location source.
func WithPicker(p *location.Picker) Option {
	return func(t *Transformer) {
		if p != nil {
			t.picker = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Transformer) {
		if l != nil {
			t.log = l
		}
	}
}

// NewTransformer creates a transformer scoring through endpoint.
func NewTransformer(endpoint Endpoint, opts ...Option) *Transformer {
	t := &Transformer{
		endpoint: endpoint,
		alerter:  nopAlerter{},
		picker:   location.NewPicker(),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform scores rec and returns its result. It never panics on bad input
// and never returns an error: failures become a ProcessingFailed result
// carrying the error text, and are reported on the failure channel.
func (t *Transformer) Transform(ctx context.Context, inv model.Invocation, rec model.InputRecord) model.Result {
	row, err := t.transform(ctx, rec)
	if err != nil {
		t.reportFailure(ctx, inv, rec.ID, kindOf(err), err)
		return model.Failed(err)
	}
	return model.OK(row)
}

func (t *Transformer) transform(ctx context.Context, rec model.InputRecord) ([]byte, error) {
	if rec.Err != nil {
		return nil, pkgerrors.WithStack(rec.Err)
	}
	tx, err := features.Parse(rec.Data)
	if err != nil {
		return nil, pkgerrors.WithStack(err)
	}
	row := tx.Features.Row()

	start := time.Now()
	body, err := t.endpoint.Invoke(ctx, model.NewScoringRequest(t.endpointName, row))
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		return nil, pkgerrors.WithStack(err)
	}

	resp, err := model.DecodeScoringResponse(body)
	if err != nil {
		return nil, pkgerrors.WithStack(err)
	}
	pred, ok := resp.First()
	if !ok {
		return nil, pkgerrors.WithStack(ErrNoPredictions)
	}

	loc := t.picker.Resolve(tx.Location)
	out := features.Annotate(row, loc, pred.PredictedLabel, pred.Score)

	if pred.IsFraud() {
		metrics.RecordFraud()
		t.log.Warn(ctx, "FRAUD ALERT DETECTED: "+string(out),
			logger.String("record_id", rec.ID),
			logger.Float64("score", pred.Score),
		)
		// Delivery failures are logged by the alerter and never affect the record.
		_ = t.alerter.Fraud(ctx, rec.ID, out)
	}
	return out, nil
}

func (t *Transformer) reportFailure(ctx context.Context, inv model.Invocation, recordID, kind string, err error) {
	metrics.RecordScoringError(kind)
	t.log.Error(ctx, "record transform failed",
		logger.String("record_id", recordID),
		logger.String("kind", kind),
		logger.Error(err),
	)
	_ = t.alerter.Failure(ctx, inv, err)
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, model.ErrUndecodable),
		errors.Is(err, features.ErrInvalidPayload),
		errors.Is(err, features.ErrMissingFeatures),
		errors.Is(err, features.ErrInvalidFeatures):
		return KindParse
	case errors.Is(err, ErrNoPredictions):
		return KindNoPredictions
	case errors.Is(err, model.ErrMalformedResponse):
		return KindMalformed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindEndpoint
	}
}
