package transform

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/okian/fraudstream/internal/domain/model"
	"github.com/okian/fraudstream/pkg/logger"
	"github.com/okian/fraudstream/pkg/metrics"
)

// RecordTransformer is the per-record step driven by a Processor.
type RecordTransformer interface {
	Transform(ctx context.Context, inv model.Invocation, rec model.InputRecord) model.Result
}

// Processor drives a batch through a RecordTransformer one record at a
// time, in order. A record whose step panics still yields a
// ProcessingFailed output and a failure alert.
type Processor struct {
	step    RecordTransformer
	alerter Alerter
	log     logger.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithProcessorAlerter sets the alert sink used for recovered failures.
func WithProcessorAlerter(a Alerter) ProcessorOption {
	return func(p *Processor) {
		if a != nil {
			p.alerter = a
		}
	}
}

// WithProcessorLogger sets the logger.
func WithProcessorLogger(l logger.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}

// NewProcessor creates a batch driver around step.
func NewProcessor(step RecordTransformer, opts ...ProcessorOption) *Processor {
	p := &Processor{
		step:    step,
		alerter: nopAlerter{},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessBatch returns exactly one output per input, in input order, with
// matching ids. It never fails as a whole.
func (p *Processor) ProcessBatch(ctx context.Context, inv model.Invocation, records []model.InputRecord) []model.OutputRecord {
	start := time.Now()
	out := make([]model.OutputRecord, 0, len(records))
	for _, rec := range records {
		res := p.safeTransform(ctx, inv, rec)
		metrics.RecordRecord(string(res.Status))
		out = append(out, res.Output(rec.ID))
	}
	metrics.RecordBatch(len(records), float64(time.Since(start).Microseconds())/1000)
	p.log.Debug(ctx, "batch processed",
		logger.String("invocation_id", inv.ID),
		logger.Int("records", len(records)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return out
}

func (p *Processor) safeTransform(ctx context.Context, inv model.Invocation, rec model.InputRecord) (res model.Result) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var err error
		if e, ok := r.(error); ok {
			err = pkgerrors.WithStack(e)
		} else {
			err = pkgerrors.New(fmt.Sprint(r))
		}
		metrics.RecordRecovered()
		metrics.RecordScoringError(KindPanic)
		p.log.Error(ctx, "record step panicked",
			logger.String("record_id", rec.ID),
			logger.Error(err),
		)
		_ = p.alerter.Failure(ctx, inv, err)
		res = model.Failed(err)
	}()
	return p.step.Transform(ctx, inv, rec)
}
