package alert

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/fraudstream/internal/domain/dedupe"
	"github.com/okian/fraudstream/internal/domain/model"
	"github.com/okian/fraudstream/pkg/logger"
	"github.com/okian/fraudstream/pkg/metrics"
)

// Fixed alert texts.
const (
	FraudSubject         = "FRAUD ALERT!!!"
	FraudMessagePrefix   = "FRAUD ALERT DETECTED: "
	FailureSubjectPrefix = "Lambda Execution Failure: "
)

// Dispatcher routes fraud and failure alerts to their topics. An empty topic
// disables that channel.
type Dispatcher struct {
	publisher    Publisher
	fraudTopic   string
	failureTopic string
	seen         dedupe.Deduper
	log          logger.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithFraudTopic sets the fraud channel.
func WithFraudTopic(topic string) Option {
	return func(d *Dispatcher) { d.fraudTopic = topic }
}

// WithFailureTopic sets the failure channel.
func WithFailureTopic(topic string) Option {
	return func(d *Dispatcher) { d.failureTopic = topic }
}

// WithDeduper suppresses repeated fraud alerts for the same record id.
func WithDeduper(seen dedupe.Deduper) Option {
	return func(d *Dispatcher) {
		if seen != nil {
			d.seen = seen
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(log logger.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDispatcher creates a dispatcher publishing through p.
func NewDispatcher(p Publisher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		publisher: p,
		seen:      dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0)),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fraud publishes a fraud alert for a transformed row.
func (d *Dispatcher) Fraud(ctx context.Context, recordID string, row []byte) error {
	if d.fraudTopic == "" {
		metrics.RecordAlert(metrics.ChannelFraud, metrics.OutcomeSkipped)
		return nil
	}
	if recordID != "" && d.seen.SeenAndRecord(ctx, recordID) {
		metrics.RecordAlert(metrics.ChannelFraud, metrics.OutcomeDuplicate)
		d.log.Debug(ctx, "fraud alert suppressed", logger.String("record_id", recordID))
		return nil
	}
	if err := d.publisher.Publish(ctx, d.fraudTopic, FraudMessagePrefix+string(row), FraudSubject); err != nil {
		if recordID != "" {
			d.seen.Unrecord(ctx, recordID)
		}
		metrics.RecordAlert(metrics.ChannelFraud, metrics.OutcomePublishErr)
		d.log.Error(ctx, "fraud alert not delivered",
			logger.String("record_id", recordID),
			logger.Error(err),
		)
		return fmt.Errorf("fraud alert: %w", err)
	}
	metrics.RecordAlert(metrics.ChannelFraud, metrics.OutcomeSent)
	return nil
}

// Failure publishes a failure alert carrying the error text and its stack,
// when the error has one.
func (d *Dispatcher) Failure(ctx context.Context, inv model.Invocation, cause error) error {
	if d.failureTopic == "" {
		metrics.RecordAlert(metrics.ChannelFailure, metrics.OutcomeSkipped)
		return nil
	}
	if err := d.publisher.Publish(ctx, d.failureTopic, FailureMessage(cause), FailureSubjectPrefix+inv.ARN); err != nil {
		metrics.RecordAlert(metrics.ChannelFailure, metrics.OutcomePublishErr)
		d.log.Error(ctx, "failure alert not delivered",
			logger.String("invocation_id", inv.ID),
			logger.Error(err),
		)
		return fmt.Errorf("failure alert: %w", err)
	}
	metrics.RecordAlert(metrics.ChannelFailure, metrics.OutcomeSent)
	return nil
}

// FailureMessage renders "<message>\n<stack>". Errors without a recorded
// stack render as their message alone.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	detail := fmt.Sprintf("%+v", err)
	if detail == msg {
		return msg
	}
	if rest, ok := strings.CutPrefix(detail, msg); ok {
		return msg + "\n" + strings.TrimLeft(rest, "\n")
	}
	return msg + "\n" + detail
}
