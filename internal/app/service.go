// Package service wires the scoring endpoint, alert channels and record
// transformer into the batch handler used by the Lambda and HTTP entrypoints.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/okian/fraudstream/internal/adapters/alert"
	"github.com/okian/fraudstream/internal/adapters/firehose"
	"github.com/okian/fraudstream/internal/adapters/scoring"
	"github.com/okian/fraudstream/internal/config"
	"github.com/okian/fraudstream/internal/domain/dedupe"
	"github.com/okian/fraudstream/internal/domain/location"
	"github.com/okian/fraudstream/internal/domain/model"
	"github.com/okian/fraudstream/internal/domain/transform"
	"github.com/okian/fraudstream/pkg/logger"
)

// ErrNotStarted is returned by batch calls before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the transform dependencies for both entrypoints.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components
	endpoint   scoring.Endpoint
	publisher  alert.Publisher
	dispatcher *alert.Dispatcher
	processor  *transform.Processor

	// State
	started bool

	batches atomic.Int64
	records atomic.Int64
	ok      atomic.Int64
	failed  atomic.Int64
	fraud   atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the process configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithEndpoint overrides the scoring endpoint built from config.
func WithEndpoint(e scoring.Endpoint) Option {
	return func(s *Service) { s.endpoint = e }
}

// WithPublisher overrides the alert publisher built from config.
func WithPublisher(p alert.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{cfg: config.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the clients. AWS configuration is only resolved when a
// SageMaker endpoint or SNS delivery is needed.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	cfg := s.cfg

	var awsCfg *aws.Config
	awsConfig := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.AWSRegion))
		}
		c, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return aws.Config{}, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	backend := cfg.ScorerBackend()
	if s.endpoint == nil {
		switch backend {
		case config.ScorerSageMaker:
			c, err := awsConfig()
			if err != nil {
				return err
			}
			s.endpoint = scoring.NewSageMakerEndpointFromConfig(c, cfg.AWSEndpoint)
		case config.ScorerHTTP:
			s.endpoint = scoring.NewHTTPEndpoint(cfg.EndpointURL, scoring.WithTimeout(cfg.ScoringTimeout()))
		default:
			lo, hi := cfg.SimulatedLatency()
			s.endpoint = scoring.NewSimulatedEndpoint(
				scoring.WithLatencyRange(lo, hi),
				scoring.WithAmountThreshold(cfg.SimulatedAmountThreshold),
				scoring.WithSeed(cfg.LocationSeed),
			)
		}
	}
	endpoint := scoring.NewTimeout(s.endpoint, cfg.ScoringTimeout())
	endpoint = scoring.NewLimited(endpoint, cfg.ScoringRateLimit, cfg.ScoringBurst, cfg.MaxThrottleWait())

	topics := cfg.FraudTopicARN != "" || cfg.FailureTopicARN != ""
	if s.publisher == nil {
		if topics && cfg.AlertSink == config.AlertSinkSNS {
			c, err := awsConfig()
			if err != nil {
				return err
			}
			s.publisher = alert.NewSNSPublisherFromConfig(c, cfg.AWSEndpoint)
		} else {
			s.publisher = alert.NewLogPublisher(s.logger.Named("alert"))
		}
	}

	s.dispatcher = alert.NewDispatcher(s.publisher,
		alert.WithFraudTopic(cfg.FraudTopicARN),
		alert.WithFailureTopic(cfg.FailureTopicARN),
		alert.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.AlertDedupeSize))),
		alert.WithLogger(s.logger.Named("alert")),
	)

	transformer := transform.NewTransformer(endpoint,
		transform.WithEndpointName(cfg.EndpointName),
		transform.WithAlerter(s.dispatcher),
		transform.WithPicker(location.NewPicker(location.WithSeed(cfg.LocationSeed))),
		transform.WithLogger(s.logger.Named("transform")),
	)
	s.processor = transform.NewProcessor(transformer,
		transform.WithProcessorAlerter(s.dispatcher),
		transform.WithProcessorLogger(s.logger.Named("batch")),
	)

	s.started = true
	s.logger.Info(ctx, "fraudstream service started",
		logger.String("scorer", backend),
		logger.String("endpoint", cfg.EndpointName),
		logger.Bool("fraud_alerts", cfg.FraudTopicARN != ""),
		logger.Bool("failure_alerts", cfg.FailureTopicARN != ""),
		logger.Float64("rate_limit", cfg.ScoringRateLimit),
	)
	return nil
}

// Stop marks the service stopped. In-flight batches finish normally.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "fraudstream service stopped")
}

// HandleFirehose is the Lambda handler for delivery-stream transform events.
func (s *Service) HandleFirehose(ctx context.Context, ev firehose.Event) (events.KinesisFirehoseResponse, error) {
	inv := firehose.Invocation(ctx, ev, s.cfg.FunctionName)
	out, err := s.Transform(ctx, inv, firehose.Records(ev))
	if err != nil {
		return events.KinesisFirehoseResponse{}, err
	}
	return firehose.Response(out), nil
}

// Invocation identifies an HTTP-mode batch.
func (s *Service) Invocation(ctx context.Context, ev firehose.Event) model.Invocation {
	return firehose.Invocation(ctx, ev, s.cfg.FunctionName)
}

// Transform runs one batch. The only error is ErrNotStarted; record-level
// failures are reported in the outputs.
func (s *Service) Transform(ctx context.Context, inv model.Invocation, records []model.InputRecord) ([]model.OutputRecord, error) {
	s.mu.RLock()
	processor, started := s.processor, s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	out := processor.ProcessBatch(ctx, inv, records)
	s.count(out)
	return out, nil
}

func (s *Service) count(out []model.OutputRecord) {
	s.batches.Add(1)
	s.records.Add(int64(len(out)))
	for _, o := range out {
		if o.Status != model.StatusOK {
			s.failed.Add(1)
			continue
		}
		s.ok.Add(1)
		if row, err := model.ParseOutputRow(o.Data); err == nil && row.Fraud == model.LabelFraudulent {
			s.fraud.Add(1)
		}
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":       s.started,
		"scorer":        s.cfg.ScorerBackend(),
		"endpoint":      s.cfg.EndpointName,
		"fraudAlerts":   s.cfg.FraudTopicARN != "",
		"failureAlerts": s.cfg.FailureTopicARN != "",
		"batches":       s.batches.Load(),
		"records":       s.records.Load(),
		"recordsOk":     s.ok.Load(),
		"recordsFailed": s.failed.Load(),
		"fraudDetected": s.fraud.Load(),
	}
}
