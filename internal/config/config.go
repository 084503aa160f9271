// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers file and environment on top of the defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import "time"

// Run modes.
const (
	ModeAuto   = "auto"
	ModeLambda = "lambda"
	ModeHTTP   = "http"
)

// Scoring backends.
const (
	ScorerAuto      = "auto"
	ScorerSageMaker = "sagemaker"
	ScorerHTTP      = "http"
	ScorerSimulated = "simulated"
)

// Alert sinks.
const (
	AlertSinkSNS = "sns"
	AlertSinkLog = "log"
)

// Config contains process configuration. It is read once at start and never
// mutated afterwards.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Mode selects the entrypoint: lambda, http, or auto-detect.
	Mode string `koanf:"mode" validate:"oneof=auto lambda http"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// FunctionName names the invoker in failure alerts outside Lambda.
	FunctionName string `koanf:"function_name" validate:"required"`

	// Scorer selects the scoring backend.
	Scorer string `koanf:"scorer" validate:"oneof=auto sagemaker http simulated"`

	// EndpointName is the SageMaker endpoint identifier.
	EndpointName string `koanf:"endpoint_name" validate:"required_if=Scorer sagemaker"`

	// EndpointURL is the HTTP scoring service URL.
	EndpointURL string `koanf:"endpoint_url" validate:"required_if=Scorer http,omitempty,url"`

	// ScoringTimeoutMS bounds one scoring call; 0 leaves it to the transport.
	ScoringTimeoutMS int `koanf:"scoring_timeout_ms" validate:"min=0"`

	// ScoringRateLimit caps scoring calls per second; 0 disables the limiter.
	ScoringRateLimit float64 `koanf:"scoring_rate_limit" validate:"min=0"`
	ScoringBurst     int     `koanf:"scoring_burst" validate:"min=1"`

	// ScoringMaxThrottleWaitMS fails a call that would wait longer for a token.
	ScoringMaxThrottleWaitMS int `koanf:"scoring_max_throttle_wait_ms" validate:"min=0"`

	// FraudTopicARN and FailureTopicARN are the alert channels; empty disables.
	FraudTopicARN   string `koanf:"fraud_topic_arn"`
	FailureTopicARN string `koanf:"failure_topic_arn"`

	// AlertSink selects SNS delivery or log-only alerts.
	AlertSink string `koanf:"alert_sink" validate:"oneof=sns log"`

	// AlertDedupeSize bounds the fraud-alert seen-set; 0 disables it.
	AlertDedupeSize int `koanf:"alert_dedupe_size" validate:"min=0"`

	// AWSRegion and AWSEndpoint override the SDK defaults (e.g. LocalStack).
	AWSRegion   string `koanf:"aws_region"`
	AWSEndpoint string `koanf:"aws_endpoint" validate:"omitempty,url"`

	// LocationSeed seeds the synthetic location draw; 0 uses the clock.
	LocationSeed int64 `koanf:"location_seed"`

	// Simulated scorer parameters.
	SimulatedLatencyMinMS    int     `koanf:"simulated_latency_min_ms" validate:"min=0"`
	SimulatedLatencyMaxMS    int     `koanf:"simulated_latency_max_ms" validate:"gtefield=SimulatedLatencyMinMS"`
	SimulatedAmountThreshold float64 `koanf:"simulated_amount_threshold" validate:"gt=0"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Mode:                     ModeAuto,
		Addr:                     ":9080",
		FunctionName:             "fraudstream",
		Scorer:                   ScorerAuto,
		ScoringTimeoutMS:         0,
		ScoringBurst:             1,
		ScoringMaxThrottleWaitMS: 1000,
		AlertSink:                AlertSinkSNS,
		AlertDedupeSize:          0,
		SimulatedLatencyMinMS:    20,
		SimulatedLatencyMaxMS:    60,
		SimulatedAmountThreshold: 1000,
	}
}

// ScorerBackend resolves ScorerAuto to a concrete backend.
func (c *Config) ScorerBackend() string {
	if c.Scorer != ScorerAuto {
		return c.Scorer
	}
	switch {
	case c.EndpointName != "":
		return ScorerSageMaker
	case c.EndpointURL != "":
		return ScorerHTTP
	default:
		return ScorerSimulated
	}
}

// ScoringTimeout returns ScoringTimeoutMS as a duration.
func (c *Config) ScoringTimeout() time.Duration {
	return time.Duration(c.ScoringTimeoutMS) * time.Millisecond
}

// MaxThrottleWait returns ScoringMaxThrottleWaitMS as a duration.
func (c *Config) MaxThrottleWait() time.Duration {
	return time.Duration(c.ScoringMaxThrottleWaitMS) * time.Millisecond
}

// SimulatedLatency returns the simulated scorer latency bounds.
func (c *Config) SimulatedLatency() (time.Duration, time.Duration) {
	return time.Duration(c.SimulatedLatencyMinMS) * time.Millisecond,
		time.Duration(c.SimulatedLatencyMaxMS) * time.Millisecond
}
