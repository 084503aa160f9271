package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/fraudstream/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ScoringTimeoutMS, convey.ShouldEqual, 0)
				convey.So(cfg.AlertDedupeSize, convey.ShouldEqual, 0)
				convey.So(cfg.FraudTopicARN, convey.ShouldBeEmpty)
				convey.So(cfg.FailureTopicARN, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FRAUDSTREAM_ADDR", ":8080")
			_ = os.Setenv("FRAUDSTREAM_SCORER", "http")
			_ = os.Setenv("FRAUDSTREAM_ENDPOINT_URL", "http://scorer:8501/invocations")
			_ = os.Setenv("FRAUDSTREAM_SCORING_RATE_LIMIT", "25.5")
			_ = os.Setenv("FRAUDSTREAM_ALERT_DEDUPE_SIZE", "500")
			_ = os.Setenv("FRAUDSTREAM_SCORING_TIMEOUT_MS", "250")
			_ = os.Setenv("FRAUDSTREAM_LOCATION_SEED", "7")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ScorerBackend(), convey.ShouldEqual, config.ScorerHTTP)
				convey.So(cfg.EndpointURL, convey.ShouldEqual, "http://scorer:8501/invocations")
				convey.So(cfg.ScoringRateLimit, convey.ShouldEqual, 25.5)
				convey.So(cfg.AlertDedupeSize, convey.ShouldEqual, 500)
				convey.So(cfg.ScoringTimeoutMS, convey.ShouldEqual, 250)
				convey.So(cfg.LocationSeed, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When loading config with legacy deployment variables", func() {
			_ = os.Setenv("SageMakerEndpoint", "cc-fraud-endpoint")
			_ = os.Setenv("SNS", "arn:aws:sns:us-east-1:1:fraud")
			_ = os.Setenv("SNS_FAILURE_TOPIC_ARN", "arn:aws:sns:us-east-1:1:failure")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then they fill the endpoint and alert channels", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.EndpointName, convey.ShouldEqual, "cc-fraud-endpoint")
				convey.So(cfg.FraudTopicARN, convey.ShouldEqual, "arn:aws:sns:us-east-1:1:fraud")
				convey.So(cfg.FailureTopicARN, convey.ShouldEqual, "arn:aws:sns:us-east-1:1:failure")
				convey.So(cfg.ScorerBackend(), convey.ShouldEqual, config.ScorerSageMaker)
			})

			convey.Convey("And prefixed variables take precedence", func() {
				_ = os.Setenv("FRAUDSTREAM_ENDPOINT_NAME", "override")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.EndpointName, convey.ShouldEqual, "override")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
mode: http
scorer: simulated
simulated_latency_min_ms: 0
simulated_latency_max_ms: 5
fraud_topic_arn: "arn:aws:sns:us-east-1:1:fraud"
alert_sink: log
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FRAUDSTREAM_CONFIG", tmpFile)
			_ = os.Setenv("FRAUDSTREAM_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env overrides the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Mode, convey.ShouldEqual, config.ModeHTTP)
				convey.So(cfg.SimulatedLatencyMaxMS, convey.ShouldEqual, 5)
				convey.So(cfg.FraudTopicARN, convey.ShouldEqual, "arn:aws:sns:us-east-1:1:fraud")
				convey.So(cfg.AlertSink, convey.ShouldEqual, config.AlertSinkLog)
				convey.So(cfg.ScoringTimeoutMS, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FRAUDSTREAM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("FRAUDSTREAM_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("FRAUDSTREAM_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the sagemaker scorer has no endpoint name", func() {
			_ = os.Setenv("FRAUDSTREAM_SCORER", "sagemaker")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation names the missing key", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "endpoint_name is required")
			})
		})

		convey.Convey("When an enum value is unknown", func() {
			_ = os.Setenv("FRAUDSTREAM_MODE", "batch")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation lists the allowed values", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "mode must be one of [auto lambda http]")
			})
		})

		convey.Convey("When the simulated latency range is inverted", func() {
			_ = os.Setenv("FRAUDSTREAM_SIMULATED_LATENCY_MIN_MS", "100")
			_ = os.Setenv("FRAUDSTREAM_SIMULATED_LATENCY_MAX_MS", "10")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "simulated_latency_max_ms")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("FRAUDSTREAM_SCORING_TIMEOUT_MS", "soon")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"FRAUDSTREAM_CONFIG",
		"FRAUDSTREAM_ADDR",
		"FRAUDSTREAM_MODE",
		"FRAUDSTREAM_SCORER",
		"FRAUDSTREAM_ENDPOINT_NAME",
		"FRAUDSTREAM_ENDPOINT_URL",
		"FRAUDSTREAM_SCORING_RATE_LIMIT",
		"FRAUDSTREAM_SCORING_TIMEOUT_MS",
		"FRAUDSTREAM_ALERT_DEDUPE_SIZE",
		"FRAUDSTREAM_LOCATION_SEED",
		"FRAUDSTREAM_SIMULATED_LATENCY_MIN_MS",
		"FRAUDSTREAM_SIMULATED_LATENCY_MAX_MS",
		"SageMakerEndpoint",
		"SNS",
		"SNS_FAILURE_TOPIC_ARN",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "fraudstream-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
