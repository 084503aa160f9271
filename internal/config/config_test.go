package config_test

import (
	"testing"
	"time"

	"github.com/okian/fraudstream/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Mode, convey.ShouldEqual, config.ModeAuto)
			convey.So(cfg.Scorer, convey.ShouldEqual, config.ScorerAuto)
			convey.So(cfg.AlertSink, convey.ShouldEqual, config.AlertSinkSNS)
			convey.So(cfg.AlertDedupeSize, convey.ShouldEqual, 0)
			convey.So(cfg.ScoringTimeout(), convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.MaxThrottleWait(), convey.ShouldEqual, time.Second)
			convey.So(config.Validate(cfg), convey.ShouldBeNil)
		})

		convey.Convey("Then the simulated latency bounds are durations", func() {
			lo, hi := cfg.SimulatedLatency()
			convey.So(lo, convey.ShouldEqual, 20*time.Millisecond)
			convey.So(hi, convey.ShouldEqual, 60*time.Millisecond)
		})
	})
}

func TestConfig_ScorerBackend(t *testing.T) {
	convey.Convey("Given the auto scorer", t, func() {
		cfg := config.New()

		convey.Convey("Then it is simulated with no endpoint configured", func() {
			convey.So(cfg.ScorerBackend(), convey.ShouldEqual, config.ScorerSimulated)
		})

		convey.Convey("Then an endpoint name selects SageMaker", func() {
			cfg.EndpointName = "cc-fraud"
			convey.So(cfg.ScorerBackend(), convey.ShouldEqual, config.ScorerSageMaker)
		})

		convey.Convey("Then an endpoint URL selects HTTP", func() {
			cfg.EndpointURL = "http://localhost:8501/score"
			convey.So(cfg.ScorerBackend(), convey.ShouldEqual, config.ScorerHTTP)
		})

		convey.Convey("Then an explicit scorer wins", func() {
			cfg.EndpointName = "cc-fraud"
			cfg.Scorer = config.ScorerSimulated
			convey.So(cfg.ScorerBackend(), convey.ShouldEqual, config.ScorerSimulated)
		})
	})
}
