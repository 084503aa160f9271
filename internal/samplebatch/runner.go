package samplebatch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/fraudstream/pkg/logger"
)

// Run submits the configured batches and verifies each reply.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting fraudstream sample run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("batches", config.NumBatches),
		logger.Int("records", config.NumRecords),
		logger.Float64("fraudRatio", config.FraudRatio),
		logger.Duration("timeout", config.Timeout))

	client := newHTTPClient(config.Timeout)
	if err := checkServiceHealth(ctx, client, config.BaseURL); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	for b := 0; b < config.NumBatches; b++ {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("run cancelled: %w", err)
		}

		ev, err := generateBatch(config, b)
		if err != nil {
			return stats, fmt.Errorf("batch generation failed: %w", err)
		}
		reply, err := submitBatch(ctx, client, config.BaseURL, ev)
		if err != nil {
			return stats, fmt.Errorf("batch %d submission failed: %w", b, err)
		}
		tally, err := verifyBatch(ev, reply)
		if err != nil {
			return stats, fmt.Errorf("batch %d: %w", b, err)
		}

		stats.Batches++
		stats.Records += len(ev.Records)
		stats.OK += tally.ok
		stats.Failed += tally.failed
		stats.Fraud += tally.fraud

		log.Info(ctx, "batch verified",
			logger.String("invocationId", ev.InvocationID),
			logger.Int("ok", tally.ok),
			logger.Int("failed", tally.failed),
			logger.Int("fraud", tally.fraud))
		if config.Verbose {
			for _, row := range tally.fraudRows {
				log.Warn(ctx, "fraud row", logger.String("row", strings.TrimSpace(row)))
			}
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var fraudRate, recordsPerSecond float64
	if stats.OK > 0 {
		fraudRate = float64(stats.Fraud) / float64(stats.OK) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		recordsPerSecond = float64(stats.Records) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("batches", stats.Batches),
		logger.Int("records", stats.Records),
		logger.Int("ok", stats.OK),
		logger.Int("failed", stats.Failed),
		logger.Int("fraud", stats.Fraud),
		logger.Float64("fraudRatePercent", fraudRate),
		logger.Float64("recordsPerSecond", recordsPerSecond),
		logger.Duration("duration", stats.Duration))
}
