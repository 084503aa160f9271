package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/fraudstream/internal/samplebatch"
	"github.com/okian/fraudstream/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumBatches = 5
	defaultNumRecords = 100
	defaultFraudRatio = 0.05
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numBatches = flag.Int("batches", defaultNumBatches, "Number of batches to submit")
		numRecords = flag.Int("records", defaultNumRecords, "Records per batch")
		fraudRatio = flag.Float64("fraud-ratio", defaultFraudRatio, "Share of records with an outsized amount")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose    = flag.Bool("verbose", false, "Log every row flagged as fraud")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		samplebatch.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	config := &samplebatch.Config{
		BaseURL:    *baseURL,
		NumBatches: *numBatches,
		NumRecords: *numRecords,
		FraudRatio: *fraudRatio,
		Timeout:    *timeout,
		Verbose:    *verbose,
	}

	if _, err := samplebatch.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Sample run failed: " + err.Error() + "\n")
		cancel()
		stop()
		os.Exit(1)
	}
}
