package samplebatch

import "os"

// ShowHelp prints usage information for the sample batch tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Fraudstream Sample Batch Tool
=============================

Sends generated credit card transactions to a running transformer and
checks that every reply keeps record order and ids.

Usage:
  go run ./cmd/sample-batch [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -batches int
        Number of batches to submit (default 5)
  -records int
        Records per batch (default 100)
  -fraud-ratio float
        Share of records with an outsized amount (default 0.05)
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Log every row flagged as fraud
  -help
        Show this help message

Examples:
  # Against a local server using the simulated scorer
  FRAUDSTREAM_MODE=http go run ./cmd &
  go run ./cmd/sample-batch

  # Larger run with more fraud
  go run ./cmd/sample-batch -batches 20 -records 500 -fraud-ratio 0.2
`)
}
