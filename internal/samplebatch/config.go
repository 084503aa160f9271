// Package samplebatch drives a running transformer with generated
// transaction batches and checks the transform contract on the replies.
package samplebatch

import "time"

// Config holds configuration for a sample run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumBatches int           // Number of batches to submit
	NumRecords int           // Records per batch
	FraudRatio float64       // Share of records with an outsized amount
	Timeout    time.Duration // HTTP request timeout
	Verbose    bool          // Log every fraud row
}

// Transaction is one generated record payload.
type Transaction struct {
	TransactionDetails []float64 `json:"transactionDetails"`
}

// Stats holds run statistics.
type Stats struct {
	Batches   int
	Records   int
	OK        int
	Failed    int
	Fraud     int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// transformReply mirrors the transform response body.
type transformReply struct {
	Records []replyRecord `json:"records"`
}

type replyRecord struct {
	RecordID string `json:"recordId"`
	Result   string `json:"result"`
	Data     []byte `json:"data"`
}
