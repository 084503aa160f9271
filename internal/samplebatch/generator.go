package samplebatch

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

const randomFloatDivisor = 1000000

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// round2 keeps generated values short on the wire.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// generateTransaction builds a 30 feature vector: elapsed time, 28
// components and the amount last. Fraudulent transactions carry a large amount.
func generateTransaction(seq int, fraudulent bool) Transaction {
	details := make([]float64, featureCount)
	details[0] = float64(seq * secondsPerStep)
	for i := 1; i <= pcaFeatures; i++ {
		details[i] = round2((getRandomFloat()*2 - 1) * pcaSpread)
	}
	amount := getRandomFloat() * regularAmountMax
	if fraudulent {
		amount = fraudAmountMin + getRandomFloat()*fraudAmountRange
	}
	details[featureCount-1] = round2(amount)
	return Transaction{TransactionDetails: details}
}

// generateBatch builds one transform event with unique record ids.
func generateBatch(config *Config, batch int) (events.KinesisFirehoseEvent, error) {
	ev := events.KinesisFirehoseEvent{
		InvocationID: uuid.NewString(),
		Records:      make([]events.KinesisFirehoseEventRecord, 0, config.NumRecords),
	}
	for i := 0; i < config.NumRecords; i++ {
		tx := generateTransaction(batch*config.NumRecords+i, getRandomFloat() < config.FraudRatio)
		data, err := json.Marshal(tx)
		if err != nil {
			return events.KinesisFirehoseEvent{}, fmt.Errorf("failed to marshal record %d: %w", i, err)
		}
		ev.Records = append(ev.Records, events.KinesisFirehoseEventRecord{
			RecordID: uuid.NewString(),
			Data:     data,
		})
	}
	return ev, nil
}
