package samplebatch

import (
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/okian/fraudstream/internal/domain/model"
)

// ErrContract is returned when a reply breaks the transform contract.
var ErrContract = errors.New("transform contract violated")

// batchTally counts outcomes within one reply.
type batchTally struct {
	ok, failed, fraud int
	fraudRows         []string
}

// verifyBatch checks that the reply mirrors the request one-for-one and in
// order, and that every Ok row carries a parseable verdict.
func verifyBatch(sent events.KinesisFirehoseEvent, reply transformReply) (batchTally, error) {
	var t batchTally
	if len(reply.Records) != len(sent.Records) {
		return t, fmt.Errorf("%w: sent %d records, got %d", ErrContract, len(sent.Records), len(reply.Records))
	}

	for i, rec := range reply.Records {
		if rec.RecordID != sent.Records[i].RecordID {
			return t, fmt.Errorf("%w: position %d: want id %s, got %s", ErrContract, i, sent.Records[i].RecordID, rec.RecordID)
		}
		switch rec.Result {
		case resultOK:
			row, err := model.ParseOutputRow(rec.Data)
			if err != nil {
				return t, fmt.Errorf("%w: record %s: %w", ErrContract, rec.RecordID, err)
			}
			if len(row.Features) != featureCount {
				return t, fmt.Errorf("%w: record %s: %d features, want %d", ErrContract, rec.RecordID, len(row.Features), featureCount)
			}
			t.ok++
			if row.Fraud == model.LabelFraudulent {
				t.fraud++
				t.fraudRows = append(t.fraudRows, string(rec.Data))
			}
		case resultFailed:
			t.failed++
		default:
			return t, fmt.Errorf("%w: record %s: unknown result %q", ErrContract, rec.RecordID, rec.Result)
		}
	}
	return t, nil
}
