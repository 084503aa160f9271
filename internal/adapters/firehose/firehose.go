// Package firehose converts between delivery-stream transform events and
// domain records.
package firehose

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	"github.com/okian/fraudstream/internal/domain/model"
)

// Event is the transform event as received on the wire. Record data stays
// base64 text here so one bad record cannot fail the decoding of the batch.
type Event struct {
	InvocationID           string        `json:"invocationId"`
	DeliveryStreamArn      string        `json:"deliveryStreamArn"`
	SourceKinesisStreamArn string        `json:"sourceKinesisStreamArn,omitempty"`
	Region                 string        `json:"region"`
	Records                []EventRecord `json:"records"`
}

// EventRecord is one record of an Event.
type EventRecord struct {
	RecordID                    string                       `json:"recordId"`
	ApproximateArrivalTimestamp events.MilliSecondsEpochTime `json:"approximateArrivalTimestamp"`
	Data                        string                       `json:"data"`
}

// Records extracts the batch in order. A record whose data is not valid
// base64 carries the decode error instead of data.
func Records(ev Event) []model.InputRecord {
	out := make([]model.InputRecord, len(ev.Records))
	for i, r := range ev.Records {
		out[i] = model.InputRecord{ID: r.RecordID}
		data, err := base64.StdEncoding.DecodeString(r.Data)
		if err != nil {
			out[i].Err = fmt.Errorf("%w: %w", model.ErrUndecodable, err)
			continue
		}
		out[i].Data = data
	}
	return out
}

// Response builds the transform response for outputs.
func Response(outputs []model.OutputRecord) events.KinesisFirehoseResponse {
	resp := events.KinesisFirehoseResponse{
		Records: make([]events.KinesisFirehoseResponseRecord, len(outputs)),
	}
	for i, o := range outputs {
		resp.Records[i] = events.KinesisFirehoseResponseRecord{
			RecordID: o.ID,
			Result:   result(o.Status),
			Data:     o.Data,
		}
	}
	return resp
}

func result(s model.Status) string {
	if s == model.StatusOK {
		return events.KinesisFirehoseTransformedStateOk
	}
	return events.KinesisFirehoseTransformedStateProcessingFailed
}

// Invocation identifies the caller of ev. Inside Lambda the invoked function
// ARN and request id are used; otherwise fallbackName names the invoker.
func Invocation(ctx context.Context, ev Event, fallbackName string) model.Invocation {
	inv := model.Invocation{ID: ev.InvocationID, ARN: fallbackName}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		if lc.InvokedFunctionArn != "" {
			inv.ARN = lc.InvokedFunctionArn
		}
		if inv.ID == "" {
			inv.ID = lc.AwsRequestID
		}
	}
	if inv.ARN == "" {
		inv.ARN = lambdacontext.FunctionName
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	return inv
}
