package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Fixed content negotiation for scoring calls.
const (
	ContentTypeCSV  = "text/csv"
	AcceptTypeJSON  = "application/json"
	LabelFraudulent = 1
)

// ErrMalformedResponse wraps any scoring body that cannot be decoded.
var ErrMalformedResponse = errors.New("malformed scoring response")

// ScoringRequest is one call to the scoring endpoint.
type ScoringRequest struct {
	EndpointName string
	ContentType  string
	Accept       string
	Body         []byte
}

// NewScoringRequest builds a text/csv -> application/json request for row.
func NewScoringRequest(endpoint string, row []byte) ScoringRequest {
	return ScoringRequest{
		EndpointName: endpoint,
		ContentType:  ContentTypeCSV,
		Accept:       AcceptTypeJSON,
		Body:         row,
	}
}

// Prediction is a binary-classification verdict.
type Prediction struct {
	PredictedLabel int     `json:"predicted_label"`
	Score          float64 `json:"score"`
}

// IsFraud reports a positive classification.
func (p Prediction) IsFraud() bool { return p.PredictedLabel == LabelFraudulent }

// UnmarshalJSON accepts predicted_label or predictedLabel, as integer or
// integral float.
func (p *Prediction) UnmarshalJSON(b []byte) error {
	var raw struct {
		Snake *float64 `json:"predicted_label"`
		Camel *float64 `json:"predictedLabel"`
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	label := raw.Snake
	if label == nil {
		label = raw.Camel
	}
	if label == nil {
		return errors.New("prediction has no predicted_label")
	}
	if *label != math.Trunc(*label) {
		return fmt.Errorf("predicted_label %v is not an integer", *label)
	}
	if raw.Score == nil {
		return errors.New("prediction has no score")
	}
	p.PredictedLabel = int(*label)
	p.Score = *raw.Score
	return nil
}

// ScoringResponse is the decoded endpoint body.
type ScoringResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// First returns the first prediction, if any.
func (r ScoringResponse) First() (Prediction, bool) {
	if len(r.Predictions) == 0 {
		return Prediction{}, false
	}
	return r.Predictions[0], true
}

// DecodeScoringResponse parses an endpoint body.
func DecodeScoringResponse(body []byte) (ScoringResponse, error) {
	var resp ScoringResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ScoringResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return resp, nil
}
