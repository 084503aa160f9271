// Package model contains domain models passed between layers.
package model

import "errors"

// ErrUndecodable marks a record whose transit encoding could not be decoded.
var ErrUndecodable = errors.New("record data is not valid base64")

// Status is the per-record transform result. Values match the delivery
// stream's wire vocabulary.
type Status string

const (
	StatusOK               Status = "Ok"
	StatusProcessingFailed Status = "ProcessingFailed"
)

// InputRecord is one entry of a transform batch. Data is decoded from its
// base64 transit form; when decoding failed, Err is set and Data is empty so
// the record fails on its own.
type InputRecord struct {
	ID   string
	Data []byte
	Err  error
}

// OutputRecord is the transformed counterpart of an InputRecord. ID always
// equals the input's ID.
type OutputRecord struct {
	ID     string
	Status Status
	Data   []byte
}

// Result is the outcome of transforming one payload. Err is nil exactly when
// Status is StatusOK; on failure Data holds the error text.
type Result struct {
	Status Status
	Data   []byte
	Err    error
}

// OK builds a successful result.
func OK(data []byte) Result {
	return Result{Status: StatusOK, Data: data}
}

// Failed builds a failed result carrying err's message as the payload.
func Failed(err error) Result {
	return Result{Status: StatusProcessingFailed, Data: []byte(err.Error()), Err: err}
}

// Output attaches a record id to the result.
func (r Result) Output(id string) OutputRecord {
	return OutputRecord{ID: id, Status: r.Status, Data: r.Data}
}

// Invocation identifies the caller of a batch. ARN is used as the
// identifying name in failure alerts.
type Invocation struct {
	ID  string
	ARN string
}
