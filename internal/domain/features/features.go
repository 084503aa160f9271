// Package features extracts the model's positional feature vector from a
// transaction payload and renders it as a delimited scoring row.
package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/buger/jsonparser"
)

// Payload keys.
const (
	FieldTransactionDetails = "transactionDetails"
	FieldLocation           = "location"
)

// Sentinel kinds for payload problems.
var (
	ErrInvalidPayload  = errors.New("payload is not a JSON object")
	ErrMissingFeatures = errors.New("transactionDetails is missing")
	ErrInvalidFeatures = errors.New("transactionDetails is invalid")
)

// Vector is an ordered, non-empty list of numeric features.
type Vector []float64

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64
	Lon float64
}

// Transaction is what a payload yields: the features and, when the producer
// supplied one, a genuine location.
type Transaction struct {
	Features Vector
	Location *Location
}

// Parse decodes a payload and extracts its transactionDetails array.
// Elements may be JSON numbers or numeric strings.
func Parse(payload []byte) (Transaction, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return Transaction{}, ErrInvalidPayload
	}

	raw, typ, _, err := jsonparser.Get(trimmed, FieldTransactionDetails)
	if errors.Is(err, jsonparser.KeyPathNotFoundError) || typ == jsonparser.Null {
		return Transaction{}, ErrMissingFeatures
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrInvalidFeatures, err)
	}
	if typ != jsonparser.Array {
		return Transaction{}, fmt.Errorf("%w: expected an array, got %s", ErrInvalidFeatures, typ)
	}

	var (
		vec     Vector
		elemErr error
		idx     int
	)
	_, err = jsonparser.ArrayEach(raw, func(value []byte, dt jsonparser.ValueType, _ int, _ error) {
		defer func() { idx++ }()
		if elemErr != nil {
			return
		}
		v, perr := parseNumber(value, dt)
		if perr != nil {
			elemErr = fmt.Errorf("%w: element %d %v", ErrInvalidFeatures, idx, perr)
			return
		}
		vec = append(vec, v)
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrInvalidFeatures, err)
	}
	if elemErr != nil {
		return Transaction{}, elemErr
	}
	if len(vec) == 0 {
		return Transaction{}, fmt.Errorf("%w: empty array", ErrInvalidFeatures)
	}

	return Transaction{Features: vec, Location: parseLocation(trimmed)}, nil
}

func parseNumber(value []byte, dt jsonparser.ValueType) (float64, error) {
	switch dt {
	case jsonparser.Number:
		return jsonparser.ParseFloat(value)
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	default:
		return 0, fmt.Errorf("is a %s, not a number", dt)
	}
}

// parseLocation returns the payload's location when both coordinates are numbers.
func parseLocation(payload []byte) *Location {
	lat, err := jsonparser.GetFloat(payload, FieldLocation, "lat")
	if err != nil {
		return nil
	}
	lon, err := jsonparser.GetFloat(payload, FieldLocation, "lon")
	if err != nil {
		return nil
	}
	return &Location{Lat: lat, Lon: lon}
}

// appendFloat renders v in its shortest round-trip decimal form without an
// exponent: 120 -> "120", 3.5 -> "3.5".
func appendFloat(dst []byte, v float64) []byte {
	return strconv.AppendFloat(dst, v, 'f', -1, 64)
}

// Row joins the vector with commas and terminates it with a newline.
func (v Vector) Row() []byte {
	buf := make([]byte, 0, len(v)*8+1)
	for i, f := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendFloat(buf, f)
	}
	return append(buf, '\n')
}

// Annotate strips the row's trailing newline and appends
// ",lat,lon,label,score\n".
func Annotate(row []byte, loc Location, label int, score float64) []byte {
	out := bytes.TrimRight(row, "\r\n")
	out = append(out[:len(out):len(out)], ',')
	out = appendFloat(out, loc.Lat)
	out = append(out, ',')
	out = appendFloat(out, loc.Lon)
	out = append(out, ',')
	out = strconv.AppendInt(out, int64(label), 10)
	out = append(out, ',')
	out = appendFloat(out, score)
	return append(out, '\n')
}
