package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// verdictColumns is the number of fields appended to the feature row.
const verdictColumns = 4

// ErrShortRow is returned for rows without the appended verdict fields.
var ErrShortRow = errors.New("row has no verdict columns")

// OutputRow is the downstream view of an Ok record: the first feature is the
// transaction timestamp, the last feature is the amount, followed by the
// appended location and verdict.
type OutputRow struct {
	Timestamp float64
	Amount    float64
	Latitude  float64
	Longitude float64
	Fraud     int
	Score     float64
	Features  []float64
}

// ParseOutputRow decodes "v1,...,vn,lat,lon,label,score".
func ParseOutputRow(data []byte) (OutputRow, error) {
	fields := strings.Split(strings.TrimRight(string(data), "\r\n"), ",")
	if len(fields) < verdictColumns+1 {
		return OutputRow{}, fmt.Errorf("%w: %d fields", ErrShortRow, len(fields))
	}

	nums := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return OutputRow{}, fmt.Errorf("column %d: %w", i, err)
		}
		nums[i] = v
	}

	n := len(nums) - verdictColumns
	feats := nums[:n]
	return OutputRow{
		Timestamp: feats[0],
		Amount:    feats[n-1],
		Latitude:  nums[n],
		Longitude: nums[n+1],
		Fraud:     int(nums[n+2]),
		Score:     nums[n+3],
		Features:  feats,
	}, nil
}
