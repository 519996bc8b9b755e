// Package partition splits a document's page count into ordered,
// non-overlapping page ranges for the concurrent parser (C3).
package partition

import (
	"fmt"

	"docingest/internal/domain"
)

// Error reports that a document's page count could not be split into valid
// ranges (e.g. a non-positive batch size).
type Error struct {
	Reason string
}

func (e *Error) Error() string { return fmt.Sprintf("partition: %s", e.Reason) }

// Split produces ceil(N/B) ranges covering [0,N-1], the last clamped to
// N-1. Empty input (N=0) yields no ranges.
func Split(n, batchSize int) []domain.PageRange {
	if n <= 0 || batchSize <= 0 {
		return nil
	}
	var ranges []domain.PageRange
	idx := 0
	for start := 0; start < n; start += batchSize {
		end := start + batchSize - 1
		if end > n-1 {
			end = n - 1
		}
		ranges = append(ranges, domain.PageRange{Start: start, End: end, Index: idx})
		idx++
	}
	return ranges
}
