package assessor

import (
	"fmt"
	"strings"

	"github.com/x402resolve/oracle/internal/model"
	"github.com/x402resolve/oracle/internal/value"
)

// recordContainerKeys lists the top-level keys the assessor checks, in
// order, when payload is a mapping rather than a bare sequence. "exploits"
// is a domain-specific container name carried over from the original
// dispute-data shape (see ReceivedPayload in the data model) alongside the
// more generic "data"/"results" envelopes.
var recordContainerKeys = []string{"data", "results", "exploits"}

// actualRecordCount implements the record-count extraction rule: the
// payload's own length if it's a sequence, else the length of the first
// recognized container key that holds a sequence, else 1 (a bare object
// counts as a single record).
func actualRecordCount(payload value.Value) int {
	if seq, ok := payload.AsSeq(); ok {
		return len(seq)
	}
	for _, key := range recordContainerKeys {
		if container, ok := payload.Get(key); ok {
			if seq, ok := container.AsSeq(); ok {
				return len(seq)
			}
		}
	}
	return 1
}

// firstRecord returns the record to check required fields against: the
// first element if payload is a non-empty sequence, else payload itself.
func firstRecord(payload value.Value) value.Value {
	if seq, ok := payload.AsSeq(); ok && len(seq) > 0 {
		return seq[0]
	}
	return payload
}

// computeCompleteness implements the two 60/40-combined sub-factors
// described in the component design: criterion match against required
// fields (or min_records when no fields are named) and record count
// against expected_count.
func computeCompleteness(payload value.Value, criteria model.QualityCriteria, expectedCount *int) (float64, []string) {
	var issues []string

	criterionMatch := 1.0
	switch {
	case len(criteria.RequiredFields) > 0:
		record := firstRecord(payload)
		present := 0
		var missing []string
		for _, field := range criteria.RequiredFields {
			v, ok := record.Get(field)
			if ok && !v.IsEmpty() {
				present++
			} else {
				missing = append(missing, field)
			}
		}
		criterionMatch = float64(present) / float64(len(criteria.RequiredFields))
		if len(missing) > 0 {
			issues = append(issues, fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
		}

	case criteria.MinRecords != nil:
		actual := actualRecordCount(payload)
		criterionMatch = minRatio(actual, *criteria.MinRecords)
		if actual < *criteria.MinRecords {
			issues = append(issues, fmt.Sprintf("incomplete data: expected %d records, got %d", *criteria.MinRecords, actual))
		}
	}

	recordCountScore := 1.0
	if expectedCount != nil && *expectedCount > 0 {
		actual := actualRecordCount(payload)
		recordCountScore = minRatio(actual, *expectedCount)
		if actual < *expectedCount {
			issues = append(issues, fmt.Sprintf("record count below expectation: got %d, expected %d", actual, *expectedCount))
		}
	}

	score := 0.6*criterionMatch + 0.4*recordCountScore
	return clamp01(score), issues
}

func minRatio(actual, expected int) float64 {
	if expected <= 0 {
		return 1.0
	}
	ratio := float64(actual) / float64(expected)
	if ratio > 1 {
		return 1
	}
	if ratio < 0 {
		return 0
	}
	return ratio
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
