// Package consensus implements the Consensus Aggregator (C7) and Fallback
// Policy (C9): combining multiple oracles' independent assessments into a
// single result with a confidence score, plus the escrow fee schedule and
// the multi-oracle mandatory-review threshold that gate when this path is
// used at all.
package consensus

import (
	"fmt"
	"math"
	"sort"

	"github.com/x402resolve/oracle/internal/model"
)

// MinOracles is the minimum number of assessments the aggregator accepts.
const MinOracles = 3

// MaxOracles bounds how many oracles a single selection round requests.
const MaxOracles = 5

// OutlierThreshold is the number of standard deviations from the mean an
// assessment must exceed to be flagged an outlier.
const OutlierThreshold = 1.5

// Aggregate computes the ConsensusResult for a set of oracle assessments.
// Requires at least MinOracles assessments.
func Aggregate(assessments []model.OracleAssessment) (model.ConsensusResult, error) {
	if len(assessments) < MinOracles {
		return model.ConsensusResult{}, fmt.Errorf("%w: got %d, need >= %d", model.ErrTooFewAssessments, len(assessments), MinOracles)
	}

	scores := make([]int, len(assessments))
	for i, a := range assessments {
		scores[i] = a.QualityScore
	}

	median := medianInt(scores)
	mean := meanInt(scores)
	stdDev := sampleStdDev(scores, mean)
	outliers := outlierIndices(scores, mean, stdDev)
	confidence := confidenceFromStdDev(stdDev)

	return model.ConsensusResult{
		MedianScore:    median,
		MeanScore:      mean,
		StdDev:         stdDev,
		Confidence:     confidence,
		OutlierIndices: outliers,
		Assessments:    assessments,
	}, nil
}

// medianInt returns the median of scores, with the lower of the two middle
// elements chosen on an even-length list so the result is always an
// integer rather than requiring interpolation.
func medianInt(scores []int) int {
	sorted := append([]int(nil), scores...)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1]
}

func meanInt(scores []int) float64 {
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

// sampleStdDev computes the sample standard deviation (Bessel's
// correction, n-1 divisor). Returns 0 when fewer than two scores are
// present, which cannot occur given Aggregate's MinOracles guard but keeps
// this helper safe for direct use elsewhere (e.g. collusion detection).
func sampleStdDev(scores []int, mean float64) float64 {
	n := len(scores)
	if n < 2 {
		return 0
	}
	var sumSq float64
	for _, s := range scores {
		d := float64(s) - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

func outlierIndices(scores []int, mean, stdDev float64) []int {
	if stdDev == 0 {
		return nil
	}
	var out []int
	for i, s := range scores {
		if math.Abs(float64(s)-mean) > OutlierThreshold*stdDev {
			out = append(out, i)
		}
	}
	return out
}

// confidenceFromStdDev buckets agreement into a 0-100 confidence score.
func confidenceFromStdDev(stdDev float64) int {
	switch {
	case stdDev < 5:
		return 100
	case stdDev < 10:
		return 90
	case stdDev < 15:
		return 75
	case stdDev < 20:
		return 60
	default:
		return 40
	}
}
