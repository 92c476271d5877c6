package consensus

import "math"

// varianceThreshold is the sample-variance cutoff below which every
// participant is flagged for suspiciously tight agreement.
const varianceThreshold = 2.0

// pairDivergenceThreshold is how far a shared exact score must diverge
// from the others to flag the sharing oracles as a colluding pair/group.
const pairDivergenceThreshold = 10.0

// FlagCollusion applies the heuristic collusion checks to a round's raw
// integer scores and returns the indices of assessments to flag, mirroring
// the aggregator's pre-slashing review: identical scores, suspiciously low
// variance, or a subset sharing an exact score that diverges sharply from
// the rest.
func FlagCollusion(scores []int) []int {
	n := len(scores)
	if n == 0 {
		return nil
	}

	if allIdentical(scores) {
		return allIndices(n)
	}

	mean := meanInt(scores)
	variance := sampleVariance(scores, mean)
	if variance < varianceThreshold {
		return allIndices(n)
	}

	return sharedOutlierGroup(scores, mean)
}

func allIdentical(scores []int) bool {
	for _, s := range scores[1:] {
		if s != scores[0] {
			return false
		}
	}
	return true
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func sampleVariance(scores []int, mean float64) float64 {
	n := len(scores)
	if n < 2 {
		return 0
	}
	var sumSq float64
	for _, s := range scores {
		d := float64(s) - mean
		sumSq += d * d
	}
	return sumSq / float64(n-1)
}

// sharedOutlierGroup finds any set of 2+ oracles reporting the exact same
// score that diverges from the overall mean by at least
// pairDivergenceThreshold, and flags just that group.
func sharedOutlierGroup(scores []int, mean float64) []int {
	byScore := make(map[int][]int)
	for i, s := range scores {
		byScore[s] = append(byScore[s], i)
	}

	var flagged []int
	for score, indices := range byScore {
		if len(indices) < 2 {
			continue
		}
		if math.Abs(float64(score)-mean) >= pairDivergenceThreshold {
			flagged = append(flagged, indices...)
		}
	}
	return flagged
}
