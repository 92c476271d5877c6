package consensus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x402resolve/oracle/internal/model"
)

func assessmentsFromScores(scores ...int) []model.OracleAssessment {
	out := make([]model.OracleAssessment, len(scores))
	for i, s := range scores {
		out[i] = model.OracleAssessment{
			OraclePubkey: "oracle-" + string(rune('a'+i)),
			QualityScore: s,
			Timestamp:    time.Now(),
			ReceivedAt:   time.Now(),
		}
	}
	return out
}

func TestAggregate_RejectsTooFewAssessments(t *testing.T) {
	_, err := Aggregate(assessmentsFromScores(80, 85))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTooFewAssessments))
}

// Scenario C (tie-breaking / edge case): n=3, identical scores -> variance
// 0, no outliers, full confidence.
func TestAggregate_IdenticalScoresNoOutliersFullConfidence(t *testing.T) {
	result, err := Aggregate(assessmentsFromScores(80, 80, 80))
	require.NoError(t, err)
	assert.Equal(t, 80, result.MedianScore)
	assert.Equal(t, 0.0, result.StdDev)
	assert.Empty(t, result.OutlierIndices)
	assert.Equal(t, 100, result.Confidence)
}

func TestAggregate_StrongOutlierIdentifiedMedianDominates(t *testing.T) {
	// With only three scores no single deviation can exceed 1.5 sample
	// standard deviations, so the round uses five: mean 68.8, std dev ~32.9,
	// and the 10 lies 58.8 from the mean (> 49.3).
	result, err := Aggregate(assessmentsFromScores(82, 85, 83, 84, 10))
	require.NoError(t, err)
	assert.Equal(t, 83, result.MedianScore)
	assert.NotEmpty(t, result.OutlierIndices)
}

func TestAggregate_MedianOfEvenLengthUsesLowerMiddle(t *testing.T) {
	result, err := Aggregate(assessmentsFromScores(10, 20, 30, 40))
	require.NoError(t, err)
	assert.Equal(t, 20, result.MedianScore)
}

func TestConfidenceFromStdDev_Buckets(t *testing.T) {
	assert.Equal(t, 100, confidenceFromStdDev(4.9))
	assert.Equal(t, 90, confidenceFromStdDev(9.9))
	assert.Equal(t, 75, confidenceFromStdDev(14.9))
	assert.Equal(t, 60, confidenceFromStdDev(19.9))
	assert.Equal(t, 40, confidenceFromStdDev(20.0))
}

func TestFlagCollusion_AllIdentical(t *testing.T) {
	flagged := FlagCollusion([]int{50, 50, 50})
	assert.Equal(t, []int{0, 1, 2}, flagged)
}

func TestFlagCollusion_LowVarianceFlagsAll(t *testing.T) {
	flagged := FlagCollusion([]int{50, 51, 50})
	assert.Len(t, flagged, 3)
}

func TestFlagCollusion_SharedOutlierPair(t *testing.T) {
	flagged := FlagCollusion([]int{50, 52, 20, 20})
	assert.ElementsMatch(t, []int{2, 3}, flagged)
}

func TestFlagCollusion_NoCollusion(t *testing.T) {
	flagged := FlagCollusion([]int{60, 65, 70, 75})
	assert.Empty(t, flagged)
}

func TestRequiresMultiOracle_BoundaryInclusive(t *testing.T) {
	assert.True(t, RequiresMultiOracle(ThresholdMandatoryMulti))
	assert.False(t, RequiresMultiOracle(ThresholdMandatoryMulti-0.0001))
}

func TestBaseFee_ClampedBounds(t *testing.T) {
	assert.Equal(t, baseFeeMin, BaseFee(0))
	assert.Equal(t, baseFeeMax, BaseFee(1000))
	assert.InDelta(t, 0.005, BaseFee(5), 1e-9)
}

func TestComputeFeeSplit_SingleOracleGetsAll(t *testing.T) {
	split := ComputeFeeSplit(5, []string{"primary"})
	assert.InDelta(t, BaseFee(5), split.Primary, 1e-9)
	assert.Empty(t, split.Secondary)
}

func TestComputeFeeSplit_MultiOracleSixtyFortySplit(t *testing.T) {
	split := ComputeFeeSplit(5, []string{"primary", "sec1", "sec2"})
	fee := BaseFee(5)
	assert.InDelta(t, fee*0.6, split.Primary, 1e-9)
	assert.InDelta(t, fee*0.4/2, split.Secondary["sec1"], 1e-9)
	assert.InDelta(t, fee*0.4/2, split.Secondary["sec2"], 1e-9)
}
