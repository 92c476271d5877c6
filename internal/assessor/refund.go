package assessor

import "github.com/x402resolve/oracle/internal/model"

// Recommend maps a 0-100 quality score onto a recommendation and refund
// percentage. The boundaries are inclusive at the top of each band:
// a score of exactly 80 releases in full, a score of exactly 50 is a
// partial refund, and anything below 50 refunds in full.
func Recommend(qualityScore float64) (model.Recommendation, int) {
	switch {
	case qualityScore >= 80:
		return model.RecommendationRelease, 0
	case qualityScore >= 50:
		pct := int(roundHalfAwayFromZero((80 - qualityScore) / 80 * 100))
		return model.RecommendationPartialRefund, pct
	default:
		return model.RecommendationFullRefund, 100
	}
}

func roundHalfAwayFromZero(v float64) float64 {
	if v < 0 {
		return -roundHalfAwayFromZero(-v)
	}
	return float64(int64(v + 0.5))
}
