package consensus

import "github.com/x402resolve/oracle/internal/model"

// baseFeeMin and baseFeeMax bound the computed base fee regardless of
// transaction value.
const (
	baseFeeMin  = 0.0001
	baseFeeMax  = 0.01
	baseFeeRate = 0.001
)

// secondaryShare is the fraction of the fee split equally among
// secondary oracles in a multi-oracle round; the remainder goes to the
// primary (selected first) oracle.
const secondaryShare = 0.40

// BaseFee computes the transaction-value-scaled base fee, clamped to
// [baseFeeMin, baseFeeMax].
func BaseFee(transactionValue float64) float64 {
	fee := baseFeeRate * transactionValue
	if fee < baseFeeMin {
		return baseFeeMin
	}
	if fee > baseFeeMax {
		return baseFeeMax
	}
	return fee
}

// ComputeFeeSplit distributes the base fee for a transaction across the
// oracles that assessed it. oracles[0] is the primary; any remaining
// entries are secondaries. A single-oracle round sends the entire base
// fee to the primary; a multi-oracle round sends 60% to the primary and
// splits the remaining 40% equally among the secondaries.
func ComputeFeeSplit(transactionValue float64, oracles []string) model.FeeSplit {
	fee := BaseFee(transactionValue)

	if len(oracles) <= 1 {
		return model.FeeSplit{Primary: fee}
	}

	secondaries := oracles[1:]
	secondaryPool := fee * secondaryShare
	perSecondary := secondaryPool / float64(len(secondaries))

	split := model.FeeSplit{
		Primary:   fee * (1 - secondaryShare),
		Secondary: make(map[string]float64, len(secondaries)),
	}
	for _, key := range secondaries {
		split.Secondary[key] = perSecondary
	}
	return split
}
