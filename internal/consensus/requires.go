package consensus

// ThresholdOptionalReview is the transaction value at or above which
// multi-oracle review becomes available but is not required.
const ThresholdOptionalReview = 0.1

// ThresholdMandatoryMulti is the transaction value at or above which
// multi-oracle consensus is mandatory rather than optional.
const ThresholdMandatoryMulti = 1.0

// RequiresMultiOracle reports whether a transaction of the given value
// must go through multi-oracle consensus rather than a single-oracle
// verdict. The boundary is inclusive: a value exactly equal to
// ThresholdMandatoryMulti requires multi-oracle review.
func RequiresMultiOracle(transactionValue float64) bool {
	return transactionValue >= ThresholdMandatoryMulti
}

// EligibleForMultiOracle reports whether a transaction is large enough
// that multi-oracle review is offered as an option, even if not required.
func EligibleForMultiOracle(transactionValue float64) bool {
	return transactionValue >= ThresholdOptionalReview
}
