package model

import "errors"

// Sentinel errors for the request-level failure modes enumerated in the
// error handling design. EmbeddingFailure and Timeout are deliberately
// absent here: they are absorbed into QualityAssessment.Issues rather than
// surfaced as Go errors, per the propagation policy.
var (
	ErrInvalidRequest      = errors.New("oracle: invalid request")
	ErrInsufficientOracles = errors.New("oracle: insufficient active oracles")
	ErrTooFewAssessments   = errors.New("oracle: too few assessments for consensus")
	ErrUnknownOracle       = errors.New("oracle: unknown oracle")
	ErrKeyUnavailable      = errors.New("oracle: signing key unavailable")
	ErrAlreadyRegistered   = errors.New("oracle: already registered")
	ErrStakeTooLow         = errors.New("oracle: stake below minimum")
)
