// Package verdict implements the Verdict Service (C4): the single
// request/response operation that assesses one payload and returns a
// signed Verdict, absorbing any internal scoring exception into a
// degraded-but-still-signed result rather than a transport failure.
package verdict

import (
	"context"
	"fmt"

	"github.com/x402resolve/oracle/internal/assessor"
	"github.com/x402resolve/oracle/internal/embedder"
	"github.com/x402resolve/oracle/internal/model"
	"github.com/x402resolve/oracle/internal/signer"
	"github.com/x402resolve/oracle/internal/value"
)

// Request mirrors the wire shape of verify_quality: original_query,
// data_received, expected_criteria, transaction_id, expected_record_count.
type Request struct {
	TransactionID       string
	OriginalQuery       string
	DataReceived        value.Value
	ExpectedCriteria    model.QualityCriteria
	ExpectedRecordCount *int
}

// Validate enforces the minimal shape required for a request to be
// scoreable. A malformed request is rejected before it ever reaches the
// assessor — this is the one failure mode that produces an actual error
// instead of a degraded verdict.
func (r Request) Validate() error {
	if r.TransactionID == "" {
		return fmt.Errorf("%w: transaction_id is required", model.ErrInvalidRequest)
	}
	if r.OriginalQuery == "" {
		return fmt.Errorf("%w: original_query is required", model.ErrInvalidRequest)
	}
	if r.ExpectedRecordCount != nil && *r.ExpectedRecordCount < 0 {
		return fmt.Errorf("%w: expected_record_count must be non-negative", model.ErrInvalidRequest)
	}
	return nil
}

// Service ties the assessor and signer together behind the single
// verify_quality operation.
type Service struct {
	emb    embedder.Provider
	signer *signer.Signer
}

// New constructs a verdict Service. emb may be nil, in which case semantic
// scoring degrades per the assessor's documented behavior rather than
// failing the request.
func New(emb embedder.Provider, s *signer.Signer) *Service {
	return &Service{emb: emb, signer: s}
}

// VerifyQuality scores req and returns a signed Verdict. It returns a
// non-nil error only for a malformed request (model.ErrInvalidRequest);
// any other internal failure is absorbed into the returned Verdict as
// quality_score=0, full_refund, with a signature over (transaction_id, 0)
// and an issue recorded in Reasoning — callers must branch on
// Recommendation, never on err being nil.
func (s *Service) VerifyQuality(ctx context.Context, req Request) (model.Verdict, error) {
	if err := req.Validate(); err != nil {
		return model.Verdict{}, err
	}

	assessment := s.assessSafely(ctx, req)

	integerScore := assessment.IntegerScore()
	sig := s.signer.Sign(req.TransactionID, integerScore)

	return model.Verdict{
		TransactionID:    req.TransactionID,
		QualityScore:     integerScore,
		Recommendation:   assessment.Recommendation,
		RefundPercentage: assessment.RefundPercentage,
		Reasoning:        reasoningFrom(assessment),
		Signature:        sig,
	}, nil
}

// assessSafely calls the assessor and converts a panic (an internal
// scoring exception the component layer didn't anticipate) into the
// documented degraded assessment, so VerifyQuality's contract of "never a
// transport failure" holds even against a bug in a component.
func (s *Service) assessSafely(ctx context.Context, req Request) (result model.QualityAssessment) {
	defer func() {
		if r := recover(); r != nil {
			result = model.QualityAssessment{
				QualityScore:     0,
				Issues:           []string{fmt.Sprintf("internal scoring exception: %v", r)},
				RefundPercentage: 100,
				Recommendation:   model.RecommendationFullRefund,
			}
		}
	}()

	return assessor.Assess(ctx, s.emb, assessor.Request{
		Query:         req.OriginalQuery,
		Payload:       req.DataReceived,
		Criteria:      req.ExpectedCriteria,
		ExpectedCount: req.ExpectedRecordCount,
	})
}

func reasoningFrom(a model.QualityAssessment) string {
	if len(a.Issues) == 0 {
		return "quality assessment complete with no issues"
	}
	reasoning := a.Issues[0]
	for _, issue := range a.Issues[1:] {
		reasoning += "; " + issue
	}
	return reasoning
}
