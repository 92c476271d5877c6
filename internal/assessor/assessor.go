// Package assessor implements the Quality Assessor (C2): the component
// scoring, weighted total, and refund curve that together decide how much
// of an escrowed payment should release, partially refund, or fully refund
// based on how well a delivered payload matches what was promised.
package assessor

import (
	"context"
	"math"

	"github.com/x402resolve/oracle/internal/embedder"
	"github.com/x402resolve/oracle/internal/model"
	"github.com/x402resolve/oracle/internal/value"
)

// Request carries everything the assessor needs to score one delivered
// payload against the original query and the criteria the caller declared.
type Request struct {
	Query         string
	Payload       value.Value
	Criteria      model.QualityCriteria
	ExpectedCount *int
}

// Assess scores a Request and returns a complete QualityAssessment. It
// never returns a Go error: an internal scoring exception (a provider
// failure, a missing timestamp, an unparsable schema) is absorbed into a
// degraded component score plus a recorded issue, matching the verdict
// service's "still-signed, never a transport failure" policy.
func Assess(ctx context.Context, emb embedder.Provider, req Request) model.QualityAssessment {
	var issues []string

	semantic, semIssues := computeSemantic(ctx, emb, req.Query, req.Payload)
	issues = append(issues, semIssues...)

	completeness, compIssues := computeCompleteness(req.Payload, req.Criteria, req.ExpectedCount)
	issues = append(issues, compIssues...)

	freshness, freshIssues := computeFreshness(req.Payload, req.Criteria)
	issues = append(issues, freshIssues...)

	var schema float64
	hasSchema := req.Criteria.HasSchema()
	if hasSchema {
		var schemaIssues []string
		schema, schemaIssues = computeSchema(req.Payload, req.Criteria)
		issues = append(issues, schemaIssues...)
	}

	components := model.Components{
		Semantic:     semantic,
		Completeness: completeness,
		Freshness:    freshness,
		Schema:       schema,
	}

	var weighted float64
	if hasSchema {
		// 40/30/30 table: schema replaces semantic in the total entirely
		// once a schema criterion is declared, per the implementer's
		// composition choice documented for this deployment.
		weighted = 0.40*completeness + 0.30*freshness + 0.30*schema
	} else {
		weighted = 0.40*semantic + 0.40*completeness + 0.20*freshness
	}

	qualityScore := round2(100 * weighted)

	recommendation, refundPct := Recommend(qualityScore)

	return model.QualityAssessment{
		QualityScore:     qualityScore,
		Components:       components,
		Issues:           issues,
		RefundPercentage: refundPct,
		Recommendation:   recommendation,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
