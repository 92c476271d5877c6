package assessor

import (
	"fmt"

	"github.com/x402resolve/oracle/internal/model"
	"github.com/x402resolve/oracle/internal/value"
)

// computeSchema implements the Schema Compliance component: a flat
// docked-points check against a declared type and a list of expected
// properties, rather than full JSON Schema validation. A type mismatch
// docks 0.5; each missing declared property docks 0.5/len(properties),
// floored at 0. Defaults to 1.0 when the criteria carry no schema.
func computeSchema(payload value.Value, criteria model.QualityCriteria) (float64, []string) {
	if !criteria.HasSchema() {
		return 1.0, nil
	}

	var issues []string
	score := 1.0

	record := firstRecord(payload)

	if criteria.SchemaType != "" {
		if actual := value.GoType(record); actual != criteria.SchemaType {
			score -= 0.5
			issues = append(issues, fmt.Sprintf("schema type mismatch: expected %s, got %s", criteria.SchemaType, actual))
		}
	}

	if n := len(criteria.SchemaProperties); n > 0 {
		penalty := 0.5 / float64(n)
		for _, prop := range criteria.SchemaProperties {
			if _, ok := record.Get(prop); !ok {
				score -= penalty
				issues = append(issues, fmt.Sprintf("missing schema property: %s", prop))
			}
		}
	}

	return clamp01(score), issues
}
