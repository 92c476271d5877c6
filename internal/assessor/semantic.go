package assessor

import (
	"context"

	"github.com/x402resolve/oracle/internal/embedder"
	"github.com/x402resolve/oracle/internal/value"
)

// computeSemantic renders payload to a canonical string and scores its
// similarity to query via the embedding provider. A provider failure is the
// EmbeddingFailure case: it contributes 0 to the semantic score and records
// an issue, but never returns an error to the caller.
func computeSemantic(ctx context.Context, emb embedder.Provider, query string, payload value.Value) (float64, []string) {
	if emb == nil {
		return 0, []string{"semantic scoring unavailable: no embedding provider configured"}
	}

	rendered := value.Canonical(payload)
	sim, err := embedder.SimilarityText(ctx, emb, query, rendered)
	if err != nil {
		return 0, []string{"semantic scoring failed: embedding provider error"}
	}
	return sim, nil
}
