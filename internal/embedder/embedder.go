// Package embedder implements the semantic embedder (C1): mapping text to
// fixed-dimension unit-norm vectors and exposing a floored cosine
// similarity over them.
package embedder

import (
	"context"
	"errors"
	"math"

	"github.com/pgvector/pgvector-go"
)

// ErrNoProvider is a sentinel for a provider that cannot produce an
// embedding. The providers in this package do not return it:
// OllamaProvider returns its own wrapped errors. Whatever error a provider
// returns, internal/assessor records an issue and scores the semantic
// component 0 instead of propagating it, per the embedding failure policy.
var ErrNoProvider = errors.New("embedder: no embedding available")

// Provider maps text to unit-norm vectors. Implementations must be safe
// for concurrent use without external locking once constructed.
type Provider interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
	Dimensions() int
}

// Similarity computes cosine(a, b), clamped to [0, 1]. Negative cosines
// floor to 0 because only positive semantic relatedness is meaningful for
// quality scoring. Mismatched dimensions, empty vectors, or a zero-norm
// vector all return 0 rather than an error, matching the "never panic"
// failure contract of C1.
func Similarity(a, b pgvector.Vector) float64 {
	av, bv := a.Slice(), b.Slice()
	if len(av) == 0 || len(bv) == 0 || len(av) != len(bv) {
		return 0
	}

	var dot, normA, normB float64
	for i := range av {
		fa, fb := float64(av[i]), float64(bv[i])
		dot += fa * fb
		normA += fa * fa
		normB += fb * fb
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return cos
}

// SimilarityText embeds both strings with p and returns their similarity.
// A provider failure on either side returns 0 similarity together with the
// provider's error; the caller records an issue from that error instead of
// failing, per C1's failure contract.
func SimilarityText(ctx context.Context, p Provider, a, b string) (float64, error) {
	va, err := p.Embed(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := p.Embed(ctx, b)
	if err != nil {
		return 0, err
	}
	return Similarity(va, vb), nil
}

func normalize(v []float32) []float32 {
	var sumSq float64
	for _, f := range v {
		sumSq += float64(f) * float64(f)
	}
	if sumSq == 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}
