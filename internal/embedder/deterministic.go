package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"

	"github.com/pgvector/pgvector-go"
)

// DeterministicProvider produces a unit-norm embedding from token-level
// hashing rather than a trained model. It satisfies C1's actual
// requirements — deterministic given the text, symmetric similarity,
// similarity 1 on identical inputs — without a network dependency or a
// model-availability failure mode, which keeps quality scoring reproducible
// in the "scoring the same input twice yields identical scores" invariant
// (§8) and makes it the default provider for this system. It is not a
// claim of semantic accuracy; richer providers (e.g. OllamaProvider) can be
// swapped in where model-quality embeddings matter more than determinism.
type DeterministicProvider struct {
	dims int
}

// NewDeterministicProvider returns a DeterministicProvider producing
// vectors of the given dimensionality.
func NewDeterministicProvider(dims int) *DeterministicProvider {
	if dims <= 0 {
		dims = 384
	}
	return &DeterministicProvider{dims: dims}
}

func (p *DeterministicProvider) Dimensions() int { return p.dims }

// Embed hashes each whitespace-delimited token into the vector's dimensions
// via SHA-256, accumulating a bag-of-hashed-tokens representation, then
// normalizes the result to unit length. Two texts with the same token
// multiset always yield the same vector; this is what makes similarity
// deterministic and testable.
func (p *DeterministicProvider) Embed(_ context.Context, text string) (pgvector.Vector, error) {
	vec := make([]float32, p.dims)
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return pgvector.NewVector(vec), nil
	}

	for _, tok := range tokens {
		sum := sha256.Sum256([]byte(tok))
		for d := 0; d < p.dims; d++ {
			// Fold 4 hash bytes at a time into a signed contribution for
			// dimension d, cycling through the 32-byte digest.
			off := (d * 4) % (len(sum) - 3)
			bits := binary.BigEndian.Uint32(sum[off : off+4])
			// Centre around zero so tokens don't all push the same direction.
			contribution := float32(int32(bits)) / float32(1<<31)
			vec[d] += contribution
		}
	}

	return pgvector.NewVector(normalize(vec)), nil
}
