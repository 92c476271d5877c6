package embedder

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity_IdenticalVectorsEqualOne(t *testing.T) {
	v := pgvector.NewVector([]float32{1, 2, 3})
	assert.InDelta(t, 1.0, Similarity(v, v), 1e-9)
}

func TestSimilarity_OrthogonalIsZero(t *testing.T) {
	a := pgvector.NewVector([]float32{1, 0})
	b := pgvector.NewVector([]float32{0, 1})
	assert.InDelta(t, 0.0, Similarity(a, b), 1e-9)
}

func TestSimilarity_NegativeCosineFloorsToZero(t *testing.T) {
	a := pgvector.NewVector([]float32{1, 0})
	b := pgvector.NewVector([]float32{-1, 0})
	assert.Equal(t, 0.0, Similarity(a, b))
}

func TestSimilarity_MismatchedDimensionsIsZero(t *testing.T) {
	a := pgvector.NewVector([]float32{1, 2, 3})
	b := pgvector.NewVector([]float32{1, 2})
	assert.Equal(t, 0.0, Similarity(a, b))
}

func TestSimilarity_ZeroNormIsZero(t *testing.T) {
	a := pgvector.NewVector([]float32{0, 0, 0})
	b := pgvector.NewVector([]float32{1, 2, 3})
	assert.Equal(t, 0.0, Similarity(a, b))
}

func TestSimilarity_Symmetric(t *testing.T) {
	a := pgvector.NewVector([]float32{1, 2, 3})
	b := pgvector.NewVector([]float32{4, -1, 2})
	assert.InDelta(t, Similarity(a, b), Similarity(b, a), 1e-12)
}

func TestDeterministicProvider_SameTextSameVector(t *testing.T) {
	p := NewDeterministicProvider(64)
	v1, err := p.Embed(context.Background(), "Uniswap V3 exploits on Ethereum")
	require.NoError(t, err)
	v2, err := p.Embed(context.Background(), "Uniswap V3 exploits on Ethereum")
	require.NoError(t, err)
	assert.Equal(t, v1.Slice(), v2.Slice())
}

func TestDeterministicProvider_SimilarityOfIdenticalTextIsOne(t *testing.T) {
	p := NewDeterministicProvider(384)
	v, err := p.Embed(context.Background(), "quality assessment oracle")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, Similarity(v, v), 1e-6)
}

func TestDeterministicProvider_DifferentTextDifferentVector(t *testing.T) {
	p := NewDeterministicProvider(384)
	a, err := p.Embed(context.Background(), "Uniswap V3 exploits on Ethereum")
	require.NoError(t, err)
	b, err := p.Embed(context.Background(), "completely unrelated weather forecast data")
	require.NoError(t, err)
	sim := Similarity(a, b)
	assert.Less(t, sim, 1.0)
}

func TestDeterministicProvider_EmptyTextYieldsZeroVector(t *testing.T) {
	p := NewDeterministicProvider(16)
	v, err := p.Embed(context.Background(), "")
	require.NoError(t, err)
	for _, f := range v.Slice() {
		assert.Equal(t, float32(0), f)
	}
}

func TestDeterministicProvider_Dimensions(t *testing.T) {
	p := NewDeterministicProvider(128)
	assert.Equal(t, 128, p.Dimensions())
}
