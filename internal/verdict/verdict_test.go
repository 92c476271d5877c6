package verdict

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x402resolve/oracle/internal/embedder"
	"github.com/x402resolve/oracle/internal/model"
	"github.com/x402resolve/oracle/internal/signer"
	"github.com/x402resolve/oracle/internal/value"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := signer.New("", "")
	require.NoError(t, err)
	return New(embedder.NewDeterministicProvider(32), s)
}

func TestVerifyQuality_RejectsMissingTransactionID(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.VerifyQuality(context.Background(), Request{OriginalQuery: "q"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidRequest))
}

func TestVerifyQuality_RejectsMissingQuery(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.VerifyQuality(context.Background(), Request{TransactionID: "t1"})
	require.Error(t, err)
}

func TestVerifyQuality_ProducesSignedVerdict(t *testing.T) {
	svc := newTestService(t)
	req := Request{
		TransactionID: "txn-1",
		OriginalQuery: "widget data",
		DataReceived: value.Map(map[string]value.Value{
			"results": value.Seq([]value.Value{value.String("widget data")}),
		}),
	}

	v, err := svc.VerifyQuality(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "txn-1", v.TransactionID)
	assert.NotEmpty(t, v.Signature)
	assert.True(t, signer.Verify(svc.signer.PublicKey(), "txn-1", v.QualityScore, v.Signature))
}

func TestVerifyQuality_DegradesGracefullyNeverErrorsOnScoringFailure(t *testing.T) {
	s, err := signer.New("", "")
	require.NoError(t, err)
	svc := New(nil, s) // nil provider forces a semantic-scoring degradation

	req := Request{
		TransactionID: "txn-2",
		OriginalQuery: "q",
		DataReceived:  value.Null,
	}
	v, err := svc.VerifyQuality(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, v.Signature)
}
