package consensus

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x402resolve/oracle/internal/model"
	"github.com/x402resolve/oracle/internal/oracle"
)

func registerN(t *testing.T, r *oracle.Registry, n int) []string {
	t.Helper()
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		o, err := r.Register(pub, 20)
		require.NoError(t, err)
		keys[i] = o.PubKeyHex()
	}
	return keys
}

func TestHandleTimeout_SelectsBackup(t *testing.T) {
	r := oracle.NewRegistry()
	keys := registerN(t, r, 4)
	policy := NewPolicy(r)

	var seed [32]byte
	result, err := policy.HandleTimeout(seed, keys[0])
	require.NoError(t, err)
	assert.Equal(t, model.FallbackBackupOracle, result.Strategy)
	require.Len(t, result.Oracles, 1)

	got, _ := r.Get(keys[0])
	assert.Equal(t, 450, got.ReputationScore)
}

func TestFullFailure_NewOracleSetWhenThreeOrMoreActive(t *testing.T) {
	r := oracle.NewRegistry()
	registerN(t, r, 4)
	policy := NewPolicy(r)

	result, err := policy.FullFailure()
	require.NoError(t, err)
	assert.Equal(t, model.FallbackNewOracleSet, result.Strategy)
	assert.Len(t, result.Oracles, 3)
}

func TestFullFailure_ReducedThresholdWhenOnlyTwoActive(t *testing.T) {
	r := oracle.NewRegistry()
	registerN(t, r, 2)
	policy := NewPolicy(r)

	result, err := policy.FullFailure()
	require.NoError(t, err)
	assert.Equal(t, model.FallbackReducedThreshold, result.Strategy)
	assert.Len(t, result.Oracles, 2)
}

func TestFullFailure_DelayedRetryWhenSingleOracleBelowAdminThreshold(t *testing.T) {
	r := oracle.NewRegistry()
	keys := registerN(t, r, 1)
	policy := NewPolicy(r)

	// One active oracle is too few for a replacement set, and its starting
	// reputation of 500 is below the admin threshold, so the ladder falls
	// through to delayed_retry. The registry exposes no way to raise
	// reputation, so the admin_oracle branch is not exercised here.
	result, err := policy.FullFailure()
	require.NoError(t, err)
	assert.Equal(t, model.FallbackDelayedRetry, result.Strategy)
	assert.Equal(t, DelayedRetryHours, result.RetryHours)
	assert.Equal(t, DelayedRetryInterimRefundPct, result.InterimRefundPct)
	_ = keys
}

func TestFullFailure_DelayedRetryWhenNothingAvailable(t *testing.T) {
	r := oracle.NewRegistry()
	policy := NewPolicy(r)

	result, err := policy.FullFailure()
	require.NoError(t, err)
	assert.Equal(t, model.FallbackDelayedRetry, result.Strategy)
	assert.Equal(t, 24, result.RetryHours)
	assert.Equal(t, 50, result.InterimRefundPct)
}
