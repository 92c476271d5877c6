package oracle

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x402resolve/oracle/internal/model"
)

func genKey(t *testing.T) ed25519.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}

func TestRegister_RejectsBelowMinStake(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(genKey(t), MinStake-0.0001)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrStakeTooLow))
}

func TestRegister_AcceptsExactlyMinStake(t *testing.T) {
	r := NewRegistry()
	o, err := r.Register(genKey(t), MinStake)
	require.NoError(t, err)
	assert.Equal(t, model.OracleActive, o.Status)
	assert.Equal(t, 500, o.ReputationScore)
}

func TestRegister_RejectsDuplicateKey(t *testing.T) {
	r := NewRegistry()
	key := genKey(t)
	_, err := r.Register(key, 20)
	require.NoError(t, err)
	_, err = r.Register(key, 20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAlreadyRegistered))
}

// Scenario D: stakes 10, slashed four times in sequence.
// Expected (stake, status): (10,Active) -> (10,Active) -> (9,Active) -> (4.5,Suspended) -> (0,Banned)
func TestSlash_ProgressiveSequence(t *testing.T) {
	r := NewRegistry()
	key := genKey(t)
	o, err := r.Register(key, 10)
	require.NoError(t, err)
	hexKey := o.PubKeyHex()

	var totalSlashed float64

	res, err := r.Slash(hexKey, "offence1")
	require.NoError(t, err)
	totalSlashed += res.SlashedAmount
	got, _ := r.Get(hexKey)
	assert.Equal(t, 10.0, got.Stake)
	assert.Equal(t, model.OracleActive, got.Status)

	res, err = r.Slash(hexKey, "offence2")
	require.NoError(t, err)
	totalSlashed += res.SlashedAmount
	got, _ = r.Get(hexKey)
	assert.InDelta(t, 9.0, got.Stake, 1e-9)
	assert.Equal(t, model.OracleActive, got.Status)

	res, err = r.Slash(hexKey, "offence3")
	require.NoError(t, err)
	totalSlashed += res.SlashedAmount
	got, _ = r.Get(hexKey)
	assert.InDelta(t, 4.5, got.Stake, 1e-9)
	assert.Equal(t, model.OracleSuspended, got.Status)
	require.NotNil(t, got.SuspensionExpiry)

	res, err = r.Slash(hexKey, "offence4")
	require.NoError(t, err)
	totalSlashed += res.SlashedAmount
	got, _ = r.Get(hexKey)
	assert.InDelta(t, 0.0, got.Stake, 1e-9)
	assert.Equal(t, model.OracleBanned, got.Status)
	assert.True(t, res.Banned)

	assert.InDelta(t, 10.0, totalSlashed, 1e-9)
}

func TestSlash_UnknownOracle(t *testing.T) {
	r := NewRegistry()
	_, err := r.Slash("deadbeef", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnknownOracle))
}

func TestSlash_BanIsTerminal(t *testing.T) {
	r := NewRegistry()
	o, err := r.Register(genKey(t), 10)
	require.NoError(t, err)
	hexKey := o.PubKeyHex()
	for i := 0; i < 4; i++ {
		_, err = r.Slash(hexKey, "x")
		require.NoError(t, err)
	}
	res, err := r.Slash(hexKey, "x")
	require.NoError(t, err)
	assert.Equal(t, model.OracleBanned, res.NewStatus)
	got, _ := r.Get(hexKey)
	assert.Equal(t, model.OracleBanned, got.Status)
	assert.GreaterOrEqual(t, got.Stake, 0.0)
}

// Scenario E: five active oracles, seed = 32 bytes of 0x78, count = 3.
// Selecting twice yields the identical triple in the same order.
func TestSelect_DeterministicAcrossCalls(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 5; i++ {
		_, err := r.Register(genKey(t), 20)
		require.NoError(t, err)
	}

	var seed [32]byte
	for i := range seed {
		seed[i] = 0x78
	}

	first, err := r.Select(seed, 3)
	require.NoError(t, err)
	second, err := r.Select(seed, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestSelect_InsufficientOracles(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(genKey(t), 20)
	require.NoError(t, err)

	var seed [32]byte
	_, err = r.Select(seed, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInsufficientOracles))
}

func TestSelect_DistinctIndices(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 8; i++ {
		_, err := r.Register(genKey(t), 20)
		require.NoError(t, err)
	}
	var seed [32]byte
	copy(seed[:], []byte("some arbitrary transaction seed"))

	picked, err := r.Select(seed, 5)
	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, k := range picked {
		assert.False(t, seen[k], "duplicate selection: %s", k)
		seen[k] = true
	}
}
