// Package oracle implements the Oracle Registry (C5), the deterministic
// Oracle Selector (C6), and the Slashing State Machine (C8): the staking,
// identity, and penalty layer underneath multi-oracle consensus.
package oracle

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/x402resolve/oracle/internal/model"
)

// MinStake is the minimum stake required to register, per the default
// configuration constant documented for this deployment.
const MinStake = 10.0

// startingReputation is the reputation score assigned at registration.
const startingReputation = 500

// Registry is a concurrency-safe store of staked oracle identities.
// Mutation serializes through a single writer lock; Get and List take the
// read lock. ActiveKeys takes the write lock because it lifts expired
// suspensions while it lists.
type Registry struct {
	mu      sync.RWMutex
	oracles map[string]*model.Oracle // keyed by lowercase hex pubkey
}

// NewRegistry creates an empty oracle registry.
func NewRegistry() *Registry {
	return &Registry{oracles: make(map[string]*model.Oracle)}
}

// Register adds a new oracle identity. Rejects a stake below MinStake or a
// key that's already present — registration is not an upsert.
func (r *Registry) Register(pubKey ed25519.PublicKey, stake float64) (model.Oracle, error) {
	if stake < MinStake {
		return model.Oracle{}, fmt.Errorf("%w: got %.4f, need >= %.4f", model.ErrStakeTooLow, stake, MinStake)
	}

	key := hex.EncodeToString(pubKey)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.oracles[key]; exists {
		return model.Oracle{}, fmt.Errorf("%w: %s", model.ErrAlreadyRegistered, key)
	}

	o := &model.Oracle{
		PublicKey:        append(ed25519.PublicKey(nil), pubKey...),
		Stake:            stake,
		Status:           model.OracleActive,
		ReputationScore:  startingReputation,
		RegisteredAt:     time.Now().UTC(),
	}
	r.oracles[key] = o
	return *o, nil
}

// Get returns a copy of the oracle registered under key (lowercase hex),
// and whether it was found.
func (r *Registry) Get(key string) (model.Oracle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.oracles[key]
	if !ok {
		return model.Oracle{}, false
	}
	return *o, true
}

// List returns a copy of every registered oracle, in no particular order.
func (r *Registry) List() []model.Oracle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Oracle, 0, len(r.oracles))
	for _, o := range r.oracles {
		out = append(out, *o)
	}
	return out
}

// ActiveKeys returns the hex public keys of every oracle currently Active,
// expiring any stale suspension along the way. The order matches the
// registry's internal map iteration and is NOT itself deterministic — C6
// imposes determinism on top of this list via its own stable sort.
func (r *Registry) ActiveKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	keys := make([]string, 0, len(r.oracles))
	for key, o := range r.oracles {
		if o.Status == model.OracleSuspended && o.SuspensionExpiry != nil && now.After(*o.SuspensionExpiry) {
			o.Status = model.OracleActive
			o.SuspensionExpiry = nil
		}
		if o.Status == model.OracleActive {
			keys = append(keys, key)
		}
	}
	return keys
}

// RecordTimeout deducts reputation from an oracle that failed to respond
// in time. It does not touch stake or status directly.
func (r *Registry) RecordTimeout(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.oracles[key]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrUnknownOracle, key)
	}
	o.ReputationScore = floorZero(o.ReputationScore - 50)
	return nil
}

// RecordAssessment increments an oracle's total_assessments counter after
// it successfully contributes a signed score.
func (r *Registry) RecordAssessment(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.oracles[key]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrUnknownOracle, key)
	}
	o.TotalAssessments++
	return nil
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
