package oracle

import (
	"fmt"
	"time"

	"github.com/x402resolve/oracle/internal/model"
)

// suspensionDuration is how long offence #3 suspends an oracle for.
const suspensionDuration = 30 * 24 * time.Hour

// SlashResult reports what a slash call actually did, so the caller can
// route the slashed stake (handled outside this system).
type SlashResult struct {
	SlashedAmount float64
	Banned        bool
	NewStatus     model.OracleStatus
}

// Slash applies the progressive penalty table to the oracle identified by
// key. Penalty depends only on the post-increment offence count:
//
//	1st: -100 reputation, stake unchanged
//	2nd: -200 reputation, 10% of current stake slashed
//	3rd: stake halved, Suspended for 30 days
//	4th+: entire remaining stake slashed, Banned (terminal)
//
// Concurrent slash calls on the same oracle serialize under the registry's
// write lock, so each call increments slashed_count exactly once and the
// final state reflects every call applied in some total order.
func (r *Registry) Slash(key string, reason string) (SlashResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.oracles[key]
	if !ok {
		return SlashResult{}, fmt.Errorf("%w: %s", model.ErrUnknownOracle, key)
	}
	if o.Status == model.OracleBanned {
		// Banned is terminal: a further slash call is a no-op on state but
		// still counts so callers can observe the attempt was recorded.
		o.SlashedCount++
		return SlashResult{NewStatus: model.OracleBanned, Banned: true}, nil
	}

	o.SlashedCount++
	var slashed float64

	switch o.SlashedCount {
	case 1:
		o.ReputationScore = floorZero(o.ReputationScore - 100)
	case 2:
		o.ReputationScore = floorZero(o.ReputationScore - 200)
		slashed = o.Stake * 0.10
		o.Stake -= slashed
	case 3:
		slashed = o.Stake * 0.50
		o.Stake -= slashed
		o.Status = model.OracleSuspended
		expiry := time.Now().UTC().Add(suspensionDuration)
		o.SuspensionExpiry = &expiry
	default:
		slashed = o.Stake
		o.Stake = 0
		o.Status = model.OracleBanned
		o.SuspensionExpiry = nil
	}

	return SlashResult{
		SlashedAmount: slashed,
		Banned:        o.Status == model.OracleBanned,
		NewStatus:     o.Status,
	}, nil
}
