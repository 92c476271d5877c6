package consensus

import (
	"sort"

	"github.com/x402resolve/oracle/internal/model"
	"github.com/x402resolve/oracle/internal/oracle"
)

// DefaultAdminOracleReputation is the reputation an oracle must meet or
// exceed to qualify as the admin-oracle fallback. The source material left
// this constant ambiguous; 900 is the value documented for this
// deployment and is configurable via ORACLE_ADMIN_REPUTATION_THRESHOLD.
const DefaultAdminOracleReputation = 900

// DelayedRetryHours and DelayedRetryInterimRefundPct are the terms offered
// when no oracle replacement is possible at all.
const (
	DelayedRetryHours           = 24
	DelayedRetryInterimRefundPct = 50
)

// Policy applies the fallback strategy ladder (C9) against a live oracle
// registry: backup selection on timeout, fresh-set replacement on full
// failure, admin oracle as a last resort before a delayed retry.
type Policy struct {
	Registry              *oracle.Registry
	AdminReputationThreshold int
}

// NewPolicy constructs a fallback Policy with the default admin reputation
// threshold.
func NewPolicy(registry *oracle.Registry) *Policy {
	return &Policy{Registry: registry, AdminReputationThreshold: DefaultAdminOracleReputation}
}

// HandleTimeout implements the timeout-with-backup-available strategy:
// select one additional oracle via the backup-derived seed, and deduct
// reputation from the oracle that timed out.
func (p *Policy) HandleTimeout(seed [32]byte, timedOutKey string) (model.FallbackResult, error) {
	if err := p.Registry.RecordTimeout(timedOutKey); err != nil {
		return model.FallbackResult{}, err
	}

	backupSeed := oracle.BackupSeed(seed)
	picked, err := p.Registry.Select(backupSeed, 1)
	if err != nil {
		return p.fullFailure()
	}
	return model.FallbackResult{Strategy: model.FallbackBackupOracle, Oracles: picked}, nil
}

// fullFailure implements the remaining ladder once a backup is not
// available: a fresh 3-oracle set if enough active oracles exist, a
// reduced-threshold set of 2 if not, an admin oracle if neither, and
// finally a delayed retry.
func (p *Policy) fullFailure() (model.FallbackResult, error) {
	active := p.Registry.ActiveKeys()

	if len(active) >= 3 {
		var seed [32]byte // zero seed: fresh-set selection has no transaction context here
		picked, err := p.Registry.Select(seed, 3)
		if err == nil {
			return model.FallbackResult{Strategy: model.FallbackNewOracleSet, Oracles: picked}, nil
		}
	}
	if len(active) >= 2 {
		var seed [32]byte
		picked, err := p.Registry.Select(seed, 2)
		if err == nil {
			return model.FallbackResult{Strategy: model.FallbackReducedThreshold, Oracles: picked}, nil
		}
	}

	if admin, ok := p.findAdminOracle(); ok {
		return model.FallbackResult{Strategy: model.FallbackAdminOracle, Oracles: []string{admin}}, nil
	}

	return model.FallbackResult{
		Strategy:         model.FallbackDelayedRetry,
		RetryHours:       DelayedRetryHours,
		InterimRefundPct: DelayedRetryInterimRefundPct,
	}, nil
}

// FullFailure is the exported entry point for the full-failure branch of
// the fallback ladder (used when no single oracle timed out but the whole
// round came back unusable).
func (p *Policy) FullFailure() (model.FallbackResult, error) {
	return p.fullFailure()
}

func (p *Policy) findAdminOracle() (string, bool) {
	threshold := p.AdminReputationThreshold
	if threshold == 0 {
		threshold = DefaultAdminOracleReputation
	}

	candidates := p.Registry.List()
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].PubKeyHex() < candidates[j].PubKeyHex()
	})

	for _, o := range candidates {
		if o.Status == model.OracleActive && o.ReputationScore >= threshold {
			return o.PubKeyHex(), true
		}
	}
	return "", false
}
