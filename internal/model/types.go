// Package model holds the shared data types that flow between the quality
// assessor, verdict signer, oracle registry, and consensus aggregator.
package model

import (
	"crypto/ed25519"
	"encoding/hex"
	"time"
)

// Recommendation is the closed set of settlement actions a verdict can carry.
type Recommendation string

const (
	RecommendationRelease       Recommendation = "release"
	RecommendationPartialRefund Recommendation = "partial_refund"
	RecommendationFullRefund    Recommendation = "full_refund"
)

// QualityCriteria declares what a received payload should contain. All
// fields are optional; an absent completeness or freshness criterion makes
// its component default to a perfect score, while without a schema
// criterion the schema component is reported as 0 and left out of the
// total (see internal/assessor).
type QualityCriteria struct {
	MinRecords      *int      `json:"min_records,omitempty"`
	RequiredFields  []string  `json:"required_fields,omitempty"`
	MaxAgeDays      *float64  `json:"max_age_days,omitempty"`
	SchemaType      string    `json:"schema_type,omitempty"`
	SchemaProperties []string `json:"schema_properties,omitempty"`
}

// HasSchema reports whether a schema criterion (type or properties) was
// supplied, which selects the 40/30/30 weight table in internal/assessor.
func (c QualityCriteria) HasSchema() bool {
	return c.SchemaType != "" || len(c.SchemaProperties) > 0
}

// Components holds the four [0,1] sub-scores that compose a quality_score.
type Components struct {
	Semantic     float64 `json:"semantic"`
	Completeness float64 `json:"completeness"`
	Freshness    float64 `json:"freshness"`
	Schema       float64 `json:"schema"`
}

// QualityAssessment is the output of the quality assessor (C2).
type QualityAssessment struct {
	QualityScore      float64        `json:"quality_score"`
	Components        Components     `json:"components"`
	Issues            []string       `json:"issues"`
	RefundPercentage  int            `json:"refund_percentage"`
	Recommendation    Recommendation `json:"recommendation"`
}

// IntegerScore truncates QualityScore for use in the signed message, per
// the "integer score used for signing is floor(quality_score)" rule.
func (a QualityAssessment) IntegerScore() int {
	return int(a.QualityScore)
}

// Verdict is the output of the verdict service (C4): a quality assessment
// wrapped with a transaction identifier and an Ed25519 signature binding
// the two together.
type Verdict struct {
	TransactionID    string         `json:"transaction_id"`
	QualityScore     int            `json:"quality_score"`
	Recommendation   Recommendation `json:"recommendation"`
	RefundPercentage int            `json:"refund_percentage"`
	Reasoning        string         `json:"reasoning"`
	Signature        string         `json:"signature"`
}

// OracleStatus is the closed set of lifecycle states an Oracle can occupy.
// Banned is terminal: no transition leaves it.
type OracleStatus string

const (
	OracleActive    OracleStatus = "active"
	OracleSuspended OracleStatus = "suspended"
	OracleBanned    OracleStatus = "banned"
)

// Oracle is a staked, keyed participant authorized to produce assessments.
type Oracle struct {
	PublicKey        ed25519.PublicKey `json:"-"`
	Stake            float64           `json:"stake"`
	TotalAssessments int               `json:"total_assessments"`
	SlashedCount     int               `json:"slashed_count"`
	ReputationScore  int               `json:"reputation_score"`
	Status           OracleStatus      `json:"status"`
	SuspensionExpiry *time.Time        `json:"suspension_expiry,omitempty"`
	RegisteredAt     time.Time         `json:"registered_at"`
}

// PubKeyHex returns the oracle's identity as a lowercase hex string, the
// wire representation used throughout the HTTP API.
func (o Oracle) PubKeyHex() string {
	return hex.EncodeToString(o.PublicKey)
}

// OracleAssessment is a single oracle's signed score contribution to a
// multi-oracle consensus round.
type OracleAssessment struct {
	OraclePubkey string    `json:"oracle_pubkey"`
	QualityScore int       `json:"quality_score"`
	Reasoning    string    `json:"reasoning"`
	Signature    string    `json:"signature"`
	Timestamp    time.Time `json:"timestamp"`
	ReceivedAt   time.Time `json:"received_at"`
}

// ConsensusResult is the output of the consensus aggregator (C7).
type ConsensusResult struct {
	MedianScore     int                `json:"median_score"`
	MeanScore       float64            `json:"mean_score"`
	StdDev          float64            `json:"std_dev"`
	Confidence      int                `json:"confidence"`
	OutlierIndices  []int              `json:"outlier_indices"`
	Assessments     []OracleAssessment `json:"assessments"`
}

// FallbackStrategy is the closed set of strategies C9 can hand back when
// oracles time out, disagree catastrophically, or are unavailable.
type FallbackStrategy string

const (
	FallbackBackupOracle     FallbackStrategy = "backup_oracle"
	FallbackNewOracleSet     FallbackStrategy = "new_oracle_set"
	FallbackReducedThreshold FallbackStrategy = "reduced_threshold"
	FallbackAdminOracle      FallbackStrategy = "admin_oracle"
	FallbackDelayedRetry     FallbackStrategy = "delayed_retry"
)

// FallbackResult is the outcome of applying the fallback policy (C9).
type FallbackResult struct {
	Strategy          FallbackStrategy `json:"strategy"`
	Oracles           []string         `json:"oracles,omitempty"`
	RetryHours        int              `json:"retry_hours,omitempty"`
	InterimRefundPct  int              `json:"interim_refund_pct,omitempty"`
}

// FeeSplit is the fee schedule applied to an escrow transaction, per §6.
type FeeSplit struct {
	Primary    float64            `json:"primary"`
	Secondary  map[string]float64 `json:"secondary,omitempty"`
}
