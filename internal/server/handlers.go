package server

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/x402resolve/oracle/internal/authn"
	"github.com/x402resolve/oracle/internal/consensus"
	"github.com/x402resolve/oracle/internal/model"
	"github.com/x402resolve/oracle/internal/oracle"
	"github.com/x402resolve/oracle/internal/signer"
	"github.com/x402resolve/oracle/internal/telemetry"
	"github.com/x402resolve/oracle/internal/value"
	"github.com/x402resolve/oracle/internal/verdict"
)

// Handlers holds the dependencies every HTTP route needs.
type Handlers struct {
	VerdictSvc          *verdict.Service
	Registry            *oracle.Registry
	Signer              *signer.Signer
	FallbackPolicy      *consensus.Policy
	JWTMgr              *authn.JWTManager
	AdminAPIKeyHash     string
	Metrics             *telemetry.Metrics
	Logger              *slog.Logger
	Version             string
	MaxRequestBodyBytes int64
}

// --- POST /v1/admin/token ---

type adminTokenRequest struct {
	APIKey string `json:"api_key"`
}

// HandleIssueAdminToken exchanges the bootstrap admin API key for a
// short-lived Ed25519-signed JWT used on the registry-mutating routes. A
// missing configured hash always fails closed rather than accepting any
// key. The "no hash configured" path runs authn.DummyVerify so it costs the
// same Argon2id work as the real verification on the "wrong key" path, and
// a caller can't distinguish them by timing.
func (h *Handlers) HandleIssueAdminToken(w http.ResponseWriter, r *http.Request) {
	var req adminTokenRequest
	if err := decodeJSON(r, &req, h.MaxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "malformed request body")
		return
	}

	if h.AdminAPIKeyHash == "" {
		authn.DummyVerify()
		writeError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid admin api key")
		return
	}

	ok, err := authn.VerifyAPIKey(req.APIKey, h.AdminAPIKeyHash)
	if err != nil || !ok {
		writeError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid admin api key")
		return
	}

	token, exp, err := h.JWTMgr.IssueAdminToken()
	if err != nil {
		h.writeInternalError(w, r, "token issuance failed", err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"token": token, "expires_at": exp})
}

// --- POST /v1/verdicts ---

type verdictRequest struct {
	TransactionID       string                `json:"transaction_id"`
	OriginalQuery       string                `json:"original_query"`
	DataReceived        any                   `json:"data_received"`
	ExpectedCriteria    model.QualityCriteria `json:"expected_criteria"`
	ExpectedRecordCount *int                  `json:"expected_record_count,omitempty"`
}

func (h *Handlers) HandleCreateVerdict(w http.ResponseWriter, r *http.Request) {
	var req verdictRequest
	if err := decodeJSON(r, &req, h.MaxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "malformed request body")
		return
	}

	v, err := h.VerdictSvc.VerifyQuality(r.Context(), verdict.Request{
		TransactionID:       req.TransactionID,
		OriginalQuery:       req.OriginalQuery,
		DataReceived:        value.FromAny(req.DataReceived),
		ExpectedCriteria:    req.ExpectedCriteria,
		ExpectedRecordCount: req.ExpectedRecordCount,
	})
	if err != nil {
		if errors.Is(err, model.ErrInvalidRequest) {
			writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
			return
		}
		h.writeInternalError(w, r, "verdict issuance failed", err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.VerdictsIssued.Inc()
		h.Metrics.VerdictScore.Observe(float64(v.QualityScore))
	}

	writeJSON(w, r, http.StatusOK, v)
}

// --- GET /v1/public-key ---

func (h *Handlers) HandlePublicKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"public_key": h.Signer.PublicKeyHex(), "algorithm": "ed25519"})
}

// --- POST /v1/oracles ---

type registerOracleRequest struct {
	PublicKey string  `json:"public_key"`
	Stake     float64 `json:"stake"`
}

func (h *Handlers) HandleRegisterOracle(w http.ResponseWriter, r *http.Request) {
	var req registerOracleRequest
	if err := decodeJSON(r, &req, h.MaxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "malformed request body")
		return
	}

	pubKeyBytes, err := hex.DecodeString(req.PublicKey)
	if err != nil || len(pubKeyBytes) != ed25519.PublicKeySize {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "public_key must be a hex-encoded Ed25519 key")
		return
	}

	o, err := h.Registry.Register(ed25519.PublicKey(pubKeyBytes), req.Stake)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrStakeTooLow):
			writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		case errors.Is(err, model.ErrAlreadyRegistered):
			writeError(w, r, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			h.writeInternalError(w, r, "oracle registration failed", err)
		}
		return
	}

	if h.Metrics != nil {
		h.Metrics.OraclesRegistered.Set(float64(len(h.Registry.List())))
	}

	writeJSON(w, r, http.StatusCreated, o)
}

// --- GET /v1/oracles ---

func (h *Handlers) HandleListOracles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.Registry.List())
}

// --- GET /v1/oracles/{pubkey} ---

func (h *Handlers) HandleGetOracle(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("pubkey")
	o, ok := h.Registry.Get(key)
	if !ok {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "oracle not found")
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

// --- POST /v1/oracles/{pubkey}/slash ---

type slashRequest struct {
	Reason string `json:"reason"`
}

func (h *Handlers) HandleSlashOracle(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("pubkey")

	var req slashRequest
	if err := decodeJSON(r, &req, h.MaxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "malformed request body")
		return
	}

	result, err := h.Registry.Slash(key, req.Reason)
	if err != nil {
		if errors.Is(err, model.ErrUnknownOracle) {
			writeError(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		h.writeInternalError(w, r, "slash failed", err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.SlashesApplied.WithLabelValues(string(result.NewStatus)).Inc()
	}

	writeJSON(w, r, http.StatusOK, result)
}

// --- POST /v1/consensus ---

type consensusRequest struct {
	TransactionID    string                    `json:"transaction_id"`
	TransactionValue float64                   `json:"transaction_value"`
	Assessments      []model.OracleAssessment `json:"assessments"`
}

type consensusResponse struct {
	Result              model.ConsensusResult `json:"result"`
	Fees                model.FeeSplit        `json:"fees"`
	MultiOracleRequired bool                  `json:"multi_oracle_required"`
	SlashedOracles      []oracle.SlashResult  `json:"slashed_oracles,omitempty"`
}

// HandleConsensus aggregates a completed round of independently-submitted
// oracle assessments. Besides the median/confidence result and fee split,
// it runs the collusion heuristic (§4.8) against the round and slashes any
// flagged oracle before responding, so a caller never has to make a
// separate call to trigger the automatic penalty path.
func (h *Handlers) HandleConsensus(w http.ResponseWriter, r *http.Request) {
	var req consensusRequest
	if err := decodeJSON(r, &req, h.MaxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, "malformed request body")
		return
	}

	receivedAt := time.Now().UTC()
	for i := range req.Assessments {
		req.Assessments[i].ReceivedAt = receivedAt
	}

	result, err := consensus.Aggregate(req.Assessments)
	if err != nil {
		if errors.Is(err, model.ErrTooFewAssessments) {
			h.respondFullFailure(w, r)
			return
		}
		h.writeInternalError(w, r, "consensus aggregation failed", err)
		return
	}

	oracles := make([]string, len(req.Assessments))
	scores := make([]int, len(req.Assessments))
	for i, a := range req.Assessments {
		oracles[i] = a.OraclePubkey
		scores[i] = a.QualityScore
	}
	fees := consensus.ComputeFeeSplit(req.TransactionValue, oracles)

	var slashed []oracle.SlashResult
	for _, idx := range consensus.FlagCollusion(scores) {
		res, err := h.Registry.Slash(oracles[idx], "collusion detected in consensus round")
		if err != nil {
			continue // unregistered oracle key in submitted assessments; nothing to slash
		}
		slashed = append(slashed, res)
		if h.Metrics != nil {
			h.Metrics.SlashesApplied.WithLabelValues(string(res.NewStatus)).Inc()
		}
	}

	strategy := "none"
	if len(slashed) > 0 {
		strategy = "collusion"
	}
	if h.Metrics != nil {
		h.Metrics.ConsensusRounds.WithLabelValues(strategy).Inc()
	}

	writeJSON(w, r, http.StatusOK, consensusResponse{
		Result:              result,
		Fees:                fees,
		MultiOracleRequired: consensus.RequiresMultiOracle(req.TransactionValue),
		SlashedOracles:      slashed,
	})
}

// --- GET /health ---

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "version": h.Version})
}

// --- GET /config ---

func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"min_oracles":                  consensus.MinOracles,
		"max_oracles":                  consensus.MaxOracles,
		"threshold_mandatory_multi":    consensus.ThresholdMandatoryMulti,
		"threshold_optional_review":    consensus.ThresholdOptionalReview,
		"min_stake":                    oracle.MinStake,
	})
}

// respondFullFailure is reached when a consensus round arrives with fewer
// than MinOracles usable assessments. Rather than a bare error, it runs the
// C9 fallback ladder (fresh oracle set, reduced threshold, admin oracle, or
// a delayed retry) so the caller always gets an actionable next step.
func (h *Handlers) respondFullFailure(w http.ResponseWriter, r *http.Request) {
	if h.FallbackPolicy == nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeTooFewAssessments, model.ErrTooFewAssessments.Error())
		return
	}

	fallback, err := h.FallbackPolicy.FullFailure()
	if err != nil {
		h.writeInternalError(w, r, "fallback resolution failed", err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.ConsensusRounds.WithLabelValues(string(fallback.Strategy)).Inc()
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"error":    ErrCodeTooFewAssessments,
		"message":  model.ErrTooFewAssessments.Error(),
		"fallback": fallback,
	})
}

func (h *Handlers) writeInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.Logger.Error(msg,
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", RequestIDFromContext(r.Context()))
	writeError(w, r, http.StatusInternalServerError, ErrCodeInternalError, msg)
}
