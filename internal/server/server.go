package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/x402resolve/oracle/internal/authn"
	"github.com/x402resolve/oracle/internal/consensus"
	"github.com/x402resolve/oracle/internal/oracle"
	"github.com/x402resolve/oracle/internal/signer"
	"github.com/x402resolve/oracle/internal/telemetry"
	"github.com/x402resolve/oracle/internal/verdict"
)

// Config collects everything needed to stand up the HTTP server.
type Config struct {
	VerdictSvc          *verdict.Service
	Registry            *oracle.Registry
	Signer              *signer.Signer
	FallbackPolicy      *consensus.Policy
	JWTMgr              *authn.JWTManager
	AdminAPIKeyHash     string
	Metrics             *telemetry.Metrics
	Logger              *slog.Logger
	Version             string
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	MaxRequestBodyBytes int64
	CORSAllowedOrigins  []string
}

// Server wraps the configured http.Server and its Handlers so the process
// entrypoint can start it and shut it down cleanly.
type Server struct {
	httpServer *http.Server
	handlers   *Handlers
}

// New builds the routed, middleware-wrapped HTTP server. Routes mirror the
// external interface table: unauthenticated reads (health, config, public
// key), bearer-gated registry mutation, and the verdict/consensus
// operations that any authenticated caller may invoke.
func New(cfg Config) *Server {
	h := &Handlers{
		VerdictSvc:          cfg.VerdictSvc,
		Registry:            cfg.Registry,
		Signer:              cfg.Signer,
		FallbackPolicy:      cfg.FallbackPolicy,
		JWTMgr:              cfg.JWTMgr,
		AdminAPIKeyHash:     cfg.AdminAPIKeyHash,
		Metrics:             cfg.Metrics,
		Logger:              cfg.Logger,
		Version:             cfg.Version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /config", h.HandleConfig)
	mux.HandleFunc("GET /v1/public-key", h.HandlePublicKey)
	mux.HandleFunc("POST /v1/admin/token", h.HandleIssueAdminToken)

	mux.Handle("POST /v1/verdicts", requireAdmin(http.HandlerFunc(h.HandleCreateVerdict)))
	mux.Handle("GET /v1/oracles", requireAdmin(http.HandlerFunc(h.HandleListOracles)))
	mux.Handle("GET /v1/oracles/{pubkey}", requireAdmin(http.HandlerFunc(h.HandleGetOracle)))
	mux.Handle("POST /v1/oracles", requireAdmin(http.HandlerFunc(h.HandleRegisterOracle)))
	mux.Handle("POST /v1/oracles/{pubkey}/slash", requireAdmin(http.HandlerFunc(h.HandleSlashOracle)))
	mux.Handle("POST /v1/consensus", requireAdmin(http.HandlerFunc(h.HandleConsensus)))

	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = corsMiddleware(cfg.CORSAllowedOrigins, handler)
	handler = authMiddleware(cfg.JWTMgr, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		handlers: h,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Handlers exposes the underlying route handlers for direct invocation
// without going through the HTTP listener.
func (s *Server) Handlers() *Handlers { return s.handlers }

// Start runs the HTTP server until it errors or is shut down. Matches
// http.ErrServerClosed on a clean Shutdown call.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests before closing listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
