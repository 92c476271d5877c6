// oracled is the dispute-resolution oracle's process entrypoint: an HTTP
// server (serve), an Ed25519 keypair generator for the signing and JWT
// keys (keygen), and an offline signature-verification tool that exercises
// the exact check the escrow consumer would run (verify).
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/x402resolve/oracle/internal/authn"
	"github.com/x402resolve/oracle/internal/config"
	"github.com/x402resolve/oracle/internal/consensus"
	"github.com/x402resolve/oracle/internal/embedder"
	"github.com/x402resolve/oracle/internal/oracle"
	"github.com/x402resolve/oracle/internal/server"
	"github.com/x402resolve/oracle/internal/signer"
	"github.com/x402resolve/oracle/internal/telemetry"
	"github.com/x402resolve/oracle/internal/verdict"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "oracled",
		Short:         "dispute-resolution oracle service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), keygenCmd(), verifyCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := parseLogLevel(os.Getenv("ORACLE_LOG_LEVEL"))
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return serve(ctx, logger)
		},
	}
}

func serve(ctx context.Context, logger *slog.Logger) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("oracled starting", "version", version, "port", cfg.Port)

	otelShutdown, err := telemetry.Init(ctx, cfg.ServiceName, version)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	verdictSigner, err := signer.New(cfg.SigningPrivateKeyPath, cfg.SigningPublicKeyPath)
	if err != nil {
		return fmt.Errorf("signer: %w", err)
	}

	jwtMgr, err := authn.NewJWTManager(cfg.AdminJWTPrivateKeyPath, cfg.AdminJWTPublicKeyPath, cfg.AdminJWTExpiration)
	if err != nil {
		return fmt.Errorf("authn: %w", err)
	}

	emb := newEmbeddingProvider(cfg, logger)
	verdictSvc := verdict.New(emb, verdictSigner)

	registry := oracle.NewRegistry()
	fallbackPolicy := consensus.NewPolicy(registry)
	fallbackPolicy.AdminReputationThreshold = cfg.AdminOracleReputationThreshold

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	srv := server.New(server.Config{
		VerdictSvc:          verdictSvc,
		Registry:            registry,
		Signer:              verdictSigner,
		FallbackPolicy:      fallbackPolicy,
		JWTMgr:              jwtMgr,
		AdminAPIKeyHash:     cfg.AdminAPIKeyHash,
		Metrics:             metrics,
		Logger:              logger,
		Version:             version,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	slog.Info("oracled shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	slog.Info("oracled stopped")
	return nil
}

// newEmbeddingProvider selects the semantic embedder: the default
// deterministic provider needs no network dependency and keeps scoring
// reproducible; "ollama" opts into real sentence-embedding semantics at
// the cost of a model-availability failure mode (handled per C1's
// EmbeddingFailure policy, never a panic).
func newEmbeddingProvider(cfg config.Config, logger *slog.Logger) embedder.Provider {
	if cfg.EmbeddingProvider == "ollama" {
		logger.Info("embedding provider: ollama", "url", cfg.OllamaURL, "model", cfg.OllamaModel)
		return embedder.NewOllamaProvider(cfg.OllamaURL, cfg.OllamaModel, cfg.EmbeddingDimensions)
	}
	logger.Info("embedding provider: deterministic", "dimensions", cfg.EmbeddingDimensions)
	return embedder.NewDeterministicProvider(cfg.EmbeddingDimensions)
}

func parseLogLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func keygenCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "generate an Ed25519 keypair and write PEM files",
		Long: "Generates an Ed25519 keypair suitable for either ORACLE_SIGNING_* or\n" +
			"ORACLE_ADMIN_JWT_* configuration, writing <outDir>/<name>_private.pem\n" +
			"(mode 0600) and <outDir>/<name>_public.pem.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(outDir, args[0])
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "data", "directory to write the PEM files into")
	return cmd
}

func runKeygen(outDir, name string) error {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key pair: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	privBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}
	privPath := fmt.Sprintf("%s/%s_private.pem", outDir, name)
	if err := writePEMFile(privPath, "PRIVATE KEY", privBytes, 0o600); err != nil {
		return err
	}

	pubBytes, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	pubPath := fmt.Sprintf("%s/%s_public.pem", outDir, name)
	if err := writePEMFile(pubPath, "PUBLIC KEY", pubBytes, 0o600); err != nil {
		return err
	}

	fmt.Printf("wrote %s and %s\npublic key (hex): %s\n", privPath, pubPath, hex.EncodeToString(pub))
	return nil
}

func writePEMFile(path, blockType string, der []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return pem.Encode(f, &pem.Block{Type: blockType, Bytes: der})
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <pubkey-hex> <transaction-id> <quality-score> <signature-hex>",
		Short: "offline-verify a verdict signature, exactly as the escrow consumer would",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			pubKeyBytes, err := hex.DecodeString(args[0])
			if err != nil || len(pubKeyBytes) != ed25519.PublicKeySize {
				return fmt.Errorf("pubkey must be %d hex-encoded bytes", ed25519.PublicKeySize)
			}
			score, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("quality-score must be an integer: %w", err)
			}

			ok := signer.Verify(ed25519.PublicKey(pubKeyBytes), args[1], score, args[3])
			if !ok {
				fmt.Println("INVALID")
				os.Exit(1)
			}
			fmt.Println("VALID")
			return nil
		},
	}
}
