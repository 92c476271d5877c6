// Package signer implements the Verdict Signer (C3): Ed25519 signatures
// binding a verdict's transaction ID to its integer quality score, so a
// downstream consumer can verify the score was never altered in transit.
package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

// Signer holds the Ed25519 keypair used to sign verdicts.
type Signer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// New loads a signing keypair from PEM files. If either path is empty, an
// ephemeral keypair is generated instead — acceptable for development but
// meaning every restart invalidates previously issued verdicts' provenance.
func New(privateKeyPath, publicKeyPath string) (*Signer, error) {
	if privateKeyPath == "" || publicKeyPath == "" {
		slog.Warn("signer: no signing key files configured, generating ephemeral key pair (not for production)")
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("signer: generate key pair: %w", err)
		}
		return &Signer{privateKey: priv, publicKey: pub}, nil
	}

	privPEM, err := os.ReadFile(privateKeyPath) //nolint:gosec // path comes from validated config
	if err != nil {
		return nil, fmt.Errorf("signer: read private key: %w", err)
	}
	block, _ := pem.Decode(privPEM)
	if block == nil {
		return nil, fmt.Errorf("signer: decode private key PEM")
	}
	privKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("signer: parse private key: %w", err)
	}
	edPriv, ok := privKey.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("signer: private key is not Ed25519")
	}

	pubPEM, err := os.ReadFile(publicKeyPath) //nolint:gosec // path comes from validated config
	if err != nil {
		return nil, fmt.Errorf("signer: read public key: %w", err)
	}
	pubBlock, _ := pem.Decode(pubPEM)
	if pubBlock == nil {
		return nil, fmt.Errorf("signer: decode public key PEM")
	}
	pubKey, err := x509.ParsePKIXPublicKey(pubBlock.Bytes)
	if err != nil {
		return nil, fmt.Errorf("signer: parse public key: %w", err)
	}
	edPub, ok := pubKey.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("signer: public key is not Ed25519")
	}

	return &Signer{privateKey: edPriv, publicKey: edPub}, nil
}

// NewFromKeypair wraps an already-generated Ed25519 keypair, used by
// oracles signing their own assessments rather than the core verdict key.
func NewFromKeypair(priv ed25519.PrivateKey, pub ed25519.PublicKey) *Signer {
	return &Signer{privateKey: priv, publicKey: pub}
}

// canonicalMessage renders the exact byte sequence a signature covers:
// "{transaction_id}:{integer_score}". Both sides of a signature check must
// derive this the same way, so the format is fixed and unexported.
func canonicalMessage(transactionID string, integerScore int) []byte {
	return []byte(transactionID + ":" + strconv.Itoa(integerScore))
}

// Sign produces a hex-encoded Ed25519 signature over (transactionID, score).
func (s *Signer) Sign(transactionID string, integerScore int) string {
	sig := ed25519.Sign(s.privateKey, canonicalMessage(transactionID, integerScore))
	return hex.EncodeToString(sig)
}

// Verify checks a hex-encoded signature against the given public key.
// Callers outside this process (the escrow consumer) perform the same
// check against PublicKeyHex without needing this package at all.
func Verify(publicKey ed25519.PublicKey, transactionID string, integerScore int, signatureHex string) bool {
	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}
	return ed25519.Verify(publicKey, canonicalMessage(transactionID, integerScore), sig)
}

// PublicKey returns the signer's public key.
func (s *Signer) PublicKey() ed25519.PublicKey { return s.publicKey }

// PublicKeyHex returns the signer's public key as lowercase hex, the wire
// format exposed via GET /v1/public-key.
func (s *Signer) PublicKeyHex() string { return hex.EncodeToString(s.publicKey) }

// PrivateKey exposes the raw private key for callers that need to sign
// with the same identity a Signer was constructed from.
func (s *Signer) PrivateKey() ed25519.PrivateKey { return s.privateKey }
