package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
)

// OllamaProvider generates embeddings using a local Ollama server. It is an
// optional, pluggable alternative to DeterministicProvider for deployments
// that want real sentence-embedding semantics and can tolerate the model's
// own availability and performance characteristics; the default path for
// this system does not depend on it being reachable.
type OllamaProvider struct {
	baseURL       string
	model         string
	httpClient    *http.Client
	dimensions    int
	maxInputChars int
}

// defaultMaxInputChars caps embedding input length so requests stay within
// a typical embedding model's context window; /api/embed truncates further
// as a safety net if this estimate overshoots.
const defaultMaxInputChars = 2000

// NewOllamaProvider creates a provider that calls Ollama's embedding API.
// dimensions must match the chosen model's native output size.
func NewOllamaProvider(baseURL, model string, dimensions int) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaProvider{
		baseURL:       baseURL,
		model:         model,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		dimensions:    dimensions,
		maxInputChars: defaultMaxInputChars,
	}
}

func (p *OllamaProvider) Dimensions() int { return p.dimensions }

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed generates a single embedding vector from text. A non-nil error
// here is the EmbeddingFailure case from the error handling design: the
// caller degrades to a 0 semantic score with a recorded issue rather than
// failing the request.
func (p *OllamaProvider) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	text = truncateText(text, p.maxInputChars)

	reqBody, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Input: text})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embed", bytes.NewReader(reqBody))
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("ollama: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("ollama: send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return pgvector.Vector{}, fmt.Errorf("ollama: status %d: %s", resp.StatusCode, string(body))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return pgvector.Vector{}, fmt.Errorf("ollama: decode response: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return pgvector.Vector{}, fmt.Errorf("ollama: empty embedding returned")
	}

	return pgvector.NewVector(result.Embeddings[0]), nil
}

// truncateText trims text to at most maxChars, breaking at the last word
// boundary found so truncation doesn't split a token mid-word.
func truncateText(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	cut := text[:maxChars]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}
