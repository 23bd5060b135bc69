// Package embedding adapts langchaingo embedding clients to the capability
// the pipelines need. The same embedder configuration must be used for both
// ingestion and querying within the lifetime of one index.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"document-qa/internal/config"
)

// ErrEmbedding indicates an embedding provider failure. It is not retried
// internally; it propagates to the caller.
var ErrEmbedding = errors.New("embedding provider failure")

// Embedder maps text to fixed-dimension vectors, singly or in an
// order-preserving batch.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

type providerEmbedder struct {
	inner *embeddings.EmbedderImpl
}

// NewEmbedder builds an embedder for the configured provider.
func NewEmbedder(llmConfig *config.LLMConfig) (Embedder, error) {
	switch llmConfig.Provider {
	case "ollama", "":
		return newOllamaEmbedder(llmConfig)
	case "openai":
		return newOpenAIEmbedder(llmConfig)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", llmConfig.Provider)
	}
}

func newOllamaEmbedder(llmConfig *config.LLMConfig) (Embedder, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &providerEmbedder{inner: embedder}, nil
}

func newOpenAIEmbedder(llmConfig *config.LLMConfig) (Embedder, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &providerEmbedder{inner: embedder}, nil
}

func (e *providerEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	return vec, nil
}

func (e *providerEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	return vecs, nil
}
