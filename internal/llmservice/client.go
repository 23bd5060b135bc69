// Package llmservice adapts langchaingo chat models to the generation
// capability the answering pipeline needs.
package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"document-qa/internal/config"
)

// ErrGeneration indicates a generation provider failure.
var ErrGeneration = errors.New("generation provider failure")

// Generator maps a prompt to a text completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client calls the configured chat model with deterministic settings so
// repeated identical queries against an unchanged index yield stable answers.
type Client struct {
	model       llms.Model
	temperature float64
}

func NewClient(llmConfig *config.LLMConfig, temperature float64) (*Client, error) {
	var (
		model llms.Model
		err   error
	)
	switch llmConfig.Provider {
	case "ollama", "":
		model, err = ollama.New(
			ollama.WithServerURL(llmConfig.BaseURL),
			ollama.WithModel(llmConfig.Model),
		)
	case "openai":
		model, err = openai.New(
			openai.WithBaseURL(llmConfig.BaseURL),
			openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
			openai.WithModel(llmConfig.Model),
		)
	default:
		return nil, fmt.Errorf("unknown inference provider: %s", llmConfig.Provider)
	}
	if err != nil {
		return nil, err
	}
	return &Client{model: model, temperature: temperature}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return completion, nil
}
