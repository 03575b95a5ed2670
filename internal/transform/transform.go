// Package transform talks to the text-transformation collaborator: a language
// model that receives a plain-text prompt and returns plain text.
package transform

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bethropolis/strata/internal/config"
	"github.com/bethropolis/strata/internal/logger"
	"github.com/sashabaranov/go-openai"
)

var (
	// ErrNoAPIKey is returned when no API key is configured.
	ErrNoAPIKey = errors.New("no API key configured")
	// ErrEmptyResponse is returned when the model answers without any choice.
	ErrEmptyResponse = errors.New("model returned no choices")
)

// Transformer turns a prompt into text. Implementations must be safe for
// concurrent use.
type Transformer interface {
	Transform(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to the Transformer interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Transform calls f.
func (f Func) Transform(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// OpenAI is a Transformer backed by the chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a client from the transform configuration. The API key is read
// from the environment variable named by cfg.APIKeyEnv.
func NewOpenAI(cfg config.TransformConfig) (*OpenAI, error) {
	envName := cfg.APIKeyEnv
	if envName == "" {
		envName = config.DefaultAPIKeyEnv
	}
	key := os.Getenv(envName)
	if key == "" {
		return nil, fmt.Errorf("%w: set %s", ErrNoAPIKey, envName)
	}
	return NewOpenAIWithKey(key, cfg.Model, cfg.BaseURL), nil
}

// NewOpenAIWithKey creates a client with an explicit key. Empty model and baseURL
// select the defaults.
func NewOpenAIWithKey(key, model, baseURL string) *OpenAI {
	clientCfg := openai.DefaultConfig(key)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if model == "" {
		model = config.DefaultModel
	}
	logger.Debugf("Initializing OpenAI client, model %s", model)
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// Transform sends the prompt as a single user message.
func (o *OpenAI) Transform(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	}
	logger.DebugTagf("transform", "Sending prompt to %s (%d bytes)", o.model, len(prompt))

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	logger.DebugTagf("transform", "Received response, finish reason %s", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}
