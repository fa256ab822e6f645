// Package openai wraps the official openai-go SDK as a JSON completion
// backend. Structured outputs use strict JSON schemas.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxRetries  = 3
)

// Config captures the settings used to reach the OpenAI API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client issues chat completions that must return JSON.
type Client struct {
	cfg    Config
	client sdk.Client
}

// Option customizes the client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	maxRetries int
}

// WithHTTPClient overrides the HTTP client used by the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithMaxRetries overrides the SDK retry count.
func WithMaxRetries(n int) Option {
	return func(o *clientOptions) {
		o.maxRetries = n
	}
}

// NewClient constructs a client. An empty BaseURL uses the SDK default.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	o := clientOptions{httpClient: &http.Client{Timeout: timeout}, maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		opt(&o)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(o.httpClient),
		option.WithMaxRetries(o.maxRetries),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{cfg: cfg, client: sdk.NewClient(reqOpts...)}
}

// CompleteJSON asks for a JSON object response.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params, err := c.baseParams(systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	params.ResponseFormat = sdk.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &sdk.ResponseFormatJSONObjectParam{},
	}
	return c.complete(ctx, params)
}

// CompleteSchema asks for a response conforming to schema.
func (c *Client) CompleteSchema(ctx context.Context, systemPrompt, userPrompt, name string, schema any) (string, error) {
	if schema == nil {
		return c.CompleteJSON(ctx, systemPrompt, userPrompt)
	}
	params, err := c.baseParams(systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}
	params.ResponseFormat = sdk.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &sdk.ResponseFormatJSONSchemaParam{
			JSONSchema: sdk.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   name,
				Schema: schema,
				Strict: sdk.Bool(true),
			},
		},
	}
	return c.complete(ctx, params)
}

// HealthCheck sends a minimal JSON request.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.CompleteJSON(ctx, "You must respond with JSON only.", `Respond with {"ok":true}`)
	if err != nil {
		return fmt.Errorf("openai health: %w", err)
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return fmt.Errorf("openai health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("openai health: unexpected response")
	}
	return nil
}

func (c *Client) baseParams(systemPrompt, userPrompt string) (sdk.ChatCompletionNewParams, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	switch {
	case systemPrompt == "":
		return sdk.ChatCompletionNewParams{}, errors.New("openai complete: system prompt required")
	case userPrompt == "":
		return sdk.ChatCompletionNewParams{}, errors.New("openai complete: user prompt required")
	case c.cfg.APIKey == "":
		return sdk.ChatCompletionNewParams{}, errors.New("openai complete: api key required")
	}
	return sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(c.cfg.Model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(systemPrompt),
			sdk.UserMessage(userPrompt),
		},
		Temperature: sdk.Float(0),
	}, nil
}

func (c *Client) complete(ctx context.Context, params sdk.ChatCompletionNewParams) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai complete: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai complete: empty choices")
	}
	choice := completion.Choices[0]
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai complete: empty content (finish_reason=%q, refusal=%q)",
			choice.FinishReason, choice.Message.Refusal)
	}
	return content, nil
}
