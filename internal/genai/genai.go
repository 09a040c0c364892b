// Package genai generates personalized health content through the OpenAI
// Chat Completions API.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// completions is the slice of the OpenAI client the Client needs. Tests
// substitute a canned implementation.
type completions interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration for a Client.
type Opts struct {
	APIKey      string
	Model       openai.ChatModel
	Timeout     time.Duration
	MaxTokens   int64
	Temperature float64
}

// Option configures a Client.
type Option func(*Opts)

// WithAPIKey sets the API key explicitly instead of reading OPENAI_API_KEY.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the completion model.
func WithModel(model openai.ChatModel) Option {
	return func(o *Opts) { o.Model = model }
}

// WithTimeout bounds each completion call.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	chat        completions
	model       openai.ChatModel
	timeout     time.Duration
	maxTokens   int64
	temperature float64
}

// NewClient creates a GenAI client. The API key comes from options or the
// OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	o := Opts{
		Model:       openai.ChatModelGPT4oMini,
		Timeout:     30 * time.Second,
		MaxTokens:   300,
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.APIKey == "" {
		o.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if o.APIKey == "" {
		return nil, fmt.Errorf("genai: no API key provided and OPENAI_API_KEY not set")
	}

	cli := openai.NewClient(option.WithAPIKey(o.APIKey))
	slog.Debug("GenAI client created", "model", o.Model, "timeout", o.Timeout)
	return &Client{
		chat:        &cli.Chat.Completions,
		model:       o.Model,
		timeout:     o.Timeout,
		maxTokens:   o.MaxTokens,
		temperature: o.Temperature,
	}, nil
}

// Generate runs one completion for a system/user prompt pair. The call is
// bounded by the client timeout on top of whatever deadline ctx carries.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("genai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("genai completion returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("genai completion returned empty content")
	}
	return content, nil
}

// GenerateFor builds the prompt pair for a topic and runs the completion.
// On failure the topic's canned fallback text is returned along with the
// error, so callers can still deliver something useful.
func (c *Client) GenerateFor(ctx context.Context, topic Topic, pc PromptContext) (string, error) {
	systemPrompt, userPrompt := BuildPrompt(topic, pc)
	out, err := c.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		slog.Warn("GenAI generation failed, using fallback", "topic", topic, "error", err)
		return Fallback(topic), err
	}
	return out, nil
}
