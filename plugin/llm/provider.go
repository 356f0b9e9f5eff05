package llm

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// Usage reports the token spend of one draft call, consumed by the
// finops tracker.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// UsageRecorder receives the token usage of every successful call.
type UsageRecorder interface {
	RecordUsage(usage Usage)
}

// Provider drafts reply text against an OpenAI-compatible endpoint.
// It satisfies reply.Generator.
type Provider struct {
	client   *openai.Client
	config   *Config
	recorder UsageRecorder
}

// NewProvider creates a provider from a validated config.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		return nil, errors.New("llm config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid llm config")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// WithUsageRecorder attaches a token-usage sink.
func (p *Provider) WithUsageRecorder(recorder UsageRecorder) *Provider {
	p.recorder = recorder
	return p
}

// Generate performs one chat completion and returns the sanitized
// reply body. Retryable failures back off exponentially up to
// MaxRetries attempts inside the per-call timeout.
func (p *Provider) Generate(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: p.config.Temperature,
		TopP:        p.config.TopP,
		MaxTokens:   p.config.MaxTokens,
	}

	var result string
	err := p.doWithRetry(ctx, func() error {
		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		if p.recorder != nil {
			p.recorder.RecordUsage(Usage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
				Model:            p.config.Model,
			})
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to draft reply")
	}

	return Sanitize(result), nil
}

// doWithRetry executes fn with exponential backoff, retrying only
// errors classified retryable.
func (p *Provider) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if !IsRetryable(err) {
				return err
			}
			if attempt < p.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("llm request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
