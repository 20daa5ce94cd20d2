package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"pharma-label-verifier/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const extractionPrompt = "Extract all text from this pharmaceutical label exactly as it appears. " +
	"Return only the extracted text, no explanations, no formatting, no extra words."

// RetryPolicy bounds retries against the remote vision model. MaxRetries
// counts additional attempts after the first, so a page sees at most
// MaxRetries+1 calls.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Timeout    time.Duration
}

// LLMEngineConfig carries the provider selection and credentials for the
// remote vision engine.
type LLMEngineConfig struct {
	Provider string
	Endpoint string
	Model    string
	APIKey   string
	Retry    RetryPolicy
}

// LLMEngine extracts label text by sending page images to a multimodal LLM.
// It is the primary engine of the pipeline.
type LLMEngine struct {
	model    llms.Model
	provider string
	modelTag string
	retry    RetryPolicy
	logger   domain.Logger
}

// NewLLMEngine builds the remote engine for the configured provider.
func NewLLMEngine(ctx context.Context, cfg LLMEngineConfig, logger domain.Logger) (*LLMEngine, error) {
	retry := cfg.Retry
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 3
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = 500 * time.Millisecond
	}
	if retry.MaxDelay <= 0 {
		retry.MaxDelay = 8 * time.Second
	}
	if retry.Timeout <= 0 {
		retry.Timeout = 30 * time.Second
	}

	model, err := buildModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s provider: %w", cfg.Provider, err)
	}

	return &LLMEngine{
		model:    model,
		provider: cfg.Provider,
		modelTag: cfg.Model,
		retry:    retry,
		logger:   logger,
	}, nil
}

func buildModel(ctx context.Context, cfg LLMEngineConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "googleai":
		return googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.Endpoint != "" {
			opts = append(opts, ollama.WithServerURL(cfg.Endpoint))
		}
		return ollama.New(opts...)
	case "openai":
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithToken(cfg.APIKey),
		}
		if cfg.Endpoint != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Endpoint))
		}
		return openai.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// Name returns the engine identifier used in page results.
func (e *LLMEngine) Name() string {
	return e.provider
}

// ExtractText sends the page image to the model with a bounded retry loop:
// one initial attempt plus up to MaxRetries more. Retries apply only to
// transient failures. When every attempt fails the returned error wraps
// domain.ErrEngineUnavailable so callers can trigger the fallback engine.
func (e *LLMEngine) ExtractText(ctx context.Context, page domain.PageUnit) (domain.EngineResult, error) {
	start := time.Now()
	maxAttempts := e.retry.MaxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.EngineResult{}, err
		}

		text, err := e.requestOnce(ctx, page)
		if err == nil {
			return domain.EngineResult{
				Text:     text,
				Model:    e.modelTag,
				Duration: time.Since(start),
			}, nil
		}

		lastErr = err
		if !isTransient(err) {
			e.logger.Error("LLM extraction failed", err, "page", page.Index+1, "attempt", attempt)
			return domain.EngineResult{}, &domain.EngineError{Engine: e.provider, Retryable: false, Err: err}
		}

		e.logger.Warn("LLM extraction attempt failed", "page", page.Index+1, "attempt", attempt, "error", err.Error())
		if attempt < maxAttempts {
			if err := e.backoff(ctx, attempt); err != nil {
				return domain.EngineResult{}, err
			}
		}
	}

	return domain.EngineResult{}, &domain.EngineError{
		Engine:    e.provider,
		Retryable: true,
		Err:       fmt.Errorf("%w: %d attempts exhausted: %v", domain.ErrEngineUnavailable, maxAttempts, lastErr),
	}
}

func (e *LLMEngine) requestOnce(ctx context.Context, page domain.PageUnit) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.retry.Timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart("image/png", page.Image),
				llms.TextPart(extractionPrompt),
			},
		},
	}

	resp, err := e.model.GenerateContent(reqCtx, content)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// backoff sleeps for an exponentially growing delay, capped at MaxDelay.
func (e *LLMEngine) backoff(ctx context.Context, attempt int) error {
	delay := e.retry.BaseDelay << (attempt - 1)
	if delay > e.retry.MaxDelay {
		delay = e.retry.MaxDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isTransient reports whether a request failure is worth retrying. Timeouts,
// connection problems, rate limits and 5xx responses are transient; anything
// else is treated as a hard failure.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"eof",
		"timeout",
		"unavailable",
		"status code: 5",
		"429",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
