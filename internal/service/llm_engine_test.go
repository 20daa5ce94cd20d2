package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharma-label-verifier/internal/domain"

	"github.com/tmc/langchaingo/llms"
)

// fakeModel scripts GenerateContent responses for the retry loop tests.
type fakeModel struct {
	calls     int
	failTimes int
	err       error
	text      string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	if f.calls <= f.failTimes {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.text}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return f.text, nil
}

func newTestEngine(model llms.Model, retries int) *LLMEngine {
	return &LLMEngine{
		model:    model,
		provider: "googleai",
		modelTag: "gemini-2.0-flash",
		retry: RetryPolicy{
			MaxRetries: retries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
			Timeout:    time.Second,
		},
		logger: &MockLogger{},
	}
}

func TestLLMEngine_Success(t *testing.T) {
	model := &fakeModel{text: "  Paracetamol 500 mg  "}
	engine := newTestEngine(model, 3)

	res, err := engine.ExtractText(context.Background(), domain.PageUnit{Index: 0, Image: []byte("png")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "Paracetamol 500 mg" {
		t.Fatalf("expected trimmed text, got %q", res.Text)
	}
	if res.Model != "gemini-2.0-flash" {
		t.Fatalf("expected model tag, got %q", res.Model)
	}
	if model.calls != 1 {
		t.Fatalf("expected single call, got %d", model.calls)
	}
}

func TestLLMEngine_RetriesTransientThenSucceeds(t *testing.T) {
	model := &fakeModel{failTimes: 2, err: errors.New("connection refused"), text: "recovered"}
	engine := newTestEngine(model, 3)

	res, err := engine.ExtractText(context.Background(), domain.PageUnit{Index: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "recovered" {
		t.Fatalf("expected recovered text, got %q", res.Text)
	}
	if model.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", model.calls)
	}
}

func TestLLMEngine_ExhaustionWrapsUnavailable(t *testing.T) {
	model := &fakeModel{failTimes: 10, err: errors.New("status code: 503 unavailable")}
	engine := newTestEngine(model, 3)

	_, err := engine.ExtractText(context.Background(), domain.PageUnit{Index: 0})
	if !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable after exhaustion, got %v", err)
	}
	// 3 retries on top of the initial attempt.
	if model.calls != 4 {
		t.Fatalf("expected exactly 4 attempts, got %d", model.calls)
	}

	var engineErr *domain.EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected EngineError, got %T", err)
	}
	if !engineErr.Retryable {
		t.Fatal("expected exhausted transient failure to be marked retryable")
	}
}

func TestLLMEngine_AttemptBudgetIsRetriesPlusOne(t *testing.T) {
	for _, retries := range []int{0, 1, 3} {
		model := &fakeModel{failTimes: 100, err: errors.New("connection refused")}
		engine := newTestEngine(model, retries)

		_, err := engine.ExtractText(context.Background(), domain.PageUnit{Index: 0})
		if err == nil {
			t.Fatal("expected error")
		}
		if model.calls != retries+1 {
			t.Fatalf("retries=%d: expected %d attempts, got %d", retries, retries+1, model.calls)
		}
	}
}

func TestLLMEngine_NonTransientFailsImmediately(t *testing.T) {
	model := &fakeModel{failTimes: 10, err: errors.New("status code: 400 invalid request")}
	engine := newTestEngine(model, 3)

	_, err := engine.ExtractText(context.Background(), domain.PageUnit{Index: 0})
	if err == nil {
		t.Fatal("expected error")
	}
	if model.calls != 1 {
		t.Fatalf("expected single attempt for hard failure, got %d", model.calls)
	}

	var engineErr *domain.EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected EngineError, got %T", err)
	}
	if engineErr.Retryable {
		t.Fatal("expected hard failure to be non-retryable")
	}
}

func TestLLMEngine_CancelledContext(t *testing.T) {
	model := &fakeModel{text: "never seen"}
	engine := newTestEngine(model, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.ExtractText(ctx, domain.PageUnit{Index: 0})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if model.calls != 0 {
		t.Fatalf("expected no calls after cancellation, got %d", model.calls)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"deadline", context.DeadlineExceeded, true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"rate limit", errors.New("status code: 429"), true},
		{"server error", errors.New("status code: 500 internal"), true},
		{"bad request", errors.New("status code: 400"), false},
		{"auth", errors.New("invalid api key"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isTransient(tc.err); got != tc.want {
				t.Fatalf("isTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
