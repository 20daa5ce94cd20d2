package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"pharma-label-verifier/internal/domain"
)

// Mock implementations shared across the service tests

type MockLogger struct{}

func (m *MockLogger) Info(msg string, fields ...interface{})             {}
func (m *MockLogger) Error(msg string, err error, fields ...interface{}) {}
func (m *MockLogger) Debug(msg string, fields ...interface{})            {}
func (m *MockLogger) Warn(msg string, fields ...interface{})             {}

// MockEngine is a scriptable OCR engine. Responses are keyed by 0-based
// page index; pages listed in failPages fail with the configured error.
type MockEngine struct {
	name      string
	responses map[int]string
	failPages map[int]error
	failAll   error

	mu    sync.Mutex
	calls []int
}

func NewMockEngine(name string) *MockEngine {
	return &MockEngine{
		name:      name,
		responses: make(map[int]string),
		failPages: make(map[int]error),
	}
}

func (m *MockEngine) Name() string { return m.name }

func (m *MockEngine) ExtractText(ctx context.Context, page domain.PageUnit) (domain.EngineResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, page.Index)
	m.mu.Unlock()

	if m.failAll != nil {
		return domain.EngineResult{}, m.failAll
	}
	if err, ok := m.failPages[page.Index]; ok {
		return domain.EngineResult{}, err
	}
	text, ok := m.responses[page.Index]
	if !ok {
		text = "text"
	}
	return domain.EngineResult{Text: text, Model: m.name + "-model"}, nil
}

func (m *MockEngine) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// testPNG renders a small gradient image so decode, resize and contrast all
// have real pixels to chew on.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8((x * 17) % 200)
			img.Set(x, y, color.RGBA{R: v, G: v / 2, B: 255 - v, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}
