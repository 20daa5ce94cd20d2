package config

import (
	"os"
	"strconv"
	"time"

	"pharma-label-verifier/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	LogLevel    string
	MaxFileSize int64

	// Engine selection: primary_first, primary_only, fallback_only.
	EngineMode string

	// Primary (vision LLM) engine.
	LLMProvider       string
	LLMEndpoint       string
	LLMModel          string
	LLMAPIKey         string
	OCRTimeout        time.Duration
	OCRMaxRetries     int
	OCRRetryBaseDelay time.Duration

	// Fallback (local) engine.
	TesseractLanguage string

	// Comparison / decision.
	SimilarityThreshold int

	// Preprocessing and chunking.
	MaxImageWidth int
	PDFRenderDPI  float64
	MaxBatchPages int
	MaxBatchBytes int
	PageWorkers   int
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		MaxFileSize: getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default

		EngineMode: getEnvOrDefault("OCR_ENGINE_MODE", "primary_first"),

		LLMProvider: getEnvOrDefault("LLM_PROVIDER", "googleai"),
		LLMEndpoint: getEnvOrDefault("LLM_ENDPOINT", ""),
		LLMModel:    getEnvOrDefault("LLM_MODEL", "gemini-2.0-flash"),
		// GOOGLE_API_KEY kept as a fallback name for googleai deployments.
		LLMAPIKey:         getEnvOrDefault("LLM_API_KEY", getEnvOrDefault("GOOGLE_API_KEY", "")),
		OCRTimeout:        time.Duration(getEnvIntOrDefault("OCR_TIMEOUT_SECONDS", 30)) * time.Second,
		OCRMaxRetries:     getEnvIntOrDefault("OCR_MAX_RETRIES", 3),
		OCRRetryBaseDelay: time.Duration(getEnvIntOrDefault("OCR_RETRY_BASE_DELAY_MS", 500)) * time.Millisecond,

		TesseractLanguage: getEnvOrDefault("TESSERACT_LANGUAGE", "eng"),

		SimilarityThreshold: getEnvIntOrDefault("SIMILARITY_THRESHOLD", 95),

		MaxImageWidth: getEnvIntOrDefault("MAX_IMAGE_WIDTH", 1200),
		PDFRenderDPI:  getEnvFloatOrDefault("PDF_RENDER_DPI", 150),
		MaxBatchPages: getEnvIntOrDefault("MAX_BATCH_PAGES", 10),
		MaxBatchBytes: getEnvIntOrDefault("MAX_BATCH_BYTES", 8*1024*1024),
		PageWorkers:   getEnvIntOrDefault("PAGE_WORKERS", 4),
	}
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetMaxFileSize returns the maximum allowed input file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetEngineMode returns the engine selection mode
func (c *AppConfig) GetEngineMode() string {
	return c.EngineMode
}

// GetLLMProvider returns the vision LLM provider name
func (c *AppConfig) GetLLMProvider() string {
	return c.LLMProvider
}

// GetLLMEndpoint returns the vision LLM endpoint URL, empty for the
// provider's default
func (c *AppConfig) GetLLMEndpoint() string {
	return c.LLMEndpoint
}

// GetLLMModel returns the vision LLM model identifier
func (c *AppConfig) GetLLMModel() string {
	return c.LLMModel
}

// GetLLMAPIKey returns the vision LLM API key
func (c *AppConfig) GetLLMAPIKey() string {
	return c.LLMAPIKey
}

// GetOCRTimeout returns the per-call timeout for the primary engine
func (c *AppConfig) GetOCRTimeout() time.Duration {
	return c.OCRTimeout
}

// GetOCRMaxRetries returns the retry count for transient primary failures
func (c *AppConfig) GetOCRMaxRetries() int {
	return c.OCRMaxRetries
}

// GetOCRRetryBaseDelay returns the base backoff delay between retries
func (c *AppConfig) GetOCRRetryBaseDelay() time.Duration {
	return c.OCRRetryBaseDelay
}

// GetSimilarityThreshold returns the minimum match percentage for PASS
func (c *AppConfig) GetSimilarityThreshold() int {
	return c.SimilarityThreshold
}

// GetMaxImageWidth returns the preprocessing width cap in pixels
func (c *AppConfig) GetMaxImageWidth() int {
	return c.MaxImageWidth
}

// GetPDFRenderDPI returns the rasterization resolution for PDF pages
func (c *AppConfig) GetPDFRenderDPI() float64 {
	return c.PDFRenderDPI
}

// GetMaxBatchPages returns the page budget per processing batch
func (c *AppConfig) GetMaxBatchPages() int {
	return c.MaxBatchPages
}

// GetMaxBatchBytes returns the byte budget per processing batch
func (c *AppConfig) GetMaxBatchBytes() int {
	return c.MaxBatchBytes
}

// GetPageWorkers returns the bounded concurrency for page extraction
func (c *AppConfig) GetPageWorkers() int {
	return c.PageWorkers
}

// GetTesseractLanguage returns the language passed to the local engine
func (c *AppConfig) GetTesseractLanguage() string {
	return c.TesseractLanguage
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
