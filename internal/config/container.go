package config

import (
	"context"

	"pharma-label-verifier/internal/domain"
	"pharma-label-verifier/internal/service"
	"pharma-label-verifier/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config              domain.Config
	Logger              domain.Logger
	Preprocessor        *service.ImagePreprocessor
	Chunker             *service.PDFChunker
	Orchestrator        *service.OCROrchestrator
	ValidationService   *service.ValidationService
	ComparisonService   *service.ComparisonService
	DecisionEngine      *service.DecisionEngine
	VerificationService *service.VerificationService
}

// NewContainer wires the full pipeline from configuration. When the remote
// engine cannot be initialized the pipeline degrades to the local engine
// instead of failing, so offline runs still work.
func NewContainer(ctx context.Context) *Container {
	cfg := NewConfig()
	log := logger.NewLogger(cfg.GetLogLevel())

	pre := service.NewImagePreprocessor(service.PreprocessOptions{
		MaxWidth: cfg.GetMaxImageWidth(),
	}, log)

	chunker := service.NewPDFChunker(pre, service.ChunkPolicy{
		RenderDPI:     cfg.GetPDFRenderDPI(),
		MaxBatchPages: cfg.GetMaxBatchPages(),
		MaxBatchBytes: cfg.GetMaxBatchBytes(),
	}, log)

	mode := service.EngineMode(cfg.GetEngineMode())

	var primary domain.OCREngine
	if mode != service.ModeFallbackOnly {
		llm, err := service.NewLLMEngine(ctx, service.LLMEngineConfig{
			Provider: cfg.GetLLMProvider(),
			Endpoint: cfg.GetLLMEndpoint(),
			Model:    cfg.GetLLMModel(),
			APIKey:   cfg.GetLLMAPIKey(),
			Retry: service.RetryPolicy{
				MaxRetries: cfg.GetOCRMaxRetries(),
				BaseDelay:  cfg.GetOCRRetryBaseDelay(),
				Timeout:    cfg.GetOCRTimeout(),
			},
		}, log)
		if err != nil {
			log.Warn("Remote engine unavailable, using local engine only", "error", err.Error())
			mode = service.ModeFallbackOnly
		} else {
			primary = llm
		}
	}

	fallback := service.NewTesseractEngine(cfg.GetTesseractLanguage(), log)

	orchestrator := service.NewOCROrchestrator(primary, fallback, pre, chunker, service.OrchestratorOptions{
		Mode:        mode,
		PageWorkers: cfg.GetPageWorkers(),
	}, log)

	validator := service.NewValidationService(log)
	comparer := service.NewComparisonService(log)
	decider := service.NewDecisionEngine(cfg.GetSimilarityThreshold())
	verifier := service.NewVerificationService(orchestrator, validator, comparer, decider, log)

	return &Container{
		Config:              cfg,
		Logger:              log,
		Preprocessor:        pre,
		Chunker:             chunker,
		Orchestrator:        orchestrator,
		ValidationService:   validator,
		ComparisonService:   comparer,
		DecisionEngine:      decider,
		VerificationService: verifier,
	}
}
