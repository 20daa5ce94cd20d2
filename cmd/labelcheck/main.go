package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"pharma-label-verifier/internal/config"
	"pharma-label-verifier/internal/domain"
	apperrors "pharma-label-verifier/pkg/errors"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	filePath := flag.String("file", "", "path to the label image or PDF to verify")
	reference := flag.String("reference", "", "verified reference text")
	referenceFile := flag.String("reference-file", "", "path to a file holding the verified reference text")
	mediaType := flag.String("type", "", "force media type: image or pdf (default: detect)")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: labelcheck -file <label.png|label.pdf> -reference <text> | -reference-file <path>")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	container := config.NewContainer(ctx)

	content, err := os.ReadFile(*filePath)
	if err != nil {
		container.Logger.Error("Failed to read input file", err, "file", *filePath)
		os.Exit(1)
	}
	if int64(len(content)) > container.Config.GetMaxFileSize() {
		container.Logger.Error("Input file exceeds size limit", nil,
			"file", *filePath, "size", len(content), "limit", container.Config.GetMaxFileSize())
		os.Exit(1)
	}

	refText := *reference
	if refText == "" && *referenceFile != "" {
		data, err := os.ReadFile(*referenceFile)
		if err != nil {
			container.Logger.Error("Failed to read reference file", err, "file", *referenceFile)
			os.Exit(1)
		}
		refText = string(data)
	}

	mt, err := resolveMediaType(*mediaType, *filePath, content)
	if err != nil {
		container.Logger.Error("Could not determine media type", err, "file", *filePath)
		os.Exit(1)
	}

	doc := domain.SourceDocument{
		ID:        filepath.Base(*filePath),
		Filename:  filepath.Base(*filePath),
		MediaType: mt,
		Content:   content,
	}

	result, err := container.VerificationService.Verify(ctx, doc, refText)
	if err != nil {
		appErr := classifyError(err)
		container.Logger.Error("Verification failed", appErr,
			"file", *filePath, "status", apperrors.GetStatusCode(appErr))
		if out, jsonErr := json.Marshal(appErr); jsonErr == nil {
			fmt.Fprintln(os.Stderr, string(out))
		}
		os.Exit(exitCode(appErr))
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		container.Logger.Error("Failed to encode result", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// classifyError maps pipeline failures onto structured application errors
// for the machine-readable error output.
func classifyError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrUnreadablePDF),
		errors.Is(err, domain.ErrEmptyDocument),
		errors.Is(err, domain.ErrUnsupportedMediaType),
		errors.Is(err, domain.ErrInvalidReference):
		return apperrors.NewInvalidInputError("invalid input", err.Error())
	case errors.Is(err, domain.ErrTotalExtractionFailure):
		return apperrors.NewProcessingError("no page could be extracted", err)
	case errors.Is(err, domain.ErrEngineUnavailable):
		return apperrors.NewUnavailableError("ocr engine unreachable", err)
	case domain.IsRetryable(err):
		return apperrors.NewEngineError("ocr engine failed", err)
	default:
		return apperrors.NewInternalError("verification failed", err)
	}
}

// exitCode distinguishes caller mistakes from pipeline failures: bad input
// exits 2 like a usage error, everything else exits 1.
func exitCode(err *apperrors.AppError) int {
	if apperrors.IsType(err, apperrors.ErrorTypeInvalidInput) {
		return 2
	}
	return 1
}

// resolveMediaType honors an explicit -type flag, then sniffs magic bytes,
// then falls back to the file extension.
func resolveMediaType(forced, path string, content []byte) (domain.MediaType, error) {
	switch forced {
	case "image":
		return domain.MediaTypeImage, nil
	case "pdf":
		return domain.MediaTypePDF, nil
	case "":
	default:
		return "", fmt.Errorf("unknown media type %q", forced)
	}

	if bytes.HasPrefix(content, []byte("%PDF")) {
		return domain.MediaTypePDF, nil
	}
	if len(content) >= 8 {
		switch {
		case bytes.HasPrefix(content, []byte{0x89, 'P', 'N', 'G'}):
			return domain.MediaTypeImage, nil
		case bytes.HasPrefix(content, []byte{0xFF, 0xD8, 0xFF}):
			return domain.MediaTypeImage, nil
		case bytes.HasPrefix(content, []byte("GIF8")):
			return domain.MediaTypeImage, nil
		case bytes.HasPrefix(content, []byte("BM")):
			return domain.MediaTypeImage, nil
		case bytes.HasPrefix(content, []byte{0x49, 0x49, 0x2A, 0x00}),
			bytes.HasPrefix(content, []byte{0x4D, 0x4D, 0x00, 0x2A}):
			return domain.MediaTypeImage, nil
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return domain.MediaTypePDF, nil
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return domain.MediaTypeImage, nil
	}
	return "", fmt.Errorf("unrecognized file format")
}
