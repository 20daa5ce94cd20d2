package main

import (
	"fmt"
	"net/http"
	"testing"

	"pharma-label-verifier/internal/domain"
	apperrors "pharma-label-verifier/pkg/errors"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantType   apperrors.ErrorType
		wantStatus int
		wantExit   int
	}{
		{"invalid image", domain.ErrInvalidImage, apperrors.ErrorTypeInvalidInput, http.StatusBadRequest, 2},
		{"unreadable pdf", domain.ErrUnreadablePDF, apperrors.ErrorTypeInvalidInput, http.StatusBadRequest, 2},
		{"empty reference", domain.ErrInvalidReference, apperrors.ErrorTypeInvalidInput, http.StatusBadRequest, 2},
		{"total failure", fmt.Errorf("pipeline: %w", domain.ErrTotalExtractionFailure), apperrors.ErrorTypeProcessing, http.StatusUnprocessableEntity, 1},
		{"engine unavailable", fmt.Errorf("page 1: %w", domain.ErrEngineUnavailable), apperrors.ErrorTypeUnavailable, http.StatusServiceUnavailable, 1},
		{"transient engine error", &domain.EngineError{Engine: "googleai", Retryable: true, Err: fmt.Errorf("connection reset")}, apperrors.ErrorTypeEngine, http.StatusBadGateway, 1},
		{"unknown", fmt.Errorf("something else"), apperrors.ErrorTypeInternal, http.StatusInternalServerError, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appErr := classifyError(tc.err)
			if !apperrors.IsType(appErr, tc.wantType) {
				t.Fatalf("expected type %s, got %s", tc.wantType, appErr.Type)
			}
			if got := apperrors.GetStatusCode(appErr); got != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, got)
			}
			if got := exitCode(appErr); got != tc.wantExit {
				t.Fatalf("expected exit code %d, got %d", tc.wantExit, got)
			}
		})
	}
}

func TestResolveMediaType(t *testing.T) {
	pngBytes := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

	cases := []struct {
		name    string
		forced  string
		path    string
		content []byte
		want    domain.MediaType
		wantErr bool
	}{
		{"forced pdf", "pdf", "label.bin", nil, domain.MediaTypePDF, false},
		{"forced image", "image", "label.bin", nil, domain.MediaTypeImage, false},
		{"forced unknown", "spreadsheet", "label.bin", nil, "", true},
		{"pdf magic", "", "label.bin", []byte("%PDF-1.7 rest"), domain.MediaTypePDF, false},
		{"png magic", "", "label.bin", pngBytes, domain.MediaTypeImage, false},
		{"extension fallback", "", "label.jpeg", []byte("short"), domain.MediaTypeImage, false},
		{"unrecognized", "", "label.bin", []byte("short"), "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveMediaType(tc.forced, tc.path, tc.content)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
