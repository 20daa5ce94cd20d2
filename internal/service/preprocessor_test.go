package service

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"pharma-label-verifier/internal/domain"
)

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	return img
}

func TestPreprocess_ResizesWideImages(t *testing.T) {
	pre := NewImagePreprocessor(PreprocessOptions{MaxWidth: 100}, &MockLogger{})

	out, err := pre.Preprocess(testPNG(t, 400, 200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img := decodePNG(t, out)
	if img.Bounds().Dx() != 100 {
		t.Fatalf("expected width 100, got %d", img.Bounds().Dx())
	}
	if img.Bounds().Dy() != 50 {
		t.Fatalf("expected height 50 to preserve aspect ratio, got %d", img.Bounds().Dy())
	}
}

func TestPreprocess_KeepsSmallImages(t *testing.T) {
	pre := NewImagePreprocessor(PreprocessOptions{MaxWidth: 1200}, &MockLogger{})

	out, err := pre.Preprocess(testPNG(t, 80, 60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img := decodePNG(t, out)
	if img.Bounds().Dx() != 80 || img.Bounds().Dy() != 60 {
		t.Fatalf("expected 80x60 untouched, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestPreprocess_OutputIsGrayscale(t *testing.T) {
	pre := NewImagePreprocessor(PreprocessOptions{MaxWidth: 1200}, &MockLogger{})

	out, err := pre.Preprocess(testPNG(t, 50, 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img := decodePNG(t, out)
	if _, ok := img.(*image.Gray); !ok {
		t.Fatalf("expected grayscale output, got %T", img)
	}
}

func TestPreprocess_Deterministic(t *testing.T) {
	pre := NewImagePreprocessor(PreprocessOptions{MaxWidth: 100}, &MockLogger{})
	input := testPNG(t, 300, 200)

	first, err := pre.Preprocess(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := pre.Preprocess(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatal("expected identical output for identical input")
	}
}

func TestPreprocess_CorruptedInput(t *testing.T) {
	pre := NewImagePreprocessor(PreprocessOptions{MaxWidth: 1200}, &MockLogger{})

	_, err := pre.Preprocess([]byte("definitely not an image"))
	if !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestStretchContrast_FlatImageUntouched(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range gray.Pix {
		gray.Pix[i] = 128
	}

	stretchContrast(gray)

	for i, v := range gray.Pix {
		if v != 128 {
			t.Fatalf("expected flat image untouched, pixel %d became %d", i, v)
		}
	}
}

func TestStretchContrast_RemapsToFullRange(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 1))
	gray.Pix = []uint8{100, 150, 200}

	stretchContrast(gray)

	if gray.Pix[0] != 0 {
		t.Fatalf("expected min remapped to 0, got %d", gray.Pix[0])
	}
	if gray.Pix[2] != 255 {
		t.Fatalf("expected max remapped to 255, got %d", gray.Pix[2])
	}
	if gray.Pix[1] != 127 {
		t.Fatalf("expected midpoint remapped to 127, got %d", gray.Pix[1])
	}
}
