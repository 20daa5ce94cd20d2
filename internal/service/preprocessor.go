package service

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"pharma-label-verifier/internal/domain"

	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// PreprocessOptions bounds the normalized image produced for the engines.
type PreprocessOptions struct {
	// MaxWidth caps the output width in pixels; larger inputs are scaled
	// down preserving aspect ratio. Zero or negative disables scaling.
	MaxWidth int
}

// ImagePreprocessor normalizes raster input before engine submission:
// bounded resize, grayscale, contrast stretch. Deterministic and
// side-effect-free; the same bytes in always produce the same bytes out.
type ImagePreprocessor struct {
	opts   PreprocessOptions
	logger domain.Logger
}

// NewImagePreprocessor creates a new image preprocessor
func NewImagePreprocessor(opts PreprocessOptions, logger domain.Logger) *ImagePreprocessor {
	return &ImagePreprocessor{
		opts:   opts,
		logger: logger,
	}
}

// Preprocess decodes imageBytes (PNG/JPEG/GIF/BMP/TIFF) and returns the
// normalized page image as PNG bytes. Undecodable input fails with
// domain.ErrInvalidImage.
func (p *ImagePreprocessor) Preprocess(imageBytes []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}
	p.logger.Debug("Decoded input image", "format", format, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return p.PreprocessImage(img)
}

// PreprocessImage normalizes an already-decoded image. Used by the PDF
// chunker so rendered pages skip the extra decode round trip.
func (p *ImagePreprocessor) PreprocessImage(img image.Image) ([]byte, error) {
	img = p.resize(img)
	gray := grayscale(img)
	stretchContrast(gray)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("failed to encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *ImagePreprocessor) resize(img image.Image) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	if p.opts.MaxWidth <= 0 || width <= p.opts.MaxWidth {
		return img
	}

	ratio := float64(p.opts.MaxWidth) / float64(width)
	height := int(float64(bounds.Dy()) * ratio)
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, p.opts.MaxWidth, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

func grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return gray
}

// stretchContrast remaps the observed luma range onto the full 0-255 span.
// A flat image (single luma value) is left untouched.
func stretchContrast(gray *image.Gray) {
	min, max := uint8(255), uint8(0)
	for _, v := range gray.Pix {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min >= max {
		return
	}

	span := int(max) - int(min)
	for i, v := range gray.Pix {
		gray.Pix[i] = uint8((int(v) - int(min)) * 255 / span)
	}
}
