package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

// Config for image processing
type Config struct {
	MaxWidth int // Max width for resized variants (default 1600)
	Quality  int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth: 1600,
		Quality:  85,
	}
}

// Processor produces width-constrained variants of gallery photos
// for the image proxy endpoint.
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	if config.MaxWidth <= 0 {
		config.MaxWidth = DefaultConfig().MaxWidth
	}
	if config.Quality <= 0 {
		config.Quality = DefaultConfig().Quality
	}
	return &Processor{config: config}
}

// Resize scales the image down to fit within the given width, preserving
// aspect ratio. Images already narrower than width pass through re-encoded.
func (p *Processor) Resize(reader io.Reader, width int) ([]byte, string, error) {
	if width <= 0 || width > p.config.MaxWidth {
		width = p.config.MaxWidth
	}

	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	data, err := p.encode(img, format)
	if err != nil {
		return nil, "", err
	}
	return data, mimeFromFormat(format), nil
}

func (p *Processor) encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.config.Quality}); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func mimeFromFormat(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
