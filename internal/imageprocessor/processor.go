package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

const (
	DefaultQuality      = 85
	DefaultMaxDimension = 1600
)

// Processor shrinks uploaded prescription scans so their longest side fits
// within maxDimension. Only JPEG and PNG are decoded; other formats pass
// through untouched.
type Processor struct {
	quality      int
	maxDimension int
}

func NewProcessor(quality, maxDimension int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Processor{
		quality:      quality,
		maxDimension: maxDimension,
	}
}

// Fit returns data re-encoded to fit the size limit. resized is false when
// the image was already small enough or is not a format Fit handles.
func (p *Processor) Fit(data []byte) (out []byte, resized bool, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return data, false, nil
	}
	if format != "jpeg" && format != "png" {
		return data, false, nil
	}
	if cfg.Width <= p.maxDimension && cfg.Height <= p.maxDimension {
		return data, false, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode image: %w", err)
	}
	scaled := p.resize(img, p.maxDimension, p.maxDimension)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, false, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case "png":
		if err := png.Encode(&buf, scaled); err != nil {
			return nil, false, fmt.Errorf("failed to encode PNG: %w", err)
		}
	}
	return buf.Bytes(), true, nil
}

// resize keeps the aspect ratio.
func (p *Processor) resize(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	ratio := float64(bounds.Dx()) / float64(bounds.Dy())

	newWidth := maxWidth
	newHeight := maxHeight
	if float64(maxWidth)/float64(maxHeight) > ratio {
		newWidth = int(float64(maxHeight) * ratio)
	} else {
		newHeight = int(float64(maxWidth) / ratio)
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Dimensions reports the size of a JPEG or PNG without decoding pixels.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
