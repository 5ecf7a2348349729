package imageprocessor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessor_FitShrinksLargeImages(t *testing.T) {
	p := NewProcessor(0, 100)

	out, resized, err := p.Fit(encodePNG(t, 400, 200))
	require.NoError(t, err)
	assert.True(t, resized)

	w, h, err := Dimensions(out)
	require.NoError(t, err)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)
}

func TestProcessor_FitKeepsSmallImages(t *testing.T) {
	p := NewProcessor(90, 100)
	in := encodePNG(t, 80, 40)

	out, resized, err := p.Fit(in)
	require.NoError(t, err)
	assert.False(t, resized)
	assert.Equal(t, in, out)
}

func TestProcessor_FitPassesThroughUnknownFormats(t *testing.T) {
	p := NewProcessor(90, 10)
	in := []byte("%PDF-1.4 not an image")

	out, resized, err := p.Fit(in)
	require.NoError(t, err)
	assert.False(t, resized)
	assert.Equal(t, in, out)
}
