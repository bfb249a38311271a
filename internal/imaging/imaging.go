// Package imaging constrains uploaded photos to a display envelope and
// re-encodes them as JPEG before they reach the object store.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Defaults for the display envelope.
const (
	DefaultMaxWidth  = 800
	DefaultMaxHeight = 600
	DefaultQuality   = 82
)

// MaxFileSize is the largest accepted upload in bytes (5 MB).
const MaxFileSize = 5 << 20

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Sniff detects the content type from the first bytes of data and reports
// whether it is an accepted image type. Client headers are not trusted.
func Sniff(data []byte) (string, bool) {
	mime := http.DetectContentType(data)
	return mime, allowedMIME[mime]
}

// Check reports whether data is an accepted image that decodes completely.
// A recognised signature over a truncated or corrupt body fails here.
func Check(data []byte) error {
	if mime, ok := Sniff(data); !ok {
		return fmt.Errorf("unsupported image format: %s", mime)
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}
	return nil
}

// Fitter downsizes images that exceed MaxWidth x MaxHeight, preserving the
// aspect ratio, and re-encodes them as JPEG. Images already inside the
// envelope are only re-encoded. Transparent pixels are flattened onto white.
type Fitter struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// NewFitter returns a Fitter, substituting defaults for non-positive values.
func NewFitter(maxWidth, maxHeight, quality int) *Fitter {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Fitter{MaxWidth: maxWidth, MaxHeight: maxHeight, Quality: quality}
}

// Transform decodes data, fits it to the envelope and returns JPEG bytes.
func (f *Fitter) Transform(data []byte) ([]byte, string, error) {
	if mime, ok := Sniff(data); !ok {
		return nil, "", fmt.Errorf("unsupported image format: %s", mime)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}

	img = fit(img, f.MaxWidth, f.MaxHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: f.Quality}); err != nil {
		return nil, "", fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// fit scales img down by the smaller of the two envelope ratios using
// Catmull-Rom interpolation and composites it over a white canvas. It never
// scales up.
func fit(img image.Image, maxW, maxH int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	newW, newH := w, h
	if w > maxW || h > maxH {
		scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
		newW = max(int(float64(w)*scale), 1)
		newH = max(int(float64(h)*scale), 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if newW == w && newH == h {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
