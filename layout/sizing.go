package layout

import (
	"math"

	"github.com/klipy/klipy-go/media"
)

// Size is a rendered width and height in points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsZero reports whether the size is the degenerate sentinel.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Bounds is a box to fit an item into. A nil side is unbounded.
type Bounds struct {
	MaxWidth  *float64
	MaxHeight *float64
}

// PreviewSize returns the width an item occupies at the given height, using
// its preview asset's aspect ratio. Ads keep their declared size. Degenerate
// input yields the zero Size.
func PreviewSize(item media.Item, height float64) Size {
	if item.IsAd() {
		if item.Ad == nil {
			return Size{}
		}
		return Size{Width: float64(item.Ad.Width), Height: float64(item.Ad.Height)}
	}

	preview := item.PreviewFile()
	if preview == nil {
		return Size{}
	}
	w, h := preview.GIF.Width, preview.GIF.Height
	if w <= 0 || h <= 0 || height <= 0 {
		return Size{}
	}

	return Size{Width: height * float64(w) / float64(h), Height: height}
}

// Fit scales a w×h asset to fit inside bounds while keeping its aspect ratio.
// With both sides bounded the smaller ratio wins; with neither the result is
// the zero Size.
func Fit(w, h int, bounds Bounds) Size {
	if w <= 0 || h <= 0 {
		return Size{}
	}
	width, height := float64(w), float64(h)

	var ratio float64
	switch {
	case bounds.MaxWidth != nil && bounds.MaxHeight != nil:
		ratio = math.Min(*bounds.MaxWidth/width, *bounds.MaxHeight/height)
	case bounds.MaxWidth != nil:
		ratio = *bounds.MaxWidth / width
	case bounds.MaxHeight != nil:
		ratio = *bounds.MaxHeight / height
	default:
		return Size{}
	}
	if ratio <= 0 {
		return Size{}
	}

	return Size{Width: width * ratio, Height: height * ratio}
}

// FitItem fits an item's preview asset into bounds. Ads are never rescaled.
func FitItem(item media.Item, bounds Bounds) Size {
	if item.IsAd() {
		return PreviewSize(item, 0)
	}
	preview := item.PreviewFile()
	if preview == nil {
		return Size{}
	}
	return Fit(preview.GIF.Width, preview.GIF.Height, bounds)
}
