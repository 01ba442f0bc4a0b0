// Package geometry computes the axis-aligned bounding boxes the croppers work
// with: tight envelopes from polygons, pixel groups or explicit boxes, the
// per-edge padding policy, and normalized center/extent values.
package geometry

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Box is an axis-aligned bounding box in pixel coordinates. Right and Lower
// are exclusive, like image.Rectangle, so Width() counts pixels.
type Box struct {
	Left, Upper, Right, Lower float32
}

// FromPolygon returns the tight envelope of a flat polygon coordinate
// sequence (x0, y0, x1, y1, ...), clamped to [0, imageWidth] x
// [0, imageHeight]. Out-of-bounds vertices are clamped, never an error.
func FromPolygon(coords []float32, imageWidth, imageHeight int) (Box, error) {
	if len(coords) < 2 || len(coords)%2 != 0 {
		return Box{}, errors.Errorf("polygon needs a non-empty, even-length coordinate sequence, got %d values", len(coords))
	}

	minX, maxX := coords[0], coords[0]
	minY, maxY := coords[1], coords[1]
	for i := 2; i < len(coords); i += 2 {
		minX = math32.Min(minX, coords[i])
		maxX = math32.Max(maxX, coords[i])
		minY = math32.Min(minY, coords[i+1])
		maxY = math32.Max(maxY, coords[i+1])
	}

	return Box{
		Left:  math32.Max(0, minX),
		Upper: math32.Max(0, minY),
		Right: math32.Min(float32(imageWidth), maxX),
		Lower: math32.Min(float32(imageHeight), maxY),
	}, nil
}

// FromBBox converts an explicit COCO (x, y, width, height) box, clamped to
// the image bounds.
func FromBBox(x, y, w, h float32, imageWidth, imageHeight int) Box {
	return Box{
		Left:  math32.Max(0, x),
		Upper: math32.Max(0, y),
		Right: math32.Min(float32(imageWidth), x+w),
		Lower: math32.Min(float32(imageHeight), y+h),
	}
}

// FromPoints returns the envelope of a set of pixel coordinates, e.g. the
// pixels of one segmentation group.
func FromPoints(points []image.Point) (Box, error) {
	if len(points) == 0 {
		return Box{}, errors.New("no pixels to bound")
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	return Box{
		Left:  float32(minX),
		Upper: float32(minY),
		Right: float32(maxX + 1),
		Lower: float32(maxY + 1),
	}, nil
}

// Pad grows the box outward by padding pixels, independently per edge, and
// never past the image boundary: an edge already on the boundary stays where
// it is, an edge closer to the boundary than padding snaps to the boundary,
// and any other edge moves by exactly padding. The result is always a valid
// sub-rectangle of the image.
func (b Box) Pad(padding, imageWidth, imageHeight int) Box {
	p := float32(padding)
	w := float32(imageWidth)
	h := float32(imageHeight)

	padded := b
	if b.Left > 0 {
		if b.Left <= p {
			padded.Left = 0
		} else {
			padded.Left = b.Left - p
		}
	}
	if b.Right < w {
		if b.Right >= w-p {
			padded.Right = w
		} else {
			padded.Right = b.Right + p
		}
	}
	if b.Upper > 0 {
		if b.Upper <= p {
			padded.Upper = 0
		} else {
			padded.Upper = b.Upper - p
		}
	}
	if b.Lower < h {
		if b.Lower >= h-p {
			padded.Lower = h
		} else {
			padded.Lower = b.Lower + p
		}
	}
	return padded
}

// Width returns the horizontal extent in pixels.
func (b Box) Width() float32 { return b.Right - b.Left }

// Height returns the vertical extent in pixels.
func (b Box) Height() float32 { return b.Lower - b.Upper }

// Center returns the box center in image coordinates.
func (b Box) Center() (x, y float32) {
	return b.Left + b.Width()/2, b.Upper + b.Height()/2
}

// Normalized expresses center and extent as fractions of the image
// dimensions, each in [0, 1].
func (b Box) Normalized(imageWidth, imageHeight int) (cx, cy, w, h float32) {
	x, y := b.Center()
	return x / float32(imageWidth),
		y / float32(imageHeight),
		b.Width() / float32(imageWidth),
		b.Height() / float32(imageHeight)
}

// ToRect converts to an image.Rectangle for cropping. Fractional edges lose
// their sub-pixel part.
func (b Box) ToRect() image.Rectangle {
	return image.Rect(int(b.Left), int(b.Upper), int(b.Right), int(b.Lower)).Canon()
}

// Area returns the box area in square pixels.
func (b Box) Area() float32 {
	return b.Width() * b.Height()
}

// IoU is the intersection-over-union of two boxes, in [0, 1]. Used to match
// predicted boxes against ground truth downstream of the crop extraction.
func (b Box) IoU(other Box) float32 {
	ix1 := math32.Max(b.Left, other.Left)
	iy1 := math32.Max(b.Upper, other.Upper)
	ix2 := math32.Min(b.Right, other.Right)
	iy2 := math32.Min(b.Lower, other.Lower)

	iw := ix2 - ix1
	ih := iy2 - iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	intersection := iw * ih
	union := b.Area() + other.Area() - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}
