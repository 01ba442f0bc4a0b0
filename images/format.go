// Package images - raster open/crop/save/resize operations for the crop
// extraction pipeline.
package images

import "github.com/pkg/errors"

// Format is a supported output image format.
type Format string

const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG Format = "jpeg"
	// FormatPNG is the PNG image format.
	FormatPNG Format = "png"
)

// ParseFormat normalizes a user-supplied format name. "jpg" and "jpeg" are
// accepted interchangeably.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "png", "PNG":
		return FormatPNG, nil
	case "jpg", "jpeg", "JPG", "JPEG":
		return FormatJPEG, nil
	default:
		return "", errors.Errorf("image format must be png or jpeg, got %q", name)
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}
