package images

import (
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/pkg/errors"

	// Source images also arrive as WebP and BMP; register those decoders.
	_ "github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
)

// Open decodes the raster at path.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open image %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode image %s", path)
	}
	return img, nil
}

// Save encodes img to path in the given format. JPEG output uses quality 95;
// crops feed a training pipeline and should not pick up heavy artifacts.
func Save(img image.Image, path string, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create image %s", path)
	}
	defer f.Close()

	switch format {
	case FormatJPEG:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	case FormatPNG:
		err = png.Encode(f, img)
	default:
		err = errors.Errorf("unsupported image format %q", format)
	}
	return errors.Wrapf(err, "encode image %s", path)
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Crop returns the sub-rectangle of img. Decoders for all supported formats
// return SubImage-capable types; any other image is copied pixel by pixel.
// The rectangle is intersected with the image bounds first.
func Crop(img image.Image, rect image.Rectangle) image.Image {
	rect = rect.Intersect(img.Bounds())
	if si, ok := img.(subImager); ok {
		return si.SubImage(rect)
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), img, rect.Min, draw.Src)
	return out
}

// IsWhite reports whether the pixel at (x, y) is pure white. Background-
// removed rasters mark discarded pixels as white.
func IsWhite(img image.Image, x, y int) bool {
	if !image.Pt(x, y).In(img.Bounds()) {
		return false
	}
	r, g, b, _ := img.At(x, y).RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}
