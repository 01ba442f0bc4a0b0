package images

import (
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// ResizeLongestSide scales img so its longer side equals target pixels,
// preserving aspect ratio, using Lanczos3 resampling. Images already at or
// below the target are returned unchanged; crops are never upscaled.
func ResizeLongestSide(img image.Image, target int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if target <= 0 || (w <= target && h <= target) {
		return img
	}
	if w >= h {
		return resize.Resize(uint(target), 0, img, resize.Lanczos3)
	}
	return resize.Resize(0, uint(target), img, resize.Lanczos3)
}

// ResizeDirectory resizes every raster in inputDir to at most target pixels
// on its longer side and writes the results to outputDir under the same file
// names in the given format. A file that fails to decode is logged and
// skipped; the batch continues. Returns the number of images written and the
// number skipped.
func ResizeDirectory(inputDir, outputDir string, target int, format Format, logger *slog.Logger) (int, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	paths, err := LoadDirectory(inputDir)
	if err != nil {
		return 0, 0, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, 0, errors.Wrapf(err, "create output directory %s", outputDir)
	}

	var processed, failed int
	for _, path := range paths {
		img, err := Open(path)
		if err != nil {
			logger.Warn("skipping unreadable image", "path", path, "error", err)
			failed++
			continue
		}
		outPath := filepath.Join(outputDir, Stem(path)+"."+format.Ext())
		if err := Save(ResizeLongestSide(img, target), outPath, format); err != nil {
			logger.Warn("skipping unwritable image", "path", outPath, "error", err)
			failed++
			continue
		}
		processed++
	}
	return processed, failed, nil
}
