package cropper

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolsol/go-cropset/coco"
	"github.com/biolsol/go-cropset/images"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// writePlate writes a 40x30 source raster and its per-image annotation
// document into dir, returning the document path.
func writePlate(t *testing.T, dir string, annotations []coco.Annotation) string {
	t.Helper()
	raster := filepath.Join(dir, "plate.png")
	require.NoError(t, images.Save(solidImage(40, 30, color.RGBA{R: 200, A: 255}), raster, images.FormatPNG))

	doc := &coco.Document{
		Images:      []coco.Image{{ID: "1", FileName: "plate.png", Width: 40, Height: 30}},
		Annotations: annotations,
		Categories:  []coco.Category{{ID: 3, Name: "Ostracoda"}},
		Info:        coco.Info{},
	}
	jsonPath := filepath.Join(dir, "plate.json")
	require.NoError(t, doc.Save(jsonPath))
	return jsonPath
}

func TestAnnotationCropperPolygon(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writePlate(t, dir, []coco.Annotation{{
		ID:           "7",
		ImageID:      "1",
		CategoryID:   3,
		Segmentation: [][]float32{{10, 5, 20, 5, 20, 15, 10, 15}},
	}})

	outDir := filepath.Join(dir, "crops")
	c, err := NewAnnotationCropper(jsonPath, Config{
		OutputDirectory: outDir,
		Padding:         2,
	}, nil)
	require.NoError(t, err)

	result := c.ProcessAll()
	assert.Equal(t, Result{Processed: 1}, result)

	crop, err := images.Open(filepath.Join(outDir, "plate_7.png"))
	require.NoError(t, err, "the crop must be named {stem}_{annotation_id}.{ext}")
	assert.Equal(t, 14, crop.Bounds().Dx(), "crop includes 2px padding on each side")
	assert.Equal(t, 14, crop.Bounds().Dy())

	sidecar, err := os.ReadFile(filepath.Join(outDir, "plate_7.txt"))
	require.NoError(t, err)
	assert.Equal(t, "3 7.000000 7.000000 10.000000 10.000000", string(sidecar),
		"pixel mode records the unpadded box relative to the crop's top-left corner")
}

func TestAnnotationCropperRoundsPixelOffsets(t *testing.T) {
	dir := t.TempDir()
	// An 11px wide box has a fractional center; pixel mode must round it.
	jsonPath := writePlate(t, dir, []coco.Annotation{{
		ID:           "7",
		ImageID:      "1",
		CategoryID:   3,
		Segmentation: [][]float32{{10, 5, 21, 5, 21, 15, 10, 15}},
	}})

	outDir := filepath.Join(dir, "crops")
	c, err := NewAnnotationCropper(jsonPath, Config{OutputDirectory: outDir}, nil)
	require.NoError(t, err)
	require.Equal(t, Result{Processed: 1}, c.ProcessAll())

	sidecar, err := os.ReadFile(filepath.Join(outDir, "plate_7.txt"))
	require.NoError(t, err)
	assert.Equal(t, "3 6.000000 5.000000 11.000000 10.000000", string(sidecar),
		"pixel offsets are whole pixels, never fractional centers")
}

func TestAnnotationCropperNormalized(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writePlate(t, dir, []coco.Annotation{{
		ID:           "7",
		ImageID:      "1",
		CategoryID:   3,
		Segmentation: [][]float32{{10, 5, 20, 5, 20, 15, 10, 15}},
	}})

	outDir := filepath.Join(dir, "crops")
	c, err := NewAnnotationCropper(jsonPath, Config{
		OutputDirectory: outDir,
		NormalizeCoords: true,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, Result{Processed: 1}, c.ProcessAll())

	sidecar, err := os.ReadFile(filepath.Join(outDir, "plate_7.txt"))
	require.NoError(t, err)
	assert.Equal(t, "3 0.375000 0.333333 0.250000 0.333333", string(sidecar),
		"normalized mode expresses center and extent as fractions of the image dimensions")
}

func TestAnnotationCropperBBoxAndBackgroundVariant(t *testing.T) {
	dir := t.TempDir()
	noBkgd := filepath.Join(dir, "plate_nobkgd.png")
	require.NoError(t, images.Save(solidImage(40, 30, color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		noBkgd, images.FormatPNG))

	jsonPath := writePlate(t, dir, []coco.Annotation{{
		ID:         "9",
		ImageID:    "1",
		CategoryID: 3,
		BBox:       []float32{10, 5, 10, 10},
	}})

	outDir := filepath.Join(dir, "crops")
	c, err := NewAnnotationCropper(jsonPath, Config{
		OutputDirectory:  outDir,
		UseBBox:          true,
		Format:           images.FormatJPEG,
		NoBackgroundPath: noBkgd,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, Result{Processed: 1}, c.ProcessAll())

	assert.FileExists(t, filepath.Join(outDir, "plate_9.jpg"))
	assert.FileExists(t, filepath.Join(outDir, "plate_nobkgd_9.jpg"),
		"the background-removed variant is cropped with the same box")
}

func TestAnnotationCropperContinuesPastBadObjects(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writePlate(t, dir, []coco.Annotation{
		{ID: "1", ImageID: "1", CategoryID: 3}, // no geometry at all
		{ID: "2", ImageID: "1", CategoryID: 3, Segmentation: [][]float32{{10, 5, 20, 15}}},
	})

	c, err := NewAnnotationCropper(jsonPath, Config{OutputDirectory: filepath.Join(dir, "crops")}, nil)
	require.NoError(t, err)

	result := c.ProcessAll()
	assert.Equal(t, Result{Processed: 1, Failed: 1}, result,
		"one broken object must not abort the batch")
}
