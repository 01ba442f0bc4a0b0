package cropper

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolsol/go-cropset/coco"
	"github.com/biolsol/go-cropset/images"
)

// writeSample writes a 20x20 raw raster and a background-removed variant
// where only nonWhite pixels are kept non-white.
func writeSample(t *testing.T, dir string, nonWhite []image.Point) (rawPath, noBkgdPath string) {
	t.Helper()
	rawPath = filepath.Join(dir, "bm4_e.png")
	require.NoError(t, images.Save(solidImage(20, 20, color.RGBA{R: 120, G: 80, B: 40, A: 255}),
		rawPath, images.FormatPNG))

	noBkgd := solidImage(20, 20, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	for _, p := range nonWhite {
		noBkgd.Set(p.X, p.Y, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	}
	noBkgdPath = filepath.Join(dir, "bm4_e_nobkgd.png")
	require.NoError(t, images.Save(noBkgd, noBkgdPath, images.FormatPNG))
	return rawPath, noBkgdPath
}

func samplePixels() []SegmentedPixel {
	return []SegmentedPixel{
		{X: 5, Y: 5, Group: 0},
		{X: 9, Y: 9, Group: 0},
		{X: 6, Y: 6, Group: 0},
		{X: 15, Y: 15, Group: 1},
		{X: 16, Y: 16, Group: 1},
		{X: 2, Y: 2, Group: -1}, // background, ignored
	}
}

func TestGroupCropper(t *testing.T) {
	dir := t.TempDir()
	raw, noBkgd := writeSample(t, dir, nil)

	outDir := filepath.Join(dir, "crops")
	g, err := NewGroupCropper(samplePixels(), raw, noBkgd, "BM4_E",
		GroupConfig{OutputDirectory: outDir, Padding: 3}, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, g.Groups(), "background pixels form no group")

	result := g.ProcessAll()
	assert.Equal(t, Result{Processed: 2}, result)

	crop, err := images.Open(filepath.Join(outDir, "bm4_e_0.png"))
	require.NoError(t, err)
	assert.Equal(t, 11, crop.Bounds().Dx(), "5px box plus 3px padding per side")
	assert.FileExists(t, filepath.Join(outDir, "bm4_e_nobkgd_0.png"),
		"both raster variants are cropped with the same padded box")

	meta, err := coco.Load(filepath.Join(outDir, "bm4_e_0.json"))
	require.NoError(t, err)
	require.Len(t, meta.Annotations, 1)
	ann := meta.Annotations[0]
	assert.Equal(t, []float32{7, 7, 5, 5}, ann.BBox,
		"metadata records the unpadded box center and extent")
	assert.Equal(t, float32(25), ann.Area)
	require.Len(t, meta.Images, 1)
	assert.Equal(t, coco.FlexID("BM4_E"), meta.Images[0].ID)
	assert.Equal(t, 20, meta.Images[0].Width)
}

func TestGroupCropperNonWhiteCenter(t *testing.T) {
	dir := t.TempDir()
	// Only (6,6) survives background removal; the box center (7,7) is white.
	raw, noBkgd := writeSample(t, dir, []image.Point{{X: 6, Y: 6}})

	outDir := filepath.Join(dir, "crops")
	g, err := NewGroupCropper(samplePixels(), raw, noBkgd, "BM4_E",
		GroupConfig{OutputDirectory: outDir, UseNonWhiteCenter: true}, nil)
	require.NoError(t, err)
	require.NoError(t, g.ProcessGroup(0))

	meta, err := coco.Load(filepath.Join(outDir, "bm4_e_0.json"))
	require.NoError(t, err)
	assert.Equal(t, []float32{6, 6, 5, 5}, meta.Annotations[0].BBox,
		"a white box center is replaced by the closest non-white group pixel")
}

func TestGroupCropperUnknownGroup(t *testing.T) {
	dir := t.TempDir()
	raw, noBkgd := writeSample(t, dir, nil)

	g, err := NewGroupCropper(samplePixels(), raw, noBkgd, "BM4_E",
		GroupConfig{OutputDirectory: filepath.Join(dir, "crops")}, nil)
	require.NoError(t, err)

	assert.Error(t, g.ProcessGroup(42), "an unknown group number is an error")
}

func TestCombineMetadata(t *testing.T) {
	dir := t.TempDir()
	raw, noBkgd := writeSample(t, dir, nil)

	outDir := filepath.Join(dir, "crops")
	g, err := NewGroupCropper(samplePixels(), raw, noBkgd, "BM4_E",
		GroupConfig{OutputDirectory: outDir}, nil)
	require.NoError(t, err)
	require.Equal(t, Result{Processed: 2}, g.ProcessAll())

	combinedPath, err := CombineMetadata(outDir, "bm4_e", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "bm4_e_combined_metadata.json"), combinedPath)

	combined, err := coco.Load(combinedPath)
	require.NoError(t, err)
	assert.Len(t, combined.Annotations, 2)
	assert.Equal(t, coco.FlexID("0"), combined.Annotations[0].ID, "annotations sorted by id")
	assert.Len(t, combined.Images, 1, "the shared image entry is de-duplicated")
	assert.Len(t, combined.Categories, 1)

	// Rerunning must not ingest the combined document itself.
	_, err = CombineMetadata(outDir, "bm4_e", nil)
	require.NoError(t, err)
	combined, err = coco.Load(combinedPath)
	require.NoError(t, err)
	assert.Len(t, combined.Annotations, 2)
}

func TestCombineMetadataNoFiles(t *testing.T) {
	_, err := CombineMetadata(t.TempDir(), "bm4_e", nil)
	assert.Error(t, err, "a sample with no metadata documents is an error")
}
