// Package cropper extracts per-object image crops and bounding-box metadata
// from segmentation results and per-image annotation documents.
package cropper

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/biolsol/go-cropset/coco"
	"github.com/biolsol/go-cropset/geometry"
	"github.com/biolsol/go-cropset/images"
)

// Config controls the per-annotation cropper.
type Config struct {
	// OutputDirectory receives crops and sidecars. Created if absent.
	OutputDirectory string
	// Padding is the pixel amount added around the tight box before
	// cropping, clamped per edge to the image boundary.
	Padding int
	// NormalizeCoords switches sidecar values to fractions of the image
	// dimensions in [0, 1]. Otherwise values are pixel offsets relative to
	// the crop's own top-left corner.
	NormalizeCoords bool
	// UseBBox takes the annotation's explicit (x, y, w, h) box instead of
	// the polygon envelope.
	UseBBox bool
	// Format selects the crop raster format. Defaults to PNG.
	Format images.Format
	// NoBackgroundPath optionally names the co-registered background-removed
	// raster; when set, a second crop is written per object.
	NoBackgroundPath string
}

// Result summarizes one cropping pass. Per-object failures are counted and
// logged without aborting the remaining objects.
type Result struct {
	Processed int
	Failed    int
}

// AnnotationCropper crops every annotation of one per-image document (as
// produced by the corpus splitter) out of its source raster.
type AnnotationCropper struct {
	cfg    Config
	logger *slog.Logger

	doc          *coco.Document
	meta         coco.Image
	stem         string
	original     image.Image
	noBackground image.Image
	noBkgdStem   string
}

// NewAnnotationCropper loads the per-image document at jsonPath and the
// raster it references, resolved relative to the document's directory, plus
// the optional background-removed raster named by the configuration.
func NewAnnotationCropper(jsonPath string, cfg Config, logger *slog.Logger) (*AnnotationCropper, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Format == "" {
		cfg.Format = images.FormatPNG
	}
	if err := os.MkdirAll(cfg.OutputDirectory, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", cfg.OutputDirectory)
	}

	doc, err := coco.Load(jsonPath)
	if err != nil {
		return nil, err
	}
	if len(doc.Images) == 0 {
		return nil, errors.Errorf("document %s has no image entry", jsonPath)
	}
	meta := doc.Images[0]

	imagePath := filepath.Join(filepath.Dir(jsonPath), meta.FileName)
	original, err := images.Open(imagePath)
	if err != nil {
		return nil, err
	}

	c := &AnnotationCropper{
		cfg:      cfg,
		logger:   logger,
		doc:      doc,
		meta:     meta,
		stem:     images.Stem(meta.FileName),
		original: original,
	}
	if cfg.NoBackgroundPath != "" {
		c.noBackground, err = images.Open(cfg.NoBackgroundPath)
		if err != nil {
			return nil, err
		}
		c.noBkgdStem = images.Stem(cfg.NoBackgroundPath)
	}
	return c, nil
}

// ProcessAll crops every annotation of the document. Failures of individual
// objects are logged and counted; the batch runs to completion.
func (c *AnnotationCropper) ProcessAll() Result {
	var result Result
	for _, ann := range c.doc.Annotations {
		if err := c.ProcessAnnotation(ann); err != nil {
			c.logger.Error("cannot process annotation", "id", string(ann.ID), "error", err)
			result.Failed++
			continue
		}
		result.Processed++
	}
	return result
}

// ProcessAnnotation crops one annotation and writes its metadata sidecar.
// The crop uses the padded box; the sidecar records the unpadded box so the
// metadata reflects the true object extent.
func (c *AnnotationCropper) ProcessAnnotation(ann coco.Annotation) error {
	box, err := c.objectBox(ann)
	if err != nil {
		return err
	}
	padded := box.Pad(c.cfg.Padding, c.meta.Width, c.meta.Height)

	id := ann.ID.Key()
	ext := c.cfg.Format.Ext()

	crop := images.Crop(c.original, padded.ToRect())
	cropPath := filepath.Join(c.cfg.OutputDirectory, fmt.Sprintf("%s_%s.%s", c.stem, id, ext))
	if err := images.Save(crop, cropPath, c.cfg.Format); err != nil {
		return err
	}

	if c.noBackground != nil {
		crop := images.Crop(c.noBackground, padded.ToRect())
		path := filepath.Join(c.cfg.OutputDirectory, fmt.Sprintf("%s_%s.%s", c.noBkgdStem, id, ext))
		if err := images.Save(crop, path, c.cfg.Format); err != nil {
			return err
		}
	}

	sidecarPath := filepath.Join(c.cfg.OutputDirectory, fmt.Sprintf("%s_%s.txt", c.stem, id))
	return c.writeSidecar(sidecarPath, ann.CategoryID, box, padded)
}

// objectBox resolves the annotation geometry to a tight box, clamped to the
// image bounds: the explicit bbox when configured and present, otherwise the
// polygon envelope.
func (c *AnnotationCropper) objectBox(ann coco.Annotation) (geometry.Box, error) {
	if c.cfg.UseBBox && len(ann.BBox) == 4 {
		return geometry.FromBBox(ann.BBox[0], ann.BBox[1], ann.BBox[2], ann.BBox[3],
			c.meta.Width, c.meta.Height), nil
	}
	if len(ann.Segmentation) == 0 {
		return geometry.Box{}, errors.Errorf("annotation %s has no usable geometry", string(ann.ID))
	}
	return geometry.FromPolygon(ann.Segmentation[0], c.meta.Width, c.meta.Height)
}

// writeSidecar emits the whitespace-delimited metadata record:
// category_id center_x center_y width height.
func (c *AnnotationCropper) writeSidecar(path string, categoryID int64, box, padded geometry.Box) error {
	var cx, cy, w, h float32
	if c.cfg.NormalizeCoords {
		cx, cy, w, h = box.Normalized(c.meta.Width, c.meta.Height)
	} else {
		// Pixel offsets relative to the crop's own top-left corner, rounded
		// to whole pixels.
		x, y := box.Center()
		cx = math32.Round(x - padded.Left)
		cy = math32.Round(y - padded.Upper)
		w = math32.Round(box.Width())
		h = math32.Round(box.Height())
	}

	line := fmt.Sprintf("%d %.6f %.6f %.6f %.6f", categoryID, cx, cy, w, h)
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		return errors.Wrapf(err, "write sidecar %s", path)
	}
	return nil
}
