package cropper

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/biolsol/go-cropset/geometry"
	"github.com/biolsol/go-cropset/images"
)

// SegmentedPixel is one pixel of a clustering result: image coordinates plus
// the cluster the pixel was assigned to. A negative group marks background.
type SegmentedPixel struct {
	X, Y  int
	Group int
}

// GroupConfig controls the pixel-group cropper.
type GroupConfig struct {
	// OutputDirectory receives crops and metadata documents. Created if
	// absent.
	OutputDirectory string
	// Padding is the pixel amount added around each group's tight box,
	// clamped per edge to the image boundary.
	Padding int
	// Format selects the crop raster format. Defaults to PNG.
	Format images.Format
	// UseNonWhiteCenter replaces a box center that lands on a white pixel of
	// the background-removed raster with the closest non-white pixel of the
	// same group.
	UseNonWhiteCenter bool
}

// GroupCropper extracts one crop per pixel group from a segmented sample:
// the original raster and its co-registered background-removed variant are
// cropped with the same padded box, and a COCO-style metadata document is
// written per group recording the unpadded box.
type GroupCropper struct {
	cfg    GroupConfig
	logger *slog.Logger

	sampleName   string
	rawPath      string
	noBkgdPath   string
	original     image.Image
	noBackground image.Image
	byGroup      map[int][]image.Point
}

// NewGroupCropper loads both rasters and indexes the segmentation by group.
// Background pixels (group < 0) are dropped.
func NewGroupCropper(pixels []SegmentedPixel, rawImagePath, noBackgroundPath, sampleName string,
	cfg GroupConfig, logger *slog.Logger) (*GroupCropper, error) {

	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Format == "" {
		cfg.Format = images.FormatPNG
	}
	if err := os.MkdirAll(cfg.OutputDirectory, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", cfg.OutputDirectory)
	}

	original, err := images.Open(rawImagePath)
	if err != nil {
		return nil, err
	}
	noBackground, err := images.Open(noBackgroundPath)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[int][]image.Point)
	for _, px := range pixels {
		if px.Group < 0 {
			continue
		}
		byGroup[px.Group] = append(byGroup[px.Group], image.Pt(px.X, px.Y))
	}

	return &GroupCropper{
		cfg:          cfg,
		logger:       logger,
		sampleName:   sampleName,
		rawPath:      rawImagePath,
		noBkgdPath:   noBackgroundPath,
		original:     original,
		noBackground: noBackground,
		byGroup:      byGroup,
	}, nil
}

// Groups returns the valid group numbers in ascending order.
func (g *GroupCropper) Groups() []int {
	groups := make([]int, 0, len(g.byGroup))
	for group := range g.byGroup {
		groups = append(groups, group)
	}
	sort.Ints(groups)
	return groups
}

// ProcessAll crops every group. Per-group failures are logged and counted
// without aborting the batch.
func (g *GroupCropper) ProcessAll() Result {
	var result Result
	for _, group := range g.Groups() {
		if err := g.ProcessGroup(group); err != nil {
			g.logger.Error("cannot process group", "group", group, "error", err)
			result.Failed++
			continue
		}
		result.Processed++
	}
	return result
}

// ProcessGroup crops one pixel group out of both rasters using the padded
// box and writes the group's metadata document, which records the unpadded
// box center, width and height.
func (g *GroupCropper) ProcessGroup(group int) error {
	points, ok := g.byGroup[group]
	if !ok {
		return errors.Errorf("no pixels found for group %d", group)
	}

	box, err := geometry.FromPoints(points)
	if err != nil {
		return errors.Wrapf(err, "group %d", group)
	}

	bounds := g.original.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	padded := box.Pad(g.cfg.Padding, width, height)
	rect := padded.ToRect()

	ext := g.cfg.Format.Ext()
	rawStem := images.Stem(g.rawPath)
	noBkgdStem := images.Stem(g.noBkgdPath)

	crop := images.Crop(g.original, rect)
	cropPath := filepath.Join(g.cfg.OutputDirectory, fmt.Sprintf("%s_%d.%s", rawStem, group, ext))
	if err := images.Save(crop, cropPath, g.cfg.Format); err != nil {
		return err
	}

	cropNoBkgd := images.Crop(g.noBackground, rect)
	noBkgdCropPath := filepath.Join(g.cfg.OutputDirectory, fmt.Sprintf("%s_%d.%s", noBkgdStem, group, ext))
	if err := images.Save(cropNoBkgd, noBkgdCropPath, g.cfg.Format); err != nil {
		return err
	}

	center := g.boxCenter(box, group)
	doc := buildGroupMetadata(g.sampleName, filepath.Base(g.rawPath), width, height, group, box, center)
	metaPath := filepath.Join(g.cfg.OutputDirectory, fmt.Sprintf("%s_%d.json", rawStem, group))
	return doc.Save(metaPath)
}

// boxCenter returns the annotation center for the group: the geometric box
// center, unless the non-white refinement is enabled and finds a better one.
func (g *GroupCropper) boxCenter(box geometry.Box, group int) image.Point {
	cx := int(box.Left) + int(box.Width())/2
	cy := int(box.Upper) + int(box.Height())/2
	center := image.Pt(cx, cy)

	if !g.cfg.UseNonWhiteCenter {
		return center
	}
	if !images.IsWhite(g.noBackground, cx, cy) {
		return center
	}
	if alt, ok := g.closestNonWhitePixel(center, group); ok {
		return alt
	}
	return center
}

// closestNonWhitePixel searches outward from center, ring by ring, for the
// nearest pixel that belongs to the group and is not white in the
// background-removed raster.
func (g *GroupCropper) closestNonWhitePixel(center image.Point, group int) (image.Point, bool) {
	points := g.byGroup[group]
	member := make(map[image.Point]struct{}, len(points))
	maxRadius := 0
	for _, p := range points {
		member[p] = struct{}{}
		maxRadius = max(maxRadius, abs(center.X-p.X))
		maxRadius = max(maxRadius, abs(center.Y-p.Y))
	}

	for radius := 1; radius <= maxRadius; radius++ {
		for dx := -radius; dx <= radius; dx++ {
			for dy := -radius; dy <= radius; dy++ {
				// Only the ring at the current radius, not its interior.
				if max(abs(dx), abs(dy)) != radius {
					continue
				}
				p := image.Pt(center.X+dx, center.Y+dy)
				if _, ok := member[p]; !ok {
					continue
				}
				if !p.In(g.noBackground.Bounds()) {
					continue
				}
				if !images.IsWhite(g.noBackground, p.X, p.Y) {
					return p, true
				}
			}
		}
	}
	return image.Point{}, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
