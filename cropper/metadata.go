package cropper

import (
	"image"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/biolsol/go-cropset/coco"
	"github.com/biolsol/go-cropset/geometry"
)

// The metadata documents use one generic category; the reconciled labels are
// joined onto the crops further down the pipeline.
const objectCategoryID = 1000

// buildGroupMetadata assembles the COCO-style single-annotation document
// written next to each group crop. The bbox records the unpadded box as
// (center_x, center_y, width, height) in whole pixels.
func buildGroupMetadata(sampleName, fileName string, imageWidth, imageHeight, group int,
	box geometry.Box, center image.Point) *coco.Document {

	now := time.Now()
	w := int(box.Width())
	h := int(box.Height())

	return &coco.Document{
		Info: coco.Info{
			"year":         now.Format("2006"),
			"version":      "1",
			"description":  "arthropod bounding boxes",
			"contributor":  "biolsol",
			"url":          "https://www.unine.ch/biolsol",
			"date_created": now.Format("2006-01-02 / 15:04:05"),
		},
		Licenses: []coco.License{
			{ID: 1, URL: "https://www.unine.ch/biolsol", Name: "Research"},
		},
		Categories: []coco.Category{
			{ID: objectCategoryID, Name: "object", Supercategory: "none"},
		},
		Images: []coco.Image{
			{
				ID:           coco.FlexID(sampleName),
				License:      1,
				FileName:     fileName,
				Width:        imageWidth,
				Height:       imageHeight,
				DateCaptured: "none",
			},
		},
		Annotations: []coco.Annotation{
			{
				ID:           coco.FlexID(strconv.Itoa(group)),
				ImageID:      coco.FlexID(fileName),
				CategoryID:   objectCategoryID,
				BBox:         []float32{float32(center.X), float32(center.Y), float32(w), float32(h)},
				Area:         float32(w * h),
				Segmentation: [][]float32{},
			},
		},
	}
}

var groupMetadataName = regexp.MustCompile(`_[0-9]+\.json$`)

// CombineMetadata merges the per-group metadata documents for one sample
// back into a single COCO document. Images and categories are de-duplicated
// by id; annotations are concatenated. Annotations, categories and images
// are sorted by id for deterministic output. Malformed sidecars are logged
// and skipped. The combined document is written to dir as
// {stem}_combined_metadata.json.
func CombineMetadata(dir, stem string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	matches, err := filepath.Glob(filepath.Join(dir, stem+"_*.json"))
	if err != nil {
		return "", errors.Wrapf(err, "scan metadata in %s", dir)
	}
	var files []string
	for _, path := range matches {
		if groupMetadataName.MatchString(path) {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return "", errors.Errorf("no metadata documents found for sample %s in %s", stem, dir)
	}
	sort.Strings(files)

	combined := &coco.Document{
		Annotations: []coco.Annotation{},
		Info:        coco.Info{},
	}
	imagesByID := map[string]coco.Image{}
	categoriesByID := map[int64]coco.Category{}

	for _, path := range files {
		doc, err := coco.Load(path)
		if err != nil {
			logger.Error("skipping malformed metadata document", "path", path, "error", err)
			continue
		}
		if len(combined.Info) == 0 {
			combined.Info = doc.Info
		}
		if len(combined.Licenses) == 0 {
			combined.Licenses = doc.Licenses
		}
		for _, img := range doc.Images {
			if _, ok := imagesByID[img.ID.Key()]; !ok {
				imagesByID[img.ID.Key()] = img
			}
		}
		for _, cat := range doc.Categories {
			if _, ok := categoriesByID[cat.ID]; !ok {
				categoriesByID[cat.ID] = cat
			}
		}
		combined.Annotations = append(combined.Annotations, doc.Annotations...)
	}

	for _, img := range imagesByID {
		combined.Images = append(combined.Images, img)
	}
	for _, cat := range categoriesByID {
		combined.Categories = append(combined.Categories, cat)
	}

	sort.Slice(combined.Annotations, func(i, j int) bool {
		return flexLess(combined.Annotations[i].ID, combined.Annotations[j].ID)
	})
	sort.Slice(combined.Categories, func(i, j int) bool {
		return combined.Categories[i].ID < combined.Categories[j].ID
	})
	sort.Slice(combined.Images, func(i, j int) bool {
		return flexLess(combined.Images[i].ID, combined.Images[j].ID)
	})

	outputPath := filepath.Join(dir, stem+"_combined_metadata.json")
	if err := combined.Save(outputPath); err != nil {
		return "", err
	}
	logger.Info("combined metadata documents",
		"files", len(files), "annotations", len(combined.Annotations), "output", outputPath)
	return outputPath, nil
}

// flexLess orders ids numerically when both sides are numbers, falling back
// to string order for sample-name ids.
func flexLess(a, b coco.FlexID) bool {
	ai, aerr := strconv.ParseInt(string(a), 10, 64)
	bi, berr := strconv.ParseInt(string(b), 10, 64)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return string(a) < string(b)
}
