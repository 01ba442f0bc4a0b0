package coco

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SplitterConfig controls how a combined corpus is partitioned.
type SplitterConfig struct {
	// OutputDirectory receives one {image_stem}.json per image. Created if
	// absent.
	OutputDirectory string
	// IncludeOnlyUsedCategories restricts each output's category list to the
	// ids referenced by that image's annotations.
	IncludeOnlyUsedCategories bool
	// SkipImagesWithoutAnnotations drops images with no annotations instead
	// of emitting a document with an empty annotation list.
	SkipImagesWithoutAnnotations bool
}

// Splitter partitions one combined COCO document into per-image documents,
// each carrying only its own annotations and the categories they reference.
type Splitter struct {
	cfg    SplitterConfig
	logger *slog.Logger
}

// NewSplitter creates the output directory and returns a ready Splitter.
// A nil logger falls back to slog.Default().
func NewSplitter(cfg SplitterConfig, logger *slog.Logger) (*Splitter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.OutputDirectory, 0o755); err != nil {
		return nil, err
	}
	return &Splitter{cfg: cfg, logger: logger}, nil
}

// Split partitions the combined document at combinedPath and returns a map
// from source image file name to per-image success. A missing input file or
// a malformed top-level document yields an empty map rather than an error, so
// batch callers are isolated from a hard failure; per-image write failures
// are recorded in the map without aborting the remaining images.
func (s *Splitter) Split(combinedPath string) map[string]bool {
	results := map[string]bool{}

	doc, err := Load(combinedPath)
	if err != nil {
		s.logger.Error("cannot load combined document", "path", combinedPath, "error", err)
		return results
	}
	s.logger.Info("loaded combined document",
		"images", len(doc.Images), "annotations", len(doc.Annotations), "categories", len(doc.Categories))

	categoryByID := make(map[int64]Category, len(doc.Categories))
	for _, cat := range doc.Categories {
		categoryByID[cat.ID] = cat
	}

	// Grouped once, before the per-image loop.
	byImage := groupAnnotationsByImage(doc.Annotations)

	processed, skipped := 0, 0
	for _, img := range doc.Images {
		annotations := byImage[img.ID.Key()]

		if len(annotations) == 0 && s.cfg.SkipImagesWithoutAnnotations {
			s.logger.Info("skipping image without annotations", "file", img.FileName)
			skipped++
			continue
		}

		if err := s.writeImageDocument(img, annotations, categoryByID, doc.Info); err != nil {
			s.logger.Error("cannot write per-image document", "file", img.FileName, "error", err)
			results[img.FileName] = false
			continue
		}
		results[img.FileName] = true
		processed++
	}

	s.logger.Info("split complete", "created", processed, "skipped", skipped)
	return results
}

func groupAnnotationsByImage(annotations []Annotation) map[string][]Annotation {
	grouped := make(map[string][]Annotation)
	for _, ann := range annotations {
		key := ann.ImageID.Key()
		if key == "" {
			continue
		}
		grouped[key] = append(grouped[key], ann)
	}
	return grouped
}

func (s *Splitter) writeImageDocument(img Image, annotations []Annotation,
	categoryByID map[int64]Category, info Info) error {

	var categories []Category
	if s.cfg.IncludeOnlyUsedCategories && len(annotations) > 0 {
		seen := map[int64]struct{}{}
		for _, ann := range annotations {
			if _, ok := seen[ann.CategoryID]; ok {
				continue
			}
			seen[ann.CategoryID] = struct{}{}
			if cat, ok := categoryByID[ann.CategoryID]; ok {
				categories = append(categories, cat)
			}
		}
	} else {
		for _, cat := range categoryByID {
			categories = append(categories, cat)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })

	if annotations == nil {
		annotations = []Annotation{}
	}
	if categories == nil {
		categories = []Category{}
	}

	out := &Document{
		Images:      []Image{img},
		Categories:  categories,
		Annotations: annotations,
		Info:        info,
	}

	stem := strings.TrimSuffix(img.FileName, filepath.Ext(img.FileName))
	path := filepath.Join(s.cfg.OutputDirectory, stem+".json")
	if err := out.Save(path); err != nil {
		return err
	}
	s.logger.Info("created per-image document",
		"file", stem+".json", "annotations", len(annotations), "categories", len(categories))
	return nil
}
