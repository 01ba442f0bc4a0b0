// Package coco models COCO-style annotation documents and splits a combined
// corpus into one document per source image.
package coco

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/biolsol/go-cropset/tabular"
)

// FlexID carries a COCO id that appears as either a JSON number or a string
// in the wild (numeric annotation ids, sample-name image ids). It round-trips
// the original rendering.
type FlexID string

// UnmarshalJSON accepts both string and number ids.
func (f *FlexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	*f = FlexID(b)
	return nil
}

// MarshalJSON re-emits numeric ids as JSON numbers and everything else as a
// string.
func (f FlexID) MarshalJSON() ([]byte, error) {
	s := string(f)
	if s != "" && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// Key returns the normalized join key for the id.
func (f FlexID) Key() string {
	return tabular.NormalizeID(string(f))
}

// Image is one entry of a document's images list.
type Image struct {
	ID           FlexID `json:"id"`
	License      int64  `json:"license,omitempty"`
	FileName     string `json:"file_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	DateCaptured string `json:"date_captured,omitempty"`
}

// Annotation is one detected object instance: geometry plus a category,
// belonging to exactly one image.
type Annotation struct {
	ID           FlexID      `json:"id"`
	ImageID      FlexID      `json:"image_id"`
	CategoryID   int64       `json:"category_id"`
	BBox         []float32   `json:"bbox,omitempty"`
	Segmentation [][]float32 `json:"segmentation"`
	Area         float32     `json:"area"`
	IsCrowd      int         `json:"iscrowd"`
}

// Category is one entry of a document's categories list, unique by id.
type Category struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory,omitempty"`
}

// License is one entry of a document's licenses list.
type License struct {
	ID   int64  `json:"id"`
	URL  string `json:"url,omitempty"`
	Name string `json:"name,omitempty"`
}

// Info is the free-form metadata section; carried through untouched.
type Info map[string]any

// Document is a COCO-style annotation document.
type Document struct {
	Images      []Image      `json:"images"`
	Categories  []Category   `json:"categories"`
	Annotations []Annotation `json:"annotations"`
	Info        Info         `json:"info"`
	Licenses    []License    `json:"licenses,omitempty"`
}

// Load reads and parses a COCO document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read coco document %s", path)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse coco document %s", path)
	}
	return &doc, nil
}

// Save writes the document to path as indented JSON.
func (d *Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode coco document")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write coco document %s", path)
	}
	return nil
}
