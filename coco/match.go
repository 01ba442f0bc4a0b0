package coco

import (
	"fmt"

	"github.com/biolsol/go-cropset/geometry"
	"github.com/biolsol/go-cropset/tabular"
)

// DefaultMatchThreshold is the minimum IoU two boxes need to count as the
// same object.
const DefaultMatchThreshold = 0.8

// Match pairs one candidate annotation with its best reference annotation.
// ReferenceID is empty and IoU zero when no reference box reached the
// threshold.
type Match struct {
	CandidateID FlexID
	ReferenceID FlexID
	IoU         float32
}

// MatchBoxes pairs each candidate annotation with the reference annotation of
// highest IoU, keeping the pair only when the IoU reaches threshold. Every
// candidate produces exactly one row, matched or not, in input order.
// Annotations without a 4-value bbox are skipped.
func MatchBoxes(candidate, reference *Document, threshold float32) []Match {
	type refBox struct {
		id  FlexID
		box geometry.Box
	}
	refs := make([]refBox, 0, len(reference.Annotations))
	for _, ann := range reference.Annotations {
		if len(ann.BBox) != 4 {
			continue
		}
		refs = append(refs, refBox{id: ann.ID, box: bboxToBox(ann.BBox)})
	}

	var matches []Match
	for _, ann := range candidate.Annotations {
		if len(ann.BBox) != 4 {
			continue
		}
		box := bboxToBox(ann.BBox)

		var best float32
		var bestID FlexID
		for _, ref := range refs {
			if iou := box.IoU(ref.box); iou > best {
				best = iou
				bestID = ref.id
			}
		}
		if best < threshold {
			best = 0
			bestID = ""
		}
		matches = append(matches, Match{CandidateID: ann.ID, ReferenceID: bestID, IoU: best})
	}
	return matches
}

// MatchFiles loads two per-image documents, matches the first against the
// second and writes a (candidate_id, reference_id, iou) CSV.
func MatchFiles(candidatePath, referencePath, outputCSV string, threshold float32) ([]Match, error) {
	candidate, err := Load(candidatePath)
	if err != nil {
		return nil, err
	}
	reference, err := Load(referencePath)
	if err != nil {
		return nil, err
	}

	matches := MatchBoxes(candidate, reference, threshold)

	report := &tabular.Table{Header: []string{"candidate_id", "reference_id", "iou"}}
	for _, m := range matches {
		report.Rows = append(report.Rows, []string{
			string(m.CandidateID), string(m.ReferenceID), fmt.Sprintf("%.4f", m.IoU),
		})
	}
	if err := report.WriteFile(outputCSV); err != nil {
		return nil, err
	}
	return matches, nil
}

// bboxToBox converts a COCO (x, y, w, h) box to exclusive-edge form without
// clamping; matching does not care about image bounds.
func bboxToBox(b []float32) geometry.Box {
	return geometry.Box{Left: b[0], Upper: b[1], Right: b[0] + b[2], Lower: b[1] + b[3]}
}
