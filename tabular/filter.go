package tabular

import (
	"github.com/pkg/errors"
)

// FilterOptions configures FilterByLabels. The zero value is completed by
// applyFilterDefaults with the column names used by the annotation exports.
type FilterOptions struct {
	// AnnotationIDColumn is the id column of the geometry annotations table.
	AnnotationIDColumn string
	// LabelIDColumn is the id column of the labels table.
	LabelIDColumn string
}

func applyFilterDefaults(opts FilterOptions) FilterOptions {
	if opts.AnnotationIDColumn == "" {
		opts.AnnotationIDColumn = "id"
	}
	if opts.LabelIDColumn == "" {
		opts.LabelIDColumn = "annotation_id"
	}
	return opts
}

// FilterByLabels restricts a geometry-annotation CSV to the rows whose
// normalized id appears in the labels CSV. Column order and every other field
// of the kept rows are preserved verbatim. A missing id column in either
// header fails the whole pass before any output is written; silently dropping
// rows would break the one-to-one output guarantee.
//
// Arguments:
// - annotationsCSV: Path to the geometry annotations table.
// - labelsCSV: Path to the authoritative labels table.
// - outputCSV: Destination for the filtered table.
// - opts: Column name configuration.
//
// Returns:
// - int: Number of annotation rows kept.
// - error: Fatal structural or I/O failure.
func FilterByLabels(annotationsCSV, labelsCSV, outputCSV string, opts FilterOptions) (int, error) {
	opts = applyFilterDefaults(opts)

	labelsTable, err := ReadFile(labelsCSV)
	if err != nil {
		return 0, err
	}
	labelCol := labelsTable.ColumnIndex(opts.LabelIDColumn)
	if labelCol < 0 {
		return 0, errors.Errorf("missing column %q in %s", opts.LabelIDColumn, labelsCSV)
	}

	validIDs := make(map[string]struct{}, len(labelsTable.Rows))
	for _, row := range labelsTable.Rows {
		if id := NormalizeID(row[labelCol]); id != "" {
			validIDs[id] = struct{}{}
		}
	}

	annTable, err := ReadFile(annotationsCSV)
	if err != nil {
		return 0, err
	}
	annCol := annTable.ColumnIndex(opts.AnnotationIDColumn)
	if annCol < 0 {
		return 0, errors.Errorf("missing column %q in %s", opts.AnnotationIDColumn, annotationsCSV)
	}

	filtered := &Table{Header: annTable.Header}
	for _, row := range annTable.Rows {
		if _, ok := validIDs[NormalizeID(row[annCol])]; ok {
			filtered.Rows = append(filtered.Rows, row)
		}
	}

	if err := filtered.WriteFile(outputCSV); err != nil {
		return 0, err
	}
	return len(filtered.Rows), nil
}
