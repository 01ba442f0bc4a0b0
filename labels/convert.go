package labels

import (
	"log/slog"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/biolsol/go-cropset/tabular"
)

// ConvertOptions configures Convert. Zero values fall back to the column
// names used by the annotation exports.
type ConvertOptions struct {
	// NameColumn is the input column holding label names.
	NameColumn string
	// IDColumn is the name the rewritten column takes in the output.
	IDColumn string
	// Strict aborts the conversion on any unmapped name instead of keeping
	// the original name as a fallback id.
	Strict bool
	// MissingReportPath, when set, receives a (name, count) CSV of all
	// unmapped names, sorted by name.
	MissingReportPath string
	// Logger reports conflicts and missing-name summaries. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Result summarizes one conversion pass.
type Result struct {
	// Converted is the number of rows whose name resolved to an id.
	Converted int
	// Missing counts the occurrences of each unmapped name.
	Missing map[string]int
}

// Convert rewrites the label-name column of inputCSV to the numeric label id
// given by mapping, preserving every other column and the column order, and
// writes the result to outputCSV. Unmapped names keep the original name
// string as a fallback id and are counted; under Strict any unmapped name
// aborts the conversion before output is written.
func Convert(inputCSV, outputCSV string, mapping *Mapping, opts ConvertOptions) (Result, error) {
	if opts.NameColumn == "" {
		opts.NameColumn = "label_name"
	}
	if opts.IDColumn == "" {
		opts.IDColumn = "label_id"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result := Result{Missing: make(map[string]int)}

	table, err := tabular.ReadFile(inputCSV)
	if err != nil {
		return result, err
	}
	nameCol := table.ColumnIndex(opts.NameColumn)
	if nameCol < 0 {
		return result, errors.Errorf("missing column %q in %s", opts.NameColumn, inputCSV)
	}

	for _, conflict := range mapping.Conflicts {
		logger.Warn("conflicting label ids, first-seen id kept",
			"name", conflict.Name, "kept", conflict.KeptID, "other", conflict.OtherID)
	}

	header := append([]string(nil), table.Header...)
	header[nameCol] = opts.IDColumn

	output := &tabular.Table{Header: header}
	for _, row := range table.Rows {
		out := append([]string(nil), row...)
		name := row[nameCol]
		if id, ok := mapping.Lookup(name); ok {
			out[nameCol] = strconv.FormatInt(id, 10)
			result.Converted++
		} else {
			if opts.Strict {
				return result, errors.Errorf("label name %q has no id in the mapping", name)
			}
			result.Missing[name]++
			out[nameCol] = name
		}
		output.Rows = append(output.Rows, out)
	}

	if err := output.WriteFile(outputCSV); err != nil {
		return result, err
	}

	if len(result.Missing) > 0 {
		logger.Warn("unmapped label names kept as fallback ids",
			"names", len(result.Missing))
		if opts.MissingReportPath != "" {
			if err := writeMissingReport(opts.MissingReportPath, result.Missing); err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

func writeMissingReport(path string, missing map[string]int) error {
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)

	report := &tabular.Table{Header: []string{"label_name", "count"}}
	for _, name := range names {
		report.Rows = append(report.Rows, []string{name, strconv.Itoa(missing[name])})
	}
	return report.WriteFile(path)
}
