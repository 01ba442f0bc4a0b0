package tabular

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// CountColumnValues counts the occurrences of each unique value in one column
// of a CSV file and writes a (value, count) report sorted by value to
// outputDir as counts_{input_name}.
//
// Returns:
// - string: Path of the report that was written.
// - error: Missing input, missing column, or I/O failure.
func CountColumnValues(inputCSV, outputDir, column string) (string, error) {
	table, err := ReadFile(inputCSV)
	if err != nil {
		return "", err
	}
	col := table.ColumnIndex(column)
	if col < 0 {
		return "", errors.Errorf("column %q not found in %s, available columns: %v",
			column, inputCSV, table.Header)
	}

	counts := make(map[string]int)
	for _, row := range table.Rows {
		counts[row[col]]++
	}

	values := make([]string, 0, len(counts))
	for value := range counts {
		values = append(values, value)
	}
	sort.Strings(values)

	report := &Table{Header: []string{column, "count"}}
	for _, value := range values {
		report.Rows = append(report.Rows, []string{value, strconv.Itoa(counts[value])})
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create output directory %s", outputDir)
	}
	outputPath := filepath.Join(outputDir, "counts_"+filepath.Base(inputCSV))
	if err := report.WriteFile(outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}
