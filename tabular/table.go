package tabular

import (
	"encoding/csv"
	"os"

	"github.com/pkg/errors"
)

// Table is a fully materialized CSV file: one header row plus data rows.
// Inputs are read once and never mutated in place.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadFile loads a CSV file into a Table. A file without a header row is an
// error; downstream joins cannot work without named columns.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open csv %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parse csv %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("csv %s is empty, expected a header row", path)
	}

	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// WriteFile writes the table to path, header first.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create csv %s", path)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(t.Header); err != nil {
		return errors.Wrapf(err, "write header to %s", path)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "write row to %s", path)
		}
	}
	writer.Flush()
	return errors.Wrapf(writer.Error(), "flush csv %s", path)
}

// ColumnIndex returns the position of name in the header, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Header {
		if col == name {
			return i
		}
	}
	return -1
}
