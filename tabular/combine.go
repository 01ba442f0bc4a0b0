package tabular

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// FindCSVFiles lists the files in dir whose names contain matchText, in
// sorted name order so combined output is deterministic.
func FindCSVFiles(dir, matchText string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read directory %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.Contains(entry.Name(), matchText) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// CombineFiles concatenates CSV files that share an identical header into a
// single CSV at outputPath. The header is written once, from the first file.
// An empty input file or a header mismatch is fatal: the exports being merged
// come from the same tool and a differing header means the wrong file was
// picked up.
func CombineFiles(files []string, outputPath string) (int, error) {
	if len(files) == 0 {
		return 0, errors.New("no matching csv files found to combine")
	}

	combined := &Table{}
	for _, path := range files {
		table, err := ReadFile(path)
		if err != nil {
			return 0, err
		}
		if combined.Header == nil {
			combined.Header = table.Header
		} else if !slices.Equal(table.Header, combined.Header) {
			return 0, errors.Errorf("csv header mismatch in %s: expected %v but got %v",
				path, combined.Header, table.Header)
		}
		combined.Rows = append(combined.Rows, table.Rows...)
	}

	if err := combined.WriteFile(outputPath); err != nil {
		return 0, err
	}
	return len(combined.Rows), nil
}

// CombineDirectory combines every CSV in dir whose name contains matchText.
// The output file itself is excluded from the input set so reruns are safe.
func CombineDirectory(dir, matchText, outputPath string) (int, error) {
	files, err := FindCSVFiles(dir, matchText)
	if err != nil {
		return 0, err
	}

	absOut, err := filepath.Abs(outputPath)
	if err != nil {
		return 0, errors.Wrapf(err, "resolve output path %s", outputPath)
	}
	inputs := files[:0]
	for _, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			return 0, errors.Wrapf(err, "resolve input path %s", path)
		}
		if abs != absOut {
			inputs = append(inputs, path)
		}
	}

	return CombineFiles(inputs, outputPath)
}
