package cropper

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/biolsol/go-cropset/tabular"
)

// LoadSegmentation reads a segmentation CSV with columns x, y and group into
// pixel records. Rows with a negative group are kept; the cropper drops them
// as background.
func LoadSegmentation(csvPath string) ([]SegmentedPixel, error) {
	table, err := tabular.ReadFile(csvPath)
	if err != nil {
		return nil, err
	}

	xCol := table.ColumnIndex("x")
	yCol := table.ColumnIndex("y")
	groupCol := table.ColumnIndex("group")
	if xCol < 0 || yCol < 0 || groupCol < 0 {
		return nil, errors.Errorf("segmentation %s needs columns x, y and group", csvPath)
	}

	pixels := make([]SegmentedPixel, 0, len(table.Rows))
	for i, row := range table.Rows {
		x, err := strconv.Atoi(row[xCol])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: parse x", i+1)
		}
		y, err := strconv.Atoi(row[yCol])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: parse y", i+1)
		}
		group, err := strconv.Atoi(row[groupCol])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: parse group", i+1)
		}
		pixels = append(pixels, SegmentedPixel{X: x, Y: y, Group: group})
	}
	return pixels, nil
}
