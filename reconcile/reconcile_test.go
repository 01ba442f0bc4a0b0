package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolsol/go-cropset/tabular"
)

func TestDecide(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("no secondary row keeps primary", func(t *testing.T) {
		got := Decide(cfg, Prediction{LabelID: "9", Confidence: 0.30}, nil)
		assert.Equal(t, Keep, got)
	})

	t.Run("both below thresholds forces unclassified", func(t *testing.T) {
		got := Decide(cfg,
			Prediction{LabelID: "9", Confidence: 0.30},
			&Prediction{LabelID: "42", Confidence: 0.50})
		assert.Equal(t, ForceUnclassified, got)
	})

	t.Run("low primary and confident secondary replaces", func(t *testing.T) {
		got := Decide(cfg,
			Prediction{LabelID: "9", Confidence: 0.30},
			&Prediction{LabelID: "42", Confidence: 0.90})
		assert.Equal(t, Replace, got)
	})

	t.Run("sentinel primary refined by confident secondary", func(t *testing.T) {
		got := Decide(cfg,
			Prediction{LabelID: DefaultSentinelLabelID, Confidence: 0.95},
			&Prediction{LabelID: "42", Confidence: 0.90})
		assert.Equal(t, Replace, got)
	})

	t.Run("sentinel secondary never refines a sentinel primary", func(t *testing.T) {
		got := Decide(cfg,
			Prediction{LabelID: DefaultSentinelLabelID, Confidence: 0.95},
			&Prediction{LabelID: DefaultSentinelLabelID, Confidence: 0.99})
		assert.Equal(t, Keep, got)
	})

	t.Run("confident primary keeps its label", func(t *testing.T) {
		got := Decide(cfg,
			Prediction{LabelID: "9", Confidence: 0.80},
			&Prediction{LabelID: "42", Confidence: 0.90})
		assert.Equal(t, Keep, got)
	})
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	primary := writeCSV(t, dir, "primary.csv",
		"annotation_id,label_id,user_id,confidence\n"+
			"1,9,2,0.30\n"+ // secondary confident -> replaced
			"2,9,2,0.30\n"+ // both below thresholds -> forced unclassified
			"3,9,2,0.9\n"+ // confident primary -> kept, reformatted
			"4,9,2,0.30\n") // no secondary row -> kept, reformatted
	secondary := writeCSV(t, dir, "secondary.csv",
		"annotation_id,label_id,user_id,confidence\n"+
			"1.0,42,7,0.90\n"+
			"2,42,7,0.50\n"+
			"3,42,7,0.95\n")
	output := filepath.Join(dir, "reconciled.csv")

	stats, err := Merge(primary, secondary, output, DefaultConfig())
	require.NoError(t, err, "merge should succeed for well-formed inputs")
	assert.Equal(t, Stats{Processed: 4, Replaced: 1, ForcedUnclassified: 1}, stats)

	table, err := tabular.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, []string{"annotation_id", "label_id", "user_id", "confidence"}, table.Header)
	assert.Equal(t, [][]string{
		{"1", "42", "7", "0.900"},
		{"2", "4196", "5", "0.000"},
		{"3", "9", "2", "0.900"},
		{"4", "9", "2", "0.300"},
	}, table.Rows, "one output row per primary row, in primary order, confidence at 3 decimals")
}

func TestMergeBadConfidenceIsFatal(t *testing.T) {
	dir := t.TempDir()
	primary := writeCSV(t, dir, "primary.csv",
		"annotation_id,label_id,user_id,confidence\n1,9,2,not-a-number\n")
	secondary := writeCSV(t, dir, "secondary.csv",
		"annotation_id,label_id,user_id,confidence\n")
	output := filepath.Join(dir, "reconciled.csv")

	_, err := Merge(primary, secondary, output, DefaultConfig())
	assert.Error(t, err, "an unparseable confidence must abort the pass")
	assert.NoFileExists(t, output, "no partial output may be written")
}

func TestMergeMissingColumnIsFatal(t *testing.T) {
	dir := t.TempDir()
	primary := writeCSV(t, dir, "primary.csv", "annotation_id,label_id,confidence\n1,9,0.5\n")
	secondary := writeCSV(t, dir, "secondary.csv",
		"annotation_id,label_id,user_id,confidence\n")

	_, err := Merge(primary, secondary, filepath.Join(dir, "out.csv"), DefaultConfig())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "user_id")
}
