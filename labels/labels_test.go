package labels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biolsol/go-cropset/tabular"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildMapping(t *testing.T) {
	dir := t.TempDir()
	treeJSON := writeFile(t, dir, "label_trees.json", `[
		{"name": "benthos", "labels": [
			{"id": 10, "name": "Polychaeta", "parent_id": null},
			{"id": 11, "name": "Ostracoda", "parent_id": 10}
		]},
		{"name": "metazoa", "labels": [
			{"id": 10, "name": "Polychaeta", "parent_id": null},
			{"id": 99, "name": "Ostracoda", "parent_id": null}
		]}
	]`)

	mapping, err := BuildMapping(treeJSON)
	require.NoError(t, err)
	assert.Equal(t, 2, mapping.Len())

	id, ok := mapping.Lookup("Polychaeta")
	assert.True(t, ok)
	assert.Equal(t, int64(10), id, "same name with the same id across trees is silent")

	id, ok = mapping.Lookup("Ostracoda")
	assert.True(t, ok)
	assert.Equal(t, int64(11), id, "first-seen id must win on conflict")
	require.Len(t, mapping.Conflicts, 1, "exactly one conflict entry must be recorded")
	assert.Equal(t, Conflict{Name: "Ostracoda", KeptID: 11, OtherID: 99}, mapping.Conflicts[0])
}

func TestBuildMappingRejectsCycle(t *testing.T) {
	dir := t.TempDir()
	treeJSON := writeFile(t, dir, "label_trees.json", `[
		{"name": "broken", "labels": [
			{"id": 1, "name": "a", "parent_id": 2},
			{"id": 2, "name": "b", "parent_id": 1}
		]}
	]`)

	_, err := BuildMapping(treeJSON)
	assert.Error(t, err, "a cyclic hierarchy must be rejected")
	assert.Contains(t, err.Error(), "cycle")
}

func TestBuildMappingRejectsNonList(t *testing.T) {
	dir := t.TempDir()
	treeJSON := writeFile(t, dir, "label_trees.json", `{"labels": []}`)

	_, err := BuildMapping(treeJSON)
	assert.Error(t, err, "the document root must be a list of label trees")
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	treeJSON := writeFile(t, dir, "label_trees.json", `[
		{"name": "benthos", "labels": [
			{"id": 10, "name": "Polychaeta", "parent_id": null},
			{"id": 11, "name": "Ostracoda", "parent_id": 10}
		]}
	]`)
	input := writeFile(t, dir, "names.csv",
		"annotation_id,label_name,user_id\n1,Polychaeta,2\n2,Copepoda,2\n3,Copepoda,4\n")

	mapping, err := BuildMapping(treeJSON)
	require.NoError(t, err)

	output := filepath.Join(dir, "ids.csv")
	report := filepath.Join(dir, "missing.csv")
	result, err := Convert(input, output, mapping, ConvertOptions{MissingReportPath: report})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Converted)
	assert.Equal(t, map[string]int{"Copepoda": 2}, result.Missing)

	table, err := tabular.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, []string{"annotation_id", "label_id", "user_id"}, table.Header,
		"the name column must be renamed in place")
	assert.Equal(t, [][]string{
		{"1", "10", "2"},
		{"2", "Copepoda", "2"},
		{"3", "Copepoda", "4"},
	}, table.Rows, "unmapped names keep the original string as fallback id")

	reportTable, err := tabular.ReadFile(report)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Copepoda", "2"}}, reportTable.Rows)
}

func TestConvertStrict(t *testing.T) {
	dir := t.TempDir()
	treeJSON := writeFile(t, dir, "label_trees.json", `[{"name": "t", "labels": []}]`)
	input := writeFile(t, dir, "names.csv", "label_name\nCopepoda\n")

	mapping, err := BuildMapping(treeJSON)
	require.NoError(t, err)

	output := filepath.Join(dir, "ids.csv")
	_, err = Convert(input, output, mapping, ConvertOptions{Strict: true})
	assert.Error(t, err, "strict mode must abort on any unmapped name")
	assert.NoFileExists(t, output, "strict mode must not leave partial output")
}
