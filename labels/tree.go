// Package labels resolves textual label names to the numeric ids defined by a
// hierarchical label-tree document, and rewrites annotation CSVs accordingly.
package labels

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Label is one node of a label tree.
type Label struct {
	ID       *int64 `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

// Tree is one label tree of the forest. Only the labels list is needed for
// name resolution; other document fields are ignored.
type Tree struct {
	Name   string  `json:"name"`
	Labels []Label `json:"labels"`
}

// Conflict records a label name that appears with two different ids across
// the forest. The first-seen id wins; conflicts are reported, never fatal.
type Conflict struct {
	Name    string
	KeptID  int64
	OtherID int64
}

// Mapping is a name to numeric-id lookup built from a label-tree forest.
type Mapping struct {
	byName    map[string]int64
	Conflicts []Conflict
}

// Lookup returns the id mapped to name.
func (m *Mapping) Lookup(name string) (int64, bool) {
	id, ok := m.byName[name]
	return id, ok
}

// Len returns the number of mapped names.
func (m *Mapping) Len() int { return len(m.byName) }

// BuildMapping walks every node of every tree in the label-tree JSON document
// (a list of {labels: [{id, name, parent_id}, ...]} objects) and returns the
// name to id mapping. Nodes without a name or id are skipped. A later
// occurrence of a name with a conflicting id keeps the first-seen id and is
// recorded as a Conflict. Each tree's parent links are checked for cycles.
func BuildMapping(labelsJSON string) (*Mapping, error) {
	data, err := os.ReadFile(labelsJSON)
	if err != nil {
		return nil, errors.Wrapf(err, "read label tree file %s", labelsJSON)
	}

	var forest []Tree
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, errors.Wrapf(err, "parse label tree file %s, expected a list of label trees", labelsJSON)
	}

	mapping := &Mapping{byName: make(map[string]int64)}
	for _, tree := range forest {
		if err := validateHierarchy(tree); err != nil {
			return nil, err
		}
		for _, label := range tree.Labels {
			if label.Name == "" || label.ID == nil {
				continue
			}
			if kept, seen := mapping.byName[label.Name]; seen {
				if kept != *label.ID {
					mapping.Conflicts = append(mapping.Conflicts, Conflict{
						Name:    label.Name,
						KeptID:  kept,
						OtherID: *label.ID,
					})
				}
				continue
			}
			mapping.byName[label.Name] = *label.ID
		}
	}
	return mapping, nil
}

// validateHierarchy rejects trees whose parent links form a cycle. Parent ids
// that point outside the tree are treated as roots.
func validateHierarchy(tree Tree) error {
	parents := make(map[int64]*int64, len(tree.Labels))
	for _, label := range tree.Labels {
		if label.ID != nil {
			parents[*label.ID] = label.ParentID
		}
	}

	for id := range parents {
		visited := map[int64]struct{}{}
		for cur := id; ; {
			if _, seen := visited[cur]; seen {
				return errors.Errorf("label tree %q contains a cycle through label id %d", tree.Name, cur)
			}
			visited[cur] = struct{}{}
			parent, ok := parents[cur]
			if !ok || parent == nil {
				break
			}
			cur = *parent
		}
	}
	return nil
}
