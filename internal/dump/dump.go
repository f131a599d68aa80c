// Package dump renders VDF trees as YAML or JSON for inspection.
package dump

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/ossyrian/steamaffinity/internal/vdf"
)

// Value converts n to plain data: leaves become strings and objects become
// a yaml.MapSlice that keeps the document order.
func Value(n *vdf.Node) any {
	if n.IsLeaf() {
		return n.Value()
	}
	out := make(yaml.MapSlice, 0, n.Len())
	for _, e := range n.Entries() {
		out = append(out, yaml.MapItem{Key: e.Key, Value: Value(e.Node)})
	}
	return out
}

// YAML renders n as block-style YAML.
func YAML(n *vdf.Node) ([]byte, error) {
	data, err := yaml.Marshal(Value(n))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal yaml: %w", err)
	}
	return data, nil
}

// JSON renders n as JSON, keeping key order.
func JSON(n *vdf.Node) ([]byte, error) {
	data, err := yaml.MarshalWithOptions(Value(n), yaml.JSON())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json: %w", err)
	}
	return data, nil
}
