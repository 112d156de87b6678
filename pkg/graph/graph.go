package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Cells and Tree Serialization API
// =============================================================================

// MarshalCells converts render cells to pretty-printed JSON bytes.
func MarshalCells(cells []Cell) ([]byte, error) {
	if cells == nil {
		cells = []Cell{}
	}
	return json.MarshalIndent(cells, "", "  ")
}

// UnmarshalCells decodes render cells.
func UnmarshalCells(data []byte) ([]Cell, error) {
	var cells []Cell
	if err := json.Unmarshal(data, &cells); err != nil {
		return nil, fmt.Errorf("unmarshal cells: %w", err)
	}
	return cells, nil
}

// MarshalTree converts a tree to pretty-printed JSON bytes.
func MarshalTree(tree []*TreeNode) ([]byte, error) {
	if tree == nil {
		tree = []*TreeNode{}
	}
	return json.MarshalIndent(tree, "", "  ")
}

// UnmarshalTree decodes a tree.
func UnmarshalTree(data []byte) ([]*TreeNode, error) {
	var tree []*TreeNode
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("unmarshal tree: %w", err)
	}
	return tree, nil
}

// WriteJSON writes v as indented JSON to w.
// Use the Marshal functions for in-memory serialization or WriteFile for files.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes v as indented JSON to path.
// The file is created with 0644 permissions.
func WriteFile(v any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
