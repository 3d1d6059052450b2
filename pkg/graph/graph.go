package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/spacecol/pkg/tree"
)

// MarshalTree converts a serialised tree to indented JSON bytes.
func MarshalTree(g Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTreeTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalTree decodes JSON bytes without validating the forest.
// Use ToTree on the result, or ReadTree, to get a checked tree.Tree.
func UnmarshalTree(data []byte) (Tree, error) {
	var g Tree
	if err := json.Unmarshal(data, &g); err != nil {
		return Tree{}, fmt.Errorf("decode: %w", err)
	}
	return g, nil
}

// WriteTreeFile writes a tree to a JSON file.
// The file is created with 0644 permissions.
func WriteTreeFile(g Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeTreeTo(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTree writes a tree as JSON to an io.Writer.
func WriteTree(g Tree, w io.Writer) error {
	return writeTreeTo(g, w)
}

// ReadTreeFile reads a JSON file and returns the decoded tree.
// Returns validation errors for malformed trees or forest violations.
func ReadTreeFile(path string) (*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readTreeFrom(f)
}

// ReadTree decodes a JSON tree from an io.Reader.
func ReadTree(r io.Reader) (*tree.Tree, error) {
	return readTreeFrom(r)
}

func writeTreeTo(g Tree, w io.Writer) error {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readTreeFrom(r io.Reader) (*tree.Tree, error) {
	var data Tree
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToTree(data)
}
