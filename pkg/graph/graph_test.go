package graph

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/spacecol/pkg/tree"
)

func sampleTree() *tree.Tree {
	t := tree.New(2)
	r := t.AddRoot(r3.Vec{X: 10, Y: 20})
	a, _ := t.Add(r3.Vec{X: 10, Y: 15}, r)
	t.Add(r3.Vec{X: 12, Y: 11}, a)
	t.Add(r3.Vec{X: 8, Y: 11}, a)
	t.AddRoot(r3.Vec{X: 50, Y: 20})
	return t
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		build func() *tree.Tree
	}{
		{"Empty", func() *tree.Tree { return tree.New(2) }},
		{"Forest", sampleTree},
		{
			name: "ThreeD",
			build: func() *tree.Tree {
				t := tree.New(3)
				r := t.AddRoot(r3.Vec{X: 1, Y: 2, Z: 3})
				t.Add(r3.Vec{X: 1, Y: 2, Z: 8.25}, r)
				return t
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.build()
			g := FromTree(in)
			g.Ticks, g.Reason = 7, "exhausted"

			data, err := MarshalTree(g)
			if err != nil {
				t.Fatalf("MarshalTree: %v", err)
			}
			out, err := ReadTree(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("ReadTree: %v", err)
			}
			if out.Dims() != in.Dims() || out.Len() != in.Len() {
				t.Fatalf("got dims=%d len=%d, want dims=%d len=%d", out.Dims(), out.Len(), in.Dims(), in.Len())
			}
			for i := range in.Len() {
				if out.Node(i) != in.Node(i) {
					t.Errorf("node %d = %+v, want %+v", i, out.Node(i), in.Node(i))
				}
			}

			back, err := UnmarshalTree(data)
			if err != nil {
				t.Fatal(err)
			}
			if back.Ticks != 7 || back.Reason != "exhausted" {
				t.Errorf("metadata = %d/%q", back.Ticks, back.Reason)
			}
		})
	}
}

func TestMarshalEmptyNodesIsArray(t *testing.T) {
	data, err := MarshalTree(Tree{Dims: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"nodes": []`) {
		t.Errorf("empty tree encodes nodes as %s", data)
	}
}

func TestReadTreeRejects(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr error
	}{
		{"ForwardParent", `{"dims":2,"nodes":[{"id":0,"parent":1,"pos":[0,0,0]},{"id":1,"parent":-1,"pos":[0,0,0]}]}`, tree.ErrParentOrder},
		{"MissingParent", `{"dims":2,"nodes":[{"id":0,"parent":-1,"pos":[0,0,0]},{"id":1,"parent":9,"pos":[0,0,0]}]}`, tree.ErrUnknownParent},
		{"SelfParent", `{"dims":2,"nodes":[{"id":0,"parent":0,"pos":[0,0,0]}]}`, tree.ErrParentOrder},
		{"ZIn2D", `{"dims":2,"nodes":[{"id":0,"parent":-1,"pos":[0,0,1]}]}`, tree.ErrInvalidDims},
		{"BadDims", `{"dims":4,"nodes":[]}`, tree.ErrInvalidDims},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTree(strings.NewReader(tt.json))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadTreeBadInput(t *testing.T) {
	for _, in := range []string{`{`, `{"dims":2,"nodes":[{"id":3,"parent":-1,"pos":[0,0,0]}]}`} {
		if _, err := ReadTree(strings.NewReader(in)); err == nil {
			t.Errorf("ReadTree(%q) succeeded", in)
		}
	}
}

func TestTreeFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := WriteTreeFile(FromTree(sampleTree()), path); err != nil {
		t.Fatalf("WriteTreeFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("stat: %v", err)
	}
	got, err := ReadTreeFile(path)
	if err != nil {
		t.Fatalf("ReadTreeFile: %v", err)
	}
	if len(got.Roots()) != 2 || got.Len() != 5 {
		t.Errorf("roots=%d len=%d", len(got.Roots()), got.Len())
	}

	if _, err := ReadTreeFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
