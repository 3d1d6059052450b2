package mesh

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

const cubeOBJ = `# unit cube
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
f 1 3 2
f 1 4 3
f 5 6 7
f 5 7 8
f 1 2 6
f 1 6 5
f 2 3 7
f 2 7 6
f 3 4 8
f 3 8 7
f 4 1 5
f 4 5 8
`

// Same cube but written as quads with texture/normal suffixes.
const quadCubeOBJ = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
vn 0 0 1
f 1//1 4//1 3//1 2//1
f 5/1/1 6/1/1 7/1/1 8/1/1
f 1 2 6 5
f 2 3 7 6
f 3 4 8 7
f -5 -8 -4 -1
`

func mustRead(t *testing.T, src string) *Mesh {
	t.Helper()
	m, err := ReadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestReadOBJ(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		verts int
		faces int
	}{
		{"triangles", cubeOBJ, 8, 12},
		{"quads with suffixes", quadCubeOBJ, 8, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustRead(t, tt.src)
			if len(m.Vertices) != tt.verts || len(m.Faces) != tt.faces {
				t.Fatalf("got %d verts %d faces", len(m.Vertices), len(m.Faces))
			}
			if !m.IsWatertight() {
				t.Error("cube should be watertight")
			}
			if v := math.Abs(m.Volume()); math.Abs(v-1) > 1e-9 {
				t.Errorf("|Volume| = %g, want 1", v)
			}
		})
	}
}

func TestReadOBJErrors(t *testing.T) {
	bad := []string{
		"v 1 2\n",
		"v a b c\n",
		"v 0 0 0\nf 1 2\n",
		"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n",
		"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
	}
	for _, src := range bad {
		if _, err := ReadOBJ(strings.NewReader(src)); err == nil {
			t.Errorf("ReadOBJ(%q) succeeded, want error", src)
		}
	}
}

func TestBounds(t *testing.T) {
	m := mustRead(t, cubeOBJ)
	b := m.Bounds()
	if b.Min != (r3.Vec{}) || b.Max != (r3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Errorf("Bounds = %+v", b)
	}
}

func TestOpenMeshNotWatertight(t *testing.T) {
	m := mustRead(t, cubeOBJ)
	m.Faces = m.Faces[:len(m.Faces)-1]
	if m.IsWatertight() {
		t.Error("cube with a missing face reported watertight")
	}
	if (&Mesh{}).IsWatertight() {
		t.Error("empty mesh reported watertight")
	}
}

func TestWeldJoinsSplitVertices(t *testing.T) {
	// Triangle soup: every face owns its own three vertices.
	src := mustRead(t, cubeOBJ)
	soup := &Mesh{}
	for _, f := range src.Faces {
		base := len(soup.Vertices)
		for _, i := range f {
			soup.Vertices = append(soup.Vertices, src.Vertices[i])
		}
		soup.Faces = append(soup.Faces, [3]int{base, base + 1, base + 2})
	}
	if soup.IsWatertight() {
		t.Fatal("soup should not be watertight before welding")
	}
	welded := soup.Weld(0)
	if len(welded.Vertices) != 8 {
		t.Errorf("welded vertices = %d, want 8", len(welded.Vertices))
	}
	if !welded.IsWatertight() {
		t.Error("welded soup should be watertight")
	}
}

func TestWeldDropsDegenerateFaces(t *testing.T) {
	m := &Mesh{
		Vertices: []r3.Vec{{}, {X: 1}, {X: 1e-12}},
		Faces:    [][3]int{{0, 1, 2}},
	}
	if got := m.Weld(1e-9); len(got.Faces) != 0 {
		t.Errorf("faces = %d, want 0", len(got.Faces))
	}
}

func TestVoxelizeCube(t *testing.T) {
	m := mustRead(t, cubeOBJ)
	pts := m.Voxelize(0.25)
	if len(pts) != 64 {
		t.Fatalf("voxels = %d, want 64", len(pts))
	}
	for _, p := range pts {
		if p.X <= 0 || p.X >= 1 || p.Y <= 0 || p.Y >= 1 || p.Z <= 0 || p.Z >= 1 {
			t.Fatalf("voxel centre %v outside cube", p)
		}
	}
	if got := m.Voxelize(0); got != nil {
		t.Errorf("pitch 0 gave %d points", len(got))
	}
}

func TestVoxelizeOctahedron(t *testing.T) {
	// Octahedron |x|+|y|+|z| <= 1 scaled by 2, volume 4/3 * 8.
	m := &Mesh{Vertices: []r3.Vec{
		{X: 2}, {X: -2}, {Y: 2}, {Y: -2}, {Z: 2}, {Z: -2},
	}}
	for _, sx := range []int{0, 1} {
		for _, sy := range []int{2, 3} {
			for _, sz := range []int{4, 5} {
				m.Faces = append(m.Faces, [3]int{sx, sy, sz})
			}
		}
	}
	if !m.IsWatertight() {
		t.Fatal("octahedron should be watertight")
	}
	pitch := 0.1
	pts := m.Voxelize(pitch)
	for _, p := range pts {
		if math.Abs(p.X)+math.Abs(p.Y)+math.Abs(p.Z) > 2+1e-9 {
			t.Fatalf("voxel centre %v outside octahedron", p)
		}
	}
	want := (32.0 / 3) / (pitch * pitch * pitch)
	if got := float64(len(pts)); math.Abs(got-want)/want > 0.1 {
		t.Errorf("voxel count %v, want within 10%% of %v", got, want)
	}
}
