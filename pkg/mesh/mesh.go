// Package mesh holds the triangle meshes used as growth volumes.
//
// It covers what the volume attractor source needs: OBJ loading, bounds,
// enclosed volume, a watertightness test, vertex welding and interior
// voxelisation by ray parity. It is not a general mesh library and performs
// no repair beyond welding coincident vertices.
package mesh

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultWeldTolerance is the distance below which vertices are merged by Weld.
const DefaultWeldTolerance = 1e-8

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *Mesh) Bounds() r3.Box {
	if len(m.Vertices) == 0 {
		return r3.Box{}
	}
	b := r3.Box{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min = r3.Vec{X: math.Min(b.Min.X, v.X), Y: math.Min(b.Min.Y, v.Y), Z: math.Min(b.Min.Z, v.Z)}
		b.Max = r3.Vec{X: math.Max(b.Max.X, v.X), Y: math.Max(b.Max.Y, v.Y), Z: math.Max(b.Max.Z, v.Z)}
	}
	return b
}

// Volume returns the signed enclosed volume (divergence theorem over the
// faces). Outward-wound closed meshes give a positive value.
func (m *Mesh) Volume() float64 {
	var sum float64
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		sum += r3.Dot(a, r3.Cross(b, c))
	}
	return sum / 6
}

type edgeKey struct{ a, b int }

func undirected(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// IsWatertight reports whether every edge is shared by exactly two faces.
// An empty mesh is not watertight.
func (m *Mesh) IsWatertight() bool {
	if len(m.Faces) == 0 {
		return false
	}
	counts := make(map[edgeKey]int, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		counts[undirected(f[0], f[1])]++
		counts[undirected(f[1], f[2])]++
		counts[undirected(f[2], f[0])]++
	}
	for _, n := range counts {
		if n != 2 {
			return false
		}
	}
	return true
}

// Weld returns a copy of the mesh where vertices closer than tol (per axis,
// after quantisation) share one index. Faces that collapse to fewer than three
// distinct vertices are dropped.
func (m *Mesh) Weld(tol float64) *Mesh {
	if tol <= 0 {
		tol = DefaultWeldTolerance
	}
	type key struct{ x, y, z int64 }
	quant := func(v r3.Vec) key {
		return key{int64(math.Round(v.X / tol)), int64(math.Round(v.Y / tol)), int64(math.Round(v.Z / tol))}
	}

	out := &Mesh{}
	seen := make(map[key]int, len(m.Vertices))
	remap := make([]int, len(m.Vertices))
	for i, v := range m.Vertices {
		k := quant(v)
		idx, ok := seen[k]
		if !ok {
			idx = len(out.Vertices)
			seen[k] = idx
			out.Vertices = append(out.Vertices, v)
		}
		remap[i] = idx
	}
	for _, f := range m.Faces {
		g := [3]int{remap[f[0]], remap[f[1]], remap[f[2]]}
		if g[0] == g[1] || g[1] == g[2] || g[0] == g[2] {
			continue
		}
		out.Faces = append(out.Faces, g)
	}
	return out
}

// Voxelize returns the centres of all grid cells of size pitch whose centre
// lies inside the mesh. The grid starts at the minimum corner of Bounds.
//
// Inside-ness is decided by ray parity: for every (y, z) column a ray is cast
// along +X and the crossings with the surface are paired up. Column
// coordinates carry a tiny fixed offset so rays never graze shared edges.
// The mesh should be watertight; open meshes give unreliable results.
func (m *Mesh) Voxelize(pitch float64) []r3.Vec {
	if pitch <= 0 || len(m.Faces) == 0 {
		return nil
	}
	b := m.Bounds()
	nx := cells(b.Max.X-b.Min.X, pitch)
	ny := cells(b.Max.Y-b.Min.Y, pitch)
	nz := cells(b.Max.Z-b.Min.Z, pitch)

	// Bucket triangles by the columns their YZ shadow covers.
	buckets := make(map[[2]int][]int)
	for fi, f := range m.Faces {
		a, bb, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		j0 := clampCell(math.Floor((math.Min(a.Y, math.Min(bb.Y, c.Y))-b.Min.Y)/pitch-0.5), ny)
		j1 := clampCell(math.Ceil((math.Max(a.Y, math.Max(bb.Y, c.Y))-b.Min.Y)/pitch-0.5), ny)
		k0 := clampCell(math.Floor((math.Min(a.Z, math.Min(bb.Z, c.Z))-b.Min.Z)/pitch-0.5), nz)
		k1 := clampCell(math.Ceil((math.Max(a.Z, math.Max(bb.Z, c.Z))-b.Min.Z)/pitch-0.5), nz)
		for j := j0; j <= j1; j++ {
			for k := k0; k <= k1; k++ {
				buckets[[2]int{j, k}] = append(buckets[[2]int{j, k}], fi)
			}
		}
	}

	var out []r3.Vec
	var xs []float64
	for j := 0; j < ny; j++ {
		y := b.Min.Y + (float64(j)+0.5)*pitch
		for k := 0; k < nz; k++ {
			z := b.Min.Z + (float64(k)+0.5)*pitch
			ry, rz := y+pitch*1.37e-5, z+pitch*2.91e-5

			xs = xs[:0]
			for _, fi := range buckets[[2]int{j, k}] {
				if x, ok := m.crossX(fi, ry, rz); ok {
					xs = append(xs, x)
				}
			}
			if len(xs) < 2 {
				continue
			}
			sort.Float64s(xs)
			for p := 0; p+1 < len(xs); p += 2 {
				lo, hi := xs[p], xs[p+1]
				i0 := int(math.Ceil((lo-b.Min.X)/pitch - 0.5))
				for i := max(i0, 0); i < nx; i++ {
					x := b.Min.X + (float64(i)+0.5)*pitch
					if x >= hi {
						break
					}
					out = append(out, r3.Vec{X: x, Y: y, Z: z})
				}
			}
		}
	}
	return out
}

// crossX intersects face fi with the line {Y=y, Z=z} and returns the X
// coordinate of the crossing.
func (m *Mesh) crossX(fi int, y, z float64) (float64, bool) {
	f := m.Faces[fi]
	a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	e1y, e1z := b.Y-a.Y, b.Z-a.Z
	e2y, e2z := c.Y-a.Y, c.Z-a.Z
	det := e1y*e2z - e2y*e1z
	if math.Abs(det) < 1e-15 {
		return 0, false
	}
	py, pz := y-a.Y, z-a.Z
	u := (py*e2z - e2y*pz) / det
	v := (e1y*pz - py*e1z) / det
	if u < 0 || v < 0 || u+v > 1 {
		return 0, false
	}
	return a.X + u*(b.X-a.X) + v*(c.X-a.X), true
}

func cells(extent, pitch float64) int {
	n := int(math.Ceil(extent / pitch))
	if n < 1 {
		n = 1
	}
	return n
}

func clampCell(v float64, n int) int {
	i := int(v)
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
