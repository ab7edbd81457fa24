// Package mesh provides the immutable triangulated surface model consumed
// by the analysis engine, plus STL loading and primitive builders.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/millcheck/internal/spatial"
	"github.com/Faultbox/millcheck/pkg/vec"
)

// Validation errors for the analysis precondition.
var (
	ErrEmptyMesh     = errors.New("mesh has no faces")
	ErrNotWatertight = errors.New("mesh is not watertight")
)

const degenerateNormalEps = 1e-12

// Mesh is an immutable triangulated surface with derived per-face data.
// All derived quantities are computed once at construction.
type Mesh struct {
	vertices  []vec.Vec3
	faces     [][3]int
	normals   []vec.Vec3 // outward unit normals
	areas     []float64
	centroids []vec.Vec3
	bounds    spatial.AABB

	watertight bool
	adjacency  [][]int // faces sharing an edge, per face
	faceComp   []int   // connected component label per face
	compCount  int

	volume      float64 // signed volume from the divergence theorem
	surfaceArea float64
}

// New builds a mesh from vertex positions and triangle vertex indices.
// Face winding is assumed counter-clockwise seen from outside, so computed
// normals point out of the material. Degenerate or out-of-range faces are
// rejected.
func New(vertices []vec.Vec3, faces [][3]int) (*Mesh, error) {
	m := &Mesh{
		vertices:  vertices,
		faces:     faces,
		normals:   make([]vec.Vec3, len(faces)),
		areas:     make([]float64, len(faces)),
		centroids: make([]vec.Vec3, len(faces)),
		bounds:    spatial.EmptyAABB(),
	}

	for i, f := range faces {
		for _, vi := range f {
			if vi < 0 || vi >= len(vertices) {
				return nil, fmt.Errorf("face %d references vertex %d of %d", i, vi, len(vertices))
			}
		}
		v0, v1, v2 := vertices[f[0]], vertices[f[1]], vertices[f[2]]

		cross := v1.Sub(v0).Cross(v2.Sub(v0))
		mag := cross.Length()
		if mag < degenerateNormalEps {
			return nil, fmt.Errorf("face %d is degenerate", i)
		}
		m.normals[i] = cross.Scale(1 / mag)
		m.areas[i] = mag / 2
		m.centroids[i] = v0.Add(v1).Add(v2).Scale(1.0 / 3.0)
		m.surfaceArea += m.areas[i]

		// Signed volume of the tetrahedron against the origin.
		m.volume += v0.Dot(v1.Cross(v2)) / 6.0

		m.bounds = m.bounds.Extend(v0).Extend(v1).Extend(v2)
	}

	m.buildTopology()
	return m, nil
}

type edgeKey struct{ a, b int }

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// buildTopology derives edge adjacency, the watertight flag, and connected
// component labels.
func (m *Mesh) buildTopology() {
	edgeFaces := make(map[edgeKey][]int, len(m.faces)*3/2)
	for i, f := range m.faces {
		for e := 0; e < 3; e++ {
			k := makeEdgeKey(f[e], f[(e+1)%3])
			edgeFaces[k] = append(edgeFaces[k], i)
		}
	}

	m.watertight = len(m.faces) > 0
	m.adjacency = make([][]int, len(m.faces))
	for _, fs := range edgeFaces {
		if len(fs) != 2 {
			m.watertight = false
		}
		for _, a := range fs {
			for _, b := range fs {
				if a != b {
					m.adjacency[a] = append(m.adjacency[a], b)
				}
			}
		}
	}

	// Connected components over edge adjacency, BFS.
	m.faceComp = make([]int, len(m.faces))
	for i := range m.faceComp {
		m.faceComp[i] = -1
	}
	m.compCount = 0
	var queue []int
	for start := range m.faces {
		if m.faceComp[start] >= 0 {
			continue
		}
		label := m.compCount
		m.compCount++
		queue = append(queue[:0], start)
		m.faceComp[start] = label
		for len(queue) > 0 {
			f := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			for _, n := range m.adjacency[f] {
				if m.faceComp[n] < 0 {
					m.faceComp[n] = label
					queue = append(queue, n)
				}
			}
		}
	}
}

// Validate enforces the engine precondition: non-empty and watertight.
func (m *Mesh) Validate() error {
	if len(m.faces) == 0 {
		return ErrEmptyMesh
	}
	if !m.watertight {
		return ErrNotWatertight
	}
	return nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.vertices) }

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.faces) }

// Vertex returns the position of vertex i.
func (m *Mesh) Vertex(i int) vec.Vec3 { return m.vertices[i] }

// Face returns the vertex indices of face i.
func (m *Mesh) Face(i int) [3]int { return m.faces[i] }

// FaceVertices returns the three corner positions of face i.
func (m *Mesh) FaceVertices(i int) (vec.Vec3, vec.Vec3, vec.Vec3) {
	f := m.faces[i]
	return m.vertices[f[0]], m.vertices[f[1]], m.vertices[f[2]]
}

// Normal returns the outward unit normal of face i.
func (m *Mesh) Normal(i int) vec.Vec3 { return m.normals[i] }

// Area returns the area of face i.
func (m *Mesh) Area(i int) float64 { return m.areas[i] }

// Centroid returns the centroid of face i.
func (m *Mesh) Centroid(i int) vec.Vec3 { return m.centroids[i] }

// Bounds returns the axis-aligned bounding box.
func (m *Mesh) Bounds() spatial.AABB { return m.bounds }

// Watertight reports whether every edge is shared by exactly two faces.
func (m *Mesh) Watertight() bool { return m.watertight }

// Volume returns the enclosed volume. Internal cavities with inward-facing
// shells subtract from it.
func (m *Mesh) Volume() float64 { return math.Abs(m.volume) }

// SignedVolume returns the raw divergence-theorem volume sum, which is
// negative for shells whose normals point into the enclosed region.
func (m *Mesh) SignedVolume() float64 { return m.volume }

// SurfaceArea returns the total face area.
func (m *Mesh) SurfaceArea() float64 { return m.surfaceArea }

// Neighbors returns the faces sharing an edge with face i.
func (m *Mesh) Neighbors(i int) []int { return m.adjacency[i] }

// ComponentCount returns the number of edge-connected components.
func (m *Mesh) ComponentCount() int { return m.compCount }

// FaceComponent returns the component label of face i.
func (m *Mesh) FaceComponent(i int) int { return m.faceComp[i] }

// ComponentSignedVolume returns the divergence-theorem volume of a single
// component's closed shell. It is negative for cavity shells, whose
// normals point into the enclosed region.
func (m *Mesh) ComponentSignedVolume(c int) float64 {
	var vol float64
	for i, label := range m.faceComp {
		if label != c {
			continue
		}
		v0, v1, v2 := m.FaceVertices(i)
		vol += v0.Dot(v1.Cross(v2)) / 6.0
	}
	return vol
}

// ComponentBounds returns the bounding box of a single component.
func (m *Mesh) ComponentBounds(c int) spatial.AABB {
	b := spatial.EmptyAABB()
	for i, label := range m.faceComp {
		if label != c {
			continue
		}
		v0, v1, v2 := m.FaceVertices(i)
		b = b.Extend(v0).Extend(v1).Extend(v2)
	}
	return b
}

// ComponentFaces returns the indices of all faces in component c.
func (m *Mesh) ComponentFaces(c int) []int {
	var out []int
	for i, label := range m.faceComp {
		if label == c {
			out = append(out, i)
		}
	}
	return out
}

// Triangles flattens the mesh for spatial indexing.
func (m *Mesh) Triangles() []spatial.Triangle {
	tris := make([]spatial.Triangle, len(m.faces))
	for i := range m.faces {
		v0, v1, v2 := m.FaceVertices(i)
		tris[i] = spatial.Triangle{V0: v0, V1: v1, V2: v2, Face: i}
	}
	return tris
}
