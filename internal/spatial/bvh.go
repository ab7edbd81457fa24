package spatial

import (
	"math"
	"sort"

	"github.com/Faultbox/millcheck/pkg/vec"
)

// Triangle is one indexed face of a mesh, flattened for traversal.
type Triangle struct {
	V0, V1, V2 vec.Vec3
	Face       int // index of the face in the source mesh
}

// Hit is a single ray/triangle intersection.
type Hit struct {
	T    float64 // distance along the ray
	Face int     // face index in the source mesh
}

// BVH is a bounding-volume hierarchy over mesh triangles. It is built once
// and read-only afterwards; traversal is safe for concurrent use.
type BVH struct {
	nodes []bvhNode
	tris  []Triangle
}

type bvhNode struct {
	bounds AABB
	// Interior nodes point at children; leaves own a triangle range.
	left, right int32
	start, end  int32 // leaf triangle range in tris
	leaf        bool
}

const bvhLeafSize = 4

// NewBVH builds a median-split hierarchy over the given triangles.
// The input slice is reordered in place during the build.
func NewBVH(tris []Triangle) *BVH {
	b := &BVH{tris: tris}
	if len(tris) == 0 {
		b.nodes = []bvhNode{{bounds: EmptyAABB(), leaf: true}}
		return b
	}
	b.nodes = make([]bvhNode, 0, 2*len(tris))
	b.build(0, len(tris))
	return b
}

// build creates the node covering tris[start:end] and returns its index.
func (b *BVH) build(start, end int) int32 {
	bounds := EmptyAABB()
	centroids := EmptyAABB()
	for _, tri := range b.tris[start:end] {
		bounds = bounds.Extend(tri.V0).Extend(tri.V1).Extend(tri.V2)
		centroids = centroids.Extend(triCentroid(tri))
	}

	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, bvhNode{bounds: bounds})

	if end-start <= bvhLeafSize {
		b.nodes[idx].leaf = true
		b.nodes[idx].start = int32(start)
		b.nodes[idx].end = int32(end)
		return idx
	}

	axis := centroids.LongestAxis()
	seg := b.tris[start:end]
	sort.Slice(seg, func(i, j int) bool {
		return triCentroid(seg[i]).Component(axis) < triCentroid(seg[j]).Component(axis)
	})
	mid := start + (end-start)/2

	left := b.build(start, mid)
	right := b.build(mid, end)
	b.nodes[idx].left = left
	b.nodes[idx].right = right
	return idx
}

func triCentroid(t Triangle) vec.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Scale(1.0 / 3.0)
}

// Bounds returns the bounding box of the whole hierarchy.
func (b *BVH) Bounds() AABB {
	return b.nodes[0].bounds
}

// FirstHit returns the nearest intersection with t in (tMin, tMax].
func (b *BVH) FirstHit(r Ray, tMin, tMax float64) (Hit, bool) {
	best := Hit{T: math.Inf(1), Face: -1}
	b.walk(0, r, tMin, tMax, func(h Hit) bool {
		if h.T < best.T {
			best = h
		}
		return true // keep searching for a nearer hit
	})
	if best.Face < 0 {
		return Hit{}, false
	}
	return best, true
}

// AnyHit reports whether any intersection exists with t in (tMin, tMax].
func (b *BVH) AnyHit(r Ray, tMin, tMax float64) bool {
	found := false
	b.walk(0, r, tMin, tMax, func(Hit) bool {
		found = true
		return false // stop at the first hit
	})
	return found
}

// AllHits returns every intersection with t in (tMin, tMax], nearest first.
func (b *BVH) AllHits(r Ray, tMin, tMax float64) []Hit {
	var hits []Hit
	b.walk(0, r, tMin, tMax, func(h Hit) bool {
		hits = append(hits, h)
		return true
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i].T < hits[j].T })
	return hits
}

// walk visits intersections in unspecified order, calling visit for each.
// Traversal stops early when visit returns false.
func (b *BVH) walk(node int32, r Ray, tMin, tMax float64, visit func(Hit) bool) bool {
	n := &b.nodes[node]
	entry, _, hit := r.IntersectAABB(n.bounds)
	if !hit || entry > tMax {
		return true
	}

	if n.leaf {
		for _, tri := range b.tris[n.start:n.end] {
			t, ok := r.IntersectTriangle(tri.V0, tri.V1, tri.V2)
			if ok && t > tMin && t <= tMax {
				if !visit(Hit{T: t, Face: tri.Face}) {
					return false
				}
			}
		}
		return true
	}

	if !b.walk(n.left, r, tMin, tMax, visit) {
		return false
	}
	return b.walk(n.right, r, tMin, tMax, visit)
}
