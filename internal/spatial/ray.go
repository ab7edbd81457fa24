// Package spatial provides ray casting and spatial indexing over triangle soups.
package spatial

import (
	"math"

	"github.com/Faultbox/millcheck/pkg/vec"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    vec.Vec3
	Direction vec.Vec3 // Normalized direction
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min vec.Vec3
	Max vec.Vec3
}

// EmptyAABB returns a box that extends to nothing.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: vec.Vec3{X: inf, Y: inf, Z: inf},
		Max: vec.Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

// Extend grows the box to contain the point p.
func (b AABB) Extend(p vec.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(other AABB) AABB {
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Center returns the box center point.
func (b AABB) Center() vec.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents per axis.
func (b AABB) Size() vec.Vec3 {
	return b.Max.Sub(b.Min)
}

// Diagonal returns the length of the box diagonal.
func (b AABB) Diagonal() float64 {
	return b.Max.Sub(b.Min).Length()
}

// Contains reports whether the box contains p, inclusive of faces.
func (b AABB) Contains(p vec.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ContainsBox reports whether other lies entirely inside b.
func (b AABB) ContainsBox(other AABB) bool {
	return b.Contains(other.Min) && b.Contains(other.Max)
}

// LongestAxis returns the axis index (0=X, 1=Y, 2=Z) with the largest extent.
func (b AABB) LongestAxis() int {
	s := b.Size()
	if s.X >= s.Y && s.X >= s.Z {
		return 0
	}
	if s.Y >= s.Z {
		return 1
	}
	return 2
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the entry and exit distances and whether intersection occurred.
// If the ray starts inside the box, tmin is negative and tmax is the exit.
func (r Ray) IntersectAABB(box AABB) (tmin, tmax float64, hit bool) {
	tmin = math.Inf(-1)
	tmax = math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		origin := r.Origin.Component(axis)
		dir := r.Direction.Component(axis)
		lo := box.Min.Component(axis)
		hi := box.Max.Component(axis)

		if dir != 0 {
			t1 := (lo - origin) / dir
			t2 := (hi - origin) / dir
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
		} else if origin < lo || origin > hi {
			return 0, 0, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, 0, false
	}
	return tmin, tmax, true
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) vec.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

const triEpsilon = 1e-9

// IntersectTriangle tests ray intersection with a triangle (Moller-Trumbore).
// Returns the distance along the ray and whether the ray hits the triangle
// at t > 0. Rays parallel to the triangle plane miss.
func (r Ray) IntersectTriangle(v0, v1, v2 vec.Vec3) (t float64, hit bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)

	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -triEpsilon && det < triEpsilon {
		return 0, false
	}
	invDet := 1.0 / det

	s := r.Origin.Sub(v0)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := r.Direction.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = e2.Dot(q) * invDet
	if t <= triEpsilon {
		return 0, false
	}
	return t, true
}
