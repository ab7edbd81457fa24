package analysis

import (
	"context"
	"math"

	"github.com/Faultbox/millcheck/internal/config"
	"github.com/Faultbox/millcheck/internal/mesh"
	"github.com/Faultbox/millcheck/internal/spatial"
	"github.com/Faultbox/millcheck/pkg/vec"
)

// Candidate tool axes. With context-aware analysis off only the vertical
// spindle direction is considered (plain 3-axis machining); on, the six
// axis directions plus four oblique ones approximate a 5-axis setup.
var (
	axisUp    = vec.Vec3{Z: 1}
	axisDown  = vec.Vec3{Z: -1}
	axisDirs  = []vec.Vec3{axisUp, axisDown, {X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	oblique   = 1 / math.Sqrt2
	tiltDirs  = []vec.Vec3{{X: oblique, Z: oblique}, {X: -oblique, Z: oblique}, {Y: oblique, Z: oblique}, {Y: -oblique, Z: oblique}}
	lateral4  = []vec.Vec3{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	axisPairs = [][2]vec.Vec3{{{X: 1}, {X: -1}}, {{Y: 1}, {Y: -1}}}
)

// rayBatchSize bounds the work between cancellation checks.
const rayBatchSize = 512

// Context answers tool-accessibility questions over an immutable mesh.
// It builds its spatial index and the per-face reachability table once;
// afterwards it is read-only and safe for concurrent checks.
type Context struct {
	mesh *mesh.Mesh
	bvh  *spatial.BVH
	dirs []vec.Vec3

	eps  float64 // ray origin offset to avoid self-intersection
	maxT float64 // exceeds any chord through the bounding box

	reachable []bool
}

// NewContext indexes the mesh and precomputes face reachability for the
// configured candidate direction set.
func NewContext(m *mesh.Mesh, cfg *config.Config) *Context {
	gc := &Context{
		mesh: m,
		bvh:  spatial.NewBVH(m.Triangles()),
	}
	diag := m.Bounds().Diagonal()
	gc.eps = diag * 1e-4
	gc.maxT = diag * 2

	if cfg.UseContextAware {
		gc.dirs = append(append([]vec.Vec3{}, axisDirs...), tiltDirs...)
	} else {
		gc.dirs = []vec.Vec3{axisUp}
	}

	gc.reachable = make([]bool, m.FaceCount())
	for i := range gc.reachable {
		gc.reachable[i] = gc.computeReachable(i)
	}
	return gc
}

// Directions returns the candidate tool-axis set in use.
func (gc *Context) Directions() []vec.Vec3 {
	return gc.dirs
}

// FaceReachable reports whether at least one candidate direction reaches
// the face from open space.
func (gc *Context) FaceReachable(face int) bool {
	return gc.reachable[face]
}

func (gc *Context) computeReachable(face int) bool {
	n := gc.mesh.Normal(face)
	origin := gc.mesh.Centroid(face).Add(n.Scale(gc.eps))
	for _, d := range gc.dirs {
		if n.Dot(d) <= 1e-6 {
			continue // tool would approach from behind the surface
		}
		if !gc.occluded(origin, d) {
			return true
		}
	}
	return false
}

// occluded reports whether anything blocks the ray before it leaves the
// mesh bounds.
func (gc *Context) occluded(origin, dir vec.Vec3) bool {
	return gc.occludedBeyond(origin, dir, gc.eps)
}

// occludedBeyond is occluded with an explicit near cutoff. Probes that can
// cross the originating face's own plane use 2*eps to skip the self hit.
func (gc *Context) occludedBeyond(origin, dir vec.Vec3, tMin float64) bool {
	r := spatial.Ray{Origin: origin, Direction: dir}
	return gc.bvh.AnyHit(r, tMin, gc.maxT)
}

// externalTolerance is the distance (mm) from the part's bounding planes
// within which a face counts as an external boundary surface.
const externalTolerance = 2.0

// isExternal reports whether the point lies on the part's outer envelope.
// External surfaces are always millable from outside and never belong to
// a pocket.
func (gc *Context) isExternal(p vec.Vec3) bool {
	b := gc.mesh.Bounds()
	for axis := 0; axis < 3; axis++ {
		v := p.Component(axis)
		if v-b.Min.Component(axis) < externalTolerance || b.Max.Component(axis)-v < externalTolerance {
			return true
		}
	}
	return false
}

// hitDistance returns the distance to the first surface along the ray, or
// +Inf when the ray leaves the bounds unobstructed.
func (gc *Context) hitDistance(origin, dir vec.Vec3) float64 {
	r := spatial.Ray{Origin: origin, Direction: dir}
	hit, ok := gc.bvh.FirstHit(r, gc.eps, gc.maxT)
	if !ok {
		return math.Inf(1)
	}
	return hit.T
}

// PocketDepth estimates the vertical distance from the face to the top
// plane of its enclosing cavity. Faces on open exterior surfaces report
// zero. A face occluded from above, or laterally enclosed by walls on at
// least three sides, is inside a cavity whose rim reaches the part top.
func (gc *Context) PocketDepth(face int) float64 {
	n := gc.mesh.Normal(face)
	c := gc.mesh.Centroid(face)
	if gc.isExternal(c) {
		return 0
	}
	origin := c.Add(n.Scale(gc.eps))

	vertical := gc.mesh.Bounds().Max.Z - c.Z
	if vertical <= 0 {
		return 0
	}
	// Down-facing faces cross their own plane on the way up; skip the
	// self hit.
	if gc.occludedBeyond(origin, axisUp, 2*gc.eps) {
		return vertical // buried under an overhang or cavity ceiling
	}

	walls := 0
	for _, d := range lateral4 {
		if gc.occluded(origin, d) {
			walls++
		}
	}
	if walls >= 3 {
		return vertical
	}
	return 0
}

// LateralOpening estimates the minimum free span across the cavity the
// face sits in: the smallest sum of opposing horizontal hit distances.
// Returns +Inf when no horizontal axis is closed on both sides.
func (gc *Context) LateralOpening(face int) float64 {
	n := gc.mesh.Normal(face)
	origin := gc.mesh.Centroid(face).Add(n.Scale(gc.eps))

	opening := math.Inf(1)
	for _, pair := range axisPairs {
		dPos := gc.hitDistance(origin, pair[0])
		dNeg := gc.hitDistance(origin, pair[1])
		if math.IsInf(dPos, 1) || math.IsInf(dNeg, 1) {
			continue
		}
		if span := dPos + dNeg; span < opening {
			opening = span
		}
	}
	return opening
}

// ChannelWidth estimates the clear distance from the face to the nearest
// opposing surface across the adjacent void, by casting along the outward
// normal. Returns +Inf when nothing opposes the face within the bounds.
func (gc *Context) ChannelWidth(face int) float64 {
	n := gc.mesh.Normal(face)
	origin := gc.mesh.Centroid(face).Add(n.Scale(gc.eps))
	d := gc.hitDistance(origin, n)
	if math.IsInf(d, 1) {
		return d
	}
	return d + gc.eps
}

// ThroughOpen reports whether the void adjacent to the face opens to the
// exterior in two opposite directions, i.e. the face bounds a channel a
// tool can enter from either end. Only directions roughly tangent to the
// face are considered.
func (gc *Context) ThroughOpen(face int) bool {
	n := gc.mesh.Normal(face)
	origin := gc.mesh.Centroid(face).Add(n.Scale(gc.eps))

	for _, pair := range [][2]vec.Vec3{{axisUp, axisDown}, {{X: 1}, {X: -1}}, {{Y: 1}, {Y: -1}}} {
		if math.Abs(n.Dot(pair[0])) > 0.5 {
			continue
		}
		if !gc.occludedBeyond(origin, pair[0], 2*gc.eps) && !gc.occludedBeyond(origin, pair[1], 2*gc.eps) {
			return true
		}
	}
	return false
}

// Crossings counts surface intersections on a probe ray from outside the
// bounding box to the given point. Even parity means the point sits in
// void (outside the material or inside an enclosed cavity), odd parity
// means solid material.
func (gc *Context) Crossings(p vec.Vec3) int {
	// Start outside the bounds, offset on all axes so the probe does not
	// run parallel to axis-aligned faces.
	b := gc.mesh.Bounds()
	margin := b.Diagonal()*0.25 + 1
	origin := b.Min.Sub(vec.Vec3{X: margin, Y: margin * 0.83, Z: margin * 0.71})

	dist := origin.Distance(p)
	dir := p.Sub(origin).Scale(1 / dist)
	r := spatial.Ray{Origin: origin, Direction: dir}
	return len(gc.bvh.AllHits(r, 0, dist-gc.eps))
}

// FeatureSize returns the diameter of an approximate minimal enclosing
// sphere (Ritter's bound) of the faces' corner vertices.
func (gc *Context) FeatureSize(faces []int) float64 {
	if len(faces) == 0 {
		return 0
	}

	var points []vec.Vec3
	for _, f := range faces {
		v0, v1, v2 := gc.mesh.FaceVertices(f)
		points = append(points, v0, v1, v2)
	}

	// Ritter: pick p, find farthest q, find farthest r from q; start with
	// the qr sphere and grow over stragglers.
	q := farthestFrom(points[0], points)
	r := farthestFrom(q, points)
	center := q.Add(r).Scale(0.5)
	radius := q.Distance(r) / 2

	for _, p := range points {
		d := center.Distance(p)
		if d > radius {
			radius = (radius + d) / 2
			center = center.Add(p.Sub(center).Scale((d - radius) / d))
		}
	}
	return radius * 2
}

func farthestFrom(from vec.Vec3, points []vec.Vec3) vec.Vec3 {
	best := from
	bestD := -1.0
	for _, p := range points {
		if d := from.Distance(p); d > bestD {
			bestD = d
			best = p
		}
	}
	return best
}

// forEachFace visits every face index, honoring cancellation at batch
// boundaries so a timed-out check stops promptly.
func forEachFace(ctx context.Context, n int, fn func(i int)) error {
	for start := 0; start < n; start += rayBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + rayBatchSize
		if end > n {
			end = n
		}
		for i := start; i < end; i++ {
			fn(i)
		}
	}
	return nil
}
