package mesh

import (
	"github.com/Faultbox/millcheck/pkg/vec"
)

// Primitive builders used by tests and demo fixtures. All of them emit
// welded, watertight meshes with outward normals by extracting the surface
// of a small axis-aligned cell grid, so shared edges always match exactly.

// Box returns a solid axis-aligned box.
func Box(min, max vec.Vec3) *Mesh {
	return cellGrid(
		[]float64{min.X, max.X},
		[]float64{min.Y, max.Y},
		[]float64{min.Z, max.Z},
		func(i, j, k int) bool { return true },
	)
}

// HollowBox returns a box with a fully enclosed cubic cavity. The cavity
// shell's normals face into the void, as outward-from-material requires.
func HollowBox(min, max vec.Vec3, wall float64) *Mesh {
	return cellGrid(
		[]float64{min.X, min.X + wall, max.X - wall, max.X},
		[]float64{min.Y, min.Y + wall, max.Y - wall, max.Y},
		[]float64{min.Z, min.Z + wall, max.Z - wall, max.Z},
		func(i, j, k int) bool { return i != 1 || j != 1 || k != 1 },
	)
}

// BlockWithThroughHole returns a box with a rectangular hole through the
// full Z extent. The hole spans [hx0,hx1] x [hy0,hy1].
func BlockWithThroughHole(min, max vec.Vec3, hx0, hx1, hy0, hy1 float64) *Mesh {
	return cellGrid(
		[]float64{min.X, hx0, hx1, max.X},
		[]float64{min.Y, hy0, hy1, max.Y},
		[]float64{min.Z, max.Z},
		func(i, j, k int) bool { return i != 1 || j != 1 },
	)
}

// BlockWithPocket returns a box with a rectangular blind pocket of the
// given depth opening at the top (+Z) face.
func BlockWithPocket(min, max vec.Vec3, px0, px1, py0, py1, depth float64) *Mesh {
	return cellGrid(
		[]float64{min.X, px0, px1, max.X},
		[]float64{min.Y, py0, py1, max.Y},
		[]float64{min.Z, max.Z - depth, max.Z},
		func(i, j, k int) bool { return i != 1 || j != 1 || k != 1 },
	)
}

// cellGrid extracts the boundary surface of the solid cells in an
// axis-aligned grid. Coordinates must be strictly increasing per axis.
// A face is emitted wherever a solid cell meets a void cell or the
// outside, wound so its normal points away from the material.
func cellGrid(xs, ys, zs []float64, solid func(i, j, k int) bool) *Mesh {
	w := newVertexWelder()

	isSolid := func(i, j, k int) bool {
		if i < 0 || j < 0 || k < 0 || i >= len(xs)-1 || j >= len(ys)-1 || k >= len(zs)-1 {
			return false
		}
		return solid(i, j, k)
	}

	quad := func(a, b, c, d vec.Vec3) {
		w.addTriangle([3]vec.Vec3{a, b, c})
		w.addTriangle([3]vec.Vec3{a, c, d})
	}

	for i := 0; i < len(xs)-1; i++ {
		for j := 0; j < len(ys)-1; j++ {
			for k := 0; k < len(zs)-1; k++ {
				if !isSolid(i, j, k) {
					continue
				}
				x0, x1 := xs[i], xs[i+1]
				y0, y1 := ys[j], ys[j+1]
				z0, z1 := zs[k], zs[k+1]

				if !isSolid(i-1, j, k) { // -X
					quad(vec.Vec3{X: x0, Y: y1, Z: z0}, vec.Vec3{X: x0, Y: y0, Z: z0},
						vec.Vec3{X: x0, Y: y0, Z: z1}, vec.Vec3{X: x0, Y: y1, Z: z1})
				}
				if !isSolid(i+1, j, k) { // +X
					quad(vec.Vec3{X: x1, Y: y0, Z: z0}, vec.Vec3{X: x1, Y: y1, Z: z0},
						vec.Vec3{X: x1, Y: y1, Z: z1}, vec.Vec3{X: x1, Y: y0, Z: z1})
				}
				if !isSolid(i, j-1, k) { // -Y
					quad(vec.Vec3{X: x0, Y: y0, Z: z0}, vec.Vec3{X: x1, Y: y0, Z: z0},
						vec.Vec3{X: x1, Y: y0, Z: z1}, vec.Vec3{X: x0, Y: y0, Z: z1})
				}
				if !isSolid(i, j+1, k) { // +Y
					quad(vec.Vec3{X: x1, Y: y1, Z: z0}, vec.Vec3{X: x0, Y: y1, Z: z0},
						vec.Vec3{X: x0, Y: y1, Z: z1}, vec.Vec3{X: x1, Y: y1, Z: z1})
				}
				if !isSolid(i, j, k-1) { // -Z
					quad(vec.Vec3{X: x0, Y: y0, Z: z0}, vec.Vec3{X: x0, Y: y1, Z: z0},
						vec.Vec3{X: x1, Y: y1, Z: z0}, vec.Vec3{X: x1, Y: y0, Z: z0})
				}
				if !isSolid(i, j, k+1) { // +Z
					quad(vec.Vec3{X: x0, Y: y0, Z: z1}, vec.Vec3{X: x1, Y: y0, Z: z1},
						vec.Vec3{X: x1, Y: y1, Z: z1}, vec.Vec3{X: x0, Y: y1, Z: z1})
				}
			}
		}
	}

	m, err := w.build()
	if err != nil {
		// Only reachable with non-increasing grid coordinates.
		panic("mesh: primitive grid produced no triangles: " + err.Error())
	}
	return m
}
