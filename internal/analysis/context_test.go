package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/millcheck/internal/config"
	"github.com/Faultbox/millcheck/internal/mesh"
	"github.com/Faultbox/millcheck/pkg/vec"
)

// facesWhere selects face indices whose normal and centroid satisfy pred.
func facesWhere(m *mesh.Mesh, pred func(n, c vec.Vec3) bool) []int {
	var out []int
	for i := 0; i < m.FaceCount(); i++ {
		if pred(m.Normal(i), m.Centroid(i)) {
			out = append(out, i)
		}
	}
	return out
}

// pocketBlock is a 40x40x130 block with a 4x4 pocket sunk 120 deep from
// the top. Deep enough that the wall face centroids sit below the default
// deep-pocket threshold too.
func pocketBlock() *mesh.Mesh {
	return mesh.BlockWithPocket(
		vec.Vec3{}, vec.Vec3{X: 40, Y: 40, Z: 130},
		18, 22, 18, 22, 120,
	)
}

// holeBlock is a 10mm cube with a 2.5mm square hole through it along Z.
func holeBlock() *mesh.Mesh {
	return mesh.BlockWithThroughHole(
		vec.Vec3{}, vec.Vec3{X: 10, Y: 10, Z: 10},
		3.75, 6.25, 3.75, 6.25,
	)
}

func TestDirections(t *testing.T) {
	m := mesh.Box(vec.Vec3{}, vec.Vec3{X: 10, Y: 10, Z: 10})

	cfg := config.Default()
	gc := NewContext(m, cfg)
	assert.Len(t, gc.Directions(), 10)

	cfg.UseContextAware = false
	gc = NewContext(m, cfg)
	require.Len(t, gc.Directions(), 1)
	assert.Equal(t, axisUp, gc.Directions()[0])
}

func TestFaceReachableCube(t *testing.T) {
	m := mesh.Box(vec.Vec3{}, vec.Vec3{X: 10, Y: 10, Z: 10})
	gc := NewContext(m, config.Default())

	for i := 0; i < m.FaceCount(); i++ {
		assert.True(t, gc.FaceReachable(i), "face %d should be reachable", i)
	}
}

func TestFaceReachableEnclosedCavity(t *testing.T) {
	m := mesh.HollowBox(vec.Vec3{}, vec.Vec3{X: 10, Y: 10, Z: 10}, 2)
	require.Equal(t, 2, m.ComponentCount())
	gc := NewContext(m, config.Default())

	outer := 0
	if math.Abs(m.ComponentSignedVolume(1)) > math.Abs(m.ComponentSignedVolume(0)) {
		outer = 1
	}

	for i := 0; i < m.FaceCount(); i++ {
		if m.FaceComponent(i) == outer {
			assert.True(t, gc.FaceReachable(i), "outer face %d", i)
		} else {
			assert.False(t, gc.FaceReachable(i), "cavity face %d", i)
		}
	}
}

func TestPocketDepth(t *testing.T) {
	m := pocketBlock()
	gc := NewContext(m, config.Default())

	floor := facesWhere(m, func(n, c vec.Vec3) bool {
		return n.Z > 0.9 && c.Z > 9 && c.Z < 11
	})
	require.NotEmpty(t, floor)
	for _, f := range floor {
		assert.InDelta(t, 120, gc.PocketDepth(f), 1e-6, "pocket floor face %d", f)
	}

	walls := facesWhere(m, func(n, c vec.Vec3) bool {
		return math.Abs(n.Z) < 0.1 && c.X > 15 && c.X < 25 && c.Y > 15 && c.Y < 25
	})
	require.NotEmpty(t, walls)
	for _, f := range walls {
		want := 130 - m.Centroid(f).Z
		assert.InDelta(t, want, gc.PocketDepth(f), 1e-6, "pocket wall face %d", f)
	}

	// Everything on the outer envelope reports zero.
	top := facesWhere(m, func(n, c vec.Vec3) bool { return n.Z > 0.9 && c.Z > 129 })
	sides := facesWhere(m, func(n, c vec.Vec3) bool {
		return math.Abs(n.Z) < 0.1 && (c.X < 1 || c.X > 39 || c.Y < 1 || c.Y > 39)
	})
	require.NotEmpty(t, top)
	require.NotEmpty(t, sides)
	for _, f := range append(top, sides...) {
		assert.Zero(t, gc.PocketDepth(f), "exterior face %d", f)
	}
}

func TestChannelWidth(t *testing.T) {
	m := holeBlock()
	gc := NewContext(m, config.Default())

	holeWalls := facesWhere(m, func(n, c vec.Vec3) bool {
		return math.Abs(n.Z) < 0.1 && c.X > 3 && c.X < 7 && c.Y > 3 && c.Y < 7
	})
	require.Len(t, holeWalls, 8)
	for _, f := range holeWalls {
		assert.InDelta(t, 2.5, gc.ChannelWidth(f), 0.01, "hole wall face %d", f)
	}

	top := facesWhere(m, func(n, c vec.Vec3) bool { return n.Z > 0.9 })
	require.NotEmpty(t, top)
	for _, f := range top {
		assert.True(t, math.IsInf(gc.ChannelWidth(f), 1), "open face %d", f)
	}
}

func TestThroughOpen(t *testing.T) {
	hole := holeBlock()
	gc := NewContext(hole, config.Default())
	holeWalls := facesWhere(hole, func(n, c vec.Vec3) bool {
		return math.Abs(n.Z) < 0.1 && c.X > 3 && c.X < 7 && c.Y > 3 && c.Y < 7
	})
	require.NotEmpty(t, holeWalls)
	for _, f := range holeWalls {
		assert.True(t, gc.ThroughOpen(f), "through-hole wall face %d", f)
	}

	pocket := pocketBlock()
	gp := NewContext(pocket, config.Default())
	pocketWalls := facesWhere(pocket, func(n, c vec.Vec3) bool {
		return math.Abs(n.Z) < 0.1 && c.X > 15 && c.X < 25 && c.Y > 15 && c.Y < 25
	})
	require.NotEmpty(t, pocketWalls)
	for _, f := range pocketWalls {
		assert.False(t, gp.ThroughOpen(f), "blind pocket wall face %d", f)
	}
}

func TestCrossingsParity(t *testing.T) {
	m := mesh.HollowBox(vec.Vec3{}, vec.Vec3{X: 10, Y: 10, Z: 10}, 2)
	gc := NewContext(m, config.Default())

	assert.Equal(t, 0, gc.Crossings(vec.Vec3{X: 5, Y: 5, Z: 5})%2, "cavity center is void")
	assert.Equal(t, 1, gc.Crossings(vec.Vec3{X: 1, Y: 5, Z: 5})%2, "wall interior is solid")
	assert.Equal(t, 0, gc.Crossings(vec.Vec3{X: -3, Y: 5, Z: 5})%2, "outside is void")
}

func TestFeatureSize(t *testing.T) {
	m := mesh.Box(vec.Vec3{}, vec.Vec3{X: 10, Y: 10, Z: 10})
	gc := NewContext(m, config.Default())

	top := facesWhere(m, func(n, c vec.Vec3) bool { return n.Z > 0.9 })
	require.Len(t, top, 2)
	size := gc.FeatureSize(top)
	assert.InDelta(t, math.Sqrt(200), size, 0.5, "face diagonal bounds the cluster")

	assert.Zero(t, gc.FeatureSize(nil))
}
