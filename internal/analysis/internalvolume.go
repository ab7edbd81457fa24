package analysis

import (
	"context"
	"math"
	"sort"

	"github.com/Faultbox/millcheck/internal/config"
	"github.com/Faultbox/millcheck/internal/mesh"
)

// checkInternalVolumes flags faces bounding fully enclosed cavities that
// no tool can enter. For a watertight 2-manifold every cavity boundary is
// its own connected component, so candidates are the non-outer components
// whose bounds lie strictly inside the outer shell and whose faces are
// all unreachable. Cavities below the min_depth^3 noise floor are treated
// as meshing artifacts and suppressed.
func checkInternalVolumes(ctx context.Context, m *mesh.Mesh, gc *Context, cfg *config.Config) (*Result, error) {
	res := newResult(nil, SeverityNone)
	res.Data["components"] = float64(m.ComponentCount())

	if m.ComponentCount() < 2 {
		res.Recommendation = "No enclosed internal volumes detected."
		return res, nil
	}

	// The outer shell is the component with the largest enclosed volume.
	outer := 0
	outerVol := math.Inf(-1)
	for c := 0; c < m.ComponentCount(); c++ {
		if v := math.Abs(m.ComponentSignedVolume(c)); v > outerVol {
			outerVol = v
			outer = c
		}
	}
	outerBounds := m.ComponentBounds(outer)

	noiseFloor := cfg.MinDepth * cfg.MinDepth * cfg.MinDepth
	var flagged []int
	cavities := 0
	var cavityVolume float64

	for c := 0; c < m.ComponentCount(); c++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c == outer {
			continue
		}
		if !outerBounds.ContainsBox(m.ComponentBounds(c)) {
			continue // separate body, not a cavity
		}

		faces := m.ComponentFaces(c)
		reachable := false
		for _, f := range faces {
			if gc.FaceReachable(f) {
				reachable = true
				break
			}
		}
		if reachable {
			continue
		}

		// Parity probe: a point in an enclosed void sees an even number of
		// surface crossings from outside the part.
		seed := m.ComponentBounds(c).Center()
		if gc.Crossings(seed)%2 != 0 {
			continue
		}

		vol := math.Abs(m.ComponentSignedVolume(c))
		if vol < noiseFloor {
			continue
		}

		cavities++
		cavityVolume += vol
		flagged = append(flagged, faces...)
	}

	// An unreachable internal void is never partially acceptable.
	sort.Ints(flagged)
	out := newResult(flagged, SeverityMajor)
	out.Data["components"] = float64(m.ComponentCount())
	out.Data["cavities"] = float64(cavities)
	out.Data["cavity_volume"] = cavityVolume
	if out.HasProblem {
		out.Recommendation = "Enclosed internal volumes cannot be machined; split the part or open the cavity."
	} else {
		out.Recommendation = "No enclosed internal volumes detected."
	}
	return out, nil
}
