package analysis

import (
	"context"

	"github.com/Faultbox/millcheck/internal/config"
	"github.com/Faultbox/millcheck/internal/mesh"
)

// minorUndercutFraction is the flagged-face share below which an undercut
// finding stays Minor.
const minorUndercutFraction = 0.05

// checkUndercuts flags faces no candidate tool axis can reach. With
// context-aware analysis on, unreachable faces bounding a through-opening
// are suppressed: they can be machined from the opposite side.
func checkUndercuts(ctx context.Context, m *mesh.Mesh, gc *Context, cfg *config.Config) (*Result, error) {
	var flagged []int
	err := forEachFace(ctx, m.FaceCount(), func(i int) {
		if gc.FaceReachable(i) {
			return
		}
		if cfg.UseContextAware && gc.ThroughOpen(i) {
			return
		}
		flagged = append(flagged, i)
	})
	if err != nil {
		return nil, err
	}

	severity := SeverityMajor
	fraction := float64(len(flagged)) / float64(m.FaceCount())
	if fraction < minorUndercutFraction {
		severity = SeverityMinor
	}

	res := newResult(flagged, severity)
	res.Data["directions_tested"] = float64(len(gc.Directions()))
	res.Data["undercut_fraction"] = fraction
	if res.HasProblem {
		res.Recommendation = "Redesign undercut regions or plan a secondary setup from another orientation."
	} else {
		res.Recommendation = "No undercut surfaces detected."
	}
	return res, nil
}
