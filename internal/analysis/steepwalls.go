package analysis

import (
	"context"
	"math"

	"github.com/Faultbox/millcheck/internal/config"
	"github.com/Faultbox/millcheck/internal/mesh"
)

// checkSteepWalls flags near-vertical faces inside deep pockets. Exterior
// steep walls are fine for milling; the check only applies where the
// local pocket depth exceeds deep_pocket_threshold. Severity escalates to
// Major when a flagged wall is also unreachable (steep and occluded);
// merely steep but reachable walls cost surface quality, not feasibility.
func checkSteepWalls(ctx context.Context, m *mesh.Mesh, gc *Context, cfg *config.Config) (*Result, error) {
	var flagged []int
	occludedCount := 0
	maxAngle := 0.0

	err := forEachFace(ctx, m.FaceCount(), func(i int) {
		if gc.PocketDepth(i) <= cfg.DeepPocketThreshold {
			return
		}
		// Angle between the outward normal and the machining axis.
		angle := math.Acos(clampUnit(math.Abs(m.Normal(i).Z))) * 180 / math.Pi
		if angle <= cfg.SteepAngleThreshold {
			return
		}
		flagged = append(flagged, i)
		if angle > maxAngle {
			maxAngle = angle
		}
		if !gc.FaceReachable(i) {
			occludedCount++
		}
	})
	if err != nil {
		return nil, err
	}

	severity := SeverityMinor
	if occludedCount > 0 {
		severity = SeverityMajor
	}

	res := newResult(flagged, severity)
	res.Data["max_wall_angle"] = maxAngle
	res.Data["occluded_walls"] = float64(occludedCount)
	switch {
	case occludedCount > 0:
		res.Recommendation = "Steep occluded walls in deep pockets are unreachable; reduce depth or open the pocket."
	case res.HasProblem:
		res.Recommendation = "Steep walls in deep pockets are machinable but expect reduced surface quality."
	default:
		res.Recommendation = "No problematic steep walls."
	}
	return res, nil
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
