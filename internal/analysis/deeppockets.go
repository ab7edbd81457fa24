package analysis

import (
	"context"
	"math"

	"github.com/Faultbox/millcheck/internal/config"
	"github.com/Faultbox/millcheck/internal/mesh"
)

// pocketAspectLimit is the depth-to-opening ratio beyond which standard
// tools lose the rigidity to cut; a long slender tool chatters or breaks.
const pocketAspectLimit = 4.0

// checkDeepPockets flags faces deeper inside a cavity than
// deep_pocket_threshold. Severity depends on the ratio of depth to the
// pocket's minimum lateral opening.
func checkDeepPockets(ctx context.Context, m *mesh.Mesh, gc *Context, cfg *config.Config) (*Result, error) {
	var flagged []int
	maxDepth := 0.0
	maxRatio := 0.0
	minOpening := math.Inf(1)

	err := forEachFace(ctx, m.FaceCount(), func(i int) {
		depth := gc.PocketDepth(i)
		if depth <= cfg.DeepPocketThreshold {
			return
		}
		flagged = append(flagged, i)
		if depth > maxDepth {
			maxDepth = depth
		}

		opening := gc.LateralOpening(i)
		if opening < minOpening {
			minOpening = opening
		}
		if !math.IsInf(opening, 1) && opening > 0 {
			if ratio := depth / opening; ratio > maxRatio {
				maxRatio = ratio
			}
		}
	})
	if err != nil {
		return nil, err
	}

	severity := SeverityMinor
	if maxRatio > pocketAspectLimit {
		severity = SeverityMajor
	}

	res := newResult(flagged, severity)
	res.Data["max_depth"] = maxDepth
	if !math.IsInf(minOpening, 1) {
		res.Data["min_opening"] = minOpening
	}
	res.Data["max_aspect_ratio"] = maxRatio
	switch {
	case severity == SeverityMajor && res.HasProblem:
		res.Recommendation = "Pocket aspect ratio exceeds standard tool rigidity; reduce depth or widen the opening."
	case res.HasProblem:
		res.Recommendation = "Deep pockets detected; longer tools and slower feeds will be required."
	default:
		res.Recommendation = "No problematic deep pockets."
	}
	return res, nil
}
