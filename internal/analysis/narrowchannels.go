package analysis

import (
	"context"
	"math"

	"github.com/Faultbox/millcheck/internal/config"
	"github.com/Faultbox/millcheck/internal/mesh"
)

// checkNarrowChannels flags faces whose clear distance to the opposing
// surface is below what a tool needs. Width under min_channel_width means
// no tool fits at all (Major); between min_channel_width and
// min_tool_diameter a reduced-diameter tool may fit (Minor). With
// context-aware analysis on, channels open to the exterior at both ends
// are suppressed: a through-channel can be cut from either side.
func checkNarrowChannels(ctx context.Context, m *mesh.Mesh, gc *Context, cfg *config.Config) (*Result, error) {
	var flagged []int
	minWidth := math.Inf(1)
	blocked := 0

	err := forEachFace(ctx, m.FaceCount(), func(i int) {
		width := gc.ChannelWidth(i)
		if width >= cfg.MinToolDiameter {
			return
		}
		if cfg.UseContextAware && gc.ThroughOpen(i) {
			return
		}
		flagged = append(flagged, i)
		if width < minWidth {
			minWidth = width
		}
		if width < cfg.MinChannelWidth {
			blocked++
		}
	})
	if err != nil {
		return nil, err
	}

	severity := SeverityMinor
	if blocked > 0 {
		severity = SeverityMajor
	}

	res := newResult(flagged, severity)
	if !math.IsInf(minWidth, 1) {
		res.Data["min_channel_width"] = minWidth
	}
	res.Data["blocked_faces"] = float64(blocked)
	switch {
	case blocked > 0:
		res.Recommendation = "Channels narrower than any available tool; widen them or change the process."
	case res.HasProblem:
		res.Recommendation = "Narrow channels require a reduced-diameter tool; widen to improve tool access and chip evacuation."
	default:
		res.Recommendation = "No problematic narrow channels."
	}
	return res, nil
}
