package analysis

import (
	"context"
	"math"
	"sort"

	"github.com/Faultbox/millcheck/internal/config"
	"github.com/Faultbox/millcheck/internal/mesh"
)

// featureClusterMaxDihedralDeg bounds the normal deviation between
// neighboring faces grouped into one low-curvature feature cluster.
// Larger jumps are real geometric edges, not tessellation noise.
const featureClusterMaxDihedralDeg = 30.0

// checkSmallFeatures clusters faces into low-curvature connected groups
// and flags clusters whose enclosing size is below the minimum tool
// diameter: a standard tool cannot physically enter such a feature.
func checkSmallFeatures(ctx context.Context, m *mesh.Mesh, gc *Context, cfg *config.Config) (*Result, error) {
	clusters, err := featureClusters(ctx, m)
	if err != nil {
		return nil, err
	}

	var flagged []int
	severity := SeverityNone
	smallest := math.Inf(1)
	small := 0

	for _, cluster := range clusters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		size := gc.FeatureSize(cluster)
		if size >= cfg.MinToolDiameter {
			continue
		}
		small++
		flagged = append(flagged, cluster...)
		if size < smallest {
			smallest = size
		}
		sev := SeverityMinor
		if size < cfg.MinToolDiameter/2 {
			sev = SeverityMajor
		}
		if sev > severity {
			severity = sev
		}
	}

	sort.Ints(flagged)
	res := newResult(flagged, severity)
	res.Data["clusters"] = float64(len(clusters))
	res.Data["small_clusters"] = float64(small)
	if !math.IsInf(smallest, 1) {
		res.Data["min_feature_size"] = smallest
	}
	switch severity {
	case SeverityMajor:
		res.Recommendation = "Features far below tool diameter; micro-machining or EDM required."
	case SeverityMinor:
		res.Recommendation = "Some features are below the standard tool diameter; consider smaller tooling."
	default:
		res.Recommendation = "No small feature issues."
	}
	return res, nil
}

// featureClusters groups faces by edge adjacency where the dihedral angle
// between neighbors stays below the noise threshold.
func featureClusters(ctx context.Context, m *mesh.Mesh) ([][]int, error) {
	cosThreshold := math.Cos(featureClusterMaxDihedralDeg * math.Pi / 180)

	visited := make([]bool, m.FaceCount())
	var clusters [][]int
	var stack []int

	err := forEachFace(ctx, m.FaceCount(), func(start int) {
		if visited[start] {
			return
		}
		visited[start] = true
		cluster := []int{start}
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, n := range m.Neighbors(f) {
				if visited[n] {
					continue
				}
				if m.Normal(f).Dot(m.Normal(n)) < cosThreshold {
					continue // sharp edge, different feature
				}
				visited[n] = true
				cluster = append(cluster, n)
				stack = append(stack, n)
			}
		}
		clusters = append(clusters, cluster)
	})
	if err != nil {
		return nil, err
	}
	return clusters, nil
}
