package analysis

import "github.com/Faultbox/millcheck/internal/config"

// Penalty weights per check. Count-based checks accumulate per flagged
// face up to a cap; severity-stepped checks charge a fixed amount per
// ordinal level. Deep pockets and undercuts carry the heaviest weights
// because both usually force a process change rather than a parameter
// change.
var countPenalties = map[string]struct{ cap, perFace float64 }{
	config.CheckUndercuts:      {40, 0.8},
	config.CheckSteepWalls:     {20, 0.4},
	config.CheckNarrowChannels: {30, 0.5},
	config.CheckDeepPockets:    {40, 1.0},
}

var severityPenalties = map[string]map[Severity]float64{
	config.CheckInternalVolumes: {SeverityMinor: 15, SeverityMajor: 35},
	config.CheckSmallFeatures:   {SeverityMinor: 5, SeverityMajor: 10},
}

// scoreReport aggregates per-check penalties into a 0..100 score.
// Checks that errored or were skipped contribute nothing.
func scoreReport(r *Report) float64 {
	score := 100.0
	for name, res := range r.Results {
		if res.Status != StatusOK || !res.HasProblem {
			continue
		}
		score -= penalty(name, res)
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func penalty(name string, res *Result) float64 {
	if steps, ok := severityPenalties[name]; ok {
		return steps[res.Severity]
	}
	w, ok := countPenalties[name]
	if !ok {
		return 0
	}
	p := float64(res.Count) * w.perFace
	if p > w.cap {
		p = w.cap
	}
	if res.Severity == SeverityMinor {
		p /= 2 // reachable-but-awkward geometry costs half
	}
	return p
}
