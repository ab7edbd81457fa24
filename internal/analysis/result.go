// Package analysis implements the CNC manufacturability analysis engine:
// accessibility primitives over a mesh, the individual geometric checks,
// and the orchestrator that aggregates them into a scored report.
package analysis

import (
	"github.com/Faultbox/millcheck/internal/mesh"
	"github.com/Faultbox/millcheck/pkg/vec"
	"github.com/google/uuid"
)

// Severity grades how badly a finding impacts machinability.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMinor
	SeverityMajor
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityMinor:
		return "minor"
	case SeverityMajor:
		return "major"
	default:
		return "unknown"
	}
}

// Status reports whether a check completed.
type Status int

const (
	StatusOK Status = iota
	StatusError
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result is the common contract every check fulfils. It is produced once
// per invocation and never mutated afterwards.
type Result struct {
	Count          int                `json:"count"`
	Indices        []int              `json:"indices,omitempty"` // implicated face indices, ascending
	HasProblem     bool               `json:"has_problem"`
	Severity       Severity           `json:"-"`
	SeverityName   string             `json:"severity"`
	Status         Status             `json:"-"`
	StatusName     string             `json:"status"`
	Error          string             `json:"error,omitempty"`
	Recommendation string             `json:"recommendation,omitempty"`
	Data           map[string]float64 `json:"data,omitempty"` // auxiliary metrics
}

// newResult builds a completed Result from flagged face indices.
func newResult(indices []int, severity Severity) *Result {
	if len(indices) == 0 {
		severity = SeverityNone
	}
	r := &Result{
		Count:      len(indices),
		Indices:    indices,
		HasProblem: len(indices) > 0,
		Severity:   severity,
		Status:     StatusOK,
		Data:       make(map[string]float64),
	}
	r.SeverityName = severity.String()
	r.StatusName = StatusOK.String()
	return r
}

// failedResult records a check that could not complete.
func failedResult(status Status, errMsg string) *Result {
	return &Result{
		Severity:     SeverityNone,
		SeverityName: SeverityNone.String(),
		Status:       status,
		StatusName:   status.String(),
		Error:        errMsg,
	}
}

// MeshSummary captures the analyzed mesh's headline numbers.
type MeshSummary struct {
	FaceCount   int      `json:"face_count"`
	VertexCount int      `json:"vertex_count"`
	Volume      float64  `json:"volume"`
	SurfaceArea float64  `json:"surface_area"`
	BBoxMin     vec.Vec3 `json:"bbox_min"`
	BBoxMax     vec.Vec3 `json:"bbox_max"`
	Components  int      `json:"components"`
}

func summarize(m *mesh.Mesh) MeshSummary {
	b := m.Bounds()
	return MeshSummary{
		FaceCount:   m.FaceCount(),
		VertexCount: m.VertexCount(),
		Volume:      m.Volume(),
		SurfaceArea: m.SurfaceArea(),
		BBoxMin:     b.Min,
		BBoxMax:     b.Max,
		Components:  m.ComponentCount(),
	}
}

// Report is the engine's output: per-check results plus the aggregate
// manufacturability score. Read-only once returned.
type Report struct {
	ID           string             `json:"id"`
	Mesh         MeshSummary        `json:"mesh"`
	Results      map[string]*Result `json:"results"`
	Score        float64            `json:"score"` // 0..100, 100 = fully machinable
	ConfigEvents []string           `json:"config_events,omitempty"`
}

func newReport(m *mesh.Mesh) *Report {
	return &Report{
		ID:      uuid.NewString(),
		Mesh:    summarize(m),
		Results: make(map[string]*Result),
	}
}

// ProblemRegion names a set of faces a visualization layer can highlight.
type ProblemRegion struct {
	Name    string `json:"name"`
	Indices []int  `json:"indices"`
}

// ProblemRegions lists the flagged face sets of every problematic check,
// in registry order.
func (r *Report) ProblemRegions() []ProblemRegion {
	var regions []ProblemRegion
	for _, name := range RegisteredChecks() {
		res, ok := r.Results[name]
		if !ok || !res.HasProblem {
			continue
		}
		regions = append(regions, ProblemRegion{Name: name, Indices: res.Indices})
	}
	return regions
}
