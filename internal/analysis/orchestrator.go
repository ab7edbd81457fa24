package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/millcheck/internal/config"
	"github.com/Faultbox/millcheck/internal/logger"
	"github.com/Faultbox/millcheck/internal/mesh"
)

// CheckFunc is the contract every check implements. Checks are pure over
// the (mesh, context, config) triple: identical inputs yield identical
// results, and nothing is shared mutably between concurrent checks.
type CheckFunc func(ctx context.Context, m *mesh.Mesh, gc *Context, cfg *config.Config) (*Result, error)

// registry maps check names to implementations. Built at startup; the
// set of names matches config.CheckNames.
var registry = map[string]CheckFunc{
	config.CheckUndercuts:       checkUndercuts,
	config.CheckInternalVolumes: checkInternalVolumes,
	config.CheckSmallFeatures:   checkSmallFeatures,
	config.CheckSteepWalls:      checkSteepWalls,
	config.CheckNarrowChannels:  checkNarrowChannels,
	config.CheckDeepPockets:     checkDeepPockets,
}

// RegisteredChecks returns every known check name in report order.
func RegisteredChecks() []string {
	names := make([]string, 0, len(registry))
	for _, name := range config.CheckNames {
		if _, ok := registry[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// RunCheck runs a single named check against an already-built context.
func RunCheck(ctx context.Context, name string, m *mesh.Mesh, gc *Context, cfg *config.Config) (*Result, error) {
	check, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown check %q", name)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return check(ctx, m, gc, cfg)
}

// Analyzer runs the configured checks against meshes. It is safe for
// concurrent use; every analysis owns its own context and report.
type Analyzer struct {
	cfg *config.Config
	log *zap.SugaredLogger
}

// New creates an Analyzer. The configuration is copied, so later caller
// mutations do not affect running analyses.
func New(cfg *config.Config) *Analyzer {
	return &Analyzer{cfg: cfg.Clone(), log: logger.Sugar}
}

// Analyze validates the mesh, builds the geometric context, runs every
// enabled check concurrently, and aggregates the manufacturability score.
// A failing check is recorded in the report and never aborts the others;
// the returned error is non-nil only for precondition failures.
func (a *Analyzer) Analyze(ctx context.Context, m *mesh.Mesh) (*Report, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("mesh precondition: %w", err)
	}

	start := time.Now()
	gc := NewContext(m, a.cfg)
	a.log.Debugw("geometric context built",
		"faces", m.FaceCount(), "elapsed", time.Since(start))

	report := newReport(m)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, name := range RegisteredChecks() {
		if !a.cfg.Enabled(name) {
			continue
		}
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()
			res := a.runOne(ctx, name, check, m, gc)
			mu.Lock()
			report.Results[name] = res
			mu.Unlock()
		}(name, registry[name])
	}
	wg.Wait()

	report.Score = scoreReport(report)
	a.log.Infow("analysis complete",
		"faces", m.FaceCount(),
		"checks", len(report.Results),
		"score", report.Score,
		"elapsed", time.Since(start))
	return report, nil
}

// runOne executes a single check under its timeout, converting panics and
// errors into error-status results.
func (a *Analyzer) runOne(ctx context.Context, name string, check CheckFunc, m *mesh.Mesh, gc *Context) (res *Result) {
	if a.cfg.CheckTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.CheckTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			a.log.Errorw("check panicked", "check", name, "panic", r)
			res = failedResult(StatusError, fmt.Sprintf("panic: %v", r))
		}
	}()

	start := time.Now()
	out, err := check(ctx, m, gc, a.cfg)
	switch {
	case err == nil:
		a.log.Debugw("check finished",
			"check", name, "count", out.Count, "severity", out.Severity.String(),
			"elapsed", time.Since(start))
		return out
	case ctx.Err() != nil:
		a.log.Warnw("check cancelled", "check", name, "err", err)
		return failedResult(StatusSkipped, err.Error())
	default:
		a.log.Errorw("check failed", "check", name, "err", err)
		return failedResult(StatusError, err.Error())
	}
}
