// Package coordinator drives the analysis pipeline: it slices input files,
// routes slices to detector ports, applies skip and confidence policy, and
// merges partial results into one deduplicated finding set.
package coordinator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"debtguardian/internal/detector"
	"debtguardian/internal/errors"
	"debtguardian/internal/findings"
	"debtguardian/internal/logging"
	"debtguardian/internal/slice"
	"debtguardian/internal/slicer"
)

// State is the coordinator's phase within one analysis run.
type State string

const (
	StateIdle        State = "idle"
	StateSlicing     State = "slicing"
	StateRouting     State = "routing"
	StateDetecting   State = "detecting"
	StateAggregating State = "aggregating"
	StateDone        State = "done"
)

// Config is the coordinator's policy surface. It is consumed, not owned,
// here; the config package assembles it from the user's configuration.
type Config struct {
	// ClassStage and MethodStage enable the per-kind detector stages
	ClassStage  bool
	MethodStage bool

	// MinConfidence is the per-kind detection threshold: responses below
	// it are recorded NoDebt
	MinConfidence map[slice.Kind]float64

	// Gate is the metrics pre-filter. Thresholds must stay conservative:
	// gating is an optimization and may only skip slices the detectors
	// would not flag anyway.
	Gate GateConfig

	// Concurrency bounds concurrent detector invocations
	Concurrency int

	// CallTimeout bounds one detector call; RunTimeout bounds the whole
	// run, forcing remaining pending findings to Failed(TIMEOUT)
	CallTimeout time.Duration
	RunTimeout  time.Duration

	// RetryLimit is the total number of attempts per slice;
	// RetryBackoff is the base delay between attempts (linear)
	RetryLimit   int
	RetryBackoff time.Duration
}

// GateConfig is the cheap metrics-based pre-filter applied before invoking
// a detector port.
type GateConfig struct {
	Enabled bool

	// MinMethodLines skips method detection below this line count
	MinMethodLines int

	// MaxClassLines skips class detection above this line count
	// (oversized classes exceed detector input limits)
	MaxClassLines int
}

// DefaultConfig returns a permissive default policy.
func DefaultConfig() Config {
	return Config{
		ClassStage:  true,
		MethodStage: true,
		MinConfidence: map[slice.Kind]float64{
			slice.KindClass:  0.5,
			slice.KindMethod: 0.5,
		},
		Gate: GateConfig{
			Enabled:        true,
			MinMethodLines: 3,
			MaxClassLines:  2000,
		},
		Concurrency:  4,
		CallTimeout:  60 * time.Second,
		RunTimeout:   30 * time.Minute,
		RetryLimit:   3,
		RetryBackoff: 500 * time.Millisecond,
	}
}

// FileInput is one file handed over by the loader, language already
// detected.
type FileInput struct {
	Path     string
	Text     string
	Language string
}

// FileReport records per-file slicing outcomes for the run report.
type FileReport struct {
	Path       string            `json:"path"`
	Language   string            `json:"language"`
	Status     slice.ParseStatus `json:"status,omitempty"`
	Slices     int               `json:"slices"`
	SkipReason string            `json:"skipReason,omitempty"`
}

// Run is the complete record of one analysis run. Config is the policy
// snapshot the run executed under, kept so stored runs stay interpretable
// after the configuration changes.
type Run struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Config     Config           `json:"config"`
	Files      []FileReport     `json:"files"`
	Result     *findings.Result `json:"result"`
}

// Coordinator routes slices through detector stages. One coordinator serves
// one run at a time; the run-scoped state lives in Run and the per-call
// bookkeeping is partitioned by slice so concurrent workers never contend.
type Coordinator struct {
	slicer    *slicer.Slicer
	detectors map[slice.Kind]detector.Port
	cfg       Config
	logger    *logging.Logger

	state State
}

// New creates a coordinator. Detectors are keyed by the slice kind they
// serve; a missing entry behaves like a disabled stage.
func New(sl *slicer.Slicer, detectors []detector.Port, cfg Config, logger *logging.Logger) *Coordinator {
	byKind := make(map[slice.Kind]detector.Port, len(detectors))
	for _, d := range detectors {
		byKind[d.Kind()] = d
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = 1
	}
	return &Coordinator{
		slicer:    sl,
		detectors: byKind,
		cfg:       cfg,
		logger:    logger,
		state:     StateIdle,
	}
}

// State returns the coordinator's current phase.
func (c *Coordinator) State() State {
	return c.state
}

// Analyze runs the full pipeline over the given files and returns the
// aggregated run record. Per-file and per-slice failures are isolated and
// recorded; only internal invariant violations surface as errors.
func (c *Coordinator) Analyze(ctx context.Context, files []FileInput) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Config:    c.cfg,
	}
	if c.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RunTimeout)
		defer cancel()
	}

	// Slicing
	c.state = StateSlicing
	sets := c.sliceFiles(ctx, files, run)

	// Routing
	c.state = StateRouting
	tasks, skipped := c.route(sets)

	c.logger.Info("Routing complete", map[string]interface{}{
		"runId":   run.ID,
		"tasks":   len(tasks),
		"skipped": len(skipped),
	})

	// Detecting
	c.state = StateDetecting
	detected := c.detectAll(ctx, tasks)

	// Localization: every terminal finding gets its slice's exact span
	all := append(skipped, detected...)
	for i := range all {
		sl := lookupSlice(sets, all[i].SliceID)
		localized, err := findings.Localize(all[i], sl)
		if err != nil {
			// Bookkeeping is broken; fatal by policy
			return nil, err
		}
		all[i] = localized
	}

	// Aggregating
	c.state = StateAggregating
	run.Result = findings.Aggregate(all)
	run.FinishedAt = time.Now().UTC()
	c.state = StateDone

	c.logger.Info("Run complete", map[string]interface{}{
		"runId":    run.ID,
		"detected": run.Result.Coverage.Detected,
		"failed":   run.Result.Coverage.Failed,
		"duration": run.FinishedAt.Sub(run.StartedAt).String(),
	})
	return run, nil
}

// sliceFiles slices every input file, recording per-file outcomes.
// Unsupported languages and unparseable files are recorded and skipped,
// never fatal.
func (c *Coordinator) sliceFiles(ctx context.Context, files []FileInput, run *Run) []*slice.Set {
	var sets []*slice.Set
	for _, f := range files {
		set, err := c.slicer.SliceFile(ctx, f.Path, f.Text, f.Language)
		if err != nil {
			if errors.IsCode(err, errors.InvariantViolation) {
				// Should never happen; still must not be swallowed
				c.logger.Error("Slicer invariant violation", map[string]interface{}{
					"path":  f.Path,
					"error": err.Error(),
				})
			}
			run.Files = append(run.Files, FileReport{
				Path:       f.Path,
				Language:   f.Language,
				SkipReason: string(errors.CodeOf(err)),
			})
			continue
		}
		run.Files = append(run.Files, FileReport{
			Path:     f.Path,
			Language: f.Language,
			Status:   set.Status,
			Slices:   len(set.Slices),
		})
		sets = append(sets, set)
	}
	return sets
}

// task pairs a slice with its detector port.
type task struct {
	sl   *slice.Slice
	port detector.Port
}

// route selects a detector stage per slice by kind and applies the enable
// flags and the metrics gate. Slices ruled out here are Skipped, not
// NoDebt: they were never examined.
func (c *Coordinator) route(sets []*slice.Set) ([]task, []findings.Finding) {
	var tasks []task
	var skipped []findings.Finding

	for _, set := range sets {
		for _, sl := range set.Slices {
			enabled := c.stageEnabled(sl.Kind)
			port := c.detectors[sl.Kind]
			if !enabled || port == nil {
				skipped = append(skipped, findings.Finding{
					SliceID: sl.ID,
					Status:  findings.StatusSkipped,
				})
				continue
			}
			if c.gated(sl) {
				skipped = append(skipped, findings.Finding{
					SliceID:  sl.ID,
					Detector: port.Name(),
					Status:   findings.StatusSkipped,
				})
				continue
			}
			tasks = append(tasks, task{sl: sl, port: port})
		}
	}
	return tasks, skipped
}

func (c *Coordinator) stageEnabled(kind slice.Kind) bool {
	switch kind {
	case slice.KindClass:
		return c.cfg.ClassStage
	case slice.KindMethod:
		return c.cfg.MethodStage
	}
	return false
}

// gated reports whether the metrics pre-filter rules the slice out before
// any detector call. Thresholds are conservative by contract: a gated slice
// is one the detectors would not flag anyway.
func (c *Coordinator) gated(sl *slice.Slice) bool {
	if !c.cfg.Gate.Enabled {
		return false
	}
	switch sl.Kind {
	case slice.KindMethod:
		return c.cfg.Gate.MinMethodLines > 0 && sl.Metrics.Lines < c.cfg.Gate.MinMethodLines
	case slice.KindClass:
		return c.cfg.Gate.MaxClassLines > 0 && sl.Metrics.Lines > c.cfg.Gate.MaxClassLines
	}
	return false
}

func lookupSlice(sets []*slice.Set, id string) *slice.Slice {
	for _, set := range sets {
		if sl := set.ByID(id); sl != nil {
			return sl
		}
	}
	return nil
}
