// Package findings holds the finding lifecycle: creation per (slice,
// detector) pair, localization against the slice's span, and aggregation
// into the ordered, deduplicated result set.
package findings

import (
	"debtguardian/internal/detector"
	"debtguardian/internal/errors"
	"debtguardian/internal/slice"
)

// Status is a finding's lifecycle state. A finding starts Pending and is
// terminal once the coordinator records any other status.
type Status string

const (
	StatusPending Status = "pending"
	// StatusDetected means a detector reported the smell at or above the
	// configured confidence threshold
	StatusDetected Status = "detected"
	// StatusNoDebt means the slice was examined and is clean (or the
	// detector's confidence fell below threshold)
	StatusNoDebt Status = "no_debt"
	// StatusSkipped means the stage was disabled or the pre-filter gate
	// ruled the slice out; the slice was never examined. Reported
	// separately from NoDebt so coverage never conflates "clean" with
	// "not analyzed".
	StatusSkipped Status = "skipped"
	// StatusFailed means the detector failed after exhausting retries
	StatusFailed Status = "failed"
)

// Finding is a detected or explicitly absent smell for one slice.
type Finding struct {
	SliceID  string `json:"sliceId"`
	Detector string `json:"detector,omitempty"`

	SmellType  detector.SmellType `json:"smellType,omitempty"`
	Confidence float64            `json:"confidence,omitempty"`
	Status     Status             `json:"status"`

	// FailureCode carries the reason for StatusFailed or StatusSkipped
	FailureCode errors.ErrorCode `json:"failureCode,omitempty"`

	// Localization, populated by Localize
	Path          string     `json:"file,omitempty"`
	StartLine     int        `json:"startLine,omitempty"`
	EndLine       int        `json:"endLine,omitempty"`
	Kind          slice.Kind `json:"kind,omitempty"`
	QualifiedName string     `json:"qualifiedName,omitempty"`
	Partial       bool       `json:"partial,omitempty"`
}

// Terminal reports whether the finding reached a terminal status.
func (f *Finding) Terminal() bool {
	return f.Status != StatusPending && f.Status != ""
}

// Localize copies the slice's file path and span into the finding. The
// slice must exist: a finding referencing a missing slice means the
// coordinator's bookkeeping is broken, which is fatal by policy.
func Localize(f Finding, sl *slice.Slice) (Finding, error) {
	if sl == nil {
		return f, errors.Newf(errors.InvariantViolation,
			"finding %s/%s references a missing slice", f.SliceID, f.SmellType)
	}
	if sl.ID != f.SliceID {
		return f, errors.Newf(errors.InvariantViolation,
			"finding slice id %s does not match slice %s", f.SliceID, sl.ID)
	}
	f.Path = sl.Path
	f.StartLine = sl.StartLine
	f.EndLine = sl.EndLine
	f.Kind = sl.Kind
	f.QualifiedName = sl.QualifiedName
	f.Partial = sl.Partial
	return f, nil
}
