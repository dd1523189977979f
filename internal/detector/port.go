// Package detector defines the contract a smell detector must satisfy and
// ships two implementations: a deterministic metrics-rule detector and an
// HTTP adapter for remote model-backed detectors.
//
// How a detector produces its label is outside this package's concern; the
// coordinator only relies on the Port contract, and ports are expected to be
// idempotent and side-effect-free.
package detector

import (
	"context"

	"debtguardian/internal/slice"
)

// SmellType identifies a technical debt category.
type SmellType string

const (
	SmellBlobClass   SmellType = "BlobClass"
	SmellDataClass   SmellType = "DataClass"
	SmellFeatureEnvy SmellType = "FeatureEnvy"
	SmellLongMethod  SmellType = "LongMethod"
)

// Kind returns the slice granularity the smell applies to.
func (s SmellType) Kind() slice.Kind {
	switch s {
	case SmellBlobClass, SmellDataClass:
		return slice.KindClass
	default:
		return slice.KindMethod
	}
}

// Status is a detector's verdict for one slice.
type Status string

const (
	// StatusDetected means the detector found the smell
	StatusDetected Status = "detected"
	// StatusNoDebt means the detector examined the slice and found
	// no smell; distinct from a failed or skipped examination
	StatusNoDebt Status = "no_debt"
)

// Request carries one slice to a detector.
type Request struct {
	SliceID       string        `json:"sliceId"`
	Kind          slice.Kind    `json:"kind"`
	QualifiedName string        `json:"qualifiedName"`
	SourceText    string        `json:"sourceText"`
	Metrics       slice.Metrics `json:"metrics"`
}

// Response is a detector's verdict. One smell type per response; multi-label
// detectors are not part of the contract.
type Response struct {
	Status     Status    `json:"status"`
	SmellType  SmellType `json:"smellType,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
}

// Port is the external-collaborator interface for a class-level or
// method-level detector.
type Port interface {
	// Name identifies the detector in logs and coverage reports.
	Name() string

	// Kind returns the slice granularity this detector serves.
	Kind() slice.Kind

	// Detect examines one slice. A transport-level failure is returned
	// as an error; "no smell" is a successful Response with StatusNoDebt.
	Detect(ctx context.Context, req Request) (Response, error)
}
