// Package report renders analysis runs into the external output formats:
// the canonical JSON contract, YAML, SARIF for code-scanning consumers, a
// SCIP index of flagged slices, and a compressed archive for retention.
package report

import (
	"encoding/json"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"debtguardian/internal/coordinator"
	"debtguardian/internal/findings"
)

// Entry is the canonical per-finding shape. Field names and the
// two-element lines array are a stable contract; downstream tooling keys
// off them.
type Entry struct {
	File       string  `json:"file" yaml:"file"`
	SmellType  string  `json:"smellType" yaml:"smellType"`
	Lines      [2]int  `json:"lines" yaml:"lines,flow"`
	SliceID    string  `json:"sliceId" yaml:"sliceId"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Kind       string  `json:"kind" yaml:"kind"`
	Qualified  string  `json:"qualifiedName" yaml:"qualifiedName"`
	Partial    bool    `json:"partial,omitempty" yaml:"partial,omitempty"`
}

// CoverageEntry reports a slice that produced no detection.
type CoverageEntry struct {
	SliceID     string `json:"sliceId" yaml:"sliceId"`
	File        string `json:"file,omitempty" yaml:"file,omitempty"`
	Status      string `json:"status" yaml:"status"`
	FailureCode string `json:"failureCode,omitempty" yaml:"failureCode,omitempty"`
}

// Document is the full serialized run.
type Document struct {
	RunID       string    `json:"runId" yaml:"runId"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`

	Findings []Entry `json:"findings" yaml:"findings"`

	Coverage struct {
		Total    int             `json:"total" yaml:"total"`
		Detected int             `json:"detected" yaml:"detected"`
		NoDebt   int             `json:"noDebt" yaml:"noDebt"`
		Skipped  int             `json:"skipped" yaml:"skipped"`
		Failed   int             `json:"failed" yaml:"failed"`
		Entries  []CoverageEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
	} `json:"coverage" yaml:"coverage"`

	Summary struct {
		TotalDebts     int            `json:"totalDebts" yaml:"totalDebts"`
		BySmell        map[string]int `json:"bySmell" yaml:"bySmell"`
		ByKind         map[string]int `json:"byKind" yaml:"byKind"`
		HighConfidence int            `json:"highConfidence" yaml:"highConfidence"`
		FilesWithDebt  int            `json:"filesWithDebt" yaml:"filesWithDebt"`
	} `json:"summary" yaml:"summary"`

	Files []coordinator.FileReport `json:"files,omitempty" yaml:"files,omitempty"`
}

// Build converts a run into the canonical document. The finding order is
// whatever the aggregator produced; Build never re-sorts.
func Build(run *coordinator.Run) *Document {
	doc := &Document{
		RunID:       run.ID,
		GeneratedAt: run.FinishedAt,
		Findings:    make([]Entry, 0, len(run.Result.Findings)),
		Files:       run.Files,
	}
	for _, f := range run.Result.Findings {
		doc.Findings = append(doc.Findings, toEntry(f))
	}

	cov := run.Result.Coverage
	doc.Coverage.Total = cov.Total
	doc.Coverage.Detected = cov.Detected
	doc.Coverage.NoDebt = cov.NoDebt
	doc.Coverage.Skipped = cov.Skipped
	doc.Coverage.Failed = cov.Failed
	for _, f := range cov.Entries {
		doc.Coverage.Entries = append(doc.Coverage.Entries, CoverageEntry{
			SliceID:     f.SliceID,
			File:        f.Path,
			Status:      string(f.Status),
			FailureCode: string(f.FailureCode),
		})
	}

	sum := run.Result.Summary
	doc.Summary.TotalDebts = sum.TotalDebts
	doc.Summary.BySmell = sum.BySmell
	doc.Summary.ByKind = sum.ByKind
	doc.Summary.HighConfidence = sum.HighConfidence
	doc.Summary.FilesWithDebt = sum.FilesWithDebt

	return doc
}

func toEntry(f findings.Finding) Entry {
	return Entry{
		File:       f.Path,
		SmellType:  string(f.SmellType),
		Lines:      [2]int{f.StartLine, f.EndLine},
		SliceID:    f.SliceID,
		Confidence: f.Confidence,
		Kind:       string(f.Kind),
		Qualified:  f.QualifiedName,
		Partial:    f.Partial,
	}
}

// WriteJSON writes the canonical JSON report.
func WriteJSON(w io.Writer, run *coordinator.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Build(run))
}

// WriteYAML writes the report as YAML.
func WriteYAML(w io.Writer, run *coordinator.Run) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(Build(run))
}
