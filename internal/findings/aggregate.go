package findings

import (
	"sort"
)

// Result is the merged output of one analysis run. The primary Findings
// list contains only detected smells; everything else lives in the coverage
// report so "no debt found" and "could not be analyzed" stay distinct.
type Result struct {
	Findings []Finding `json:"findings"`
	Coverage Coverage  `json:"coverage"`
	Summary  Summary   `json:"summary"`
}

// Coverage is the diagnostic view over every terminal finding.
type Coverage struct {
	Total    int `json:"total"`
	Detected int `json:"detected"`
	NoDebt   int `json:"noDebt"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`

	// Entries holds the non-detected findings, in the same stable order
	// as the primary list
	Entries []Finding `json:"entries,omitempty"`
}

// Summary carries aggregate statistics across the detected findings.
type Summary struct {
	TotalDebts     int            `json:"totalDebts"`
	BySmell        map[string]int `json:"bySmell"`
	ByKind         map[string]int `json:"byKind"`
	HighConfidence int            `json:"highConfidence"`
	FilesWithDebt  int            `json:"filesWithDebt"`
}

// Aggregate merges terminal findings into one ordered, deduplicated result.
//
// Ordering is a total order over (file path, start line, smell type name,
// slice id), independent of detection or arrival order, so repeated runs
// over fixed inputs produce byte-identical output regardless of concurrency
// scheduling. Duplicate (sliceId, smellType) pairs keep the
// highest-confidence instance.
func Aggregate(all []Finding) *Result {
	deduped := dedupe(all)
	sortStable(deduped)

	res := &Result{
		Summary: Summary{
			BySmell: make(map[string]int),
			ByKind:  make(map[string]int),
		},
	}
	files := make(map[string]bool)

	for _, f := range deduped {
		res.Coverage.Total++
		switch f.Status {
		case StatusDetected:
			res.Coverage.Detected++
			res.Findings = append(res.Findings, f)
			res.Summary.TotalDebts++
			res.Summary.BySmell[string(f.SmellType)]++
			res.Summary.ByKind[string(f.Kind)]++
			if f.Confidence >= 0.8 {
				res.Summary.HighConfidence++
			}
			files[f.Path] = true
		case StatusNoDebt:
			res.Coverage.NoDebt++
			res.Coverage.Entries = append(res.Coverage.Entries, f)
		case StatusSkipped:
			res.Coverage.Skipped++
			res.Coverage.Entries = append(res.Coverage.Entries, f)
		case StatusFailed:
			res.Coverage.Failed++
			res.Coverage.Entries = append(res.Coverage.Entries, f)
		}
	}
	res.Summary.FilesWithDebt = len(files)
	return res
}

// dedupe collapses duplicate (sliceId, smellType) pairs, keeping the
// highest-confidence instance. Detected entries always win over
// non-detected duplicates (a retried invocation may have failed first).
func dedupe(all []Finding) []Finding {
	type key struct {
		sliceID string
		smell   string
	}
	best := make(map[key]int)
	var out []Finding

	for _, f := range all {
		k := key{f.SliceID, string(f.SmellType)}
		idx, seen := best[k]
		if !seen {
			best[k] = len(out)
			out = append(out, f)
			continue
		}
		if betterOf(f, out[idx]) {
			out[idx] = f
		}
	}
	return out
}

func betterOf(candidate, current Finding) bool {
	if (candidate.Status == StatusDetected) != (current.Status == StatusDetected) {
		return candidate.Status == StatusDetected
	}
	return candidate.Confidence > current.Confidence
}

func sortStable(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		// Primary: file path ASC
		if fs[i].Path != fs[j].Path {
			return fs[i].Path < fs[j].Path
		}
		// Secondary: span start line ASC
		if fs[i].StartLine != fs[j].StartLine {
			return fs[i].StartLine < fs[j].StartLine
		}
		// Tertiary: smell type name ASC
		if fs[i].SmellType != fs[j].SmellType {
			return fs[i].SmellType < fs[j].SmellType
		}
		// Final tiebreak: slice id ASC
		return fs[i].SliceID < fs[j].SliceID
	})
}
