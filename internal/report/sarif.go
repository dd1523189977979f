package report

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"debtguardian/internal/coordinator"
)

const informationURI = "https://github.com/debtguardian/debtguardian"

// ruleDescriptions document each smell type for SARIF consumers.
var ruleDescriptions = map[string]string{
	"BlobClass":   "Class concentrates too much behavior; consider extracting collaborators",
	"DataClass":   "Class exposes data through accessors with little behavior of its own",
	"FeatureEnvy": "Method is more interested in other objects' data than its own",
	"LongMethod":  "Method is too long or too deeply branched to understand at a glance",
}

// WriteSARIF renders the run's detected findings as a SARIF 2.1.0 report.
// Coverage entries are omitted: SARIF models results, not absences.
func WriteSARIF(w io.Writer, run *coordinator.Run) error {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	sarifRun := sarif.NewRunWithInformationURI("DebtGuardian", informationURI)
	seen := make(map[string]bool)

	for _, f := range run.Result.Findings {
		ruleID := string(f.SmellType)
		if !seen[ruleID] {
			sarifRun.AddRule(ruleID).
				WithDescription(ruleDescriptions[ruleID]).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: "warning",
				})
			seen[ruleID] = true
		}

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.Path)).
				WithRegion(sarif.NewRegion().
					WithStartLine(f.StartLine).
					WithEndLine(f.EndLine)),
		)

		message := fmt.Sprintf("%s: %s (confidence %.2f)", ruleID, f.QualifiedName, f.Confidence)
		result := sarif.NewRuleResult(ruleID).
			WithMessage(sarif.NewTextMessage(message)).
			WithLevel(levelFor(f.Confidence)).
			WithLocations([]*sarif.Location{location})
		sarifRun.AddResult(result)
	}

	doc.AddRun(sarifRun)
	return doc.PrettyWrite(w)
}

func levelFor(confidence float64) string {
	if confidence >= 0.8 {
		return "error"
	}
	return "warning"
}
