package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"debtguardian/internal/coordinator"
	"debtguardian/internal/detector"
	"debtguardian/internal/findings"
	"debtguardian/internal/slice"
)

func sampleRun() *coordinator.Run {
	all := []findings.Finding{
		{
			SliceID: "dg:method:aaa", Detector: "rules-method",
			SmellType: detector.SmellLongMethod, Confidence: 0.9,
			Status: findings.StatusDetected,
			Path:   "src/Report.java", StartLine: 2, EndLine: 160,
			Kind: slice.KindMethod, QualifiedName: "Report.render",
		},
		{
			SliceID: "dg:class:bbb", Detector: "rules-class",
			Confidence: 0.9, Status: findings.StatusNoDebt,
			Path: "src/Report.java", StartLine: 1, EndLine: 162,
			Kind: slice.KindClass, QualifiedName: "Report",
		},
	}
	return &coordinator.Run{
		ID:         "run-1",
		StartedAt:  time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 25, 10, 0, 3, 0, time.UTC),
		Result:     findings.Aggregate(all),
	}
}

func TestWriteJSONCanonicalShape(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRun()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	fs, ok := doc["findings"].([]interface{})
	if !ok || len(fs) != 1 {
		t.Fatalf("findings = %v, want one entry", doc["findings"])
	}
	entry := fs[0].(map[string]interface{})

	// These keys are the stable contract
	if entry["file"] != "src/Report.java" {
		t.Errorf("file = %v", entry["file"])
	}
	if entry["smellType"] != "LongMethod" {
		t.Errorf("smellType = %v", entry["smellType"])
	}
	if entry["sliceId"] != "dg:method:aaa" {
		t.Errorf("sliceId = %v", entry["sliceId"])
	}
	lines, ok := entry["lines"].([]interface{})
	if !ok || len(lines) != 2 {
		t.Fatalf("lines = %v, want [start, end]", entry["lines"])
	}
	if lines[0].(float64) != 2 || lines[1].(float64) != 160 {
		t.Errorf("lines = %v, want [2, 160]", lines)
	}

	cov := doc["coverage"].(map[string]interface{})
	if cov["total"].(float64) != 2 || cov["noDebt"].(float64) != 1 {
		t.Errorf("coverage = %v", cov)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, sampleRun()); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "runId: run-1") {
		t.Error("missing runId")
	}
	if !strings.Contains(out, "smellType: LongMethod") {
		t.Error("missing finding smell type")
	}
}

func TestWriteSARIF(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSARIF(&buf, sampleRun()); err != nil {
		t.Fatalf("WriteSARIF failed: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("SARIF output is not valid JSON: %v", err)
	}
	if doc["version"] != "2.1.0" {
		t.Errorf("version = %v, want 2.1.0", doc["version"])
	}

	out := buf.String()
	if !strings.Contains(out, "LongMethod") {
		t.Error("missing LongMethod rule")
	}
	if !strings.Contains(out, "src/Report.java") {
		t.Error("missing artifact location")
	}
	// NoDebt coverage entries must not surface as SARIF results
	if strings.Contains(out, "no_debt") {
		t.Error("coverage entry leaked into SARIF results")
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	run := sampleRun()

	var plain bytes.Buffer
	if err := WriteJSON(&plain, run); err != nil {
		t.Fatal(err)
	}

	var packed bytes.Buffer
	if err := WriteArchive(&packed, run); err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}

	restored, err := ReadArchive(&packed)
	if err != nil {
		t.Fatalf("ReadArchive failed: %v", err)
	}
	if !bytes.Equal(restored, plain.Bytes()) {
		t.Error("archive round-trip does not match plain JSON report")
	}
}

func TestWriteSCIP(t *testing.T) {
	set := slice.NewSet("src/Report.java", "java", 162)
	cls := &slice.Slice{
		ID: "dg:class:bbb", Kind: slice.KindClass, QualifiedName: "Report",
		Path: "src/Report.java", StartLine: 1, EndLine: 162,
	}
	m := &slice.Slice{
		ID: "dg:method:aaa", Kind: slice.KindMethod, QualifiedName: "Report.render",
		Path: "src/Report.java", StartLine: 2, EndLine: 160, ParentID: cls.ID,
	}
	if err := set.Add(cls); err != nil {
		t.Fatal(err)
	}
	if err := set.Add(m); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteSCIP(&buf, ".", []*slice.Set{set}); err != nil {
		t.Fatalf("WriteSCIP failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty SCIP index")
	}
	// Symbol names are slice ids; they appear verbatim in the wire bytes
	if !bytes.Contains(buf.Bytes(), []byte("dg:method:aaa")) {
		t.Error("method symbol missing from index")
	}
	if !bytes.Contains(buf.Bytes(), []byte("src/Report.java")) {
		t.Error("document path missing from index")
	}
}
