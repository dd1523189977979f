package storage

import (
	"io"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"debtguardian/internal/coordinator"
	"debtguardian/internal/detector"
	"debtguardian/internal/errors"
	"debtguardian/internal/findings"
	"debtguardian/internal/logging"
	"debtguardian/internal/slice"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := logging.NewLogger(logging.Config{
		Format: "human",
		Level:  "error",
		Output: io.Discard,
	})
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"), logger)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(id string, started time.Time) *coordinator.Run {
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
		{
			SliceID: "dg:method:ccc", Detector: "rules-method",
			Status: findings.StatusFailed, FailureCode: errors.Timeout,
			Path: "src/Other.java", StartLine: 4, EndLine: 9,
			Kind: slice.KindMethod, QualifiedName: "Other.run", Partial: true,
		},
	}
	return &coordinator.Run{
		ID:         id,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		Config:     coordinator.DefaultConfig(),
		Files: []coordinator.FileReport{
			{Path: "src/Other.java", Language: "java", Status: slice.StatusPartial, Slices: 2},
			{Path: "src/Report.java", Language: "java", Status: slice.StatusComplete, Slices: 2},
		},
		Result: findings.Aggregate(all),
	}
}

func TestSaveAndLoadRunRoundTrip(t *testing.T) {
	store := testStore(t)
	started := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	run := sampleRun("run-1", started)

	if err := store.SaveRun(run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	loaded, err := store.LoadRun("run-1")
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}

	if !loaded.StartedAt.Equal(run.StartedAt) || !loaded.FinishedAt.Equal(run.FinishedAt) {
		t.Errorf("timestamps changed: %v/%v", loaded.StartedAt, loaded.FinishedAt)
	}
	if !reflect.DeepEqual(loaded.Config, run.Config) {
		t.Errorf("config snapshot changed:\n got %+v\nwant %+v", loaded.Config, run.Config)
	}
	if !reflect.DeepEqual(loaded.Files, run.Files) {
		t.Errorf("file reports changed:\n got %+v\nwant %+v", loaded.Files, run.Files)
	}
	if !reflect.DeepEqual(loaded.Result, run.Result) {
		t.Errorf("result changed:\n got %+v\nwant %+v", loaded.Result, run.Result)
	}
}

func TestLoadRunNotFound(t *testing.T) {
	store := testStore(t)
	if _, err := store.LoadRun("missing"); err == nil {
		t.Error("expected error for unknown run id")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := testStore(t)
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-old", "run-mid", "run-new"} {
		if err := store.SaveRun(sampleRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("SaveRun(%s) failed: %v", id, err)
		}
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	if runs[0].ID != "run-new" || runs[2].ID != "run-old" {
		t.Errorf("order = %s..%s, want newest first", runs[0].ID, runs[2].ID)
	}
	if runs[0].Findings != 1 {
		t.Errorf("detected findings = %d, want 1", runs[0].Findings)
	}

	latest, err := store.LatestRunID()
	if err != nil {
		t.Fatalf("LatestRunID failed: %v", err)
	}
	if latest != "run-new" {
		t.Errorf("latest = %s, want run-new", latest)
	}
}
