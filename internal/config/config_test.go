package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"debtguardian/internal/slice"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}

	// Both stages on by default
	if !cfg.Stages.Class.Enabled || !cfg.Stages.Method.Enabled {
		t.Error("both detector stages should be enabled by default")
	}
	if cfg.Stages.Method.MinConfidence <= 0 {
		t.Error("method MinConfidence should be positive")
	}

	// Gate defaults mirror the smallest meaningful method
	if !cfg.Gate.Enabled {
		t.Error("gate should be enabled by default")
	}
	if cfg.Gate.MinMethodLines != 3 {
		t.Errorf("MinMethodLines = %d, want 3", cfg.Gate.MinMethodLines)
	}

	if cfg.Runner.Concurrency <= 0 {
		t.Error("Concurrency should be positive")
	}
	if cfg.Runner.RetryLimit != 3 {
		t.Errorf("RetryLimit = %d, want 3", cfg.Runner.RetryLimit)
	}
	if cfg.Storage.Path == "" {
		t.Error("Storage.Path should have a default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want default 1", cfg.Version)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Stages.Method.MinConfidence = 0.7
	cfg.Runner.Concurrency = 8
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".debtguardian", "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Stages.Method.MinConfidence != 0.7 {
		t.Errorf("MinConfidence = %v, want 0.7", loaded.Stages.Method.MinConfidence)
	}
	if loaded.Runner.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", loaded.Runner.Concurrency)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stages.Class.MinConfidence = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("confidence above 1 accepted")
	}

	cfg = DefaultConfig()
	cfg.Runner.RetryLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero retry limit accepted")
	}

	cfg = DefaultConfig()
	cfg.Version = 99
	if err := cfg.Validate(); err == nil {
		t.Error("unknown version accepted")
	}
}

func TestCoordinatorConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stages.Class.Enabled = false
	cfg.Stages.Method.MinConfidence = 0.65
	cfg.Runner.CallTimeoutMs = 1500

	cc := cfg.Coordinator()
	if cc.ClassStage {
		t.Error("class stage should be off")
	}
	if cc.MinConfidence[slice.KindMethod] != 0.65 {
		t.Errorf("method threshold = %v, want 0.65", cc.MinConfidence[slice.KindMethod])
	}
	if cc.CallTimeout != 1500*time.Millisecond {
		t.Errorf("CallTimeout = %v, want 1.5s", cc.CallTimeout)
	}
}

func TestDetectorManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	m := &DetectorManifest{
		Detectors: []DetectorEntry{
			{Name: "blob-llm", Kind: "class", BaseURL: "http://localhost:9000", TimeoutMs: 30000, Calibrate: true},
			{Name: "method-llm", Kind: "method", BaseURL: "http://localhost:9001"},
		},
	}
	if err := m.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadDetectorManifest(dir)
	if err != nil {
		t.Fatalf("LoadDetectorManifest failed: %v", err)
	}
	if len(loaded.Detectors) != 2 {
		t.Fatalf("detectors = %d, want 2", len(loaded.Detectors))
	}
	if loaded.Detectors[0].Name != "blob-llm" || !loaded.Detectors[0].Calibrate {
		t.Errorf("first entry = %+v", loaded.Detectors[0])
	}
}

func TestDetectorManifestMissingFileIsEmpty(t *testing.T) {
	m, err := LoadDetectorManifest(t.TempDir())
	if err != nil {
		t.Fatalf("LoadDetectorManifest failed: %v", err)
	}
	if len(m.Detectors) != 0 {
		t.Errorf("detectors = %d, want 0", len(m.Detectors))
	}
}

func TestDetectorManifestRejectsBadEntries(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".debtguardian"), 0755); err != nil {
		t.Fatal(err)
	}
	bad := `[[detectors]]
name = "x"
kind = "package"
base_url = "http://localhost:9000"
`
	if err := os.WriteFile(filepath.Join(dir, ".debtguardian", "detectors.toml"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDetectorManifest(dir); err == nil {
		t.Error("unknown detector kind accepted")
	}
}
