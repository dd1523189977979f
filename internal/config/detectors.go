package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DetectorManifest represents the remote detector registry stored in
// .debtguardian/detectors.toml. When the manifest is absent or empty the
// built-in rule detectors serve both granularities.
type DetectorManifest struct {
	// UpdatedAt is when the manifest was last modified
	UpdatedAt time.Time `toml:"updated_at"`

	// Detectors is the list of remote detector endpoints
	Detectors []DetectorEntry `toml:"detectors"`
}

// DetectorEntry represents one remote detector endpoint
type DetectorEntry struct {
	// Name is the detector identifier, unique within the manifest
	Name string `toml:"name"`

	// Kind is the slice granularity served: "class" or "method"
	Kind string `toml:"kind"`

	// BaseURL is the detector service root
	BaseURL string `toml:"base_url"`

	// TimeoutMs bounds each HTTP call
	TimeoutMs int `toml:"timeout_ms,omitempty"`

	// Calibrate fills a missing confidence from the metric bands
	Calibrate bool `toml:"calibrate,omitempty"`
}

// LoadDetectorManifest loads the manifest from .debtguardian/detectors.toml.
// A missing file is not an error: it yields an empty manifest.
func LoadDetectorManifest(repoRoot string) (*DetectorManifest, error) {
	path := filepath.Join(repoRoot, ".debtguardian", "detectors.toml")

	var m DetectorManifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		if os.IsNotExist(err) {
			return &DetectorManifest{}, nil
		}
		return nil, fmt.Errorf("failed to parse detector manifest: %w", err)
	}

	seen := make(map[string]bool, len(m.Detectors))
	for _, d := range m.Detectors {
		if d.Name == "" || d.BaseURL == "" {
			return nil, fmt.Errorf("detector manifest entry missing name or base_url")
		}
		if d.Kind != "class" && d.Kind != "method" {
			return nil, fmt.Errorf("detector %q has unknown kind %q", d.Name, d.Kind)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("duplicate detector name %q", d.Name)
		}
		seen[d.Name] = true
	}
	return &m, nil
}

// Save writes the manifest to .debtguardian/detectors.toml
func (m *DetectorManifest) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".debtguardian")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "detectors.toml"))
	if err != nil {
		return fmt.Errorf("failed to create manifest file: %w", err)
	}
	defer f.Close()

	m.UpdatedAt = time.Now().UTC()
	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	return nil
}
