package main

import (
	"time"

	"debtguardian/internal/config"
	"debtguardian/internal/coordinator"
	"debtguardian/internal/detector"
	"debtguardian/internal/logging"
	"debtguardian/internal/slice"
	"debtguardian/internal/slicer"
)

// buildLogger creates a logger from the configuration's logging section.
func buildLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(cfg.Logging.Level),
	})
}

// buildDetectors assembles the detector ports for a run. Remote detectors
// from the manifest take precedence per granularity; any granularity left
// uncovered falls back to the built-in rule detector.
func buildDetectors(repoRoot string, logger *logging.Logger) ([]detector.Port, error) {
	manifest, err := config.LoadDetectorManifest(repoRoot)
	if err != nil {
		return nil, err
	}

	covered := make(map[slice.Kind]bool)
	var ports []detector.Port
	for _, entry := range manifest.Detectors {
		kind := slice.Kind(entry.Kind)
		if covered[kind] {
			continue
		}
		ports = append(ports, detector.NewHTTPDetector(detector.HTTPConfig{
			Name:      entry.Name,
			Kind:      kind,
			BaseURL:   entry.BaseURL,
			Timeout:   time.Duration(entry.TimeoutMs) * time.Millisecond,
			Calibrate: entry.Calibrate,
		}))
		covered[kind] = true
		logger.Debug("Registered remote detector", map[string]interface{}{
			"name": entry.Name,
			"kind": entry.Kind,
		})
	}

	for _, kind := range []slice.Kind{slice.KindClass, slice.KindMethod} {
		if !covered[kind] {
			ports = append(ports, detector.NewRuleDetector(kind))
		}
	}
	return ports, nil
}

// buildCoordinator wires the slicer, detectors and policy into a coordinator.
func buildCoordinator(cfg *config.Config, logger *logging.Logger) (*coordinator.Coordinator, error) {
	detectors, err := buildDetectors(cfg.RepoRoot, logger)
	if err != nil {
		return nil, err
	}
	sl := slicer.New(slicer.DefaultRegistry(), logger)
	return coordinator.New(sl, detectors, cfg.Coordinator(), logger), nil
}

// loadConfig loads and validates the repository configuration.
func loadConfig(repoRoot string) (*config.Config, error) {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		return nil, err
	}
	if cfg.RepoRoot == "" || cfg.RepoRoot == "." {
		cfg.RepoRoot = repoRoot
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
