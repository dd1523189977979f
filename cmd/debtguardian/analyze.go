package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"debtguardian/internal/config"
	"debtguardian/internal/loader"
	"debtguardian/internal/storage"
)

var (
	analyzeFormat  string
	analyzeOutput  string
	analyzeNoStore bool

	// Config overrides; zero values mean "use the configured value"
	analyzeStages        string
	analyzeMinConfidence float64
	analyzeConcurrency   int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Run the full smell analysis pipeline",
	Long: `Slices every supported source file under the target, routes the slices
through the configured detectors, and writes the aggregated finding report.
The run is persisted to the local run database unless --no-store is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "Output format: json, yaml, sarif, or archive")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Output file (default: stdout)")
	analyzeCmd.Flags().BoolVar(&analyzeNoStore, "no-store", false, "Skip persisting the run to the run database")
	analyzeCmd.Flags().StringVar(&analyzeStages, "stages", "", "Comma-separated stages to run: class,method (default: per config)")
	analyzeCmd.Flags().Float64Var(&analyzeMinConfidence, "min-confidence", 0, "Minimum detection confidence for both stages (default: per config)")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 0, "Concurrent detector calls (default: per config)")
	rootCmd.AddCommand(analyzeCmd)
}

// applyOverrides folds the CLI override flags into the loaded configuration.
func applyOverrides(cfg *config.Config) error {
	if analyzeStages != "" {
		cfg.Stages.Class.Enabled = false
		cfg.Stages.Method.Enabled = false
		for _, stage := range strings.Split(analyzeStages, ",") {
			switch strings.TrimSpace(stage) {
			case "class":
				cfg.Stages.Class.Enabled = true
			case "method":
				cfg.Stages.Method.Enabled = true
			default:
				return fmt.Errorf("unknown stage %q (expected class or method)", stage)
			}
		}
	}
	if analyzeMinConfidence > 0 {
		cfg.Stages.Class.MinConfidence = analyzeMinConfidence
		cfg.Stages.Method.MinConfidence = analyzeMinConfidence
	}
	if analyzeConcurrency > 0 {
		cfg.Runner.Concurrency = analyzeConcurrency
	}
	return cfg.Validate()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(repoRootFlag)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg); err != nil {
		return err
	}
	logger := buildLogger(cfg)

	target := repoRootFlag
	if len(args) == 1 {
		target = args[0]
	}

	ld := loader.New(cfg.SliceLimits.MaxFileSizeBytes, logger)
	inputs, err := collectInputs(ld, target)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no supported source files under %s", target)
	}

	coord, err := buildCoordinator(cfg, logger)
	if err != nil {
		return err
	}

	run, err := coord.Analyze(cmd.Context(), inputs)
	if err != nil {
		return err
	}

	if cfg.Storage.Enabled && !analyzeNoStore {
		store, err := storage.Open(cfg.StoragePath(), logger)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveRun(run); err != nil {
			return err
		}
	}

	out, closeOut, err := openOutput(analyzeOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	return writeRun(out, run, analyzeFormat)
}
