package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"debtguardian/internal/coordinator"
	"debtguardian/internal/report"
	"debtguardian/internal/storage"
)

var (
	exportRun    string
	exportFormat string
	exportOutput string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored analysis run",
	Long: `Re-serializes a persisted run from the run database. The reconstructed
report is identical to the one the original analyze invocation produced.`,
	RunE: runExport,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored analysis runs",
	RunE:  runRuns,
}

func init() {
	exportCmd.Flags().StringVar(&exportRun, "run", "latest", "Run id to export (or 'latest')")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, yaml, sarif, or archive")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)

	runsCmd.Flags().IntVar(&exportLimit, "limit", 20, "Maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(repoRootFlag)
	if err != nil {
		return err
	}
	logger := buildLogger(cfg)

	store, err := storage.Open(cfg.StoragePath(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runID := exportRun
	if runID == "latest" || runID == "" {
		runID, err = store.LatestRunID()
		if err != nil {
			return err
		}
	}

	run, err := store.LoadRun(runID)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(exportOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	return writeRun(out, run, exportFormat)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(repoRootFlag)
	if err != nil {
		return err
	}
	logger := buildLogger(cfg)

	store, err := storage.Open(cfg.StoragePath(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(exportLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs stored.")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  findings=%d\n", r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Findings)
	}
	return nil
}

// writeRun serializes a run in the requested format.
func writeRun(w io.Writer, run *coordinator.Run, format string) error {
	switch format {
	case "json":
		return report.WriteJSON(w, run)
	case "yaml":
		return report.WriteYAML(w, run)
	case "sarif":
		return report.WriteSARIF(w, run)
	case "archive":
		return report.WriteArchive(w, run)
	default:
		return fmt.Errorf("unknown format %q (expected json, yaml, sarif, or archive)", format)
	}
}
