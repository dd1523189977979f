package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"debtguardian/internal/coordinator"
	"debtguardian/internal/loader"
	"debtguardian/internal/report"
	"debtguardian/internal/slice"
	"debtguardian/internal/slicer"
)

var (
	sliceFormat string
	sliceOutput string
)

var sliceCmd = &cobra.Command{
	Use:   "slice [path]",
	Short: "Slice source files into class and method units",
	Long: `Parses the given file or directory and prints the slice table: one entry
per class and method with its identity hash, span, and structural metrics.
No detection is performed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSlice,
}

func init() {
	sliceCmd.Flags().StringVar(&sliceFormat, "format", "json", "Output format: json or scip")
	sliceCmd.Flags().StringVarP(&sliceOutput, "output", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(sliceCmd)
}

func runSlice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(repoRootFlag)
	if err != nil {
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

	sl := slicer.New(slicer.DefaultRegistry(), logger)
	var sets []*slice.Set
	for _, in := range inputs {
		set, err := sl.SliceFile(cmd.Context(), in.Path, in.Text, in.Language)
		if err != nil {
			// A single file never slices: report and continue
			logger.Warn("Skipping file", map[string]interface{}{
				"path":  in.Path,
				"error": err.Error(),
			})
			continue
		}
		sets = append(sets, set)
	}

	out, closeOut, err := openOutput(sliceOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	switch sliceFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sets)
	case "scip":
		return report.WriteSCIP(out, repoRootFlag, sets)
	default:
		return fmt.Errorf("unknown format %q (expected json or scip)", sliceFormat)
	}
}

// collectInputs loads one file or a whole directory depending on the target.
func collectInputs(ld *loader.Loader, target string) ([]coordinator.FileInput, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return ld.LoadDirectory(target)
	}
	in, err := ld.LoadFile(target)
	if err != nil {
		return nil, err
	}
	return []coordinator.FileInput{in}, nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
