package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"debtguardian/internal/config"
	"debtguardian/internal/logging"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize DebtGuardian configuration",
	Long:  "Creates a .debtguardian/ directory with default configuration in the repository root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .debtguardian directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{
		Format: "human",
		Level:  "info",
	})

	root, err := filepath.Abs(repoRootFlag)
	if err != nil {
		return err
	}

	dgDir := filepath.Join(root, ".debtguardian")
	if _, statErr := os.Stat(dgDir); statErr == nil {
		if !initForce {
			// Already initialized counts as success
			fmt.Println("DebtGuardian already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(dgDir, "config.json"))
			fmt.Println("\nRun 'debtguardian init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(dgDir); removeErr != nil {
			return fmt.Errorf("failed to remove existing .debtguardian directory: %w", removeErr)
		}
		logger.Info("Removed existing .debtguardian directory", nil)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	manifest := &config.DetectorManifest{}
	if err := manifest.Save(root); err != nil {
		return fmt.Errorf("failed to write detector manifest: %w", err)
	}

	fmt.Println("DebtGuardian initialized.")
	fmt.Printf("Configuration at: %s\n", filepath.Join(dgDir, "config.json"))
	fmt.Printf("Detector manifest at: %s\n", filepath.Join(dgDir, "detectors.toml"))
	return nil
}
