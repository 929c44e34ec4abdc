package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/swantron/opmix/internal/opcount"
	"github.com/swantron/opmix/internal/workload"
	"github.com/swantron/opmix/pkg/report"
	"go.uber.org/zap"
)

// File names written under --out-dir
const (
	architectureFile = "architecture.yaml"
	actionCountsFile = "action_counts.yaml"
)

var (
	profileActionCounts bool
	profileArchitecture bool
	profileCycles       int64
	profileOutFile      string
	profileOutDir       string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the operation mix of the workload",
	Long: `Print how many integer, floating-point, and memory operations the
workload performs, next to the result of running it once.

With --action-counts, emit an action counts document (version 0.3) for
energy estimation tools, mapping op classes onto ALU, multiplier, FPU, and
data cache components. --cycles adds idle counts for the functional units.

With --architecture, emit the matching component tree. Its root carries the
technology, datawidth, device_type, and clock_mhz config values.

--out-dir writes both documents as architecture.yaml and action_counts.yaml.`,
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().BoolVar(&profileActionCounts, "action-counts", false, "Emit an action counts YAML document")
	profileCmd.Flags().BoolVar(&profileArchitecture, "architecture", false, "Emit an architecture YAML document")
	profileCmd.Flags().Int64Var(&profileCycles, "cycles", 0, "Total cycle count used to derive idle actions")
	profileCmd.Flags().StringVar(&profileOutFile, "out", "", "Write the document to this file (default: stdout)")
	profileCmd.Flags().StringVar(&profileOutDir, "out-dir", "", "Write architecture.yaml and action_counts.yaml to this directory")
	profileCmd.MarkFlagsMutuallyExclusive("out", "out-dir")

	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	if err := checkProfileFlags(cmd); err != nil {
		return err
	}

	prof := opcount.Count(cfg.Params())
	logger.Debug("profile computed", zap.Int64("total_ops", prof.Total()))

	switch {
	case profileOutDir != "":
		return writeProfileDir(prof, profileOutDir)
	case profileArchitecture:
		data, err := marshalArchitecture()
		if err != nil {
			return err
		}
		return emit(cmd, data, "architecture")
	case profileActionCounts:
		data, err := marshalActionCounts(prof)
		if err != nil {
			return err
		}
		return emit(cmd, data, "action counts")
	}

	_, result, err := workload.Run(cfg.Params(), workload.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to run workload: %w", err)
	}
	return writeReport(cmd.OutOrStdout(), report.Build(result, nil, 0, &prof), cfg.Output)
}

// checkProfileFlags rejects document flags that would otherwise be ignored
func checkProfileFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	counts := profileActionCounts || profileOutDir != ""

	if flags.Changed("cycles") && !counts {
		return fmt.Errorf("--cycles requires --action-counts or --out-dir")
	}
	if flags.Changed("out") && !profileActionCounts && !profileArchitecture {
		return fmt.Errorf("--out requires --action-counts or --architecture")
	}
	if profileActionCounts && profileArchitecture && profileOutDir == "" {
		return fmt.Errorf("--action-counts and --architecture together require --out-dir")
	}
	return nil
}

func marshalActionCounts(prof opcount.Profile) ([]byte, error) {
	doc, err := opcount.ActionCounts(prof, profileCycles, opcount.DefaultMappings)
	if err != nil {
		return nil, fmt.Errorf("failed to build action counts: %w", err)
	}
	return doc.Marshal()
}

func marshalArchitecture() ([]byte, error) {
	doc, err := opcount.Architecture(cfg.System(), opcount.DefaultMappings)
	if err != nil {
		return nil, fmt.Errorf("failed to build architecture: %w", err)
	}
	return doc.Marshal()
}

// emit writes a document to --out, or to stdout when no file is given
func emit(cmd *cobra.Command, data []byte, what string) error {
	if profileOutFile == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(profileOutFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", what, err)
	}
	logger.Info(what+" written", zap.String("path", profileOutFile))
	return nil
}

// writeProfileDir writes both documents side by side
func writeProfileDir(prof opcount.Profile, dir string) error {
	arch, err := marshalArchitecture()
	if err != nil {
		return err
	}
	counts, err := marshalActionCounts(prof)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for name, data := range map[string][]byte{architectureFile: arch, actionCountsFile: counts} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		logger.Info("profile document written", zap.String("path", path))
	}
	return nil
}
