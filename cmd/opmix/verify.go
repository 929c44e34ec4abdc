package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/swantron/opmix/internal/verify"
	"github.com/swantron/opmix/internal/workload"
	"github.com/swantron/opmix/pkg/report"
	"go.uber.org/zap"
)

var (
	verifyTolerance     float64
	verifyMaxMismatches int
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run the workload and check its results",
	Long: `Run the workload, then check that every element of the first buffer
equals the pass count and every element of the second equals row*column/3.
The float deviation from 1 is reported; it only fails the check when
--tolerance is set.

Exits with status 1 when a check fails.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().Float64VarP(&verifyTolerance, "tolerance", "t", 0, "Maximum allowed |x - 1| (0 disables the float gate)")
	verifyCmd.Flags().IntVar(&verifyMaxMismatches, "max-mismatches", verify.DefaultMaxMismatches, "Mismatches to list per buffer")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	// Flags win over the config file when set
	tolerance := cfg.Tolerance
	if cmd.Flags().Changed("tolerance") {
		tolerance = verifyTolerance
	}
	maxMismatches := cfg.MaxMismatches
	if cmd.Flags().Changed("max-mismatches") {
		maxMismatches = verifyMaxMismatches
	}
	if tolerance < 0 {
		return fmt.Errorf("tolerance cannot be negative: %v", tolerance)
	}

	s, result, err := workload.Run(cfg.Params(), workload.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to run workload: %w", err)
	}

	check, err := verify.Check(s, verify.Options{MaxMismatches: maxMismatches, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to verify: %w", err)
	}

	r := report.Build(result, check, tolerance, nil)
	if err := writeReport(cmd.OutOrStdout(), r, cfg.Output); err != nil {
		return err
	}

	if !r.OK() {
		logger.Warn("verification failed",
			zap.Int("mismatched", check.Mismatched()),
			zap.Float64("deviation", check.Float.Deviation),
			zap.Float64("tolerance", tolerance))
		return errGateFailed
	}
	return nil
}
