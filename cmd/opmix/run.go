package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/swantron/opmix/internal/opcount"
	"github.com/swantron/opmix/internal/workload"
	"github.com/swantron/opmix/pkg/report"
	"go.uber.org/zap"
)

var runWithOps bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the workload and print the result",
	Long: `Run the three workload phases once and print the final scalar and the
sums of both buffers.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runWithOps, "ops", false, "Include the operation mix in the output")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	_, result, err := workload.Run(cfg.Params(), workload.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to run workload: %w", err)
	}
	logger.Info("workload finished",
		zap.Int("elements", result.Params.Elements()),
		zap.Float32("x", result.X))

	var ops *opcount.Profile
	if runWithOps {
		prof := opcount.Count(result.Params)
		ops = &prof
	}

	return writeReport(cmd.OutOrStdout(), report.Build(result, nil, 0, ops), cfg.Output)
}

// writeReport renders r in format to w
func writeReport(w io.Writer, r *report.RunReport, format string) error {
	switch format {
	case "json":
		data, err := report.ToJSON(r)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := report.ToYAML(r)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "markdown":
		_, err := fmt.Fprint(w, report.ToMarkdown(r))
		return err
	case "text":
		_, err := fmt.Fprint(w, report.ToText(r))
		return err
	default:
		return fmt.Errorf("unsupported output format: %s (supported: text, json, markdown, yaml)", format)
	}
}
