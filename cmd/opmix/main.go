package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/swantron/opmix/internal/config"
	"github.com/swantron/opmix/internal/workload"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"

	configFile string
	verbose    bool

	// cfg and logger are set up before every command runs
	cfg    *config.Config
	logger *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "opmix",
		Short: "Fixed integer and floating-point workload generator",
		Long: `opmix runs a fixed arithmetic workload: two integer buffers filled by
nested increment and multiply/divide loops, then a single-precision scalar
multiplied and divided by a constant.

Run without a subcommand to execute the workload with no output, the way a
compiler or simulator consumes it. Use run, verify, or profile to inspect it.`,
		Version:           fmt.Sprintf("%s (commit: %s, date: %s)", version, commit, date),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: runSilent,
	}
)

// errGateFailed is returned when verification gates fail; the message is already printed
var errGateFailed = errors.New("verification failed")

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a YAML config file")
	flags.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flags.Int("size", workload.DefaultSize, "Base size; each row holds size/4 elements")
	flags.Int("rows", workload.DefaultRows, "Number of rows per buffer")
	flags.Int("passes", workload.DefaultPasses, "Accumulate passes per row")
	flags.Float32("factor", workload.DefaultFactor, "Float phase multiplier/divisor")
	flags.StringP("output", "o", "text", "Output format: text, json, markdown, yaml")
}

func main() {
	// Subcommands are added in their respective files via init() functions

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errGateFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// setup resolves configuration and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = resolveConfig(cmd)
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// resolveConfig layers explicitly set flags over the config file over defaults
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	flags := cmd.Flags()
	var err error
	if flags.Changed("size") {
		if c.Size, err = flags.GetInt("size"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("rows") {
		if c.Rows, err = flags.GetInt("rows"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("passes") {
		if c.Passes, err = flags.GetInt("passes"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("factor") {
		if c.Factor, err = flags.GetFloat32("factor"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output") {
		if c.Output, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// runSilent executes the workload and discards the result
func runSilent(cmd *cobra.Command, args []string) error {
	_, result, err := workload.Run(cfg.Params(), workload.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Debug("workload finished", zap.Float32("x", result.X))
	return nil
}
