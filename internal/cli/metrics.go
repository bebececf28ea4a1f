package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/facet/internal/metrics"
)

// MetricOptions holds flags shared by the mvce and mcei commands.
type MetricOptions struct {
	*RootOptions
	Severity       string
	NumCorruptions int
	PlotPath       string
}

// NewMVCECommand creates the mvce command.
func NewMVCECommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MetricOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mvce <table.csv>",
		Short: "Mean verification corruption error per model",
		Long: `Compute mVCE and relative mVCE from a table of verification accuracies.

The table is CSV with a header row and the columns
model,corruption,s0,s1,s2,s3,s4,s5 where s0 is clean accuracy. Rows are
grouped into blocks of --num_corruptions rows per model.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMVCE(opts, args[0], cmd)
		},
	}
	addMetricFlags(cmd, opts)
	return cmd
}

// NewMCEICommand creates the mcei command.
func NewMCEICommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MetricOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mcei <table.csv>",
		Short: "Mean corruption embedding invariance per model",
		Long: `Compute mCEI from a table of clean-vs-corrupted embedding similarities.

The table has the same layout as for mvce; s0 is ignored.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCEI(opts, args[0], cmd)
		},
	}
	addMetricFlags(cmd, opts)
	return cmd
}

func addMetricFlags(cmd *cobra.Command, opts *MetricOptions) {
	cmd.Flags().StringVar(&opts.Severity, "severity", string(metrics.BandOverall), "severity band (overall|low|high)")
	cmd.Flags().IntVar(&opts.NumCorruptions, "num_corruptions", metrics.DefaultNumCorruptions, "rows per model")
	cmd.Flags().StringVar(&opts.PlotPath, "plot", "", "write a bar chart PNG to this path")
}

// loadMetricInput parses the band and reads the table.
func loadMetricInput(opts *MetricOptions, tablePath string, formatter *OutputFormatter) (metrics.Band, metrics.Columns, error) {
	band, err := metrics.ParseBand(opts.Severity)
	if err != nil {
		return "", metrics.Columns{}, commandError(formatter, ErrCodeBand, err)
	}
	table, err := metrics.LoadCSV(tablePath)
	if err != nil {
		return "", metrics.Columns{}, commandError(formatter, ErrCodeTable, err)
	}
	return band, table.Columns(), nil
}

func runMVCE(opts *MetricOptions, tablePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	band, cols, err := loadMetricInput(opts, tablePath, formatter)
	if err != nil {
		return err
	}
	res, err := metrics.ComputeMVCE(cols, opts.NumCorruptions, band)
	if err != nil {
		return commandError(formatter, ErrCodePrecondition, err)
	}

	if opts.PlotPath != "" {
		if err := metrics.PlotMVCE(opts.PlotPath, res); err != nil {
			return commandError(formatter, ErrCodePlot, err)
		}
		formatter.VerboseLog("wrote plot to %s", opts.PlotPath)
	}

	if opts.Format == "json" {
		return formatter.Success(res)
	}
	var buf bytes.Buffer
	if err := metrics.WriteMVCEReport(&buf, res); err != nil {
		return commandError(formatter, ErrCodeGeneric, err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), buf.String())
	return err
}

func runMCEI(opts *MetricOptions, tablePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	band, cols, err := loadMetricInput(opts, tablePath, formatter)
	if err != nil {
		return err
	}
	res, err := metrics.ComputeMCEI(cols, opts.NumCorruptions, band)
	if err != nil {
		return commandError(formatter, ErrCodePrecondition, err)
	}

	if opts.PlotPath != "" {
		if err := metrics.PlotMCEI(opts.PlotPath, res); err != nil {
			return commandError(formatter, ErrCodePlot, err)
		}
		formatter.VerboseLog("wrote plot to %s", opts.PlotPath)
	}

	if opts.Format == "json" {
		return formatter.Success(res)
	}
	var buf bytes.Buffer
	if err := metrics.WriteMCEIReport(&buf, res); err != nil {
		return commandError(formatter, ErrCodeGeneric, err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), buf.String())
	return err
}
