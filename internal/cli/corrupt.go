package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/facet/internal/config"
	"github.com/roach88/facet/internal/corrupt"
	"github.com/roach88/facet/internal/dataset"
	"github.com/roach88/facet/internal/store"
)

// Default dataset locations.
const (
	DefaultInDir  = "./datasets/data"
	DefaultOutDir = "./datasets/corrupt-data"
)

// CorruptOptions holds flags for the corrupt command.
type CorruptOptions struct {
	*RootOptions
	InDir      string
	OutDir     string
	NumWorkers int
	BatchSize  int
	ConfigPath string
	Ledger     string

	// Corrupter overrides the configured command (used by tests).
	Corrupter corrupt.Corrupter
	// IDGenerator overrides ledger run IDs (used by tests).
	IDGenerator store.IDGenerator
}

// NewCorruptCommand creates the corrupt command.
func NewCorruptCommand(rootOpts *RootOptions) *cobra.Command {
	return newCorruptCommand(&CorruptOptions{RootOptions: rootOpts})
}

func newCorruptCommand(opts *CorruptOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corrupt",
		Short: "Write every corruption and severity of a dataset",
		Long: `Index every image under --indir_path, mirror its directory tree under
--outdir_path/<severity>/<corruption>/ and write one corrupted copy of each
image per (severity, corruption) pair.

Records are processed in parallel. A failing record is reported and does
not stop the others; the command then exits with code 1.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorrupt(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.InDir, "indir_path", DefaultInDir, "input dataset root")
	cmd.Flags().StringVar(&opts.OutDir, "outdir_path", DefaultOutDir, "output root for corrupted datasets")
	cmd.Flags().IntVar(&opts.NumWorkers, "num_workers", runtime.NumCPU(), "number of parallel workers")
	cmd.Flags().IntVar(&opts.BatchSize, "batch_size", 1, "records handed to a worker at a time")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "run configuration (.yaml, .yml or .cue)")
	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "SQLite run ledger to record the run in")

	return cmd
}

// corruptResult summarises a corrupt run.
type corruptResult struct {
	RunID    string `json:"run_id,omitempty"`
	InDir    string `json:"indir"`
	OutDir   string `json:"outdir"`
	Images   int    `json:"images"`
	Variants int    `json:"variants"`
	Failed   int    `json:"failed"`
	Status   string `json:"status"`
}

func (r corruptResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✓ Corrupted %d image(s) into %s\n", r.Images, r.OutDir)
	fmt.Fprintf(&sb, "  Variants written: %d\n", r.Variants)
	if r.Failed > 0 {
		fmt.Fprintf(&sb, "  Failed records: %d\n", r.Failed)
	}
	if r.RunID != "" {
		fmt.Fprintf(&sb, "  Run: %s\n", r.RunID)
	}
	return sb.String()
}

func runCorrupt(opts *CorruptOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	configureLogging(opts.Verbose, formatter.GetErrWriter())
	logger := slog.Default()

	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err)
	}
	cat, err := cfg.BuildCatalog()
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err)
	}
	corrupter, err := resolveCorrupter(opts, cfg)
	if err != nil {
		return commandError(formatter, ErrCodeCorrupter, err)
	}

	ds, err := dataset.Index(opts.InDir, dataset.Rebased{}, dataset.WithLogger(logger))
	if err != nil {
		return commandError(formatter, ErrCodeIndex, err)
	}
	outdir, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err)
	}

	gridOpts := []corrupt.GridOption{
		corrupt.WithTransformSize(cfg.TransformSize),
		corrupt.WithLogger(logger),
	}

	result := corruptResult{InDir: ds.Root(), Images: ds.Len()}

	var ledger *store.Store
	if opts.Ledger != "" {
		ledger, err = store.Open(opts.Ledger)
		if err != nil {
			return commandError(formatter, ErrCodeLedger, err)
		}
		defer func() {
			if closeErr := ledger.Close(); closeErr != nil {
				slog.Error("error closing ledger", "error", closeErr)
			}
		}()

		gen := opts.IDGenerator
		if gen == nil {
			gen = store.UUIDv7Generator{}
		}
		result.RunID = gen.Generate()
		gridOpts = append(gridOpts, corrupt.WithObserver(ledger.Recorder(result.RunID)))
	}

	grid, err := corrupt.NewGrid(outdir, cat, corrupter, gridOpts...)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err)
	}
	result.OutDir = grid.OutDir()
	if err := grid.Prepare(ds); err != nil {
		return commandError(formatter, ErrCodePrepare, err)
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	if ledger != nil {
		if err := ledger.BeginRun(ctx, result.RunID, ds.Root(), grid.OutDir(), grid.Catalog().Names(), ds.Len()); err != nil {
			return commandError(formatter, ErrCodeLedger, err)
		}
	}

	logger.Info("corrupting dataset",
		"images", ds.Len(),
		"variants_per_image", len(cat.Variants()),
		"workers", cfg.NumWorkers,
		"batch_size", cfg.BatchSize)

	summary, runErr := corrupt.Run(ctx, grid, ds.Records(), corrupt.PoolOptions{
		Workers:   cfg.NumWorkers,
		BatchSize: cfg.BatchSize,
	})
	result.Variants = summary.Variants
	result.Failed = summary.Failed

	interrupted := errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded)
	switch {
	case interrupted:
		result.Status = store.StatusInterrupted
	case summary.Failed > 0:
		result.Status = store.StatusFailed
	default:
		result.Status = store.StatusCompleted
	}

	if ledger != nil {
		// The run context may already be cancelled; the final status must
		// still be written.
		if err := ledger.FinishRun(context.Background(), result.RunID, result.Status, result.Failed); err != nil {
			return commandError(formatter, ErrCodeLedger, err)
		}
	}

	switch result.Status {
	case store.StatusInterrupted:
		return failure(formatter, ErrCodeInterrupted, "run interrupted", result, runErr)
	case store.StatusFailed:
		for _, e := range summary.Errors {
			formatter.VerboseLog("  %v", e)
		}
		msg := fmt.Sprintf("%d of %d record(s) failed", summary.Failed, result.Images)
		return failure(formatter, ErrCodeRecordsFailed, msg, result, runErr)
	}

	return formatter.SuccessWithRun(result, result.RunID)
}

// resolveConfig loads the optional config file and applies explicitly set
// flags on top of it.
func resolveConfig(opts *CorruptOptions, cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("num_workers") || cfg.NumWorkers == 0 {
		cfg.NumWorkers = opts.NumWorkers
	}
	if flags.Changed("batch_size") || cfg.BatchSize == 0 {
		cfg.BatchSize = opts.BatchSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveCorrupter(opts *CorruptOptions, cfg *config.Config) (corrupt.Corrupter, error) {
	if opts.Corrupter != nil {
		return opts.Corrupter, nil
	}
	if len(cfg.Corrupter.Command) == 0 {
		return nil, &dataset.ConfigurationError{Message: "no corrupter configured: set corrupter.command in --config"}
	}
	return corrupt.NewExecCorrupter(cfg.Corrupter.Command, cfg.Corrupter.TempDir)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM, derived
// from the command's context when one is set.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
