package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/facet/internal/dataset"
)

// IndexOptions holds flags for the index command.
type IndexOptions struct {
	*RootOptions
	InDir  string
	OutDir string
}

// NewIndexCommand creates the index command.
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IndexOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "index",
		Short: "List the images a dataset root contains",
		Long: `Walk --indir_path and list every image with the relative path it would be
written under. With --outdir_path each record also shows its fixed save
path under that root.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.InDir, "indir_path", DefaultInDir, "input dataset root")
	cmd.Flags().StringVar(&opts.OutDir, "outdir_path", "", "fixed output root (default: paths stay relative)")

	return cmd
}

type indexEntry struct {
	SourcePath   string `json:"source_path"`
	RelativePath string `json:"relative_path"`
	SavePath     string `json:"save_path"`
}

type indexResult struct {
	Root    string       `json:"root"`
	Mode    string       `json:"mode"`
	Records []indexEntry `json:"records"`
}

func (r indexResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✓ Indexed %d image(s) under %s (%s)\n", len(r.Records), r.Root, r.Mode)
	for _, e := range r.Records {
		fmt.Fprintf(&sb, "  %s -> %s\n", e.SourcePath, e.SavePath)
	}
	return sb.String()
}

func runIndex(opts *IndexOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	configureLogging(opts.Verbose, formatter.GetErrWriter())

	var (
		mode     dataset.OutputMode = dataset.Rebased{}
		modeName                    = "rebased"
	)
	if opts.OutDir != "" {
		mode = dataset.Fixed{Root: opts.OutDir}
		modeName = "fixed"
	}

	ds, err := dataset.Index(opts.InDir, mode, dataset.WithLogger(slog.Default()))
	if err != nil {
		return commandError(formatter, ErrCodeIndex, err)
	}

	result := indexResult{Root: ds.Root(), Mode: modeName, Records: make([]indexEntry, 0, ds.Len())}
	for _, rec := range ds.Records() {
		result.Records = append(result.Records, indexEntry{
			SourcePath:   rec.SourcePath,
			RelativePath: rec.RelativePath,
			SavePath:     ds.SavePath(rec),
		})
	}
	return formatter.Success(result)
}
