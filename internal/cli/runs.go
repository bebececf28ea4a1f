package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/facet/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Ledger string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List corrupt runs recorded in a ledger",
		Long: `List every run recorded in --ledger, oldest first, or show a single run
when a run ID is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "SQLite run ledger")
	_ = cmd.MarkFlagRequired("ledger")

	return cmd
}

type runList []store.Run

func (l runList) String() string {
	if len(l) == 0 {
		return "No runs recorded.\n"
	}
	var sb strings.Builder
	for _, r := range l {
		fmt.Fprintf(&sb, "%s  %-11s  images=%d variants=%d failed=%d  %s\n",
			r.ID, r.Status, r.Images, r.Variants, r.Failed, r.StartedAt.Format(time.RFC3339))
	}
	return sb.String()
}

type runDetail store.Run

func (r runDetail) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run:      %s\n", r.ID)
	fmt.Fprintf(&sb, "Status:   %s\n", r.Status)
	fmt.Fprintf(&sb, "Input:    %s\n", r.InDir)
	fmt.Fprintf(&sb, "Output:   %s\n", r.OutDir)
	fmt.Fprintf(&sb, "Catalog:  %s\n", strings.Join(r.Catalog, ", "))
	fmt.Fprintf(&sb, "Images:   %d\n", r.Images)
	fmt.Fprintf(&sb, "Variants: %d\n", r.Variants)
	fmt.Fprintf(&sb, "Failed:   %d\n", r.Failed)
	fmt.Fprintf(&sb, "Started:  %s\n", r.StartedAt.Format(time.RFC3339))
	if r.FinishedAt != nil {
		fmt.Fprintf(&sb, "Finished: %s\n", r.FinishedAt.Format(time.RFC3339))
	}
	return sb.String()
}

func runRuns(opts *RunsOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Opening would create an empty ledger; a typo should fail instead.
	if _, err := os.Stat(opts.Ledger); err != nil {
		return commandError(formatter, ErrCodeLedger, fmt.Errorf("ledger %s: %w", opts.Ledger, err))
	}

	st, err := store.Open(opts.Ledger)
	if err != nil {
		return commandError(formatter, ErrCodeLedger, err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if len(args) == 1 {
		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			if errors.Is(err, store.ErrRunNotFound) {
				return commandError(formatter, ErrCodeLedger, err)
			}
			return commandError(formatter, ErrCodeGeneric, err)
		}
		return formatter.Success(runDetail(*run))
	}

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err)
	}
	return formatter.Success(runList(runs))
}
