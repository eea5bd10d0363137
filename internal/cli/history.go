package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/midiscript/midiscript/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Store string
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded builds",
		Long: `List builds recorded by "midiscript compile --store", newest first.

Example:
  midiscript history --store builds.db --limit 10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "", "path to the build database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of builds; 0 lists all")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Store)
	if err != nil {
		return formatter.fail(CLIError{Code: ErrCodeStore, Message: err.Error(), File: opts.Store})
	}
	defer st.Close()

	builds, err := st.ListBuilds(ctx, opts.Limit)
	if err != nil {
		return formatter.fail(CLIError{Code: ErrCodeStore, Message: err.Error(), File: opts.Store})
	}
	formatter.VerboseLog("Loaded %d build(s) from %s", len(builds), opts.Store)

	if formatter.JSON() {
		return formatter.Success(builds)
	}

	if len(builds) == 0 {
		fmt.Fprintln(formatter.Writer, "No builds recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tID\tSOURCE\tOUTPUT\tNOTES\tHASH")
	for _, b := range builds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			b.CreatedAt.Local().Format(time.DateTime), b.ID, b.SourcePath, b.OutputPath, b.NoteCount, shortHash(b.OutputHash))
	}
	return tw.Flush()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
