package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newSweepCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove tags no recipe uses",
		Long: `Remove tags no recipe uses. Every command already sweeps on startup;
this reports the result of that sweep.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				removed := a.bootstrap.SweptTags
				n, err := a.recipes.SweepOrphanedTags(ctx)
				if err != nil {
					return err
				}
				removed += n

				return a.out.emit(map[string]int{"removed": removed}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Removed %d orphaned tag(s)\n", removed)
					return err
				})
			})
		},
	}
}
