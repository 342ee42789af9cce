// Package cli implements the rezepte command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/lieblingsgerichte/rezepte/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format   string // "json" | "text"
	InMemory bool
	Config   config.Flags

	// injector, when set, is used instead of building a container per
	// command. It is owned by the caller and never shut down here.
	injector *do.RootScope
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rezepte CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rezepte",
		Short: "Lieblingsgerichte - your personal recipe catalogue",
		Long: `Record favourite recipes, keep a list of dishes to try, search by
ingredient and browse by tag. On first start the catalogue is seeded from
the bundled recipes or from --catalogue.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if cmd.Flags().Changed("in-memory") {
				opts.Config.InMemory = fmt.Sprint(opts.InMemory)
			}
			return nil
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.BoolVar(&opts.InMemory, "in-memory", false, "keep all data in memory for this run")
	pf.StringVar(&opts.Config.DataPath, "data-path", "", "data directory (default ~/Lieblingsgerichte)")
	pf.StringVar(&opts.Config.CataloguePath, "catalogue", "", "JSON or YAML catalogue used to seed an empty store")
	pf.StringVar(&opts.Config.AssetsPath, "assets", "", "directory catalogue image names are resolved in")
	pf.StringVar(&opts.Config.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	pf.StringVar(&opts.Config.LogFile, "log-file", "", "also write JSON logs to this rotating file")
	pf.StringVar(&opts.Config.EnvFile, "env-file", "", "load environment from this file (default .env)")

	// Add subcommands
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newTryCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newEditCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newTagsCommand(opts))
	cmd.AddCommand(newTagCommand(opts))
	cmd.AddCommand(newIngredientsCommand(opts))
	cmd.AddCommand(newDeckCommand(opts))
	cmd.AddCommand(newExcludeCommand(opts))
	cmd.AddCommand(newSweepCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are written to stderr, or to stdout as a JSON response when
// --format json is active.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	return execute(ctx, newRootCommand(opts), opts, args, stdout, stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	if opts.Format == "json" {
		writeError(stdout, opts.Format, err)
	} else {
		writeError(stderr, opts.Format, err)
	}
	return ExitCode(err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
