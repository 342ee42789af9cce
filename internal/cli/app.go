package cli

import (
	"context"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/lieblingsgerichte/rezepte/internal/config"
	"github.com/lieblingsgerichte/rezepte/internal/di"
	"github.com/lieblingsgerichte/rezepte/internal/service"
)

// app is what a command runs against: a bootstrapped container.
type app struct {
	config    *config.Config
	recipes   *service.RecipeService
	bootstrap *service.BootstrapResult
	out       *output
}

// withApp builds and bootstraps the container, runs fn and shuts the
// container down again.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	injector := opts.injector
	if injector == nil {
		injector = di.NewContainer(opts.Config)
		defer di.Shutdown(injector) //nolint:errcheck // Best effort on exit
	}

	result, err := di.Bootstrap(ctx, injector)
	if err != nil {
		return err
	}

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		return err
	}
	recipes, err := do.Invoke[*service.RecipeService](injector)
	if err != nil {
		return err
	}

	return fn(ctx, &app{
		config:    cfg,
		recipes:   recipes,
		bootstrap: result,
		out:       &output{format: opts.Format, w: cmd.OutOrStdout()},
	})
}
