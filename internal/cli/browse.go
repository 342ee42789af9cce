package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lieblingsgerichte/rezepte/internal/color"
)

func newTagsCommand(opts *RootOptions) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags with their recipe counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				tags, err := a.recipes.Tags(ctx, search)
				if err != nil {
					return err
				}
				views := make([]tagView, len(tags))
				for i, t := range tags {
					views[i] = tagView{Name: t.Name, Recipes: t.RecipeCount, Color: color.ForTag(t.Name)}
				}
				return a.out.emit(views, func(w io.Writer) error {
					if len(views) == 0 {
						_, err := fmt.Fprintln(w, "No tags.")
						return err
					}
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					for _, v := range views {
						fmt.Fprintf(tw, "%s\t%d\n", v.Name, v.Recipes)
					}
					return tw.Flush()
				})
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only tags containing this text")
	return cmd
}

func newTagCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <name>",
		Short: "List recipes carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				recipes, err := a.recipes.RecipesWithTag(ctx, args[0])
				if err != nil {
					return err
				}
				return a.out.emit(newRecipeViews(recipes), func(w io.Writer) error {
					return writeRecipeTable(w, recipes)
				})
			})
		},
	}
}

func newIngredientsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingredients <term>...",
		Short: "Find recipes containing every given ingredient",
		Long: `Find recipes containing every given ingredient. Matching ignores case
and accents, so "kase" finds "Käse".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				recipes, err := a.recipes.SearchByIngredients(ctx, args)
				if err != nil {
					return err
				}
				return a.out.emit(newRecipeViews(recipes), func(w io.Writer) error {
					return writeRecipeTable(w, recipes)
				})
			})
		},
	}
}
