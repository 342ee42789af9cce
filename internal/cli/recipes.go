package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
	"github.com/lieblingsgerichte/rezepte/internal/errors"
)

func newListCommand(opts *RootOptions) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes that are not on the try list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				recipes, err := a.recipes.MainList(ctx, search)
				if err != nil {
					return err
				}
				return a.out.emit(newRecipeViews(recipes), func(w io.Writer) error {
					return writeRecipeTable(w, recipes)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only titles containing this text")
	return cmd
}

func newTryCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "try",
		Short: "List recipes marked to try",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				recipes, err := a.recipes.TryList(ctx)
				if err != nil {
					return err
				}
				return a.out.emit(newRecipeViews(recipes), func(w io.Writer) error {
					return writeRecipeTable(w, recipes)
				})
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "mark <id>",
		Short: "Put a recipe on the try list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.recipes.MarkToTry(ctx, args[0]); err != nil {
					return err
				}
				return showRecipe(ctx, a, args[0])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unmark <id>",
		Short: "Take a recipe off the try list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.recipes.UnmarkToTry(ctx, args[0]); err != nil {
					return err
				}
				return showRecipe(ctx, a, args[0])
			})
		},
	})

	return cmd
}

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return showRecipe(ctx, a, args[0])
			})
		},
	}
}

func showRecipe(ctx context.Context, a *app, id string) error {
	r, err := a.recipes.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	return emitRecipe(a, r)
}

func emitRecipe(a *app, r *domain.Recipe) error {
	return a.out.emit(newRecipeView(r), func(w io.Writer) error {
		return writeRecipe(w, r)
	})
}

// recipeFlags are the form fields shared by add and edit.
type recipeFlags struct {
	title       string
	description string
	ingredients []string
	tags        []string
	imagePath   string
	try         bool
}

func (f *recipeFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.title, "title", "t", "", "recipe title")
	fl.StringVarP(&f.description, "description", "d", "", "recipe description")
	fl.StringArrayVarP(&f.ingredients, "ingredient", "i", nil, "ingredient (repeatable)")
	fl.StringSliceVar(&f.tags, "tag", nil, "tag (repeatable or comma-separated)")
	fl.StringVar(&f.imagePath, "image", "", "photo file (PNG, JPEG, GIF or WebP)")
	fl.BoolVar(&f.try, "try", false, "put the recipe on the try list")
}

func (f *recipeFlags) readImage() ([]byte, error) {
	if f.imagePath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(f.imagePath)
	if err != nil {
		return nil, errors.Validationf("read image %q: %v", f.imagePath, err)
	}
	return data, nil
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	f := &recipeFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := f.readImage()
			if err != nil {
				return err
			}
			in := domain.RecipeInput{
				Title:       f.title,
				Description: f.description,
				Ingredients: f.ingredients,
				Tags:        f.tags,
				Image:       image,
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				r, err := a.recipes.CreateRecipe(ctx, in, f.try)
				if err != nil {
					return err
				}
				return emitRecipe(a, r)
			})
		},
	}

	f.register(cmd)
	return cmd
}

func newEditCommand(opts *RootOptions) *cobra.Command {
	f := &recipeFlags{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a recipe; fields without a flag keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := f.readImage()
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				current, err := a.recipes.GetRecipe(ctx, args[0])
				if err != nil {
					return err
				}

				in := editInput(current, f, cmd.Flags().Changed)
				in.Image = image

				r, err := a.recipes.UpdateRecipe(ctx, current.ID, in)
				if err != nil {
					return err
				}
				return emitRecipe(a, r)
			})
		},
	}

	f.register(cmd)
	return cmd
}

// editInput starts from the stored recipe and applies the flags that were
// given. New tags replace the old ones but keep the try marker unless --try
// says otherwise.
func editInput(current *domain.Recipe, f *recipeFlags, changed func(string) bool) domain.RecipeInput {
	in := domain.RecipeInput{
		Title:       current.Title,
		Description: current.Description,
		Ingredients: current.IngredientNames(),
		Tags:        current.TagNames(),
	}
	if changed("title") {
		in.Title = f.title
	}
	if changed("description") {
		in.Description = f.description
	}
	if changed("ingredient") {
		in.Ingredients = f.ingredients
	}

	toTry := current.IsToTry()
	if changed("try") {
		toTry = f.try
	}
	if changed("tag") {
		in.Tags = f.tags
	}
	in.Tags = slices.DeleteFunc(slices.Clone(in.Tags), func(name string) bool {
		return name == domain.TryTagName
	})
	if toTry {
		in = in.WithTag(domain.TryTagName)
	}
	return in
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.recipes.DeleteRecipe(ctx, args[0]); err != nil {
					return err
				}
				data := map[string]string{"deleted": args[0]}
				return a.out.emit(data, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Deleted %s\n", args[0])
					return err
				})
			})
		},
	}
}
