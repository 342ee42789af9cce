// Package service implements the recipe catalogue use cases on top of the
// entity store, the query engine and the preference store.
package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/lieblingsgerichte/rezepte/internal/deck"
	"github.com/lieblingsgerichte/rezepte/internal/domain"
	"github.com/lieblingsgerichte/rezepte/internal/media/images"
	"github.com/lieblingsgerichte/rezepte/internal/query"
	"github.com/lieblingsgerichte/rezepte/internal/store/sqlite"
	"github.com/lieblingsgerichte/rezepte/internal/validation"
)

// PreferenceStore persists the deck's excluded tags.
type PreferenceStore interface {
	ExcludedTags(ctx context.Context) ([]string, error)
	SetExcludedTags(ctx context.Context, names []string) error
}

// RecipeService orchestrates recipe edits, lists and the deck feed.
type RecipeService struct {
	store     *sqlite.Store
	query     *query.Engine
	prefs     PreferenceStore
	validator *validation.Validator
	logger    *slog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(store *sqlite.Store, engine *query.Engine, prefs PreferenceStore, validator *validation.Validator, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		store:     store,
		query:     engine,
		prefs:     prefs,
		validator: validator,
		logger:    logger,
	}
}

// prepare normalises and validates form input and converts its photo.
func (s *RecipeService) prepare(in domain.RecipeInput) (domain.RecipeInput, *domain.Image, error) {
	in = in.Normalized()
	if err := s.validator.Validate(in); err != nil {
		return in, nil, err
	}

	if len(in.Image) == 0 {
		return in, nil, nil
	}
	img, err := images.Normalize(in.Image)
	if err != nil {
		return in, nil, err
	}
	return in, img, nil
}

// CreateRecipe saves a new recipe with its ingredients and tags in one
// transaction. With tryList set the recipe also gets the try tag.
func (s *RecipeService) CreateRecipe(ctx context.Context, in domain.RecipeInput, tryList bool) (*domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tryList {
		in = in.WithTag(domain.TryTagName)
	}

	in, img, err := s.prepare(in)
	if err != nil {
		return nil, err
	}

	var recipeID string
	err = s.store.Update(ctx, func(tx *sqlite.Tx) error {
		var err error
		recipeID, err = tx.CreateRecipe(ctx, in.Title, in.Description, img)
		if err != nil {
			return err
		}
		if err := tx.ReplaceIngredients(ctx, recipeID, in.Ingredients); err != nil {
			return err
		}
		return tx.ReplaceTags(ctx, recipeID, in.Tags)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe created",
		"recipe_id", recipeID,
		"title", in.Title,
		"ingredients", len(in.Ingredients),
		"tags", len(in.Tags),
	)
	return s.store.GetRecipe(ctx, recipeID)
}

// UpdateRecipe replaces the content of an existing recipe. Ingredients and
// tags are replaced wholesale; the photo is kept when the input has none.
func (s *RecipeService) UpdateRecipe(ctx context.Context, recipeID string, in domain.RecipeInput) (*domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in, img, err := s.prepare(in)
	if err != nil {
		return nil, err
	}

	err = s.store.Update(ctx, func(tx *sqlite.Tx) error {
		if err := tx.UpdateRecipe(ctx, recipeID, in.Title, in.Description, img); err != nil {
			return err
		}
		if err := tx.ReplaceIngredients(ctx, recipeID, in.Ingredients); err != nil {
			return err
		}
		return tx.ReplaceTags(ctx, recipeID, in.Tags)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe updated", "recipe_id", recipeID, "title", in.Title)
	return s.store.GetRecipe(ctx, recipeID)
}

// MarkToTry puts a recipe on the try list.
func (s *RecipeService) MarkToTry(ctx context.Context, recipeID string) error {
	return s.store.Update(ctx, func(tx *sqlite.Tx) error {
		if _, err := tx.GetRecipe(ctx, recipeID); err != nil {
			return err
		}
		tagID, err := tx.FindOrCreateTag(ctx, domain.TryTagName)
		if err != nil {
			return err
		}
		return tx.AttachTag(ctx, recipeID, tagID)
	})
}

// UnmarkToTry takes a recipe off the try list. The tag itself stays until
// the next orphan sweep.
func (s *RecipeService) UnmarkToTry(ctx context.Context, recipeID string) error {
	return s.store.Update(ctx, func(tx *sqlite.Tx) error {
		r, err := tx.GetRecipe(ctx, recipeID)
		if err != nil {
			return err
		}
		for _, t := range r.Tags {
			if t.IsReserved() {
				if err := tx.DetachTag(ctx, recipeID, t.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// DeleteRecipe removes a recipe. Deleting a missing recipe is not an error.
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID string) error {
	err := s.store.Update(ctx, func(tx *sqlite.Tx) error {
		return tx.DeleteRecipe(ctx, recipeID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("recipe deleted", "recipe_id", recipeID)
	return nil
}

// GetRecipe returns a recipe or a NotFound error.
func (s *RecipeService) GetRecipe(ctx context.Context, recipeID string) (*domain.Recipe, error) {
	return s.store.GetRecipe(ctx, recipeID)
}

// MainList returns all recipes not marked to try, optionally narrowed by a
// title search.
func (s *RecipeService) MainList(ctx context.Context, search string) ([]*domain.Recipe, error) {
	return s.query.MainList(ctx, search)
}

// TryList returns the recipes marked to try.
func (s *RecipeService) TryList(ctx context.Context) ([]*domain.Recipe, error) {
	return s.query.TryList(ctx)
}

// SearchByIngredients returns recipes containing every given ingredient.
func (s *RecipeService) SearchByIngredients(ctx context.Context, terms []string) ([]*domain.Recipe, error) {
	return s.query.RecipesContainingAllIngredients(ctx, terms)
}

// RecipesWithTag returns the recipes carrying a tag.
func (s *RecipeService) RecipesWithTag(ctx context.Context, name string) ([]*domain.Recipe, error) {
	return s.query.RecipesWithTag(ctx, name)
}

// Tags returns the tag browser list: one entry per name without the try
// tag, sorted, filtered by search.
func (s *RecipeService) Tags(ctx context.Context, search string) ([]*domain.Tag, error) {
	tags, err := s.query.UniqueTags(ctx)
	if err != nil {
		return nil, err
	}
	return query.FilterTags(tags, search), nil
}

// ExcludedTags returns the tags the deck skips.
func (s *RecipeService) ExcludedTags(ctx context.Context) ([]string, error) {
	return s.prefs.ExcludedTags(ctx)
}

// SetExcludedTags replaces the tags the deck skips.
func (s *RecipeService) SetExcludedTags(ctx context.Context, names []string) error {
	names = domain.UniqueNames(names)
	if err := s.prefs.SetExcludedTags(ctx, names); err != nil {
		return err
	}
	s.logger.Info("deck exclusions changed", "tags", names)
	return nil
}

// DeckRecipes returns the recipes the deck may show: everything not
// carrying an excluded tag.
func (s *RecipeService) DeckRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	excluded, err := s.prefs.ExcludedTags(ctx)
	if err != nil {
		return nil, err
	}
	return s.query.RecipesExcludingTags(ctx, excluded, "")
}

// NewDeck creates a deck shuffled over the current deck recipes.
func (s *RecipeService) NewDeck(ctx context.Context, opts ...deck.Option) (*deck.Deck, error) {
	recipes, err := s.DeckRecipes(ctx)
	if err != nil {
		return nil, err
	}
	d := deck.New(opts...)
	d.Initialize(recipes)
	return d, nil
}

// RefreshDeck applies changed exclusions or recipes to an existing deck
// without reshuffling it.
func (s *RecipeService) RefreshDeck(ctx context.Context, d *deck.Deck) error {
	recipes, err := s.DeckRecipes(ctx)
	if err != nil {
		return err
	}

	// Keep the deck's order for recipes it already has; new ones go last.
	pos := make(map[string]int, d.Len())
	for i, r := range d.Order() {
		pos[r.ID] = i
	}
	kept := make([]*domain.Recipe, 0, len(recipes))
	var added []*domain.Recipe
	for _, r := range recipes {
		if _, ok := pos[r.ID]; ok {
			kept = append(kept, r)
		} else {
			added = append(added, r)
		}
	}
	slices.SortStableFunc(kept, func(a, b *domain.Recipe) int { return pos[a.ID] - pos[b.ID] })

	d.Refilter(append(kept, added...))
	return nil
}

// SweepOrphanedTags removes tags no recipe uses.
func (s *RecipeService) SweepOrphanedTags(ctx context.Context) (int, error) {
	return s.store.SweepOrphanedTags(ctx)
}
