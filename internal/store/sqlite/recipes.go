package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
	domainerrors "github.com/lieblingsgerichte/rezepte/internal/errors"
)

// recipeColumns is the ordered list of columns selected in recipe queries.
// Must match the scan order in scanRecipe.
const recipeColumns = `id, title, description, image, image_blur_hash, created_at, updated_at`

// scanRecipe scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Recipe. Ingredients and tags are loaded separately.
func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var r domain.Recipe

	var (
		blurHash  sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&r.ID,
		&r.Title,
		&r.Description,
		&r.Image,
		&blurHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.ImageBlurHash = blurHash.String

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	r.Ingredients = []domain.Ingredient{}
	r.Tags = []domain.Tag{}
	return &r, nil
}

// CountRecipes returns the number of stored recipes.
func (s *Store) CountRecipes(ctx context.Context) (int, error) {
	return countRecipes(ctx, s.db)
}

// GetRecipe returns a fully hydrated recipe.
// Returns a NotFound error if the recipe does not exist.
func (s *Store) GetRecipe(ctx context.Context, recipeID string) (*domain.Recipe, error) {
	return getRecipe(ctx, s.db, recipeID)
}

// ListRecipes returns every recipe with ingredients and tags, ordered by
// title case-insensitively.
func (s *Store) ListRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	return listRecipes(ctx, s.db)
}

func countRecipes(ctx context.Context, q queryer) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n); err != nil {
		return 0, domainerrors.Persistence(err, "count recipes")
	}
	return n, nil
}

func getRecipe(ctx context.Context, q queryer, recipeID string) (*domain.Recipe, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, recipeID)

	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("recipe %s not found", recipeID)
	}
	if err != nil {
		return nil, domainerrors.Persistence(err, "get recipe")
	}

	if err := hydrate(ctx, q, []*domain.Recipe{r}); err != nil {
		return nil, err
	}
	return r, nil
}

func listRecipes(ctx context.Context, q queryer) ([]*domain.Recipe, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes ORDER BY title COLLATE NOCASE ASC, id ASC`)
	if err != nil {
		return nil, domainerrors.Persistence(err, "list recipes")
	}

	recipes := []*domain.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, domainerrors.Persistence(err, "scan recipe")
		}
		recipes = append(recipes, r)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, domainerrors.Persistence(err, "list recipes")
	}

	if err := hydrate(ctx, q, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// hydrate loads ingredients and tags for the given recipes with one query
// each. Rows are fully drained before the next query starts, which the
// single-connection in-memory store depends on.
func hydrate(ctx context.Context, q queryer, recipes []*domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Recipe, len(recipes))
	args := make([]any, 0, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
		args = append(args, r.ID)
	}
	in := placeholders(len(args))

	rows, err := q.QueryContext(ctx, `
		SELECT id, recipe_id, name, sort_order
		FROM ingredients
		WHERE recipe_id IN (`+in+`)
		ORDER BY recipe_id, sort_order ASC`, args...)
	if err != nil {
		return domainerrors.Persistence(err, "load ingredients")
	}
	for rows.Next() {
		var ing domain.Ingredient
		if err := rows.Scan(&ing.ID, &ing.RecipeID, &ing.Name, &ing.Position); err != nil {
			rows.Close()
			return domainerrors.Persistence(err, "scan ingredient")
		}
		r := byID[ing.RecipeID]
		r.Ingredients = append(r.Ingredients, ing)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return domainerrors.Persistence(err, "load ingredients")
	}

	rows, err = q.QueryContext(ctx, `
		SELECT rt.recipe_id, t.id, t.name, t.created_at
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id IN (`+in+`)
		ORDER BY rt.recipe_id, t.name, t.id`, args...)
	if err != nil {
		return domainerrors.Persistence(err, "load recipe tags")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recipeID  string
			createdAt string
			t         domain.Tag
		)
		if err := rows.Scan(&recipeID, &t.ID, &t.Name, &createdAt); err != nil {
			return domainerrors.Persistence(err, "scan recipe tag")
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return domainerrors.Persistence(err, "parse tag time")
		}
		r := byID[recipeID]
		r.Tags = append(r.Tags, t)
	}
	if err := rows.Err(); err != nil {
		return domainerrors.Persistence(err, "load recipe tags")
	}
	return nil
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
