// Package store defines the contracts shared by the entity store and its
// consumers: read access for the query engine and change notification.
package store

import (
	"context"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
)

// RecipeLister provides a full snapshot of the catalogue. The query engine
// scans it on every call.
type RecipeLister interface {
	ListRecipes(ctx context.Context) ([]*domain.Recipe, error)
}

// RecipeCounter reports how many recipes exist.
type RecipeCounter interface {
	CountRecipes(ctx context.Context) (int, error)
}

// TagLister lists every stored tag with its recipe count.
type TagLister interface {
	ListTags(ctx context.Context) ([]*domain.Tag, error)
}

// Reader is the read side of the entity store.
type Reader interface {
	RecipeLister
	RecipeCounter
	TagLister
	GetRecipe(ctx context.Context, recipeID string) (*domain.Recipe, error)
}
