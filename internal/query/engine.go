// Package query answers the catalogue's search and filter questions.
//
// Every call reads a fresh snapshot from the store and filters it in
// memory; there is no index to keep in sync.
package query

import (
	"context"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
	"github.com/lieblingsgerichte/rezepte/internal/store"
)

// Source is the part of the entity store the engine reads from.
type Source interface {
	store.RecipeLister
	store.TagLister
}

// Engine runs queries against a Source.
type Engine struct {
	src Source
}

// New creates an Engine.
func New(src Source) *Engine {
	return &Engine{src: src}
}

// RecipesContainingAllIngredients returns recipes that have, for every
// term, an ingredient whose name contains it.
func (e *Engine) RecipesContainingAllIngredients(ctx context.Context, terms []string) ([]*domain.Recipe, error) {
	recipes, err := e.src.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	return MatchAllIngredients(recipes, terms), nil
}

// RecipesWithTag returns recipes carrying a tag named exactly name.
func (e *Engine) RecipesWithTag(ctx context.Context, name string) ([]*domain.Recipe, error) {
	recipes, err := e.src.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	return WithTag(recipes, name), nil
}

// RecipesExcludingTags returns recipes carrying none of the excluded tags,
// optionally restricted to titles containing titleContains.
func (e *Engine) RecipesExcludingTags(ctx context.Context, excluded []string, titleContains string) ([]*domain.Recipe, error) {
	recipes, err := e.src.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}
	return ExcludingTags(recipes, excluded, titleContains), nil
}

// MainList is the default recipe list: everything not marked to try,
// optionally narrowed by a title search.
func (e *Engine) MainList(ctx context.Context, search string) ([]*domain.Recipe, error) {
	return e.RecipesExcludingTags(ctx, []string{domain.TryTagName}, search)
}

// TryList returns the recipes marked to try.
func (e *Engine) TryList(ctx context.Context) ([]*domain.Recipe, error) {
	return e.RecipesWithTag(ctx, domain.TryTagName)
}

// UniqueTags lists tags once per name, sorted, without the excluded names.
// With no exclusions given, DefaultTagExclusions apply.
func (e *Engine) UniqueTags(ctx context.Context, excluding ...string) ([]*domain.Tag, error) {
	tags, err := e.src.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	if excluding == nil {
		excluding = DefaultTagExclusions
	}
	return UniqueTags(tags, excluding...), nil
}
