// Package domain contains the core entities of the recipe catalogue.
package domain

import (
	"slices"
	"time"
)

// Recipe is a dish entry. It owns its ingredients and shares its tags with
// other recipes.
type Recipe struct {
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	ImageBlurHash string       `json:"image_blur_hash,omitempty"`
	Image         []byte       `json:"-"` // PNG
	Ingredients   []Ingredient `json:"ingredients"`
	Tags          []Tag        `json:"tags"`
}

// HasImage reports whether the recipe carries a photo.
func (r *Recipe) HasImage() bool {
	return len(r.Image) > 0
}

// IngredientNames returns ingredient names in insertion order.
func (r *Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}

// TagNames returns the names of the attached tags.
func (r *Recipe) TagNames() []string {
	names := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		names = append(names, t.Name)
	}
	return names
}

// HasTag reports whether a tag with exactly this name is attached.
func (r *Recipe) HasTag(name string) bool {
	return slices.ContainsFunc(r.Tags, func(t Tag) bool { return t.Name == name })
}

// IsToTry reports whether the recipe is on the try list.
func (r *Recipe) IsToTry() bool {
	return r.HasTag(TryTagName)
}

// Ingredient is owned by exactly one recipe. Position records insertion order.
type Ingredient struct {
	ID       string `json:"id"`
	RecipeID string `json:"recipe_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Image is a normalised recipe photo and its BlurHash placeholder.
type Image struct {
	PNG      []byte
	BlurHash string
}
