// Package id generates prefixed NanoID identifiers for catalogue entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes.
const (
	PrefixRecipe     = "rcp"
	PrefixIngredient = "ing"
	PrefixTag        = "tag"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "rcp-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// Recipe returns a new recipe ID.
func Recipe() (string, error) { return Generate(PrefixRecipe) }

// Ingredient returns a new ingredient ID.
func Ingredient() (string, error) { return Generate(PrefixIngredient) }

// Tag returns a new tag ID.
func Tag() (string, error) { return Generate(PrefixTag) }
