package domain

import "strings"

// RecipeInput is the content of the add/edit recipe form.
type RecipeInput struct {
	Title       string   `json:"title" validate:"max=200"`
	Description string   `json:"description" validate:"max=20000"`
	Ingredients []string `json:"ingredients" validate:"dive,notblank,max=200"`
	Tags        []string `json:"tags" validate:"dive,notblank,max=100,excludes=0x2C"`
	// Image is raw image data in any supported format. Nil keeps the current
	// photo when editing.
	Image []byte `json:"-"`
}

// Normalized trims ingredient and tag names, drops blank entries and removes
// duplicate tag names while keeping first-seen order.
func (in RecipeInput) Normalized() RecipeInput {
	out := in
	out.Ingredients = trimNonEmpty(in.Ingredients)
	out.Tags = UniqueNames(in.Tags)
	return out
}

// WithTag returns a copy of the input that also carries the named tag.
func (in RecipeInput) WithTag(name string) RecipeInput {
	out := in
	out.Tags = UniqueNames(append(append([]string(nil), in.Tags...), name))
	return out
}

// UniqueNames trims names, drops blanks and removes exact duplicates.
func UniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range trimNonEmpty(names) {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func trimNonEmpty(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
