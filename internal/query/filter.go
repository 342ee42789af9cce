package query

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
)

// MatchAllIngredients keeps recipes where every term is a substring of at
// least one ingredient name, ignoring case and diacritics. Terms are
// trimmed and blank terms dropped; with no terms left nothing matches.
func MatchAllIngredients(recipes []*domain.Recipe, terms []string) []*domain.Recipe {
	folded := make([]string, 0, len(terms))
	for _, term := range terms {
		if term = strings.TrimSpace(term); term != "" {
			folded = append(folded, FoldLoose(term))
		}
	}
	if len(folded) == 0 {
		return []*domain.Recipe{}
	}

	out := []*domain.Recipe{}
	for _, r := range recipes {
		names := make([]string, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			names = append(names, FoldLoose(ing.Name))
		}
		if containsAll(names, folded) {
			out = append(out, r)
		}
	}
	return out
}

func containsAll(names, terms []string) bool {
	for _, term := range terms {
		if !slices.ContainsFunc(names, func(n string) bool { return strings.Contains(n, term) }) {
			return false
		}
	}
	return true
}

// WithTag keeps recipes carrying a tag named exactly name.
func WithTag(recipes []*domain.Recipe, name string) []*domain.Recipe {
	out := []*domain.Recipe{}
	for _, r := range recipes {
		if r.HasTag(name) {
			out = append(out, r)
		}
	}
	return out
}

// ExcludingTags keeps recipes carrying none of the excluded tag names
// (exact match). A non-blank titleContains further restricts the result to
// titles containing it, ignoring case.
func ExcludingTags(recipes []*domain.Recipe, excluded []string, titleContains string) []*domain.Recipe {
	skip := make(map[string]struct{}, len(excluded))
	for _, name := range excluded {
		skip[name] = struct{}{}
	}
	search := strings.TrimSpace(titleContains)

	out := []*domain.Recipe{}
	for _, r := range recipes {
		if slices.ContainsFunc(r.Tags, func(t domain.Tag) bool {
			_, ok := skip[t.Name]
			return ok
		}) {
			continue
		}
		if search != "" && !ContainsFold(r.Title, search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DefaultTagExclusions are left out of tag listings unless the caller asks
// otherwise.
var DefaultTagExclusions = []string{domain.TryTagName}

// UniqueTags removes tags whose name was already seen, drops excluded names
// (ignoring case) and sorts the rest by name ignoring case, German collation.
// A kept tag's RecipeCount covers every duplicate of its name.
func UniqueTags(tags []*domain.Tag, excluding ...string) []*domain.Tag {
	skip := make(map[string]struct{}, len(excluding))
	for _, name := range excluding {
		skip[FoldCase(name)] = struct{}{}
	}

	byName := make(map[string]*domain.Tag, len(tags))
	out := make([]*domain.Tag, 0, len(tags))
	for _, t := range tags {
		if _, ok := skip[FoldCase(t.Name)]; ok {
			continue
		}
		if kept, ok := byName[t.Name]; ok {
			kept.RecipeCount += t.RecipeCount
			continue
		}
		cp := *t
		byName[t.Name] = &cp
		out = append(out, &cp)
	}

	SortTags(out)
	return out
}

// SortTags orders tags by name ignoring case, using German collation so
// umlauts sort next to their base letter.
func SortTags(tags []*domain.Tag) {
	col := collate.New(language.German, collate.IgnoreCase)
	slices.SortStableFunc(tags, func(a, b *domain.Tag) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// FilterTags keeps tags whose name contains search, ignoring case. A blank
// search keeps everything.
func FilterTags(tags []*domain.Tag, search string) []*domain.Tag {
	search = strings.TrimSpace(search)
	if search == "" {
		return tags
	}
	out := []*domain.Tag{}
	for _, t := range tags {
		if ContainsFold(t.Name, search) {
			out = append(out, t)
		}
	}
	return out
}
