package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
)

func recipe(id, title string, ingredients []string, tags ...string) *domain.Recipe {
	r := &domain.Recipe{ID: id, Title: title}
	for i, name := range ingredients {
		r.Ingredients = append(r.Ingredients, domain.Ingredient{ID: id + "-ing", RecipeID: id, Name: name, Position: i})
	}
	for _, name := range tags {
		r.Tags = append(r.Tags, domain.Tag{ID: "tag-" + name, Name: name})
	}
	return r
}

func ids(recipes []*domain.Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.ID)
	}
	return out
}

func TestMatchAllIngredients(t *testing.T) {
	cake := recipe("r1", "Cake", []string{"Egg Yolk", "Flour", "Sugar"})
	bread := recipe("r2", "Bread", []string{"Flour"})

	got := MatchAllIngredients([]*domain.Recipe{cake, bread}, []string{"egg", "flour"})
	assert.Equal(t, []string{"r1"}, ids(got))
}

func TestMatchAllIngredients_Folding(t *testing.T) {
	strudel := recipe("r1", "Apfelstrudel", []string{"Äpfel", "Zucker"})
	crepes := recipe("r2", "Crêpes", []string{"Crème fraîche", "Weizenmehl"})
	bratwurst := recipe("r3", "Bratwurst", []string{"Weißwurst"})

	all := []*domain.Recipe{strudel, crepes, bratwurst}

	tests := []struct {
		name  string
		terms []string
		want  []string
	}{
		{"umlaut from plain letters", []string{"apfel"}, []string{"r1"}},
		{"accent from plain letters", []string{"creme", "MEHL"}, []string{"r2"}},
		{"sharp s folds to ss", []string{"weisswurst"}, []string{"r3"}},
		{"plain letters match accented term", []string{"ÄPFEL"}, []string{"r1"}},
		{"every term must match", []string{"zucker", "mehl"}, []string{}},
		{"terms are trimmed", []string{"  zucker "}, []string{"r1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(MatchAllIngredients(all, tt.terms)))
		})
	}
}

func TestMatchAllIngredients_NoTermsMatchesNothing(t *testing.T) {
	all := []*domain.Recipe{recipe("r1", "Suppe", []string{"Wasser"})}

	assert.Empty(t, MatchAllIngredients(all, nil))
	assert.Empty(t, MatchAllIngredients(all, []string{"", "   "}))
}

func TestWithTag_CaseSensitive(t *testing.T) {
	a := recipe("r1", "A", nil, "Dessert")
	b := recipe("r2", "B", nil, "dessert")

	assert.Equal(t, []string{"r1"}, ids(WithTag([]*domain.Recipe{a, b}, "Dessert")))
	assert.Empty(t, WithTag([]*domain.Recipe{a, b}, "DESSERT"))
}

func TestExcludingTags(t *testing.T) {
	bowl := recipe("r1", "Buddha Bowl", nil, "Vegan", "Quick")

	assert.Empty(t, ExcludingTags([]*domain.Recipe{bowl}, []string{"Quick"}, ""))
	assert.Equal(t, []string{"r1"}, ids(ExcludingTags([]*domain.Recipe{bowl}, []string{"Spicy"}, "")))
	assert.Equal(t, []string{"r1"}, ids(ExcludingTags([]*domain.Recipe{bowl}, nil, "")))
}

func TestExcludingTags_TitleSearch(t *testing.T) {
	all := []*domain.Recipe{
		recipe("r1", "Käsespätzle", nil),
		recipe("r2", "Spätzle mit Linsen", nil, "Schwäbisch"),
		recipe("r3", "Gulasch", nil),
	}

	assert.Equal(t, []string{"r1", "r2"}, ids(ExcludingTags(all, nil, "SPÄTZLE")))
	assert.Equal(t, []string{"r1"}, ids(ExcludingTags(all, []string{"Schwäbisch"}, "spätzle")))
	// Title search ignores case but not diacritics.
	assert.Empty(t, ExcludingTags(all, nil, "spatzle"))
	// Blank search is no search.
	assert.Len(t, ExcludingTags(all, nil, "  "), 3)
}

func TestTryTagDefaultExclusion(t *testing.T) {
	tryMe := recipe("r1", "Ramen", nil, domain.TryTagName)
	known := recipe("r2", "Gulasch", nil, "Deftig")
	all := []*domain.Recipe{tryMe, known}

	mainList := ExcludingTags(all, []string{domain.TryTagName}, "")
	assert.Equal(t, []string{"r2"}, ids(mainList))
	assert.Equal(t, []string{"r1"}, ids(WithTag(all, domain.TryTagName)))

	// The plain exclusion query does not filter the try tag by itself.
	assert.Len(t, ExcludingTags(all, nil, ""), 2)
}

func TestUniqueTags(t *testing.T) {
	tags := []*domain.Tag{
		{ID: "t1", Name: "Suppe", RecipeCount: 2},
		{ID: "t2", Name: "ausprobieren", RecipeCount: 1},
		{ID: "t3", Name: "Äpfel", RecipeCount: 1},
		{ID: "t4", Name: "apfel", RecipeCount: 1},
		{ID: "t5", Name: "Suppe", RecipeCount: 1},
		{ID: "t6", Name: "backen", RecipeCount: 3},
		{ID: "t7", Name: "Zucker", RecipeCount: 1},
	}

	got := UniqueTags(tags, DefaultTagExclusions...)

	var names []string
	for _, tag := range got {
		names = append(names, tag.Name)
	}
	assert.Equal(t, []string{"apfel", "Äpfel", "backen", "Suppe", "Zucker"}, names)

	// One representative per name, counting every duplicate.
	suppe := got[3]
	assert.Equal(t, "t1", suppe.ID)
	assert.Equal(t, 3, suppe.RecipeCount)

	// Input tags are not modified.
	assert.Equal(t, 2, tags[0].RecipeCount)
}

func TestUniqueTags_NoExclusions(t *testing.T) {
	tags := []*domain.Tag{{ID: "t1", Name: domain.TryTagName}, {ID: "t2", Name: "Brot"}}

	got := UniqueTags(tags)
	assert.Len(t, got, 2)
}

func TestFilterTags(t *testing.T) {
	tags := []*domain.Tag{{Name: "Hauptgericht"}, {Name: "Vorspeise"}, {Name: "Nachtisch"}}

	got := FilterTags(tags, "GERICHT")
	assert.Len(t, got, 1)
	assert.Equal(t, "Hauptgericht", got[0].Name)

	assert.Len(t, FilterTags(tags, ""), 3)
	assert.Empty(t, FilterTags(tags, "Salat"))
}
