package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lieblingsgerichte/rezepte/internal/config"
	"github.com/lieblingsgerichte/rezepte/internal/di"
)

type testCLI struct {
	t        *testing.T
	injector *do.RootScope
}

// newTestCLI runs every command against one in-memory container so state
// carries over between invocations.
func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	injector := di.NewContainer(config.Flags{
		Environment: "test",
		LogLevel:    "error",
		InMemory:    "true",
		DataPath:    t.TempDir(),
	})
	t.Cleanup(func() { _ = di.Shutdown(injector) })
	return &testCLI{t: t, injector: injector}
}

func (c *testCLI) run(args ...string) (string, string, int) {
	c.t.Helper()
	opts := &RootOptions{injector: c.injector}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := execute(context.Background(), newRootCommand(opts), opts, args, stdout, stderr)
	return stdout.String(), stderr.String(), code
}

// runJSON runs a command with --format json and decodes the data payload
// into v.
func (c *testCLI) runJSON(v any, args ...string) CLIResponse {
	c.t.Helper()
	stdout, _, _ := c.run(append([]string{"--format", "json"}, args...)...)

	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(c.t, json.Unmarshal([]byte(stdout), &raw), stdout)
	if v != nil && len(raw.Data) > 0 {
		require.NoError(c.t, json.Unmarshal(raw.Data, v))
	}
	return raw.CLIResponse
}

func recipeTitles(views []recipeView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.Title
	}
	return out
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "rezepte", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"list", "try", "show", "add", "edit", "delete", "tags", "tag", "ingredients", "deck", "exclude", "sweep"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"in-memory", "data-path", "catalogue", "log-level", "env-file"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestInvalidFormat(t *testing.T) {
	c := newTestCLI(t)
	_, stderr, code := c.run("--format", "xml", "list")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "invalid format")
}

func TestList_BundledCatalogue(t *testing.T) {
	c := newTestCLI(t)

	var recipes []recipeView
	resp := c.runJSON(&recipes, "list")
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, recipes, 8)
	assert.NotContains(t, recipeTitles(recipes), "Shakshuka")

	stdout, _, code := c.run("list", "--search", "SALAT")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Gurkensalat")
	assert.NotContains(t, stdout, "Käsespätzle")
}

func TestTryList(t *testing.T) {
	c := newTestCLI(t)

	var recipes []recipeView
	c.runJSON(&recipes, "try")
	assert.Equal(t, []string{"Ramen mit Miso", "Shakshuka"}, recipeTitles(recipes))
}

func TestRecipeLifecycle(t *testing.T) {
	c := newTestCLI(t)

	var created recipeView
	resp := c.runJSON(&created, "add",
		"--title", "Ofenkürbis",
		"--ingredient", "Hokkaido",
		"--ingredient", "Salz, grob",
		"--tag", "Herbst,Ofen",
		"--try",
	)
	require.Equal(t, "ok", resp.Status)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"Hokkaido", "Salz, grob"}, created.Ingredients)
	assert.ElementsMatch(t, []string{"Herbst", "Ofen", "Ausprobieren"}, created.Tags)
	assert.True(t, created.ToTry)

	// Replacing tags keeps the try marker.
	var edited recipeView
	c.runJSON(&edited, "edit", created.ID, "--title", "Ofenkürbis mit Feta", "--tag", "Vegetarisch")
	assert.Equal(t, "Ofenkürbis mit Feta", edited.Title)
	assert.Equal(t, []string{"Hokkaido", "Salz, grob"}, edited.Ingredients)
	assert.ElementsMatch(t, []string{"Vegetarisch", "Ausprobieren"}, edited.Tags)

	var unmarked recipeView
	c.runJSON(&unmarked, "try", "unmark", created.ID)
	assert.False(t, unmarked.ToTry)

	var main []recipeView
	c.runJSON(&main, "list", "--search", "kürbis")
	assert.Equal(t, []string{"Ofenkürbis mit Feta"}, recipeTitles(main))

	stdout, _, code := c.run("show", created.ID)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Ofenkürbis mit Feta")
	assert.Contains(t, stdout, "  - Hokkaido")

	_, _, code = c.run("delete", created.ID)
	require.Equal(t, ExitSuccess, code)

	_, stderr, code := c.run("show", created.ID)
	assert.Equal(t, 3, code)
	assert.Contains(t, stderr, "NOT_FOUND")
}

func TestAdd_ValidationError(t *testing.T) {
	c := newTestCLI(t)

	stdout, _, code := c.run("--format", "json", "add", "--title", strings.Repeat("x", 201))
	assert.Equal(t, 2, code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "title")
}

func TestAdd_MissingImageFile(t *testing.T) {
	c := newTestCLI(t)

	_, stderr, code := c.run("add", "--title", "Brot", "--image", "/nonexistent/brot.png")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "read image")
}

func TestTagsAndTag(t *testing.T) {
	c := newTestCLI(t)

	var tags []tagView
	c.runJSON(&tags, "tags")
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	assert.NotContains(t, names, "Ausprobieren")
	assert.Contains(t, names, "Vegetarisch")

	var filtered []tagView
	c.runJSON(&filtered, "tags", "--search", "vege")
	require.Len(t, filtered, 1)
	assert.Equal(t, "Vegetarisch", filtered[0].Name)
	assert.Equal(t, 4, filtered[0].Recipes)
	assert.NotEmpty(t, filtered[0].Color)

	var recipes []recipeView
	c.runJSON(&recipes, "tag", "Backen")
	assert.Equal(t, []string{"Apfelstrudel", "Zwetschgendatschi"}, recipeTitles(recipes))
}

func TestIngredients(t *testing.T) {
	c := newTestCLI(t)

	var recipes []recipeView
	c.runJSON(&recipes, "ingredients", "zwiebeln", "SPECK")
	assert.Equal(t, []string{"Flammkuchen", "Rinderrouladen"}, recipeTitles(recipes))

	c.runJSON(&recipes, "ingredients", "apfel")
	assert.Equal(t, []string{"Apfelstrudel"}, recipeTitles(recipes))

	c.runJSON(&recipes, "ingredients", "Trüffel")
	assert.Empty(t, recipes)
}

func TestDeckAndExclude(t *testing.T) {
	c := newTestCLI(t)

	var view deckView
	c.runJSON(&view, "deck", "--seed", "7", "--peek", "2")
	assert.Equal(t, "active", view.State)
	assert.Equal(t, 10, view.Size)
	require.NotNil(t, view.Current)
	assert.Len(t, view.Next, 2)

	// Same seed, same order.
	var again deckView
	c.runJSON(&again, "deck", "--seed", "7", "--peek", "2")
	assert.Equal(t, view.Current.ID, again.Current.ID)

	var swiped deckView
	c.runJSON(&swiped, "deck", "--seed", "7", "--swipes", "10", "--peek", "0")
	assert.Equal(t, 1, swiped.Reshuffles)
	assert.Equal(t, 0, swiped.Cursor)
	assert.Empty(t, swiped.Next)

	var excluded map[string][]string
	c.runJSON(&excluded, "exclude", "--set", "Fleisch,Dessert")
	assert.Equal(t, []string{"Fleisch", "Dessert"}, excluded["excluded"])

	c.runJSON(&view, "deck")
	assert.Equal(t, 5, view.Size)
	assert.Len(t, view.Next, 3)

	c.runJSON(&excluded, "exclude", "--clear")
	assert.Empty(t, excluded["excluded"])

	_, _, code := c.run("exclude", "--set", "a", "--clear")
	assert.Equal(t, ExitFailure, code)
}

func TestDeck_Empty(t *testing.T) {
	c := newTestCLI(t)

	_, _, code := c.run("exclude", "--set", "Hauptgericht,Dessert,Salat,Suppe,Vegetarisch")
	require.Equal(t, ExitSuccess, code)

	stdout, _, code := c.run("deck")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No recipes match")
}

func TestSweep(t *testing.T) {
	c := newTestCLI(t)

	var created recipeView
	c.runJSON(&created, "add", "--title", "Einmalig", "--tag", "Einzelstück")
	_, _, code := c.run("delete", created.ID)
	require.Equal(t, ExitSuccess, code)

	var result map[string]int
	c.runJSON(&result, "sweep")
	assert.Equal(t, 1, result["removed"])
}

func TestExecute_FreshInMemoryRun(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := Execute(context.Background(), []string{"--in-memory", "--log-level", "error", "try"}, stdout, stderr)

	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), "Shakshuka")
}
