package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
	"github.com/lieblingsgerichte/rezepte/internal/errors"
)

// Exit codes for CLI commands. Domain failures map through errors.Code.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// ExitCode returns the process exit status for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return errors.CodeOf(err).ExitCode()
}

// CLIResponse is the JSON envelope for every command.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type output struct {
	format string
	w      io.Writer
}

// emit writes data as a JSON response, or calls text for human output.
func (o *output) emit(data any, text func(w io.Writer) error) error {
	if o.format == "json" {
		return json.NewEncoder(o.w).Encode(CLIResponse{Status: "ok", Data: data})
	}
	return text(o.w)
}

func writeError(w io.Writer, format string, err error) {
	code := errors.CodeOf(err)
	var details any
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		details = domainErr.Details
	}

	if format == "json" {
		_ = json.NewEncoder(w).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: string(code), Message: err.Error(), Details: details},
		})
		return
	}

	fmt.Fprintf(w, "Error [%s]: %s\n", code, err.Error())
	if fields, ok := details.(map[string]string); ok {
		for field, msg := range fields {
			fmt.Fprintf(w, "  %s: %s\n", field, msg)
		}
	}
}

// recipeView is the JSON shape of a recipe.
type recipeView struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Ingredients   []string `json:"ingredients"`
	Tags          []string `json:"tags"`
	ToTry         bool     `json:"toTry"`
	HasImage      bool     `json:"hasImage"`
	ImageBlurHash string   `json:"imageBlurHash,omitempty"`
}

func newRecipeView(r *domain.Recipe) recipeView {
	return recipeView{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Ingredients:   r.IngredientNames(),
		Tags:          r.TagNames(),
		ToTry:         r.IsToTry(),
		HasImage:      r.HasImage(),
		ImageBlurHash: r.ImageBlurHash,
	}
}

func newRecipeViews(recipes []*domain.Recipe) []recipeView {
	out := make([]recipeView, len(recipes))
	for i, r := range recipes {
		out[i] = newRecipeView(r)
	}
	return out
}

type tagView struct {
	Name    string `json:"name"`
	Recipes int    `json:"recipes"`
	Color   string `json:"color"`
}

func displayTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func writeRecipeTable(w io.Writer, recipes []*domain.Recipe) error {
	if len(recipes) == 0 {
		_, err := fmt.Fprintln(w, "No recipes.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range recipes {
		tags := make([]string, 0, len(r.Tags))
		for _, t := range r.Tags {
			tags = append(tags, "#"+t.Name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, displayTitle(r.Title), strings.Join(tags, " "))
	}
	return tw.Flush()
}

func writeRecipe(w io.Writer, r *domain.Recipe) error {
	fmt.Fprintf(w, "%s\n", displayTitle(r.Title))
	fmt.Fprintf(w, "ID: %s\n", r.ID)
	if r.IsToTry() {
		fmt.Fprintln(w, "On the try list")
	}
	if r.HasImage() {
		fmt.Fprintf(w, "Photo: yes (%s)\n", r.ImageBlurHash)
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(r.TagNames(), ", "))
	}
	if len(r.Ingredients) > 0 {
		fmt.Fprintln(w, "\nIngredients:")
		for _, name := range r.IngredientNames() {
			fmt.Fprintf(w, "  - %s\n", name)
		}
	}
	if r.Description != "" {
		fmt.Fprintf(w, "\n%s\n", r.Description)
	}
	return nil
}
