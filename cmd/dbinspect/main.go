// Package main prints a summary of a rezepte data directory: recipe, tag
// and ingredient counts, orphaned tags and the deck preferences.
//
// Usage:
//
//	DATA_PATH=~/Lieblingsgerichte go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lieblingsgerichte/rezepte/internal/prefs"
	"github.com/lieblingsgerichte/rezepte/internal/store/sqlite"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Lieblingsgerichte")
	}
	dbPath := filepath.Join(dataPath, "rezepte.db")

	if _, err := os.Stat(dbPath); err != nil {
		log.Fatalf("No database at %s: %v", dbPath, err)
	}

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	recipes, err := s.ListRecipes(ctx)
	if err != nil {
		log.Fatalf("Failed to list recipes: %v", err)
	}

	ingredients := 0
	withImage := 0
	toTry := 0
	untitled := 0
	for _, r := range recipes {
		ingredients += len(r.Ingredients)
		if r.HasImage() {
			withImage++
		}
		if r.IsToTry() {
			toTry++
		}
		if r.Title == "" {
			untitled++
		}
	}

	fmt.Printf("Recipes:           %d\n", len(recipes))
	fmt.Printf("  to try:          %d\n", toTry)
	fmt.Printf("  with photo:      %d\n", withImage)
	fmt.Printf("  untitled:        %d\n", untitled)
	fmt.Printf("Ingredients:       %d\n", ingredients)

	tags, err := s.ListTags(ctx)
	if err != nil {
		log.Fatalf("Failed to list tags: %v", err)
	}

	orphaned := 0
	names := make(map[string]int)
	for _, t := range tags {
		if t.RecipeCount == 0 {
			orphaned++
		}
		names[t.Name]++
	}
	duplicates := 0
	for _, n := range names {
		if n > 1 {
			duplicates += n - 1
		}
	}

	fmt.Printf("Tags:              %d\n", len(tags))
	fmt.Printf("  orphaned:        %d\n", orphaned)
	fmt.Printf("  duplicate names: %d\n", duplicates)

	p, err := prefs.Open(filepath.Join(dataPath, "prefs"), nil)
	if err != nil {
		fmt.Printf("\nPreferences unavailable: %v\n", err)
		return
	}
	defer p.Close()

	excluded, err := p.ExcludedTags(ctx)
	if err != nil {
		log.Fatalf("Failed to read preferences: %v", err)
	}
	fmt.Printf("\nDeck excludes:     %v\n", excluded)
}
