package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lieblingsgerichte/rezepte/internal/deck"
)

type deckView struct {
	State      string       `json:"state"`
	Size       int          `json:"size"`
	Cursor     int          `json:"cursor"`
	Reshuffles int          `json:"reshuffles"`
	Excluded   []string     `json:"excluded"`
	Current    *recipeView  `json:"current,omitempty"`
	Next       []recipeView `json:"next"`
}

func newDeckCommand(opts *RootOptions) *cobra.Command {
	var (
		peek   int
		swipes int
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Shuffle the recipes not excluded and show the current card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if peek < 0 || swipes < 0 {
				return fmt.Errorf("--peek and --swipes must not be negative")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				var deckOpts []deck.Option
				if seed != 0 {
					deckOpts = append(deckOpts, deck.WithRand(rand.New(rand.NewPCG(seed, seed))))
				}
				d, err := a.recipes.NewDeck(ctx, deckOpts...)
				if err != nil {
					return err
				}

				reshuffles := 0
				for range swipes {
					if d.Advance() {
						reshuffles++
					}
				}

				if !cmd.Flags().Changed("peek") {
					peek = a.config.Deck.PeekSize
				}
				excluded, err := a.recipes.ExcludedTags(ctx)
				if err != nil {
					return err
				}

				view := deckView{
					State:      d.State().String(),
					Size:       d.Len(),
					Cursor:     d.Cursor(),
					Reshuffles: reshuffles,
					Excluded:   excluded,
					Next:       []recipeView{},
				}
				if cur := d.Current(); cur != nil {
					v := newRecipeView(cur)
					view.Current = &v
				}
				upcoming := d.Peek(peek + 1)
				if len(upcoming) > 0 {
					view.Next = newRecipeViews(upcoming[1:])
				}

				return a.out.emit(view, func(w io.Writer) error {
					return writeDeck(w, view)
				})
			})
		},
	}

	cmd.Flags().IntVar(&peek, "peek", 3, "number of upcoming cards to show (default from DECK_PEEK_SIZE)")
	cmd.Flags().IntVar(&swipes, "swipes", 0, "swipe this many cards before showing")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "shuffle seed for a reproducible order")
	return cmd
}

func writeDeck(w io.Writer, v deckView) error {
	if v.Current == nil {
		_, err := fmt.Fprintln(w, "No recipes match. Adjust the excluded tags.")
		return err
	}
	fmt.Fprintf(w, "Card %d of %d", v.Cursor+1, v.Size)
	if v.Reshuffles > 0 {
		fmt.Fprintf(w, " (reshuffled %d×)", v.Reshuffles)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "> %s  [%s]\n", displayTitle(v.Current.Title), v.Current.ID)
	for _, r := range v.Next {
		fmt.Fprintf(w, "  %s  [%s]\n", displayTitle(r.Title), r.ID)
	}
	if len(v.Excluded) > 0 {
		fmt.Fprintf(w, "Excluding: %s\n", strings.Join(v.Excluded, ", "))
	}
	return nil
}

func newExcludeCommand(opts *RootOptions) *cobra.Command {
	var (
		set      []string
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "exclude",
		Short: "Show or change the tags the deck skips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearAll && cmd.Flags().Changed("set") {
				return fmt.Errorf("--set and --clear are mutually exclusive")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				switch {
				case clearAll:
					if err := a.recipes.SetExcludedTags(ctx, nil); err != nil {
						return err
					}
				case cmd.Flags().Changed("set"):
					if err := a.recipes.SetExcludedTags(ctx, set); err != nil {
						return err
					}
				}

				excluded, err := a.recipes.ExcludedTags(ctx)
				if err != nil {
					return err
				}
				return a.out.emit(map[string][]string{"excluded": excluded}, func(w io.Writer) error {
					if len(excluded) == 0 {
						_, err := fmt.Fprintln(w, "No excluded tags.")
						return err
					}
					_, err := fmt.Fprintf(w, "Excluded tags: %s\n", strings.Join(excluded, ", "))
					return err
				})
			})
		},
	}

	cmd.Flags().StringSliceVar(&set, "set", nil, "replace the excluded tags (comma-separated)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "remove all excluded tags")
	return cmd
}
