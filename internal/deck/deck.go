// Package deck sequences recipes for the swipe view: a shuffled order over
// the filtered recipes with a cursor that wraps by reshuffling.
package deck

import (
	"math/rand/v2"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
)

// State is the sequencer state.
type State int

const (
	// Empty means no recipe passes the current filter.
	Empty State = iota
	// Active means there is a current card.
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "empty"
}

// Deck is a stateful traversal over a filtered recipe set.
// It is not safe for concurrent use.
type Deck struct {
	rng         *rand.Rand
	order       []*domain.Recipe
	cursor      int
	initialized bool
}

// Option configures a Deck.
type Option func(*Deck)

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(d *Deck) { d.rng = r }
}

// New creates an empty, uninitialised deck.
func New(opts ...Option) *Deck {
	d := &Deck{}
	for _, opt := range opts {
		opt(d)
	}
	if d.rng == nil {
		d.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return d
}

// Initialize shuffles filtered into a new order and moves to the first card.
func (d *Deck) Initialize(filtered []*domain.Recipe) {
	d.initialized = true
	d.order = d.shuffled(filtered)
	d.cursor = 0
}

// Refilter replaces the order with filtered as given, without shuffling and
// without rewinding. If the cursor falls past the new end it moves to the
// last card. Before the first Initialize it behaves like Initialize.
func (d *Deck) Refilter(filtered []*domain.Recipe) {
	if !d.initialized {
		d.Initialize(filtered)
		return
	}
	d.order = append([]*domain.Recipe(nil), filtered...)
	if len(d.order) == 0 {
		d.cursor = 0
		return
	}
	d.cursor = min(d.cursor, len(d.order)-1)
}

// Advance moves to the next card. Past the last card it reshuffles the
// current set and starts over. It reports whether a reshuffle happened.
func (d *Deck) Advance() bool {
	if len(d.order) == 0 {
		return false
	}
	if d.cursor+1 < len(d.order) {
		d.cursor++
		return false
	}
	d.order = d.shuffled(d.order)
	d.cursor = 0
	return true
}

// Current returns the recipe at the cursor, or nil when the deck is empty.
func (d *Deck) Current() *domain.Recipe {
	if len(d.order) == 0 {
		return nil
	}
	return d.order[d.cursor]
}

// Peek returns up to n recipes starting at the cursor, for rendering the
// stacked card preview. It does not wrap.
func (d *Deck) Peek(n int) []*domain.Recipe {
	if n <= 0 || len(d.order) == 0 {
		return []*domain.Recipe{}
	}
	end := min(d.cursor+n, len(d.order))
	return append([]*domain.Recipe(nil), d.order[d.cursor:end]...)
}

// State reports whether the deck has a current card.
func (d *Deck) State() State {
	if len(d.order) == 0 {
		return Empty
	}
	return Active
}

// Cursor returns the index of the current card.
func (d *Deck) Cursor() int {
	return d.cursor
}

// Len returns the number of cards in the current order.
func (d *Deck) Len() int {
	return len(d.order)
}

// Order returns a copy of the current order.
func (d *Deck) Order() []*domain.Recipe {
	return append([]*domain.Recipe(nil), d.order...)
}

func (d *Deck) shuffled(recipes []*domain.Recipe) []*domain.Recipe {
	out := append([]*domain.Recipe(nil), recipes...)
	d.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
