package store

import (
	"log/slog"
	"slices"
)

// ChangeKind classifies a committed change.
type ChangeKind string

const (
	ChangeRecipesSaved   ChangeKind = "recipes.saved"
	ChangeRecipesDeleted ChangeKind = "recipes.deleted"
	ChangeTagsSwept      ChangeKind = "tags.swept"
)

// Change describes what a committed transaction did.
type Change struct {
	Kind ChangeKind
	IDs  []string
}

// EventEmitter receives a Change after each successful commit.
type EventEmitter interface {
	Emit(change Change)
}

// NoopEmitter discards all changes.
type NoopEmitter struct{}

func (NoopEmitter) Emit(Change) {}

// NewNoopEmitter creates a new no-op emitter.
func NewNoopEmitter() EventEmitter { return NoopEmitter{} }

// LogEmitter writes every change to a logger at debug level.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter creates an emitter that logs changes.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) Emit(change Change) {
	e.logger.Debug("store change",
		slog.String("kind", string(change.Kind)),
		slog.Int("count", len(change.IDs)),
		slog.Any("ids", change.IDs),
	)
}

// RecordingEmitter keeps every change in memory. Used in tests.
type RecordingEmitter struct {
	Changes []Change
}

func (e *RecordingEmitter) Emit(change Change) {
	change.IDs = slices.Clone(change.IDs)
	e.Changes = append(e.Changes, change)
}

// Kinds returns the kinds of all recorded changes in order.
func (e *RecordingEmitter) Kinds() []ChangeKind {
	kinds := make([]ChangeKind, 0, len(e.Changes))
	for _, c := range e.Changes {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}
