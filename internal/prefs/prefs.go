// Package prefs stores small user preferences in a Badger key-value store.
//
// Values are plain strings. The excluded-tags preference is a comma-joined
// list of tag names, the format the deck filter has always used.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
	domainerrors "github.com/lieblingsgerichte/rezepte/internal/errors"
)

const keyPrefix = "pref:"

// KeyExcludedTags holds the tags the deck skips.
const KeyExcludedTags = "excludedTags"

// Store is a preference store backed by Badger.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) a durable preference store in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil      // Disable Badger's internal logging
	opts.SyncWrites = true // Preferences are tiny; always sync
	opts.CompactL0OnClose = true
	return open(opts, logger)
}

// OpenInMemory opens a preference store that lives only as long as the process.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("preference store opened", "dir", opts.Dir, "in_memory", opts.InMemory)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored value and whether the key exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, domainerrors.Persistence(err, "read preference "+key)
	}
	return value, true, nil
}

// Set stores a value. An empty value removes the key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if value == "" {
			return txn.Delete([]byte(keyPrefix + key))
		}
		return txn.Set([]byte(keyPrefix+key), []byte(value))
	})
	if err != nil {
		return domainerrors.Persistence(err, "write preference "+key)
	}
	return nil
}

// ExcludedTags returns the excluded tag names in stored order without
// duplicates. A missing preference yields an empty list.
func (s *Store) ExcludedTags(ctx context.Context) ([]string, error) {
	raw, _, err := s.Get(ctx, KeyExcludedTags)
	if err != nil {
		return nil, err
	}
	return ParseTagList(raw), nil
}

// SetExcludedTags replaces the excluded tag names. Names may not contain a
// comma since the list is stored comma-joined.
func (s *Store) SetExcludedTags(ctx context.Context, names []string) error {
	for _, n := range names {
		if strings.Contains(n, ",") {
			return domainerrors.Validationf("tag name %q must not contain a comma", n)
		}
	}
	joined := JoinTagList(names)
	if err := s.Set(ctx, KeyExcludedTags, joined); err != nil {
		return err
	}
	s.logger.Debug("excluded tags updated", "tags", joined)
	return nil
}

// ParseTagList splits a comma-joined list, trimming names and dropping
// blanks and duplicates.
func ParseTagList(raw string) []string {
	return domain.UniqueNames(strings.Split(raw, ","))
}

// JoinTagList is the inverse of ParseTagList.
func JoinTagList(names []string) string {
	return strings.Join(domain.UniqueNames(names), ",")
}
