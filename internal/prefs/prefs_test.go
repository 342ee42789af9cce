package prefs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lieblingsgerichte/rezepte/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestExcludedTags_DefaultsToEmpty(t *testing.T) {
	s := newTestStore(t)

	tags, err := s.ExcludedTags(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestExcludedTags_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetExcludedTags(ctx, []string{"Fleisch", " Scharf ", "Fleisch", ""}))

	tags, err := s.ExcludedTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fleisch", "Scharf"}, tags)

	raw, ok, err := s.Get(ctx, KeyExcludedTags)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Fleisch,Scharf", raw)
}

func TestSetExcludedTags_ClearRemovesKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetExcludedTags(ctx, []string{"Fleisch"}))
	require.NoError(t, s.SetExcludedTags(ctx, nil))

	_, ok, err := s.Get(ctx, KeyExcludedTags)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetExcludedTags_RejectsComma(t *testing.T) {
	s := newTestStore(t)

	err := s.SetExcludedTags(context.Background(), []string{"Süß,sauer"})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestOpen_Durable(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetExcludedTags(ctx, []string{"Ausprobieren", "Fisch"}))
	require.NoError(t, s.Close())

	s, err = Open(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	tags, err := s.ExcludedTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ausprobieren", "Fisch"}, tags)
}

func TestParseTagList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{"Vegan", []string{"Vegan"}},
		{"Vegan, Schnell ,,Vegan", []string{"Vegan", "Schnell"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTagList(tt.raw))
		})
	}
}

func TestGet_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Get(ctx, KeyExcludedTags)
	assert.ErrorIs(t, err, context.Canceled)
}
