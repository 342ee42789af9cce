package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
	domainerrors "github.com/lieblingsgerichte/rezepte/internal/errors"
)

// ListTags returns all tags with the number of recipes carrying them,
// ordered by name case-insensitively. Duplicate names are returned as stored.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_at, COUNT(rt.recipe_id)
		FROM tags t
		LEFT JOIN recipe_tags rt ON rt.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.name COLLATE NOCASE ASC, t.id ASC`)
	if err != nil {
		return nil, domainerrors.Persistence(err, "list tags")
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		var (
			t         domain.Tag
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.Name, &createdAt, &t.RecipeCount); err != nil {
			return nil, domainerrors.Persistence(err, "scan tag")
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, domainerrors.Persistence(err, "parse tag time")
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Persistence(err, "list tags")
	}
	return tags, nil
}

// SweepOrphanedTags deletes every tag no recipe refers to and returns how
// many were removed. The deletion is a single transaction.
func (s *Store) SweepOrphanedTags(ctx context.Context) (int, error) {
	var removed int
	err := s.Update(ctx, func(tx *Tx) error {
		n, err := tx.deleteOrphanedTags(ctx)
		removed = n
		return err
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.Info("orphaned tags removed", "count", removed)
	}
	return removed, nil
}

// findTagByName returns the lowest id among tags with exactly this name,
// the same representative ListTags returns first.
func findTagByName(ctx context.Context, q queryer, name string) (string, bool, error) {
	var tagID string
	err := q.QueryRowContext(ctx, `
		SELECT id FROM tags
		WHERE name = ?
		ORDER BY id ASC
		LIMIT 1`, name).Scan(&tagID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return tagID, true, nil
}
