package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lieblingsgerichte/rezepte/internal/domain"
	domainerrors "github.com/lieblingsgerichte/rezepte/internal/errors"
	"github.com/lieblingsgerichte/rezepte/internal/id"
	"github.com/lieblingsgerichte/rezepte/internal/store"
)

// Tx is a unit of work against the entity store. Nothing it does is visible
// to other readers until Save commits it.
//
// Foreign keys are checked when Save runs, so statements inside a Tx may
// reference rows that do not exist yet; Save refuses to commit if any such
// reference is still dangling.
type Tx struct {
	store *Store
	tx    *sql.Tx
	done  bool

	saved   []string
	deleted []string
	swept   []string
}

// Begin starts a transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domainerrors.Persistence(err, "begin transaction")
	}
	if _, err := sqlTx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
		sqlTx.Rollback() //nolint:errcheck // Already failing
		return nil, domainerrors.Persistence(err, "defer foreign keys")
	}
	return &Tx{store: s, tx: sqlTx}, nil
}

// Update runs fn inside a transaction and saves it. Any error from fn rolls
// the transaction back and is returned unchanged.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // No-op after Save

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Save(ctx)
}

// CreateRecipe inserts a recipe and returns its id. Title may be empty.
func (t *Tx) CreateRecipe(ctx context.Context, title, description string, image *domain.Image) (string, error) {
	if err := t.check(); err != nil {
		return "", err
	}

	recipeID, err := id.Recipe()
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "generate recipe id")
	}

	var (
		data     []byte
		blurHash string
	)
	if image != nil {
		data, blurHash = image.PNG, image.BlurHash
	}

	now := formatTime(time.Now())
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO recipes (id, title, description, image, image_blur_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		recipeID,
		title,
		description,
		data,
		nullString(blurHash),
		now,
		now,
	)
	if err != nil {
		return "", domainerrors.Persistence(err, "insert recipe")
	}

	t.markSaved(recipeID)
	return recipeID, nil
}

// UpdateRecipe changes title and description. A nil image keeps the current
// photo. Returns a NotFound error if the recipe does not exist.
func (t *Tx) UpdateRecipe(ctx context.Context, recipeID, title, description string, image *domain.Image) error {
	if err := t.check(); err != nil {
		return err
	}

	var (
		res sql.Result
		err error
	)
	now := formatTime(time.Now())
	if image == nil {
		res, err = t.tx.ExecContext(ctx, `
			UPDATE recipes SET title = ?, description = ?, updated_at = ?
			WHERE id = ?`,
			title, description, now, recipeID)
	} else {
		res, err = t.tx.ExecContext(ctx, `
			UPDATE recipes SET title = ?, description = ?, image = ?, image_blur_hash = ?, updated_at = ?
			WHERE id = ?`,
			title, description, image.PNG, nullString(image.BlurHash), now, recipeID)
	}
	if err != nil {
		return domainerrors.Persistence(err, "update recipe")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domainerrors.NotFoundf("recipe %s not found", recipeID)
	}

	t.markSaved(recipeID)
	return nil
}

// AddIngredient appends an ingredient to a recipe. The name must not be
// blank; callers trim before calling.
func (t *Tx) AddIngredient(ctx context.Context, recipeID, name string) (string, error) {
	if err := t.check(); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", domainerrors.Validation("ingredient name must not be empty")
	}

	var next int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM ingredients WHERE recipe_id = ?`,
		recipeID).Scan(&next)
	if err != nil {
		return "", domainerrors.Persistence(err, "next ingredient position")
	}

	return t.insertIngredient(ctx, recipeID, name, next)
}

func (t *Tx) insertIngredient(ctx context.Context, recipeID, name string, position int) (string, error) {
	ingredientID, err := id.Ingredient()
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "generate ingredient id")
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO ingredients (id, recipe_id, name, sort_order)
		VALUES (?, ?, ?, ?)`,
		ingredientID, recipeID, name, position)
	if err != nil {
		return "", domainerrors.Persistence(err, "insert ingredient")
	}

	t.markSaved(recipeID)
	return ingredientID, nil
}

// ReplaceIngredients deletes all ingredients of the recipe and inserts new
// ones from names in the given order.
func (t *Tx) ReplaceIngredients(ctx context.Context, recipeID string, names []string) error {
	if err := t.check(); err != nil {
		return err
	}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return domainerrors.Validation("ingredient name must not be empty")
		}
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM ingredients WHERE recipe_id = ?`, recipeID); err != nil {
		return domainerrors.Persistence(err, "delete ingredients")
	}
	for i, name := range names {
		if _, err := t.insertIngredient(ctx, recipeID, name, i); err != nil {
			return err
		}
	}

	t.markSaved(recipeID)
	return nil
}

// FindOrCreateTag returns the id of the tag with exactly this name, creating
// it when none exists. Lookup is case-sensitive.
func (t *Tx) FindOrCreateTag(ctx context.Context, name string) (string, error) {
	if err := t.check(); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", domainerrors.Validation("tag name must not be empty")
	}

	existing, ok, err := findTagByName(ctx, t.tx, name)
	if err != nil {
		return "", domainerrors.Persistence(err, "find tag")
	}
	if ok {
		return existing, nil
	}

	tagID, err := id.Tag()
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "generate tag id")
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)`,
		tagID, name, formatTime(time.Now()))
	if err != nil {
		return "", domainerrors.Persistence(err, "insert tag")
	}
	return tagID, nil
}

// AttachTag links a tag to a recipe. Attaching twice is a no-op.
func (t *Tx) AttachTag(ctx context.Context, recipeID, tagID string) error {
	if err := t.check(); err != nil {
		return err
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO recipe_tags (recipe_id, tag_id, created_at)
		VALUES (?, ?, ?)`,
		recipeID, tagID, formatTime(time.Now()))
	if err != nil {
		return domainerrors.Persistence(err, "attach tag")
	}

	t.markSaved(recipeID)
	return nil
}

// DetachTag unlinks a tag from a recipe. Missing links are ignored. The tag
// itself is kept even when it becomes orphaned.
func (t *Tx) DetachTag(ctx context.Context, recipeID, tagID string) error {
	if err := t.check(); err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM recipe_tags WHERE recipe_id = ? AND tag_id = ?`, recipeID, tagID)
	if err != nil {
		return domainerrors.Persistence(err, "detach tag")
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		t.markSaved(recipeID)
	}
	return nil
}

// ReplaceTags detaches every tag of the recipe, then finds or creates a tag
// for each name and attaches it. Names are trimmed and de-duplicated; blank
// names are skipped.
func (t *Tx) ReplaceTags(ctx context.Context, recipeID string, names []string) error {
	if err := t.check(); err != nil {
		return err
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = ?`, recipeID); err != nil {
		return domainerrors.Persistence(err, "detach tags")
	}
	for _, name := range domain.UniqueNames(names) {
		tagID, err := t.FindOrCreateTag(ctx, name)
		if err != nil {
			return err
		}
		if err := t.AttachTag(ctx, recipeID, tagID); err != nil {
			return err
		}
	}

	t.markSaved(recipeID)
	return nil
}

// DeleteRecipe removes a recipe together with its ingredients and tag links.
// Tags are never deleted here. A missing recipe is a no-op.
func (t *Tx) DeleteRecipe(ctx context.Context, recipeID string) error {
	if err := t.check(); err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, recipeID)
	if err != nil {
		return domainerrors.Persistence(err, "delete recipe")
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		t.saved = slices.DeleteFunc(t.saved, func(s string) bool { return s == recipeID })
		t.deleted = append(t.deleted, recipeID)
	}
	return nil
}

// GetRecipe reads a recipe including uncommitted changes of this Tx.
func (t *Tx) GetRecipe(ctx context.Context, recipeID string) (*domain.Recipe, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	return getRecipe(ctx, t.tx, recipeID)
}

// CountRecipes counts recipes including uncommitted changes of this Tx.
func (t *Tx) CountRecipes(ctx context.Context) (int, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	return countRecipes(ctx, t.tx)
}

func (t *Tx) deleteOrphanedTags(ctx context.Context) (int, error) {
	if err := t.check(); err != nil {
		return 0, err
	}

	rows, err := t.tx.QueryContext(ctx, `
		DELETE FROM tags
		WHERE NOT EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.tag_id = tags.id)
		RETURNING id`)
	if err != nil {
		return 0, domainerrors.Persistence(err, "delete orphaned tags")
	}
	defer rows.Close()

	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return 0, domainerrors.Persistence(err, "scan orphaned tag")
		}
		t.swept = append(t.swept, tagID)
	}
	if err := rows.Err(); err != nil {
		return 0, domainerrors.Persistence(err, "delete orphaned tags")
	}
	return len(t.swept), nil
}

// Save verifies referential integrity and commits. On any failure the
// transaction is rolled back and a Persistence error is returned; the store
// is left exactly as it was before Begin.
func (t *Tx) Save(ctx context.Context) error {
	if err := t.check(); err != nil {
		return err
	}
	t.done = true

	if err := checkForeignKeys(ctx, t.tx); err != nil {
		t.tx.Rollback() //nolint:errcheck // Reporting the check failure
		return domainerrors.Persistence(err, "save")
	}
	if err := t.tx.Commit(); err != nil {
		return domainerrors.Persistence(err, "commit transaction")
	}

	t.emit()
	return nil
}

// Rollback discards the transaction. Safe to call after Save.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return domainerrors.Persistence(err, "rollback transaction")
	}
	return nil
}

func (t *Tx) check() error {
	if t.done {
		return domainerrors.Internal("transaction already finished")
	}
	return nil
}

func (t *Tx) markSaved(recipeID string) {
	if !slices.Contains(t.saved, recipeID) {
		t.saved = append(t.saved, recipeID)
	}
}

func (t *Tx) emit() {
	emitter := t.store.emitter
	if len(t.saved) > 0 {
		emitter.Emit(store.Change{Kind: store.ChangeRecipesSaved, IDs: t.saved})
	}
	if len(t.deleted) > 0 {
		emitter.Emit(store.Change{Kind: store.ChangeRecipesDeleted, IDs: t.deleted})
	}
	if len(t.swept) > 0 {
		emitter.Emit(store.Change{Kind: store.ChangeTagsSwept, IDs: t.swept})
	}
}

// checkForeignKeys fails if any row references a missing parent.
func checkForeignKeys(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	defer rows.Close()

	var violations []string
	for rows.Next() {
		var (
			table  string
			rowID  sql.NullInt64
			parent string
			fkID   int
		)
		if err := rows.Scan(&table, &rowID, &parent, &fkID); err != nil {
			return fmt.Errorf("scan foreign key check: %w", err)
		}
		violations = append(violations, fmt.Sprintf("%s row %d references missing %s", table, rowID.Int64, parent))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	if len(violations) > 0 {
		return fmt.Errorf("foreign key constraint failed: %s", strings.Join(violations, "; "))
	}
	return nil
}
