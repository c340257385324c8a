package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stacksapp/stacks/internal/merge"
	"github.com/stacksapp/stacks/internal/storage"
	"github.com/stacksapp/stacks/internal/types"
)

// RunImport executes one read-merge-apply cycle inside a single immediate
// transaction. fn receives the snapshot read under that transaction and
// returns the batch to apply; any error, from fn or from the apply phase,
// rolls the whole transaction back and leaves the database untouched.
func (s *SQLiteStorage) RunImport(ctx context.Context, fn func(snap *storage.Snapshot) (*storage.ImportBatch, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snap, err := readSnapshot(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to read local snapshot: %w", err)
	}

	batch, err := fn(snap)
	if err != nil {
		return err
	}

	if err := applyBatch(ctx, tx, batch); err != nil {
		return fmt.Errorf("merge failed, no changes applied: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

func applyBatch(ctx context.Context, tx *sql.Tx, batch *storage.ImportBatch) error {
	if err := applyBuckets(ctx, tx, upsertBookSQL, bookArgs, batch.Books); err != nil {
		return fmt.Errorf("books: %w", err)
	}
	if err := applyBuckets(ctx, tx, upsertAuthorSQL, authorArgs, batch.Authors); err != nil {
		return fmt.Errorf("authors: %w", err)
	}
	if err := applyBuckets(ctx, tx, upsertCollectionSQL, collectionArgs, batch.Collections); err != nil {
		return fmt.Errorf("collections: %w", err)
	}
	if err := applyBuckets(ctx, tx, upsertLocationSQL, locationArgs, batch.StorageLocations); err != nil {
		return fmt.Errorf("storage locations: %w", err)
	}
	if err := applyBuckets(ctx, tx, upsertSessionSQL, sessionArgs, batch.ReadingSessions); err != nil {
		return fmt.Errorf("reading sessions: %w", err)
	}
	if err := applyBuckets(ctx, tx, upsertPresetSQL, presetArgs, batch.FilterPresets); err != nil {
		return fmt.Errorf("filter presets: %w", err)
	}
	if err := applyBuckets(ctx, tx, upsertVocabSQL, vocabArgs, batch.VocabCustom); err != nil {
		return fmt.Errorf("vocab entries: %w", err)
	}

	for _, h := range batch.HistoryInserts {
		if _, err := tx.ExecContext(ctx, insertHistorySQL, historyArgs(h)...); err != nil {
			return fmt.Errorf("storage history: %w", err)
		}
	}

	// Join tables are replaced wholesale with the reconciled sets.
	if err := replaceBookAuthors(ctx, tx, batch.BookAuthors); err != nil {
		return fmt.Errorf("book authors: %w", err)
	}
	if err := replaceCollectionBooks(ctx, tx, batch.CollectionBooks); err != nil {
		return fmt.Errorf("collection books: %w", err)
	}

	return nil
}

// applyBuckets writes the insert, update, and delete buckets for one
// entity type. All three are full-row overwrites: a delete-bucket entity
// already carries its tombstone, so soft-deleting is just storing it.
func applyBuckets[T types.SyncRecord](ctx context.Context, tx *sql.Tx, query string, args func(T) []any, b merge.Buckets[T]) error {
	for _, bucket := range [][]T{b.Insert, b.Update, b.Delete} {
		for _, entity := range bucket {
			if _, err := tx.ExecContext(ctx, query, args(entity)...); err != nil {
				return fmt.Errorf("failed to write %s: %w", entity.SyncID(), err)
			}
		}
	}
	return nil
}

func replaceBookAuthors(ctx context.Context, tx *sql.Tx, pairs []*types.BookAuthor) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors`); err != nil {
		return err
	}
	for _, p := range pairs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO book_authors (book_id, author_id) VALUES (?, ?)`, p.BookID, p.AuthorID); err != nil {
			return err
		}
	}
	return nil
}

func replaceCollectionBooks(ctx context.Context, tx *sql.Tx, pairs []*types.CollectionBook) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM collection_books`); err != nil {
		return err
	}
	for _, p := range pairs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collection_books (collection_id, book_id) VALUES (?, ?)`, p.CollectionID, p.BookID); err != nil {
			return err
		}
	}
	return nil
}
