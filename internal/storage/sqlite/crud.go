package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stacksapp/stacks/internal/storage"
	"github.com/stacksapp/stacks/internal/types"
)

// Upsert statements double as plain inserts for CRUD and as full-overwrite
// writes for the sync apply phase (merged entities replace the stored row
// wholesale, never a partial patch).
const (
	upsertBookSQL = `
		INSERT INTO books (id, title, isbn, publisher, published_year, language,
			page_count, cover_url, rating, notes, location_id, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			isbn = excluded.isbn,
			publisher = excluded.publisher,
			published_year = excluded.published_year,
			language = excluded.language,
			page_count = excluded.page_count,
			cover_url = excluded.cover_url,
			rating = excluded.rating,
			notes = excluded.notes,
			location_id = excluded.location_id,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`

	upsertAuthorSQL = `
		INSERT INTO authors (id, name, sort_name, notes, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			sort_name = excluded.sort_name,
			notes = excluded.notes,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`

	upsertCollectionSQL = `
		INSERT INTO collections (id, name, description, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`

	upsertLocationSQL = `
		INSERT INTO storage_locations (id, name, description, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`

	upsertSessionSQL = `
		INSERT INTO reading_sessions (id, book_id, started_at, finished_at,
			start_page, end_page, note, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			book_id = excluded.book_id,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			start_page = excluded.start_page,
			end_page = excluded.end_page,
			note = excluded.note,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`

	upsertPresetSQL = `
		INSERT INTO filter_presets (id, name, filters, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			filters = excluded.filters,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`

	upsertVocabSQL = `
		INSERT INTO vocab_custom (id, term, reading, meaning, language, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			term = excluded.term,
			reading = excluded.reading,
			meaning = excluded.meaning,
			language = excluded.language,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`

	insertHistorySQL = `
		INSERT INTO book_storage_history (id, book_id, from_location_id, to_location_id,
			action, person, note, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

func nullStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func strNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func bookArgs(b *types.Book) []any {
	return []any{b.ID, b.Title, b.ISBN, b.Publisher, b.PublishedYear, b.Language,
		b.PageCount, b.CoverURL, b.Rating, b.Notes, b.LocationID,
		b.CreatedAt, b.UpdatedAt, nullStr(b.DeletedAt)}
}

func authorArgs(a *types.Author) []any {
	return []any{a.ID, a.Name, a.SortName, a.Notes, a.CreatedAt, a.UpdatedAt, nullStr(a.DeletedAt)}
}

func collectionArgs(c *types.Collection) []any {
	return []any{c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt, nullStr(c.DeletedAt)}
}

func locationArgs(l *types.StorageLocation) []any {
	return []any{l.ID, l.Name, l.Description, l.CreatedAt, l.UpdatedAt, nullStr(l.DeletedAt)}
}

func sessionArgs(r *types.ReadingSession) []any {
	return []any{r.ID, r.BookID, r.StartedAt, r.FinishedAt, r.StartPage, r.EndPage,
		r.Note, r.CreatedAt, r.UpdatedAt, nullStr(r.DeletedAt)}
}

func presetArgs(p *types.FilterPreset) []any {
	return []any{p.ID, p.Name, p.Filters, p.CreatedAt, p.UpdatedAt, nullStr(p.DeletedAt)}
}

func vocabArgs(v *types.VocabEntry) []any {
	return []any{v.ID, v.Term, v.Reading, v.Meaning, v.Language, v.CreatedAt, v.UpdatedAt, nullStr(v.DeletedAt)}
}

func historyArgs(h *types.StorageHistoryEntry) []any {
	return []any{h.ID, h.BookID, h.FromLocationID, h.ToLocationID, string(h.Action),
		h.Person, h.Note, h.CreatedAt, nullStr(h.DeletedAt)}
}

// CreateBook inserts a new book row
func (s *SQLiteStorage) CreateBook(ctx context.Context, b *types.Book) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid book: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, upsertBookSQL, bookArgs(b)...); err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetBook returns a book by id, tombstoned or not
func (s *SQLiteStorage) GetBook(ctx context.Context, id string) (*types.Book, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, isbn, publisher, published_year, language, page_count,
			cover_url, rating, notes, location_id, created_at, updated_at, deleted_at
		FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return b, nil
}

// ListBooks returns all books, optionally including tombstoned rows
func (s *SQLiteStorage) ListBooks(ctx context.Context, includeDeleted bool) ([]*types.Book, error) {
	books, err := queryBooks(ctx, s.db, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// SoftDeleteBook tombstones a live book
func (s *SQLiteStorage) SoftDeleteBook(ctx context.Context, id, deletedAt string) error {
	return s.softDelete(ctx, "books", id, deletedAt)
}

// CreateAuthor inserts a new author row
func (s *SQLiteStorage) CreateAuthor(ctx context.Context, a *types.Author) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid author: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, upsertAuthorSQL, authorArgs(a)...); err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}
	return nil
}

// ListAuthors returns all authors, optionally including tombstoned rows
func (s *SQLiteStorage) ListAuthors(ctx context.Context, includeDeleted bool) ([]*types.Author, error) {
	authors, err := queryAuthors(ctx, s.db, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	return authors, nil
}

// SoftDeleteAuthor tombstones a live author
func (s *SQLiteStorage) SoftDeleteAuthor(ctx context.Context, id, deletedAt string) error {
	return s.softDelete(ctx, "authors", id, deletedAt)
}

// AddBookAuthor links a book to an author; duplicates are ignored
func (s *SQLiteStorage) AddBookAuthor(ctx context.Context, bookID, authorID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO book_authors (book_id, author_id) VALUES (?, ?)`, bookID, authorID)
	if err != nil {
		return fmt.Errorf("failed to add book author: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) softDelete(ctx context.Context, table, id, deletedAt string) error {
	// Tombstoning is a mutation, so updated_at advances with it.
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		deletedAt, deletedAt, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, storage.ErrNotFound)
	}
	return nil
}
