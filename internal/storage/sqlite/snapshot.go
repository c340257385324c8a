package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stacksapp/stacks/internal/storage"
	"github.com/stacksapp/stacks/internal/types"
)

// querier is satisfied by both *sql.DB and *sql.Tx so snapshot reads can
// run standalone (export) or inside the import transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// ReadSnapshot reads every syncable table, tombstones included.
func (s *SQLiteStorage) ReadSnapshot(ctx context.Context) (*storage.Snapshot, error) {
	return readSnapshot(ctx, s.db)
}

func readSnapshot(ctx context.Context, q querier) (*storage.Snapshot, error) {
	snap := &storage.Snapshot{}
	var err error

	if snap.Books, err = queryBooks(ctx, q, true); err != nil {
		return nil, fmt.Errorf("failed to read books: %w", err)
	}
	if snap.Authors, err = queryAuthors(ctx, q, true); err != nil {
		return nil, fmt.Errorf("failed to read authors: %w", err)
	}
	if snap.Collections, err = queryCollections(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to read collections: %w", err)
	}
	if snap.StorageLocations, err = queryLocations(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to read storage locations: %w", err)
	}
	if snap.ReadingSessions, err = querySessions(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to read reading sessions: %w", err)
	}
	if snap.FilterPresets, err = queryPresets(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to read filter presets: %w", err)
	}
	if snap.VocabCustom, err = queryVocab(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to read vocab entries: %w", err)
	}
	if snap.BookAuthors, err = queryBookAuthors(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to read book authors: %w", err)
	}
	if snap.CollectionBooks, err = queryCollectionBooks(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to read collection books: %w", err)
	}
	if snap.History, err = queryHistory(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to read storage history: %w", err)
	}

	return snap, nil
}

func scanBook(row scanner) (*types.Book, error) {
	var b types.Book
	var deletedAt sql.NullString
	err := row.Scan(&b.ID, &b.Title, &b.ISBN, &b.Publisher, &b.PublishedYear,
		&b.Language, &b.PageCount, &b.CoverURL, &b.Rating, &b.Notes, &b.LocationID,
		&b.CreatedAt, &b.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	b.DeletedAt = strNull(deletedAt)
	return &b, nil
}

func queryBooks(ctx context.Context, q querier, includeDeleted bool) ([]*types.Book, error) {
	query := `
		SELECT id, title, isbn, publisher, published_year, language, page_count,
			cover_url, rating, notes, location_id, created_at, updated_at, deleted_at
		FROM books`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*types.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func queryAuthors(ctx context.Context, q querier, includeDeleted bool) ([]*types.Author, error) {
	query := `SELECT id, name, sort_name, notes, created_at, updated_at, deleted_at FROM authors`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []*types.Author
	for rows.Next() {
		var a types.Author
		var deletedAt sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.SortName, &a.Notes,
			&a.CreatedAt, &a.UpdatedAt, &deletedAt); err != nil {
			return nil, err
		}
		a.DeletedAt = strNull(deletedAt)
		authors = append(authors, &a)
	}
	return authors, rows.Err()
}

func queryCollections(ctx context.Context, q querier) ([]*types.Collection, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at, deleted_at FROM collections`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []*types.Collection
	for rows.Next() {
		var c types.Collection
		var deletedAt sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Description,
			&c.CreatedAt, &c.UpdatedAt, &deletedAt); err != nil {
			return nil, err
		}
		c.DeletedAt = strNull(deletedAt)
		collections = append(collections, &c)
	}
	return collections, rows.Err()
}

func queryLocations(ctx context.Context, q querier) ([]*types.StorageLocation, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at, deleted_at FROM storage_locations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*types.StorageLocation
	for rows.Next() {
		var l types.StorageLocation
		var deletedAt sql.NullString
		if err := rows.Scan(&l.ID, &l.Name, &l.Description,
			&l.CreatedAt, &l.UpdatedAt, &deletedAt); err != nil {
			return nil, err
		}
		l.DeletedAt = strNull(deletedAt)
		locations = append(locations, &l)
	}
	return locations, rows.Err()
}

func querySessions(ctx context.Context, q querier) ([]*types.ReadingSession, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, book_id, started_at, finished_at, start_page, end_page, note,
			created_at, updated_at, deleted_at
		FROM reading_sessions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*types.ReadingSession
	for rows.Next() {
		var r types.ReadingSession
		var deletedAt sql.NullString
		if err := rows.Scan(&r.ID, &r.BookID, &r.StartedAt, &r.FinishedAt,
			&r.StartPage, &r.EndPage, &r.Note, &r.CreatedAt, &r.UpdatedAt, &deletedAt); err != nil {
			return nil, err
		}
		r.DeletedAt = strNull(deletedAt)
		sessions = append(sessions, &r)
	}
	return sessions, rows.Err()
}

func queryPresets(ctx context.Context, q querier) ([]*types.FilterPreset, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, filters, created_at, updated_at, deleted_at FROM filter_presets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*types.FilterPreset
	for rows.Next() {
		var p types.FilterPreset
		var deletedAt sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Filters,
			&p.CreatedAt, &p.UpdatedAt, &deletedAt); err != nil {
			return nil, err
		}
		p.DeletedAt = strNull(deletedAt)
		presets = append(presets, &p)
	}
	return presets, rows.Err()
}

func queryVocab(ctx context.Context, q querier) ([]*types.VocabEntry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, term, reading, meaning, language, created_at, updated_at, deleted_at FROM vocab_custom`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*types.VocabEntry
	for rows.Next() {
		var v types.VocabEntry
		var deletedAt sql.NullString
		if err := rows.Scan(&v.ID, &v.Term, &v.Reading, &v.Meaning, &v.Language,
			&v.CreatedAt, &v.UpdatedAt, &deletedAt); err != nil {
			return nil, err
		}
		v.DeletedAt = strNull(deletedAt)
		entries = append(entries, &v)
	}
	return entries, rows.Err()
}

func queryBookAuthors(ctx context.Context, q querier) ([]*types.BookAuthor, error) {
	rows, err := q.QueryContext(ctx, `SELECT book_id, author_id FROM book_authors`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []*types.BookAuthor
	for rows.Next() {
		var p types.BookAuthor
		if err := rows.Scan(&p.BookID, &p.AuthorID); err != nil {
			return nil, err
		}
		pairs = append(pairs, &p)
	}
	return pairs, rows.Err()
}

func queryCollectionBooks(ctx context.Context, q querier) ([]*types.CollectionBook, error) {
	rows, err := q.QueryContext(ctx, `SELECT collection_id, book_id FROM collection_books`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []*types.CollectionBook
	for rows.Next() {
		var p types.CollectionBook
		if err := rows.Scan(&p.CollectionID, &p.BookID); err != nil {
			return nil, err
		}
		pairs = append(pairs, &p)
	}
	return pairs, rows.Err()
}

func queryHistory(ctx context.Context, q querier) ([]*types.StorageHistoryEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, book_id, from_location_id, to_location_id, action, person, note,
			created_at, deleted_at
		FROM book_storage_history`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*types.StorageHistoryEntry
	for rows.Next() {
		var h types.StorageHistoryEntry
		var action string
		var deletedAt sql.NullString
		if err := rows.Scan(&h.ID, &h.BookID, &h.FromLocationID, &h.ToLocationID,
			&action, &h.Person, &h.Note, &h.CreatedAt, &deletedAt); err != nil {
			return nil, err
		}
		h.Action = types.HistoryAction(action)
		h.DeletedAt = strNull(deletedAt)
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}
