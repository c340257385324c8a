package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stacksapp/stacks/internal/merge"
	"github.com/stacksapp/stacks/internal/storage"
	"github.com/stacksapp/stacks/internal/types"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "stacks.db"))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func sampleBook(id, title, updatedAt string) *types.Book {
	return &types.Book{
		SyncMeta: types.SyncMeta{ID: id, CreatedAt: "2026-01-01T00:00:00Z", UpdatedAt: updatedAt},
		Title:    title,
	}
}

func TestBookCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := sampleBook("b1", "The Go Programming Language", "2026-01-10T00:00:00Z")
	b.ISBN = "978-0134190440"
	b.PageCount = 380
	b.Rating = 5

	if err := s.CreateBook(ctx, b); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	got, err := s.GetBook(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBook failed: %v", err)
	}
	if got.Title != b.Title || got.ISBN != b.ISBN || got.PageCount != 380 || got.Rating != 5 {
		t.Errorf("GetBook returned wrong row: %+v", got)
	}
	if got.Tombstoned() {
		t.Error("fresh book should not be tombstoned")
	}

	if _, err := s.GetBook(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetBook(nope) = %v, want ErrNotFound", err)
	}
}

func TestBookValidation(t *testing.T) {
	s := newTestStore(t)

	bad := sampleBook("b1", "", "2026-01-10T00:00:00Z")
	if err := s.CreateBook(context.Background(), bad); err == nil {
		t.Error("CreateBook accepted a book without a title")
	}
}

func TestSoftDeleteBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBook(ctx, sampleBook("b1", "Doomed", "2026-01-10T00:00:00Z")); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	if err := s.SoftDeleteBook(ctx, "b1", "2026-01-11T00:00:00Z"); err != nil {
		t.Fatalf("SoftDeleteBook failed: %v", err)
	}

	// The row survives as a tombstone.
	got, err := s.GetBook(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBook after delete failed: %v", err)
	}
	if !got.Tombstoned() {
		t.Error("book should be tombstoned")
	}
	if got.UpdatedAt != "2026-01-11T00:00:00Z" {
		t.Errorf("delete should bump updated_at, got %s", got.UpdatedAt)
	}

	// Deleting again reports not found.
	if err := s.SoftDeleteBook(ctx, "b1", "2026-01-12T00:00:00Z"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}

	live, err := s.ListBooks(ctx, false)
	if err != nil {
		t.Fatalf("ListBooks failed: %v", err)
	}
	if len(live) != 0 {
		t.Errorf("ListBooks(false) = %d rows, want 0", len(live))
	}

	all, err := s.ListBooks(ctx, true)
	if err != nil {
		t.Fatalf("ListBooks failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListBooks(true) = %d rows, want 1", len(all))
	}
}

func TestAuthorsAndRelations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &types.Author{
		SyncMeta: types.SyncMeta{ID: "a1", CreatedAt: "2026-01-01T00:00:00Z", UpdatedAt: "2026-01-01T00:00:00Z"},
		Name:     "Donald Knuth",
	}
	if err := s.CreateAuthor(ctx, a); err != nil {
		t.Fatalf("CreateAuthor failed: %v", err)
	}
	if err := s.CreateBook(ctx, sampleBook("b1", "TAOCP", "2026-01-01T00:00:00Z")); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	// Linking twice must not duplicate the pair.
	if err := s.AddBookAuthor(ctx, "b1", "a1"); err != nil {
		t.Fatalf("AddBookAuthor failed: %v", err)
	}
	if err := s.AddBookAuthor(ctx, "b1", "a1"); err != nil {
		t.Fatalf("AddBookAuthor (duplicate) failed: %v", err)
	}

	snap, err := s.ReadSnapshot(ctx)
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}
	if len(snap.BookAuthors) != 1 {
		t.Errorf("snapshot has %d book-author pairs, want 1", len(snap.BookAuthors))
	}
}

func TestMeta(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetMeta(ctx, storage.MetaDeviceID)
	if err != nil {
		t.Fatalf("GetMeta failed: %v", err)
	}
	if got != "" {
		t.Errorf("unset meta = %q, want empty", got)
	}

	if err := s.SetMeta(ctx, storage.MetaDeviceID, "dev-1"); err != nil {
		t.Fatalf("SetMeta failed: %v", err)
	}
	if err := s.SetMeta(ctx, storage.MetaDeviceID, "dev-2"); err != nil {
		t.Fatalf("SetMeta overwrite failed: %v", err)
	}

	got, err = s.GetMeta(ctx, storage.MetaDeviceID)
	if err != nil {
		t.Fatalf("GetMeta failed: %v", err)
	}
	if got != "dev-2" {
		t.Errorf("GetMeta = %q, want dev-2", got)
	}
}

func TestReadSnapshotIncludesTombstones(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBook(ctx, sampleBook("b1", "Live", "2026-01-10T00:00:00Z")); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	if err := s.CreateBook(ctx, sampleBook("b2", "Dead", "2026-01-10T00:00:00Z")); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	if err := s.SoftDeleteBook(ctx, "b2", "2026-01-11T00:00:00Z"); err != nil {
		t.Fatalf("SoftDeleteBook failed: %v", err)
	}

	snap, err := s.ReadSnapshot(ctx)
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}
	if len(snap.Books) != 2 {
		t.Fatalf("snapshot has %d books, want 2", len(snap.Books))
	}
}

func TestRunImportAppliesBatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBook(ctx, sampleBook("b1", "Old Title", "2026-01-10T00:00:00Z")); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	tombstone := sampleBook("b1", "Old Title", "2026-01-15T00:00:00Z")
	tombstone.DeletedAt = strPtr("2026-01-15T00:00:00Z")

	err := s.RunImport(ctx, func(snap *storage.Snapshot) (*storage.ImportBatch, error) {
		if len(snap.Books) != 1 {
			t.Errorf("callback snapshot has %d books, want 1", len(snap.Books))
		}
		batch := &storage.ImportBatch{}
		batch.Books.Insert = []*types.Book{sampleBook("b2", "New Arrival", "2026-01-12T00:00:00Z")}
		batch.Books.Delete = []*types.Book{tombstone}
		batch.HistoryInserts = []*types.StorageHistoryEntry{
			{ID: "h1", BookID: "b2", Action: types.HistoryShelved, CreatedAt: "2026-01-12T00:00:00Z"},
		}
		batch.BookAuthors = []*types.BookAuthor{}
		return batch, nil
	})
	if err != nil {
		t.Fatalf("RunImport failed: %v", err)
	}

	b1, err := s.GetBook(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBook failed: %v", err)
	}
	if !b1.Tombstoned() {
		t.Error("b1 should be tombstoned after import")
	}

	if _, err := s.GetBook(ctx, "b2"); err != nil {
		t.Errorf("b2 missing after import: %v", err)
	}

	snap, err := s.ReadSnapshot(ctx)
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}
	if len(snap.History) != 1 {
		t.Errorf("snapshot has %d history entries, want 1", len(snap.History))
	}
}

func TestRunImportRollsBackOnCallbackError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBook(ctx, sampleBook("b1", "Untouched", "2026-01-10T00:00:00Z")); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	sentinel := errors.New("merge exploded")
	err := s.RunImport(ctx, func(snap *storage.Snapshot) (*storage.ImportBatch, error) {
		return nil, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("RunImport = %v, want sentinel error", err)
	}

	books, err := s.ListBooks(ctx, true)
	if err != nil {
		t.Fatalf("ListBooks failed: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Untouched" {
		t.Errorf("database changed after failed import: %+v", books)
	}
}

func TestRunImportReplacesRelations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBook(ctx, sampleBook("b1", "Book", "2026-01-01T00:00:00Z")); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	a := &types.Author{
		SyncMeta: types.SyncMeta{ID: "a1", CreatedAt: "2026-01-01T00:00:00Z", UpdatedAt: "2026-01-01T00:00:00Z"},
		Name:     "Author",
	}
	if err := s.CreateAuthor(ctx, a); err != nil {
		t.Fatalf("CreateAuthor failed: %v", err)
	}
	if err := s.AddBookAuthor(ctx, "b1", "a1"); err != nil {
		t.Fatalf("AddBookAuthor failed: %v", err)
	}

	// An import carrying an empty relation set clears the join table.
	err := s.RunImport(ctx, func(snap *storage.Snapshot) (*storage.ImportBatch, error) {
		return &storage.ImportBatch{
			Books:   merge.Buckets[*types.Book]{},
			Authors: merge.Buckets[*types.Author]{},
		}, nil
	})
	if err != nil {
		t.Fatalf("RunImport failed: %v", err)
	}

	snap, err := s.ReadSnapshot(ctx)
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}
	if len(snap.BookAuthors) != 0 {
		t.Errorf("join table has %d pairs after replacement, want 0", len(snap.BookAuthors))
	}
}
