// Package memory implements the storage interface using in-memory data
// structures. It backs unit tests and ephemeral catalogs; the sqlite
// backend is the durable one.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/stacksapp/stacks/internal/merge"
	"github.com/stacksapp/stacks/internal/storage"
	"github.com/stacksapp/stacks/internal/types"
)

// ErrWriteFailed is returned by RunImport when the injected failure hook
// fires during the apply phase.
var ErrWriteFailed = errors.New("simulated write failure")

// tables holds one device's full catalog state.
type tables struct {
	books           map[string]*types.Book
	authors         map[string]*types.Author
	collections     map[string]*types.Collection
	locations       map[string]*types.StorageLocation
	sessions        map[string]*types.ReadingSession
	presets         map[string]*types.FilterPreset
	vocab           map[string]*types.VocabEntry
	history         map[string]*types.StorageHistoryEntry
	bookAuthors     []*types.BookAuthor
	collectionBooks []*types.CollectionBook
}

func newTables() tables {
	return tables{
		books:       make(map[string]*types.Book),
		authors:     make(map[string]*types.Author),
		collections: make(map[string]*types.Collection),
		locations:   make(map[string]*types.StorageLocation),
		sessions:    make(map[string]*types.ReadingSession),
		presets:     make(map[string]*types.FilterPreset),
		vocab:       make(map[string]*types.VocabEntry),
		history:     make(map[string]*types.StorageHistoryEntry),
	}
}

// MemoryStorage implements the Storage interface using in-memory maps
type MemoryStorage struct {
	mu   sync.RWMutex
	t    tables
	meta map[string]string

	// FailAfterWrites, when positive, makes the apply phase of RunImport
	// fail once that many row writes have landed. The import must then
	// leave state untouched; tests use this to verify atomicity.
	FailAfterWrites int
}

var _ storage.Storage = (*MemoryStorage)(nil)

// New creates a new in-memory storage backend
func New() *MemoryStorage {
	return &MemoryStorage{
		t:    newTables(),
		meta: make(map[string]string),
	}
}

// CreateBook stores a new book
func (m *MemoryStorage) CreateBook(ctx context.Context, b *types.Book) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid book: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.t.books[b.ID] = &cp
	return nil
}

// GetBook returns a book by id, tombstoned or not
func (m *MemoryStorage) GetBook(ctx context.Context, id string) (*types.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.t.books[id]
	if !ok {
		return nil, fmt.Errorf("book %s: %w", id, storage.ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

// ListBooks returns all books, optionally including tombstoned rows
func (m *MemoryStorage) ListBooks(ctx context.Context, includeDeleted bool) ([]*types.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var books []*types.Book
	for _, b := range m.t.books {
		if !includeDeleted && b.Tombstoned() {
			continue
		}
		cp := *b
		books = append(books, &cp)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

// SoftDeleteBook tombstones a live book
func (m *MemoryStorage) SoftDeleteBook(ctx context.Context, id, deletedAt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.t.books[id]
	if !ok || b.Tombstoned() {
		return fmt.Errorf("book %s: %w", id, storage.ErrNotFound)
	}
	b.DeletedAt = &deletedAt
	b.UpdatedAt = deletedAt
	return nil
}

// CreateAuthor stores a new author
func (m *MemoryStorage) CreateAuthor(ctx context.Context, a *types.Author) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid author: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.t.authors[a.ID] = &cp
	return nil
}

// ListAuthors returns all authors, optionally including tombstoned rows
func (m *MemoryStorage) ListAuthors(ctx context.Context, includeDeleted bool) ([]*types.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var authors []*types.Author
	for _, a := range m.t.authors {
		if !includeDeleted && a.Tombstoned() {
			continue
		}
		cp := *a
		authors = append(authors, &cp)
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i].ID < authors[j].ID })
	return authors, nil
}

// SoftDeleteAuthor tombstones a live author
func (m *MemoryStorage) SoftDeleteAuthor(ctx context.Context, id, deletedAt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.t.authors[id]
	if !ok || a.Tombstoned() {
		return fmt.Errorf("author %s: %w", id, storage.ErrNotFound)
	}
	a.DeletedAt = &deletedAt
	a.UpdatedAt = deletedAt
	return nil
}

// AddBookAuthor links a book to an author; duplicates are ignored
func (m *MemoryStorage) AddBookAuthor(ctx context.Context, bookID, authorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.t.bookAuthors {
		if p.BookID == bookID && p.AuthorID == authorID {
			return nil
		}
	}
	m.t.bookAuthors = append(m.t.bookAuthors, &types.BookAuthor{BookID: bookID, AuthorID: authorID})
	return nil
}

// ReadSnapshot reads every syncable table, tombstones included.
func (m *MemoryStorage) ReadSnapshot(ctx context.Context) (*storage.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.snapshot(), nil
}

// RunImport executes one read-merge-apply cycle under the storage lock.
// The batch is applied to a copy of the state and swapped in only when
// every write succeeds, so a failed import leaves state untouched.
func (m *MemoryStorage) RunImport(ctx context.Context, fn func(snap *storage.Snapshot) (*storage.ImportBatch, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	batch, err := fn(m.t.snapshot())
	if err != nil {
		return err
	}

	staged := m.t.clone()
	if err := staged.apply(batch, m.FailAfterWrites); err != nil {
		return fmt.Errorf("merge failed, no changes applied: %w", err)
	}

	m.t = staged
	return nil
}

// GetMeta returns the stored metadata value for key, or "" when unset.
func (m *MemoryStorage) GetMeta(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta[key], nil
}

// SetMeta stores a metadata key/value pair.
func (m *MemoryStorage) SetMeta(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta[key] = value
	return nil
}

// Close is a no-op for the memory backend
func (m *MemoryStorage) Close() error { return nil }

// Path returns a placeholder path
func (m *MemoryStorage) Path() string { return ":memory:" }

func (t *tables) snapshot() *storage.Snapshot {
	snap := &storage.Snapshot{}
	snap.Books = copyValues(t.books)
	snap.Authors = copyValues(t.authors)
	snap.Collections = copyValues(t.collections)
	snap.StorageLocations = copyValues(t.locations)
	snap.ReadingSessions = copyValues(t.sessions)
	snap.FilterPresets = copyValues(t.presets)
	snap.VocabCustom = copyValues(t.vocab)
	snap.History = copyValues(t.history)
	for _, p := range t.bookAuthors {
		cp := *p
		snap.BookAuthors = append(snap.BookAuthors, &cp)
	}
	for _, p := range t.collectionBooks {
		cp := *p
		snap.CollectionBooks = append(snap.CollectionBooks, &cp)
	}
	return snap
}

func (t *tables) clone() tables {
	out := tables{
		books:       cloneMap(t.books),
		authors:     cloneMap(t.authors),
		collections: cloneMap(t.collections),
		locations:   cloneMap(t.locations),
		sessions:    cloneMap(t.sessions),
		presets:     cloneMap(t.presets),
		vocab:       cloneMap(t.vocab),
		history:     cloneMap(t.history),
	}
	out.bookAuthors = append([]*types.BookAuthor(nil), t.bookAuthors...)
	out.collectionBooks = append([]*types.CollectionBook(nil), t.collectionBooks...)
	return out
}

// apply writes the batch into the staged tables. failAfter > 0 injects a
// failure once that many writes have landed.
func (t *tables) apply(batch *storage.ImportBatch, failAfter int) error {
	writes := 0
	budget := func() error {
		if failAfter > 0 && writes >= failAfter {
			return ErrWriteFailed
		}
		writes++
		return nil
	}

	if err := applyBuckets(t.books, batch.Books, budget); err != nil {
		return err
	}
	if err := applyBuckets(t.authors, batch.Authors, budget); err != nil {
		return err
	}
	if err := applyBuckets(t.collections, batch.Collections, budget); err != nil {
		return err
	}
	if err := applyBuckets(t.locations, batch.StorageLocations, budget); err != nil {
		return err
	}
	if err := applyBuckets(t.sessions, batch.ReadingSessions, budget); err != nil {
		return err
	}
	if err := applyBuckets(t.presets, batch.FilterPresets, budget); err != nil {
		return err
	}
	if err := applyBuckets(t.vocab, batch.VocabCustom, budget); err != nil {
		return err
	}

	for _, h := range batch.HistoryInserts {
		if err := budget(); err != nil {
			return err
		}
		cp := *h
		t.history[h.ID] = &cp
	}

	t.bookAuthors = nil
	for _, p := range batch.BookAuthors {
		if err := budget(); err != nil {
			return err
		}
		cp := *p
		t.bookAuthors = append(t.bookAuthors, &cp)
	}
	t.collectionBooks = nil
	for _, p := range batch.CollectionBooks {
		if err := budget(); err != nil {
			return err
		}
		cp := *p
		t.collectionBooks = append(t.collectionBooks, &cp)
	}

	return nil
}

func applyBuckets[T types.SyncRecord](dst map[string]T, b merge.Buckets[T], budget func() error) error {
	for _, bucket := range [][]T{b.Insert, b.Update, b.Delete} {
		for _, entity := range bucket {
			if err := budget(); err != nil {
				return err
			}
			dst[entity.SyncID()] = entity
		}
	}
	return nil
}

func copyValues[T any](src map[string]*T) []*T {
	out := make([]*T, 0, len(src))
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cp := *src[k]
		out = append(out, &cp)
	}
	return out
}

func cloneMap[T any](src map[string]*T) map[string]*T {
	dst := make(map[string]*T, len(src))
	for k, v := range src {
		cp := *v
		dst[k] = &cp
	}
	return dst
}
