// Package storage defines the interface for catalog storage backends.
package storage

import (
	"context"
	"errors"

	"github.com/stacksapp/stacks/internal/merge"
	"github.com/stacksapp/stacks/internal/types"
)

// SchemaVersion is the version of the local relational schema. It is
// stamped into every exported payload and checked, fail closed, before a
// remote payload is merged.
const SchemaVersion = 1

// Meta keys used by the sync engine.
const (
	MetaDeviceID   = "device_id"
	MetaDeviceName = "device_name"
	MetaLastSyncAt = "last_sync_at"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Snapshot is a consistent read of every syncable table, tombstones
// included.
type Snapshot struct {
	Books            []*types.Book
	Authors          []*types.Author
	Collections      []*types.Collection
	StorageLocations []*types.StorageLocation
	ReadingSessions  []*types.ReadingSession
	FilterPresets    []*types.FilterPreset
	VocabCustom      []*types.VocabEntry
	BookAuthors      []*types.BookAuthor
	CollectionBooks  []*types.CollectionBook
	History          []*types.StorageHistoryEntry
}

// ImportBatch is the complete set of mutations one merge wants applied.
// The backend applies it atomically: either every bucket lands or none do.
// Relation slices are full replacement sets for their join tables.
type ImportBatch struct {
	Books            merge.Buckets[*types.Book]
	Authors          merge.Buckets[*types.Author]
	Collections      merge.Buckets[*types.Collection]
	StorageLocations merge.Buckets[*types.StorageLocation]
	ReadingSessions  merge.Buckets[*types.ReadingSession]
	FilterPresets    merge.Buckets[*types.FilterPreset]
	VocabCustom      merge.Buckets[*types.VocabEntry]

	BookAuthors     []*types.BookAuthor
	CollectionBooks []*types.CollectionBook
	HistoryInserts  []*types.StorageHistoryEntry
}

// Storage is implemented by the catalog storage backends.
type Storage interface {
	// Books
	CreateBook(ctx context.Context, b *types.Book) error
	GetBook(ctx context.Context, id string) (*types.Book, error)
	ListBooks(ctx context.Context, includeDeleted bool) ([]*types.Book, error)
	SoftDeleteBook(ctx context.Context, id, deletedAt string) error

	// Authors
	CreateAuthor(ctx context.Context, a *types.Author) error
	ListAuthors(ctx context.Context, includeDeleted bool) ([]*types.Author, error)
	SoftDeleteAuthor(ctx context.Context, id, deletedAt string) error
	AddBookAuthor(ctx context.Context, bookID, authorID string) error

	// Sync surface. ReadSnapshot serves the payload exporter; RunImport
	// executes fn against a snapshot read inside the same exclusive
	// transaction that applies the returned batch, so a concurrent local
	// write can neither interleave with the apply phase nor be clobbered
	// by merge decisions made against a stale view.
	ReadSnapshot(ctx context.Context) (*Snapshot, error)
	RunImport(ctx context.Context, fn func(snap *Snapshot) (*ImportBatch, error)) error

	// Metadata (device identity, sync bookkeeping)
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error

	// Lifecycle
	Close() error
	Path() string
}
