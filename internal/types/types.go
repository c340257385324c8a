package types

import "fmt"

// SyncMeta carries the fields the sync engine reads on every syncable row.
// Timestamps are ISO-8601 strings; they are normalized at the storage
// boundary so merge logic only ever sees these canonical fields.
type SyncMeta struct {
	ID        string  `json:"id"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
	DeletedAt *string `json:"deletedAt,omitempty"`
}

// SyncID returns the stable identifier shared across devices.
func (m *SyncMeta) SyncID() string { return m.ID }

// SyncUpdatedAt returns the last-modified timestamp, empty when unknown.
func (m *SyncMeta) SyncUpdatedAt() string { return m.UpdatedAt }

// SyncDeletedAt returns the tombstone timestamp, nil for live rows.
func (m *SyncMeta) SyncDeletedAt() *string { return m.DeletedAt }

// Tombstoned reports whether the row is soft-deleted.
func (m *SyncMeta) Tombstoned() bool { return m.DeletedAt != nil }

// SyncRecord is implemented by every entity that participates in
// last-write-wins merging. All implementations embed SyncMeta.
type SyncRecord interface {
	SyncID() string
	SyncUpdatedAt() string
	SyncDeletedAt() *string
	Tombstoned() bool
}

// Book is a cataloged title.
type Book struct {
	SyncMeta
	Title         string `json:"title"`
	ISBN          string `json:"isbn,omitempty"`
	Publisher     string `json:"publisher,omitempty"`
	PublishedYear int    `json:"publishedYear,omitempty"`
	Language      string `json:"language,omitempty"`
	PageCount     int    `json:"pageCount,omitempty"`
	CoverURL      string `json:"coverUrl,omitempty"`
	Rating        int    `json:"rating,omitempty"`
	Notes         string `json:"notes,omitempty"`
	LocationID    string `json:"locationId,omitempty"`
}

// Validate checks if the book has valid field values
func (b *Book) Validate() error {
	if len(b.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if len(b.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(b.Title))
	}
	if b.Rating < 0 || b.Rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5 (got %d)", b.Rating)
	}
	if b.PageCount < 0 {
		return fmt.Errorf("page count cannot be negative")
	}
	return nil
}

// Author is a book author or contributor.
type Author struct {
	SyncMeta
	Name     string `json:"name"`
	SortName string `json:"sortName,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Validate checks if the author has valid field values
func (a *Author) Validate() error {
	if len(a.Name) == 0 {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Collection is a user-defined grouping of books.
type Collection struct {
	SyncMeta
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// StorageLocation is a physical place books live (shelf, box, room).
type StorageLocation struct {
	SyncMeta
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ReadingSession records one sitting with a book.
type ReadingSession struct {
	SyncMeta
	BookID     string `json:"bookId"`
	StartedAt  string `json:"startedAt,omitempty"`
	FinishedAt string `json:"finishedAt,omitempty"`
	StartPage  int    `json:"startPage,omitempty"`
	EndPage    int    `json:"endPage,omitempty"`
	Note       string `json:"note,omitempty"`
}

// FilterPreset is a saved catalog filter. Filters holds the raw filter
// document as JSON; the sync engine treats it as opaque.
type FilterPreset struct {
	SyncMeta
	Name    string `json:"name"`
	Filters string `json:"filters,omitempty"`
}

// VocabEntry is a user-added vocabulary term.
type VocabEntry struct {
	SyncMeta
	Term     string `json:"term"`
	Reading  string `json:"reading,omitempty"`
	Meaning  string `json:"meaning,omitempty"`
	Language string `json:"language,omitempty"`
}

// BookAuthor links a book to an author. Relation records carry no id and
// no timestamps; their validity is derived from their endpoints.
type BookAuthor struct {
	BookID   string `json:"bookId"`
	AuthorID string `json:"authorId"`
}

// CollectionBook links a collection to a book.
type CollectionBook struct {
	CollectionID string `json:"collectionId"`
	BookID       string `json:"bookId"`
}

// HistoryAction categorizes a storage history entry
type HistoryAction string

const (
	HistoryMoved    HistoryAction = "moved"
	HistoryLoaned   HistoryAction = "loaned"
	HistoryReturned HistoryAction = "returned"
	HistoryShelved  HistoryAction = "shelved"
)

// IsValid checks if the history action value is valid
func (a HistoryAction) IsValid() bool {
	switch a {
	case HistoryMoved, HistoryLoaned, HistoryReturned, HistoryShelved:
		return true
	}
	return false
}

// StorageHistoryEntry is an append-only log entry recording a book moving
// between storage locations. Entries are immutable once created, so sync
// reduces to set union by id.
type StorageHistoryEntry struct {
	ID             string        `json:"id"`
	BookID         string        `json:"bookId"`
	FromLocationID string        `json:"fromLocationId,omitempty"`
	ToLocationID   string        `json:"toLocationId,omitempty"`
	Action         HistoryAction `json:"action"`
	Person         string        `json:"person,omitempty"`
	Note           string        `json:"note,omitempty"`
	CreatedAt      string        `json:"createdAt"`
	DeletedAt      *string       `json:"deletedAt,omitempty"`
}
