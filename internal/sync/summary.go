package sync

import (
	"github.com/stacksapp/stacks/internal/merge"
	"github.com/stacksapp/stacks/internal/storage"
	"github.com/stacksapp/stacks/internal/types"
)

// Counts aggregates the outcome for one entity type.
type Counts struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

func (c Counts) changes() int { return c.Inserted + c.Updated + c.Deleted }

// Summary reports what one merge-import did, per entity type plus a grand
// total of rows inserted, updated, or deleted.
type Summary struct {
	Books              Counts `json:"books"`
	Authors            Counts `json:"authors"`
	Collections        Counts `json:"collections"`
	StorageLocations   Counts `json:"storageLocations"`
	ReadingSessions    Counts `json:"readingSessions"`
	FilterPresets      Counts `json:"filterPresets"`
	VocabCustom        Counts `json:"vocabCustom"`
	BookStorageHistory Counts `json:"bookStorageHistory"`
	TotalChanges       int    `json:"totalChanges"`
}

func countsOf[T types.SyncRecord](b merge.Buckets[T]) Counts {
	return Counts{
		Inserted:  len(b.Insert),
		Updated:   len(b.Update),
		Deleted:   len(b.Delete),
		Unchanged: len(b.Unchanged),
	}
}

func summarize(batch *storage.ImportBatch, localHistory int) *Summary {
	s := &Summary{
		Books:            countsOf(batch.Books),
		Authors:          countsOf(batch.Authors),
		Collections:      countsOf(batch.Collections),
		StorageLocations: countsOf(batch.StorageLocations),
		ReadingSessions:  countsOf(batch.ReadingSessions),
		FilterPresets:    countsOf(batch.FilterPresets),
		VocabCustom:      countsOf(batch.VocabCustom),
		BookStorageHistory: Counts{
			Inserted:  len(batch.HistoryInserts),
			Unchanged: localHistory,
		},
	}
	for _, c := range []Counts{
		s.Books, s.Authors, s.Collections, s.StorageLocations,
		s.ReadingSessions, s.FilterPresets, s.VocabCustom, s.BookStorageHistory,
	} {
		s.TotalChanges += c.changes()
	}
	return s
}
