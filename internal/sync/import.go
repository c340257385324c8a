package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/stacksapp/stacks/internal/merge"
	"github.com/stacksapp/stacks/internal/payload"
	"github.com/stacksapp/stacks/internal/storage"
	"github.com/stacksapp/stacks/internal/types"
)

func bookAuthorKey(r *types.BookAuthor) (string, string) { return r.BookID, r.AuthorID }

func collectionBookKey(r *types.CollectionBook) (string, string) { return r.CollectionID, r.BookID }

// Import merges a remote payload into the local catalog. The read, the
// merge decisions, and the apply all happen inside one storage
// transaction; a failure at any point leaves the catalog exactly as it
// was. Returns a per-type summary of what changed.
func Import(ctx context.Context, store storage.Storage, remote *payload.Payload) (*Summary, error) {
	if remote == nil {
		return nil, fmt.Errorf("%w: nil payload", payload.ErrMalformed)
	}
	if err := remote.Validate(); err != nil {
		return nil, err
	}
	if remote.Version > payload.FormatVersion {
		return nil, fmt.Errorf("%w: payload version %d, this build understands up to %d",
			ErrUnsupportedVersion, remote.Version, payload.FormatVersion)
	}
	if remote.SchemaVersion != storage.SchemaVersion {
		return nil, fmt.Errorf("%w: payload schema %d, local schema %d",
			ErrSchemaMismatch, remote.SchemaVersion, storage.SchemaVersion)
	}

	var summary *Summary
	err := store.RunImport(ctx, func(snap *storage.Snapshot) (*storage.ImportBatch, error) {
		batch := buildBatch(snap, &remote.Entities)
		summary = summarize(batch, len(snap.History))
		return batch, nil
	})
	if err != nil {
		return nil, err
	}

	if err := store.SetMeta(ctx, storage.MetaLastSyncAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("failed to record sync time: %w", err)
	}
	return summary, nil
}

// buildBatch runs the merge over every entity type, then reconciles the
// join tables against the post-merge liveness of their endpoints.
func buildBatch(snap *storage.Snapshot, remote *payload.Entities) *storage.ImportBatch {
	batch := &storage.ImportBatch{
		Books:            merge.MergeSets(snap.Books, remote.Books),
		Authors:          merge.MergeSets(snap.Authors, remote.Authors),
		Collections:      merge.MergeSets(snap.Collections, remote.Collections),
		StorageLocations: merge.MergeSets(snap.StorageLocations, remote.StorageLocations),
		ReadingSessions:  merge.MergeSets(snap.ReadingSessions, remote.ReadingSessions),
		FilterPresets:    merge.MergeSets(snap.FilterPresets, remote.FilterPresets),
		VocabCustom:      merge.MergeSets(snap.VocabCustom, remote.VocabCustom),
	}

	books := merge.BuildLiveness(snap.Books, batch.Books)
	authors := merge.BuildLiveness(snap.Authors, batch.Authors)
	collections := merge.BuildLiveness(snap.Collections, batch.Collections)

	batch.BookAuthors = merge.ReconcileRelations(
		snap.BookAuthors, remote.BookAuthors, bookAuthorKey, books, authors)
	batch.CollectionBooks = merge.ReconcileRelations(
		snap.CollectionBooks, remote.CollectionBooks, collectionBookKey, collections, books)
	batch.HistoryInserts = merge.MergeHistory(snap.History, remote.BookStorageHistory)

	return batch
}
