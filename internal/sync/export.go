package sync

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/stacksapp/stacks/internal/payload"
	"github.com/stacksapp/stacks/internal/storage"
)

// Export snapshots the entire local dataset, soft-deleted rows included,
// into a portable payload. Tombstones must travel with the export or other
// devices never learn about deletions.
func Export(ctx context.Context, store storage.Storage, dev Device) (*payload.Payload, error) {
	snap, err := store.ReadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read local snapshot: %w", err)
	}

	p := &payload.Payload{
		Version:       payload.FormatVersion,
		SchemaVersion: storage.SchemaVersion,
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		DeviceID:      dev.ID,
		DeviceName:    dev.Name,
		Platform:      dev.Platform,
		Entities: payload.Entities{
			Books:              snap.Books,
			Authors:            snap.Authors,
			BookAuthors:        snap.BookAuthors,
			Collections:        snap.Collections,
			CollectionBooks:    snap.CollectionBooks,
			StorageLocations:   snap.StorageLocations,
			BookStorageHistory: snap.History,
			ReadingSessions:    snap.ReadingSessions,
			FilterPresets:      snap.FilterPresets,
			VocabCustom:        snap.VocabCustom,
		},
	}
	if p.Platform == "" {
		p.Platform = runtime.GOOS
	}
	return p, nil
}
