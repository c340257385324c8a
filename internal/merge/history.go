package merge

import "github.com/stacksapp/stacks/internal/types"

// MergeHistory returns the remote storage-history entries not yet present
// locally. History rows are immutable once written, so merging is a set
// union by id: nothing is ever updated or deleted.
func MergeHistory(local, remote []*types.StorageHistoryEntry) []*types.StorageHistoryEntry {
	have := make(map[string]bool, len(local))
	for _, e := range local {
		have[e.ID] = true
	}

	var out []*types.StorageHistoryEntry
	for _, e := range remote {
		if e.ID == "" || have[e.ID] {
			continue
		}
		have[e.ID] = true
		out = append(out, e)
	}
	return out
}
