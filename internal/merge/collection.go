package merge

import "github.com/stacksapp/stacks/internal/types"

// Buckets partitions the merge outcome for one entity table. Order within
// a bucket carries no meaning.
type Buckets[T types.SyncRecord] struct {
	Insert    []T
	Update    []T
	Delete    []T
	Unchanged []T
}

// MergeSets merges two versions of one entity table by id. Duplicate ids
// within an input are resolved last-seen-wins while indexing. Kept
// tombstones are dropped from every bucket: they stay tombstoned in
// storage and need no reporting.
func MergeSets[T types.SyncRecord](local, remote []T) Buckets[T] {
	localByID := indexByID(local)
	remoteByID := indexByID(remote)

	var out Buckets[T]
	for _, id := range unionIDs(localByID, remoteByID) {
		l, hasLocal := localByID[id]
		r, hasRemote := remoteByID[id]

		entity, action := MergeEntity(l, hasLocal, r, hasRemote)
		switch action {
		case ActionInsert:
			out.Insert = append(out.Insert, entity)
		case ActionUpdate:
			out.Update = append(out.Update, entity)
		case ActionDelete:
			out.Delete = append(out.Delete, entity)
		case ActionKeep:
			if !entity.Tombstoned() {
				out.Unchanged = append(out.Unchanged, entity)
			}
		case ActionSkip:
		}
	}
	return out
}

func indexByID[T types.SyncRecord](records []T) map[string]T {
	byID := make(map[string]T, len(records))
	for _, r := range records {
		byID[r.SyncID()] = r
	}
	return byID
}

func unionIDs[T types.SyncRecord](a, b map[string]T) []string {
	ids := make([]string, 0, len(a)+len(b))
	for id := range a {
		ids = append(ids, id)
	}
	for id := range b {
		if _, seen := a[id]; !seen {
			ids = append(ids, id)
		}
	}
	return ids
}
