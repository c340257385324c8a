package merge

import "github.com/stacksapp/stacks/internal/types"

// Liveness records, for one entity type's post-merge state, which ids are
// present and whether each is live (true) or tombstoned (false). Ids
// absent from the map do not exist after the merge.
type Liveness map[string]bool

// Live reports whether id exists and is not tombstoned.
func (lv Liveness) Live(id string) bool { return lv[id] }

// BuildLiveness derives the merged view of one entity type: every live
// local row, overlaid with the merge outcome. Delete-bucket entities are
// recorded as present-but-tombstoned so their relations get dropped.
func BuildLiveness[T types.SyncRecord](local []T, b Buckets[T]) Liveness {
	lv := make(Liveness, len(local))
	for _, r := range local {
		if !r.Tombstoned() {
			lv[r.SyncID()] = true
		}
	}
	for _, r := range b.Insert {
		lv[r.SyncID()] = true
	}
	for _, r := range b.Update {
		lv[r.SyncID()] = true
	}
	for _, r := range b.Delete {
		lv[r.SyncID()] = false
	}
	return lv
}

// ReconcileRelations rebuilds one many-to-many relation from the union of
// local and remote pairs. key extracts the two foreign ids of a pair.
// Duplicates are dropped first-seen-wins (pairs carry no payload, so any
// survivor is equivalent); a pair survives only when both endpoints are
// live in their merged entity maps. Dangling pairs are silently dropped —
// they are expected under eventual consistency, not an error.
func ReconcileRelations[R any](local, remote []R, key func(R) (string, string), left, right Liveness) []R {
	seen := make(map[string]bool, len(local)+len(remote))
	out := make([]R, 0, len(local)+len(remote))

	scan := func(rels []R) {
		for _, rel := range rels {
			a, b := key(rel)
			k := a + ":" + b
			if seen[k] {
				continue
			}
			seen[k] = true
			if left.Live(a) && right.Live(b) {
				out = append(out, rel)
			}
		}
	}
	scan(local)
	scan(remote)

	return out
}
