package merge

import (
	"testing"

	"github.com/stacksapp/stacks/internal/types"
)

func bucketIDs[T types.SyncRecord](records []T) map[string]bool {
	ids := make(map[string]bool, len(records))
	for _, r := range records {
		ids[r.SyncID()] = true
	}
	return ids
}

func TestMergeSets(t *testing.T) {
	local := []*types.Book{
		book("same", "2024-01-01T00:00:00Z", nil),
		book("local-newer", "2024-03-01T00:00:00Z", nil),
		book("remote-newer", "2024-01-01T00:00:00Z", nil),
		book("remote-deletes", "2024-01-01T00:00:00Z", nil),
		book("local-only", "2024-01-01T00:00:00Z", nil),
		book("local-tombstone", "2024-01-01T00:00:00Z", strPtr("2024-01-01T00:00:00Z")),
	}
	remote := []*types.Book{
		book("same", "2024-01-01T00:00:00Z", nil),
		book("local-newer", "2024-02-01T00:00:00Z", nil),
		book("remote-newer", "2024-02-01T00:00:00Z", nil),
		book("remote-deletes", "2024-02-01T00:00:00Z", strPtr("2024-02-01T00:00:00Z")),
		book("remote-only", "2024-01-01T00:00:00Z", nil),
		book("remote-dead", "2024-01-01T00:00:00Z", strPtr("2024-01-01T00:00:00Z")),
	}

	got := MergeSets(local, remote)

	wantInsert := map[string]bool{"remote-only": true}
	wantUpdate := map[string]bool{"remote-newer": true}
	wantDelete := map[string]bool{"remote-deletes": true}
	wantUnchanged := map[string]bool{"same": true, "local-newer": true, "local-only": true}

	checks := []struct {
		bucket string
		got    map[string]bool
		want   map[string]bool
	}{
		{"Insert", bucketIDs(got.Insert), wantInsert},
		{"Update", bucketIDs(got.Update), wantUpdate},
		{"Delete", bucketIDs(got.Delete), wantDelete},
		{"Unchanged", bucketIDs(got.Unchanged), wantUnchanged},
	}
	for _, c := range checks {
		if len(c.got) != len(c.want) {
			t.Errorf("%s bucket = %v, want %v", c.bucket, c.got, c.want)
			continue
		}
		for id := range c.want {
			if !c.got[id] {
				t.Errorf("%s bucket missing %s", c.bucket, id)
			}
		}
	}
}

func TestMergeSetsKeptTombstoneDropped(t *testing.T) {
	// A local tombstone with no newer remote counterpart stays tombstoned
	// in storage but must not surface in any bucket.
	local := []*types.Book{book("dead", "2024-02-01T00:00:00Z", strPtr("2024-02-01T00:00:00Z"))}
	remote := []*types.Book{book("dead", "2024-01-01T00:00:00Z", nil)}

	got := MergeSets(local, remote)
	total := len(got.Insert) + len(got.Update) + len(got.Delete) + len(got.Unchanged)
	if total != 0 {
		t.Errorf("MergeSets() produced %d bucketed entities, want 0", total)
	}
}

func TestMergeSetsDuplicateIDsLastWins(t *testing.T) {
	older := book("b1", "2024-01-01T00:00:00Z", nil)
	newer := book("b1", "2024-02-01T00:00:00Z", nil)

	// Duplicate ids in one input collapse last-seen-wins before merging.
	got := MergeSets([]*types.Book{older, newer}, nil)

	if len(got.Unchanged) != 1 {
		t.Fatalf("MergeSets() unchanged = %d entities, want 1", len(got.Unchanged))
	}
	if got.Unchanged[0] != newer {
		t.Errorf("MergeSets() kept %v, want the last-seen duplicate", got.Unchanged[0])
	}
}

func TestMergeSetsEmptyInputs(t *testing.T) {
	got := MergeSets[*types.Book](nil, nil)
	if len(got.Insert)+len(got.Update)+len(got.Delete)+len(got.Unchanged) != 0 {
		t.Errorf("MergeSets(nil, nil) produced non-empty buckets")
	}
}
