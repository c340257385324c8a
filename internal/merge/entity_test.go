package merge

import (
	"testing"

	"github.com/stacksapp/stacks/internal/types"
)

func book(id, updatedAt string, deletedAt *string) *types.Book {
	return &types.Book{
		SyncMeta: types.SyncMeta{ID: id, UpdatedAt: updatedAt, DeletedAt: deletedAt},
		Title:    "Title of " + id,
	}
}

func TestMergeEntity(t *testing.T) {
	tests := []struct {
		name       string
		local      *types.Book
		remote     *types.Book
		wantAction Action
		wantRemote bool // expect the remote copy as the result
	}{
		{
			name:       "both absent",
			wantAction: ActionSkip,
		},
		{
			name:       "remote only live",
			remote:     book("b1", "2024-01-01T00:00:00Z", nil),
			wantAction: ActionInsert,
			wantRemote: true,
		},
		{
			name:       "remote only tombstoned is never materialized",
			remote:     book("b2", "2024-01-01T00:00:00Z", strPtr("2024-01-01T00:00:00Z")),
			wantAction: ActionSkip,
		},
		{
			name:       "local only is kept, even tombstoned",
			local:      book("b3", "2024-01-01T00:00:00Z", strPtr("2024-01-02T00:00:00Z")),
			wantAction: ActionKeep,
		},
		{
			name:       "remote strictly newer wins",
			local:      book("b4", "2024-01-01T00:00:00Z", nil),
			remote:     book("b4", "2024-02-01T00:00:00Z", nil),
			wantAction: ActionUpdate,
			wantRemote: true,
		},
		{
			name:       "remote newer tombstone propagates",
			local:      book("b5", "2024-01-01T00:00:00Z", nil),
			remote:     book("b5", "2024-02-01T00:00:00Z", strPtr("2024-02-01T00:00:00Z")),
			wantAction: ActionDelete,
			wantRemote: true,
		},
		{
			name:       "local newer wins over remote tombstone",
			local:      book("b6", "2024-03-01T00:00:00Z", nil),
			remote:     book("b6", "2024-01-01T00:00:00Z", strPtr("2024-01-02T00:00:00Z")),
			wantAction: ActionKeep,
		},
		{
			name:       "tie keeps local",
			local:      book("b7", "2024-01-01T00:00:00Z", nil),
			remote:     book("b7", "2024-01-01T00:00:00Z", nil),
			wantAction: ActionKeep,
		},
		{
			name:       "missing local timestamp loses",
			local:      book("b8", "", nil),
			remote:     book("b8", "2024-01-01T00:00:00Z", nil),
			wantAction: ActionUpdate,
			wantRemote: true,
		},
		{
			name:       "both timestamps missing is a tie, local wins",
			local:      book("b9", "", nil),
			remote:     book("b9", "", nil),
			wantAction: ActionKeep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, action := MergeEntity(tt.local, tt.local != nil, tt.remote, tt.remote != nil)
			if action != tt.wantAction {
				t.Fatalf("MergeEntity() action = %s, want %s", action, tt.wantAction)
			}
			switch tt.wantAction {
			case ActionSkip:
				if got != nil {
					t.Errorf("MergeEntity() returned entity %v for skip, want nil", got)
				}
			default:
				want := tt.local
				if tt.wantRemote {
					want = tt.remote
				}
				if got != want {
					t.Errorf("MergeEntity() = %v, want %v", got, want)
				}
			}
		})
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{ActionInsert, "insert"},
		{ActionUpdate, "update"},
		{ActionDelete, "delete"},
		{ActionKeep, "keep"},
		{ActionSkip, "skip"},
		{Action(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("Action(%d).String() = %q, want %q", tt.action, got, tt.want)
		}
	}
}
