package merge

import "github.com/stacksapp/stacks/internal/types"

// Action is the fate assigned to one local/remote record pair.
type Action int

const (
	ActionSkip Action = iota
	ActionInsert
	ActionUpdate
	ActionDelete
	ActionKeep
)

// String returns the action name for logging and summaries
func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	case ActionKeep:
		return "keep"
	case ActionSkip:
		return "skip"
	}
	return "unknown"
}

// MergeEntity decides the fate of a single entity present on one or both
// sides. Absence is signaled through the has flags, not nil, so the
// function stays total for value and pointer types alike.
//
// The remote copy wins only when strictly newer; a timestamp tie keeps the
// local copy. That tie-break is deliberate: either direction is correct as
// long as every device agrees, and favoring local avoids churn when clocks
// on two devices happen to line up.
func MergeEntity[T types.SyncRecord](local T, hasLocal bool, remote T, hasRemote bool) (T, Action) {
	var zero T

	switch {
	case !hasLocal && !hasRemote:
		return zero, ActionSkip

	case !hasLocal:
		// Never materialize a row that is already dead remotely.
		if remote.Tombstoned() {
			return zero, ActionSkip
		}
		return remote, ActionInsert

	case !hasRemote:
		// Local has not been uploaded yet. Silence is not a deletion.
		return local, ActionKeep
	}

	if EpochMillis(remote.SyncUpdatedAt()) > EpochMillis(local.SyncUpdatedAt()) {
		if remote.Tombstoned() {
			return remote, ActionDelete
		}
		return remote, ActionUpdate
	}

	return local, ActionKeep
}
