// Package merge implements last-write-wins merging of library catalog
// entities across devices.
//
// Every syncable row carries an updatedAt timestamp and an optional
// deletedAt tombstone. Merging a local and a remote copy of the same
// dataset reduces to a per-id decision (insert/update/delete/keep/skip)
// driven by timestamp comparison, plus a liveness-filtered rebuild of the
// many-to-many join tables. All functions in this package are pure; the
// storage layer applies the resulting buckets in one transaction.
package merge

import "time"

// timestampLayouts lists the formats accepted from payloads. Exports always
// write RFC 3339, but payloads produced by older builds may omit the zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// EpochMillis converts an ISO-8601 timestamp to Unix milliseconds.
// An absent or unparseable timestamp is treated as the epoch, so rows
// with no modification time always lose against rows that have one.
func EpochMillis(ts string) int64 {
	if ts == "" {
		return 0
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// CompareTimestamps imposes a total order on nullable timestamps: positive
// if a is strictly later, negative if earlier, zero if equal or both
// absent. A present timestamp sorts after an absent one.
func CompareTimestamps(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	am, bm := EpochMillis(*a), EpochMillis(*b)
	switch {
	case am > bm:
		return 1
	case am < bm:
		return -1
	}
	return 0
}
