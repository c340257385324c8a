package merge

import "testing"

func strPtr(s string) *string { return &s }

func TestEpochMillis(t *testing.T) {
	tests := []struct {
		name string
		ts   string
		want int64
	}{
		{
			name: "rfc3339 utc",
			ts:   "2024-01-01T00:00:00Z",
			want: 1704067200000,
		},
		{
			name: "rfc3339 with offset",
			ts:   "2024-01-01T01:00:00+01:00",
			want: 1704067200000,
		},
		{
			name: "date only",
			ts:   "2024-01-01",
			want: 1704067200000,
		},
		{
			name: "empty treated as epoch",
			ts:   "",
			want: 0,
		},
		{
			name: "garbage treated as epoch",
			ts:   "not-a-timestamp",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EpochMillis(tt.ts)
			if got != tt.want {
				t.Errorf("EpochMillis(%q) = %d, want %d", tt.ts, got, tt.want)
			}
		})
	}
}

func TestCompareTimestamps(t *testing.T) {
	tests := []struct {
		name string
		a    *string
		b    *string
		want int
	}{
		{
			name: "both absent",
			a:    nil,
			b:    nil,
			want: 0,
		},
		{
			name: "present beats absent",
			a:    strPtr("2024-01-01T00:00:00Z"),
			b:    nil,
			want: 1,
		},
		{
			name: "absent loses to present",
			a:    nil,
			b:    strPtr("2024-01-01T00:00:00Z"),
			want: -1,
		},
		{
			name: "a later",
			a:    strPtr("2024-02-01T00:00:00Z"),
			b:    strPtr("2024-01-01T00:00:00Z"),
			want: 1,
		},
		{
			name: "a earlier",
			a:    strPtr("2024-01-01T00:00:00Z"),
			b:    strPtr("2024-02-01T00:00:00Z"),
			want: -1,
		},
		{
			name: "equal",
			a:    strPtr("2024-01-01T00:00:00Z"),
			b:    strPtr("2024-01-01T00:00:00Z"),
			want: 0,
		},
		{
			name: "same instant different zones",
			a:    strPtr("2024-01-01T01:00:00+01:00"),
			b:    strPtr("2024-01-01T00:00:00Z"),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareTimestamps(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("CompareTimestamps() = %d, want %d", got, tt.want)
			}
		})
	}
}
