// Package payload defines the portable snapshot one device exports for
// synchronization: a versioned, self-describing JSON document holding
// every syncable table, tombstones included.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stacksapp/stacks/internal/types"
)

// FormatVersion is the payload format this build writes and the newest it
// understands.
const FormatVersion = 1

// ErrMalformed marks a payload rejected before any merge step ran:
// undecodable JSON or missing required top-level fields.
var ErrMalformed = errors.New("malformed sync payload")

// Payload is the wire and at-rest representation of one device's full
// exported state.
type Payload struct {
	Version       int      `json:"version"`
	SchemaVersion int      `json:"schemaVersion"`
	ExportedAt    string   `json:"exportedAt"`
	DeviceID      string   `json:"deviceId"`
	DeviceName    string   `json:"deviceName"`
	Platform      string   `json:"platform"`
	Entities      Entities `json:"entities"`
}

// Entities holds one collection per syncable table. Soft-deleted rows are
// included so tombstones propagate to other devices.
type Entities struct {
	Books              []*types.Book                `json:"books"`
	Authors            []*types.Author              `json:"authors"`
	BookAuthors        []*types.BookAuthor          `json:"bookAuthors"`
	Collections        []*types.Collection          `json:"collections"`
	CollectionBooks    []*types.CollectionBook      `json:"collectionBooks"`
	StorageLocations   []*types.StorageLocation     `json:"storageLocations"`
	BookStorageHistory []*types.StorageHistoryEntry `json:"bookStorageHistory"`
	ReadingSessions    []*types.ReadingSession      `json:"readingSessions"`
	FilterPresets      []*types.FilterPreset        `json:"filterPresets"`
	VocabCustom        []*types.VocabEntry          `json:"vocabCustom"`
}

// Decode parses and validates a payload document.
func Decode(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Encode serializes the payload for upload or file export.
func (p *Payload) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return data, nil
}

// Validate checks the required top-level fields. Entity contents are not
// inspected here; per-row anomalies are the merge layer's concern.
func (p *Payload) Validate() error {
	if p.Version <= 0 {
		return fmt.Errorf("%w: missing or invalid version", ErrMalformed)
	}
	if p.SchemaVersion <= 0 {
		return fmt.Errorf("%w: missing or invalid schemaVersion", ErrMalformed)
	}
	if p.ExportedAt == "" {
		return fmt.Errorf("%w: missing exportedAt", ErrMalformed)
	}
	if p.DeviceID == "" {
		return fmt.Errorf("%w: missing deviceId", ErrMalformed)
	}
	return nil
}
