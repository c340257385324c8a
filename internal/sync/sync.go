// Package sync orchestrates payload export and merge-on-import between
// the local catalog and a remote device snapshot.
package sync

import "errors"

// ErrSchemaMismatch marks a payload rejected because its schema version is
// incompatible with the local database. The check fails closed: nothing in
// this package guesses forward or backward compatibility.
var ErrSchemaMismatch = errors.New("incompatible schema version")

// ErrUnsupportedVersion marks a payload written in a format newer than
// this build understands.
var ErrUnsupportedVersion = errors.New("unsupported payload version")

// Device identifies the local installation. It is passed explicitly into
// export and import rather than read from ambient state, so both
// operations are plain functions of their inputs.
type Device struct {
	ID       string
	Name     string
	Platform string
}
