// Package transport moves sync payloads between devices through a shared
// S3-compatible bucket. Each device uploads its export under its own key;
// pulling downloads another device's key and merges it locally.
package transport

import "context"

// Client is the payload transfer surface the sync commands build on.
type Client interface {
	// Upload stores one encoded payload under key, overwriting any
	// previous version.
	Upload(ctx context.Context, key string, data []byte) error
	// Download fetches the payload stored under key. A missing key is not
	// an error; it returns (nil, nil) so callers can treat "nothing
	// uploaded yet" as an empty first sync.
	Download(ctx context.Context, key string) ([]byte, error)
}
