// Package storage provides artifact publishing: mirroring rendered
// videos from the provider's short-lived URLs into owned storage.
package storage

import (
	"context"
	"errors"
)

// ErrUnsupportedSource is returned when the source URL cannot be
// fetched with a plain GET.
var ErrUnsupportedSource = errors.New("storage: unsupported source url")

// Publisher mirrors an artifact from a source URL into durable storage
// and returns the stable URL to serve it from.
type Publisher interface {
	Publish(ctx context.Context, srcURL, key string) (url string, err error)
}
