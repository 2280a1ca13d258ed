package protocols

import (
	"context"
	"io"
)

// ImageStore keeps instrument pictures and returns the URL they are served from.
type ImageStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}
