package storage

import "context"

// Storage persists QR artifact images so clients can fetch them by URL
// instead of carrying the inline data URI around.
type Storage interface {
	PutPNG(ctx context.Context, name string, png []byte) (url string, err error)
	Delete(ctx context.Context, name string) error
}
