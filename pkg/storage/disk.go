// Package storage abstracts where uploaded files live.
//
// Two drivers are available:
//   - "local"  local filesystem, served back by the HTTP server (default)
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
//	disk, err := storage.New(ctx, cfg)
//	err = disk.Put(ctx, "commandes/1700000000000-ab12cd34.jpg", file, "image/jpeg")
//	url := disk.URL("commandes/1700000000000-ab12cd34.jpg")
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidPath = errors.New("storage: invalid path")

// Disk is the filesystem driver interface. Paths are slash separated keys
// relative to the disk root.
type Disk interface {
	// Put writes r to path, creating parent directories as needed.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}
