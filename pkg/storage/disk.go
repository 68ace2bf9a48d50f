// Package storage provides the filesystem abstraction behind the media
// store.
//
// Two drivers are available out of the box:
//   - "local" — local filesystem (default, served under /storage)
//   - "s3"    — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Quick start:
//
//	storage.Connect()
//	storage.Put("products/abc.jpg", data)
//	url := storage.URL("products/abc.jpg")
package storage

import "io"

// Disk is the filesystem driver interface. Every driver must implement this.
type Disk interface {
	// Put writes content to path, creating parents as needed.
	Put(path string, content []byte) error

	// PutStream writes from r to path.
	PutStream(path string, r io.Reader) error

	// Get returns the full content of the file at path.
	Get(path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Size returns the byte size of the file.
	Size(path string) (int64, error)

	// URL returns the public URL for path.
	URL(path string) string

	// Delete removes a file. Deleting an absent path is not an error.
	Delete(path string) error

	// AllFiles lists every file under directory, recursively.
	AllFiles(directory string) ([]string, error)
}
