// Package media is the hosted-media facade used by the inventory service.
//
// It narrows the storage layer to the two operations the product lifecycle
// needs — upload a new image, delete a stored one — and returns the
// (URL, ID) locator pair that is persisted on the product row. The ID is
// the object key; it is all that is needed to later delete or replace the
// image.
package media

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/stockroom/pkg/storage"
)

// Image is the stable locator pair returned by the media store.
type Image struct {
	URL string
	ID  string
}

// Store is the narrow media-store interface the mutation service consumes.
// Tests substitute failing fakes to exercise partial-failure paths.
type Store interface {
	// Upload stores the image bytes and returns its locator pair.
	Upload(filename string, r io.Reader) (Image, error)

	// Delete removes the object identified by id.
	Delete(id string) error
}

// DiskStore implements Store on top of the storage abstraction (local or
// S3-compatible, whichever disk is configured as default).
type DiskStore struct {
	disk   storage.Disk
	prefix string
}

// NewDiskStore creates a DiskStore writing under the given key prefix.
func NewDiskStore(disk storage.Disk, prefix string) *DiskStore {
	return &DiskStore{disk: disk, prefix: strings.Trim(prefix, "/")}
}

// Upload stores the image under a fresh random key, preserving the original
// file extension so content-type sniffing by CDNs keeps working.
func (s *DiskStore) Upload(filename string, r io.Reader) (Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Image{}, fmt.Errorf("media: read upload: %w", err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("media: empty upload %q", filename)
	}

	key := s.key(filename)
	if err := s.disk.Put(key, data); err != nil {
		return Image{}, fmt.Errorf("media: upload %q: %w", filename, err)
	}

	return Image{URL: s.disk.URL(key), ID: key}, nil
}

// Delete removes the stored object. Unknown ids are not an error — the
// outcome (object absent) is the same.
func (s *DiskStore) Delete(id string) error {
	if id == "" {
		return nil
	}
	if err := s.disk.Delete(id); err != nil {
		return fmt.Errorf("media: delete %q: %w", id, err)
	}
	return nil
}

// Keys lists every stored object id under the store's prefix.
// Used by the prune command to find orphans.
func (s *DiskStore) Keys() ([]string, error) {
	keys, err := s.disk.AllFiles(s.prefix)
	if err != nil {
		return nil, fmt.Errorf("media: list: %w", err)
	}
	return keys, nil
}

func (s *DiskStore) key(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return s.prefix + "/" + uuid.NewString() + ext
}
