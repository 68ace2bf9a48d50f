package media_test

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockroom/pkg/media"
)

// memDisk is an in-memory storage.Disk.
type memDisk struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemDisk() *memDisk {
	return &memDisk{objects: map[string][]byte{}}
}

func (d *memDisk) Put(path string, content []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objects[path] = content
	return nil
}

func (d *memDisk) PutStream(path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return d.Put(path, data)
}

func (d *memDisk) Get(path string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.objects[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (d *memDisk) Exists(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.objects[path]
	return ok
}

func (d *memDisk) Size(path string) (int64, error) {
	data, err := d.Get(path)
	return int64(len(data)), err
}

func (d *memDisk) URL(path string) string {
	return "http://media.test/" + path
}

func (d *memDisk) Delete(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.objects, path)
	return nil
}

func (d *memDisk) AllFiles(directory string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var keys []string
	for k := range d.objects {
		if strings.HasPrefix(k, directory+"/") {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func TestUpload(t *testing.T) {
	disk := newMemDisk()
	store := media.NewDiskStore(disk, "products")

	img, err := store.Upload("Photo.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(img.ID, "products/"), "keys live under the prefix")
	assert.True(t, strings.HasSuffix(img.ID, ".png"), "extension preserved, lowercased")
	assert.Equal(t, "http://media.test/"+img.ID, img.URL)
	assert.True(t, disk.Exists(img.ID))
}

func TestUploadEmpty(t *testing.T) {
	store := media.NewDiskStore(newMemDisk(), "products")

	_, err := store.Upload("photo.png", strings.NewReader(""))
	assert.Error(t, err)
}

func TestUploadUniqueKeys(t *testing.T) {
	store := media.NewDiskStore(newMemDisk(), "products")

	a, err := store.Upload("photo.png", strings.NewReader("x"))
	require.NoError(t, err)
	b, err := store.Upload("photo.png", strings.NewReader("x"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID, "same filename must not collide")
}

func TestDelete(t *testing.T) {
	disk := newMemDisk()
	store := media.NewDiskStore(disk, "products")

	img, err := store.Upload("photo.png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(img.ID))
	assert.False(t, disk.Exists(img.ID))

	assert.NoError(t, store.Delete(""), "blank id is a no-op")
}

func TestPrune(t *testing.T) {
	disk := newMemDisk()
	store := media.NewDiskStore(disk, "products")

	kept, err := store.Upload("kept.png", strings.NewReader("x"))
	require.NoError(t, err)
	orphanA, err := store.Upload("orphan-a.png", strings.NewReader("x"))
	require.NoError(t, err)
	orphanB, err := store.Upload("orphan-b.png", strings.NewReader("x"))
	require.NoError(t, err)

	removed, err := store.Prune(map[string]bool{kept.ID: true})
	require.NoError(t, err)

	assert.Equal(t, 2, removed)
	assert.True(t, disk.Exists(kept.ID))
	assert.False(t, disk.Exists(orphanA.ID))
	assert.False(t, disk.Exists(orphanB.ID))
}
