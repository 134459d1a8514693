package cacheentry

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// Resource is a handle to the stored bytes of a response body. The body
// may live in memory, in a file, or anywhere else that needs explicit
// reclamation.
//
// The entry holding a resource never releases it. The storage or eviction
// layer owning the entry must call Release exactly when the entry is no
// longer needed, and must not release while a read is in progress.
type Resource interface {
	// Open returns a new reader over the body bytes.
	// It may be called any number of times before Release.
	Open() (io.ReadCloser, error)
	// Size returns the length of the body in bytes.
	Size() int64
	// Release frees the storage backing the body. Only the first call
	// has an effect; later calls return the first result.
	Release() error
}

// HeapResource keeps the response body in memory.
type HeapResource struct {
	once sync.Once
	body []byte
}

// NewHeapResource creates a resource over a copy of the given bytes.
func NewHeapResource(body []byte) *HeapResource {
	buf := make([]byte, len(body))
	copy(buf, body)
	return &HeapResource{body: buf}
}

func (r *HeapResource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(r.body)), nil
}

func (r *HeapResource) Size() int64 {
	return int64(len(r.body))
}

// Release drops the body bytes. Reads after release see an empty body.
func (r *HeapResource) Release() error {
	r.once.Do(func() {
		r.body = nil
	})
	return nil
}

// FileResource keeps the response body in a file on disk.
type FileResource struct {
	path string
	size int64
	once sync.Once
	err  error
}

// NewFileResource spools the given bytes to a new file under dir and
// returns a resource backed by it. An empty dir means the default
// directory for temporary files.
func NewFileResource(dir string, body []byte) (*FileResource, error) {
	f, err := os.CreateTemp(dir, "cache-entry-*")
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	return &FileResource{path: f.Name(), size: int64(len(body))}, nil
}

// OpenFileResource returns a resource backed by an existing file.
func OpenFileResource(path string) (*FileResource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &FileResource{path: path, size: info.Size()}, nil
}

// Path returns the location of the backing file.
func (r *FileResource) Path() string {
	return r.path
}

func (r *FileResource) Open() (io.ReadCloser, error) {
	return os.Open(r.path)
}

func (r *FileResource) Size() int64 {
	return r.size
}

// Release removes the backing file.
func (r *FileResource) Release() error {
	r.once.Do(func() {
		r.err = os.Remove(r.path)
	})
	return r.err
}
