package corpus

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source is a read-only, byte-addressable corpus. Concurrent ReadAt calls must
// be safe, since every counting worker reads its own range.
type Source interface {
	io.ReaderAt
	Size() int64
}

// File is a memory-mapped corpus file.
//
// Always call Close when done to unmap the file.
type File struct {
	file   *os.File
	data   []byte // mmap'd region (read-only), nil for empty files
	reader *bytes.Reader
	closed bool
}

// Open memory-maps the file at path for reading.
func Open(path string) (*File, error) {
	//nolint:gosec // G304: corpus path comes from the user by design
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat corpus: %w", err)
	}
	if stat.IsDir() {
		_ = file.Close()
		return nil, fmt.Errorf("corpus %s is a directory", path)
	}

	var data []byte
	if stat.Size() > 0 {
		data, err = mmapFile(file, stat.Size())
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("mmap failed: %w", err)
		}
	}

	return &File{
		file:   file,
		data:   data,
		reader: bytes.NewReader(data),
	}, nil
}

// ReadAt implements io.ReaderAt over the mapped region.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, fmt.Errorf("corpus is closed")
	}
	return f.reader.ReadAt(p, off)
}

// Size returns the corpus length in bytes.
func (f *File) Size() int64 {
	return int64(len(f.data))
}

// Name returns the path the corpus was opened from.
func (f *File) Name() string {
	return f.file.Name()
}

// Close unmaps and closes the file.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	var err error
	if f.data != nil {
		err = munmapFile(f.data)
		f.data = nil
	}

	if closeErr := f.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

// FromBytes returns an in-memory Source over b. b must not be modified while
// the Source is in use.
func FromBytes(b []byte) Source {
	return bytes.NewReader(b)
}

// FromString returns an in-memory Source over s.
func FromString(s string) Source {
	return strings.NewReader(s)
}
