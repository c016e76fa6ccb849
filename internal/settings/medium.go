package settings

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// Blank is the value of an erased byte on the storage medium.
const Blank = 0xFF

// Medium is byte-addressable persistent storage, such as an EEPROM.
type Medium interface {
	io.ReaderAt
	io.WriterAt
}

// Memory is a Medium held in memory. Its zero value is unusable; use
// NewMemory.
type Memory struct {
	data []byte
}

var _ Medium = (*Memory)(nil)

// NewMemory creates a blank in-memory medium of the given size.
func NewMemory(size int) *Memory {
	data := make([]byte, size)
	for i := range data {
		data[i] = Blank
	}
	return &Memory{data: data}
}

// Bytes returns the underlying storage.
func (m *Memory) Bytes() []byte { return m.data }

// ReadAt implements io.ReaderAt.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, errors.Errorf("write of %d bytes at %d exceeds medium size %d", len(p), off, len(m.data))
	}
	return copy(m.data[off:], p), nil
}

// File is a Medium backed by an EEPROM image file.
type File struct {
	f *os.File
}

var _ Medium = (*File)(nil)

// OpenFile opens the image file at path, creating it filled with Blank bytes
// if it does not exist or is shorter than size.
func OpenFile(path string, size int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open settings file")
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to stat settings file")
	}

	if pad := int64(size) - st.Size(); pad > 0 {
		blank := make([]byte, pad)
		for i := range blank {
			blank[i] = Blank
		}
		if _, err := f.WriteAt(blank, st.Size()); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "failed to blank settings file")
		}
	}

	return &File{f: f}, nil
}

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.f.ReadAt(p, off)
}

// WriteAt implements io.WriterAt. Every write is synced to disk.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	n, err := f.f.WriteAt(p, off)
	if err != nil {
		return n, err
	}
	return n, f.f.Sync()
}

// Close closes the file.
func (f *File) Close() error {
	return f.f.Close()
}
