// Package archive reads ZIP packages and walks them, including archives
// nested inside archives, to find boot files.
//
// Nested archives are decompressed into memory and opened from there, so a
// package is never unpacked to disk.
package archive

import (
	"bytes"
	"io"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/fwmeta/pkg/errors"
)

// Entry is one member of an archive.
type Entry struct {
	Name     string    // path within the immediate parent archive
	IsFile   bool      // false for directory markers
	Size     int64     // uncompressed size in bytes
	Modified time.Time // UTC

	file *zip.File
}

// Reader is an open archive.
type Reader struct {
	name   string
	zr     *zip.Reader
	closer io.Closer
}

// Open opens the archive at path. The display name is the file's base name.
//
// A missing file is NOT_FOUND; a file that is not a ZIP archive is
// MALFORMED_ARCHIVE.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "package not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stat %s", path)
	}
	if info.IsDir() {
		f.Close()
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is a directory", path)
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, errors.Wrap(errors.ErrCodeMalformedArchive, err, "open archive %s", path)
	}
	return &Reader{name: filepath.Base(path), zr: zr, closer: f}, nil
}

// OpenBytes opens an archive held in memory, typically the content of an
// entry extracted from a parent archive.
func OpenBytes(data []byte, name string) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedArchive, err, "open nested archive %s", name)
	}
	return &Reader{name: name, zr: zr}, nil
}

// Name returns the display name of the archive.
func (r *Reader) Name() string {
	return r.name
}

// Entries returns the archive members in archive order.
func (r *Reader) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, f := range r.zr.File {
			e := Entry{
				Name:     f.Name,
				IsFile:   !f.FileInfo().IsDir(),
				Size:     int64(f.UncompressedSize64),
				Modified: f.Modified.UTC(),
				file:     f,
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Open returns a stream of the decompressed entry content.
func (r *Reader) Open(e Entry) (io.ReadCloser, error) {
	if e.file == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "entry %s does not belong to %s", e.Name, r.name)
	}
	rc, err := e.file.Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedArchive, err, "open %s in %s", e.Name, r.name)
	}
	return rc, nil
}

// ReadAll reads the full decompressed content of an entry.
func (r *Reader) ReadAll(e Entry) ([]byte, error) {
	rc, err := r.Open(e)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var buf bytes.Buffer
	if e.Size > 0 && e.Size < maxPrealloc {
		buf.Grow(int(e.Size))
	}
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedArchive, err, "read %s in %s", e.Name, r.name)
	}
	return buf.Bytes(), nil
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// maxPrealloc caps the buffer reserved up front from the declared entry size.
const maxPrealloc = 64 << 20
