// Package ziptest builds ZIP fixtures for tests.
package ziptest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

// Epoch is the timestamp given to entries that don't set one.
var Epoch = time.Date(2020, 6, 1, 12, 30, 0, 0, time.UTC)

// File is one archive member.
type File struct {
	Name     string
	Data     []byte
	Modified time.Time
	Dir      bool
}

// Dir returns a directory marker entry.
func Dir(name string) File {
	return File{Name: name, Dir: true}
}

// Nested returns an entry whose content is itself an archive of files.
func Nested(t testing.TB, name string, files ...File) File {
	t.Helper()
	return File{Name: name, Data: Build(t, files...)}
}

// Build returns the bytes of an archive containing files, in order.
func Build(t testing.TB, files ...File) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		name := f.Name
		if f.Dir && name[len(name)-1] != '/' {
			name += "/"
		}
		mod := f.Modified
		if mod.IsZero() {
			mod = Epoch
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: mod,
		})
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if f.Dir {
			continue
		}
		if _, err := w.Write(f.Data); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes an archive of files to dir/name and returns its path.
func WriteFile(t testing.TB, dir, name string, files ...File) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(t, files...), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
