package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/matzehuels/fwmeta/pkg/errors"
)

var idRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// FileStore keeps each entry in <dir>/<id>.json.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file-based store.
// If dir is empty, defaults to <user data dir>/fwmeta/catalog.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "locate home directory")
		}
		dir = filepath.Join(home, ".local", "share", "fwmeta", "catalog")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create catalog directory %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) entryPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) Put(ctx context.Context, e *Entry) error {
	if !idRe.MatchString(e.ID) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid entry id %q", e.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode entry %s", e.ID)
	}
	if err := os.WriteFile(s.entryPath(e.ID), data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write entry %s", e.ID)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Entry, error) {
	if !idRe.MatchString(id) {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read(s.entryPath(id))
}

func (s *FileStore) List(ctx context.Context, f Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list catalog %s", s.dir)
	}

	var out []*Entry
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		e, err := s.read(filepath.Join(s.dir, file.Name()))
		if err != nil || e == nil {
			continue
		}
		if f.match(e) {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScannedAt.After(out[j].ScannedAt)
	})
	if len(out) > f.limit() {
		out = out[:f.limit()]
	}
	return out, nil
}

func (s *FileStore) read(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read entry %s", path)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode entry %s", path)
	}
	return &e, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the catalog directory.
func (s *FileStore) Path() string {
	return s.dir
}

var _ Store = (*FileStore)(nil)
