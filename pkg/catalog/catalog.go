// Package catalog persists scan results and serves them over HTTP.
//
// Entries are keyed by where the boot file was found: the package path, the
// chain of nested archives and the entry name. Rescanning a package updates
// its entries; the same boot file shipped in two packages, or at two depths
// of one package, is stored twice. The content hash is kept on each entry
// and can be filtered on.
//
// Backends:
//   - [FileStore]: one JSON file per entry in a local directory
//   - [MongoStore]: a MongoDB collection
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/fwmeta/pkg/errors"
	"github.com/matzehuels/fwmeta/pkg/software"
	"github.com/matzehuels/fwmeta/pkg/zipmeta"
)

// DefaultLimit caps List results when no limit is given.
const DefaultLimit = 100

// Entry is a stored scan result.
type Entry struct {
	ID        string             `json:"id" bson:"_id"`
	Hash      string             `json:"hash" bson:"hash"`
	RunID     string             `json:"run_id" bson:"run_id"`
	Package   string             `json:"package" bson:"package"`
	Archive   string             `json:"archive" bson:"archive"`
	Chain     []string           `json:"chain,omitempty" bson:"chain,omitempty"`
	Entry     string             `json:"entry" bson:"entry"`
	ScannedAt time.Time          `json:"scanned_at" bson:"scanned_at"`
	Software  *software.Software `json:"software" bson:"software"`
}

// Filter narrows List results.
type Filter struct {
	Platform string // camera platform, exact match
	Hash     string // boot file content hash, exact match
	Limit    int    // default: DefaultLimit
}

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

func (f Filter) match(e *Entry) bool {
	if f.Hash != "" && e.Hash != f.Hash {
		return false
	}
	if f.Platform == "" {
		return true
	}
	return e.Software != nil && e.Software.Camera != nil && e.Software.Camera.Platform == f.Platform
}

// Store persists entries.
type Store interface {
	// Put inserts or replaces the entry with e.ID.
	Put(ctx context.Context, e *Entry) error
	// Get returns the entry with id, or nil if there is none.
	Get(ctx context.Context, id string) (*Entry, error)
	// List returns matching entries, most recently scanned first.
	List(ctx context.Context, f Filter) ([]*Entry, error)
	// Close releases backend resources.
	Close() error
}

// NewRunID returns a fresh identifier for one scan invocation.
func NewRunID() string {
	return uuid.NewString()
}

// NewEntry builds an entry for a scan result.
func NewEntry(runID string, res *zipmeta.Result, scannedAt time.Time) (*Entry, error) {
	if res.Software == nil || res.Software.Hash == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "record for %s has no content hash", res.Archive)
	}
	return &Entry{
		ID:        EntryID(res.Package, res.Chain, res.Entry),
		Hash:      res.Software.Hash.Value,
		RunID:     runID,
		Package:   res.Package,
		Archive:   res.Archive,
		Chain:     res.Chain,
		Entry:     res.Entry,
		ScannedAt: scannedAt.UTC(),
		Software:  res.Software,
	}, nil
}

// EntryID identifies the boot file at entry inside the nested archives chain
// of the package at pkg. Relative package paths are made absolute first.
func EntryID(pkg string, chain []string, entry string) string {
	if abs, err := filepath.Abs(pkg); err == nil {
		pkg = abs
	}
	h := sha256.New()
	h.Write([]byte(pkg))
	for _, name := range chain {
		h.Write([]byte{0})
		h.Write([]byte(name))
	}
	h.Write([]byte{0})
	h.Write([]byte(entry))
	return hex.EncodeToString(h.Sum(nil))
}
