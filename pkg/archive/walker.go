package archive

import (
	"context"
	"io"
	"iter"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fwmeta/pkg/errors"
	"github.com/matzehuels/fwmeta/pkg/observability"
)

// DefaultNestedExtension marks entries that are archives themselves.
const DefaultNestedExtension = ".zip"

// Extraction is a boot file found during a walk.
type Extraction struct {
	Data     []byte    // full boot file content
	Entry    string    // entry name within its immediate archive
	Archive  string    // display name of the archive that contains the entry
	Chain    []string  // display names from the top-level package down to Archive
	Modified time.Time // entry timestamp, UTC
	Depth    int       // 0 for entries of the top-level package
}

// Walker finds boot files in an archive and every archive nested inside it.
type Walker struct {
	BootFile        string      // entry name to extract, compared case-insensitively
	NestedExtension string      // extension of nested archives (default: .zip)
	Logger          *log.Logger // optional
}

// Walk visits the entries of r depth-first and yields every boot file it
// finds, in discovery order. A nested archive is walked completely before
// the entries that follow it in its parent.
//
// The walk stops at the first error, which is yielded once: a nested archive
// that cannot be opened is MALFORMED_ARCHIVE, and a cancelled context yields
// ctx.Err(). Nested readers are closed on every exit path, including when the
// consumer stops early. r itself stays open and belongs to the caller.
func (w *Walker) Walk(ctx context.Context, r *Reader, name string) iter.Seq2[Extraction, error] {
	return func(yield func(Extraction, error) bool) {
		stopped, err := w.walk(ctx, r, []string{name}, yield)
		if err != nil && !stopped {
			yield(Extraction{}, err)
		}
	}
}

// walk returns stopped=true when the consumer asked to stop; a non-nil error
// ends the walk and has not been yielded yet.
func (w *Walker) walk(ctx context.Context, r *Reader, chain []string, yield func(Extraction, error) bool) (stopped bool, err error) {
	name := chain[len(chain)-1]
	depth := len(chain) - 1
	logger := w.logger()

	logger.Debug("enter archive", "archive", name, "depth", depth)
	observability.Scan().OnArchiveEnter(ctx, name, depth)
	defer func() {
		logger.Debug("exit archive", "archive", name, "depth", depth)
		observability.Scan().OnArchiveExit(ctx, name, depth, err)
	}()

	for e := range r.Entries() {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if !e.IsFile {
			continue
		}

		if w.isNested(e.Name) {
			if stopped, err := w.walkNested(ctx, r, e, chain, yield); stopped || err != nil {
				return stopped, err
			}
		}

		if strings.EqualFold(e.Name, w.BootFile) {
			data, err := r.ReadAll(e)
			if err != nil {
				return false, err
			}
			logger.Debug("boot file found", "archive", name, "entry", e.Name, "size", len(data))
			observability.Scan().OnExtraction(ctx, name, e.Name, len(data), depth)

			x := Extraction{
				Data:     data,
				Entry:    e.Name,
				Archive:  name,
				Chain:    slices.Clone(chain),
				Modified: e.Modified,
				Depth:    depth,
			}
			if !yield(x, nil) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (w *Walker) walkNested(ctx context.Context, r *Reader, e Entry, chain []string, yield func(Extraction, error) bool) (bool, error) {
	data, err := r.ReadAll(e)
	if err != nil {
		return false, err
	}
	child, err := OpenBytes(data, path.Base(e.Name))
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeMalformedArchive, err, "nested archive %s in %s", e.Name, r.Name())
	}
	defer child.Close()

	return w.walk(ctx, child, append(slices.Clip(chain), child.Name()), yield)
}

func (w *Walker) isNested(name string) bool {
	ext := w.NestedExtension
	if ext == "" {
		ext = DefaultNestedExtension
	}
	return strings.EqualFold(path.Ext(name), ext)
}

func (w *Walker) logger() *log.Logger {
	if w.Logger == nil {
		return discard
	}
	return w.Logger
}

var discard = log.NewWithOptions(io.Discard, log.Options{})
