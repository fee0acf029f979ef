// Package pathexpand turns a path argument that may contain wildcards into
// the concrete file paths it names.
//
// Only the file name part may contain wildcards: '*' matches any run of
// characters and '?' exactly one. Every other character, brackets and
// backslashes included, matches itself. The directory is listed without
// recursion and entries are returned in name order:
//
//	for path, err := range pathexpand.Expand("firmware/a720-*.zip") {
//	    if err != nil {
//	        return err
//	    }
//	    process(path)
//	}
package pathexpand

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/fwmeta/pkg/errors"
)

const wildcards = "?*"

// HasWildcard reports whether path contains a '?' or '*' wildcard.
func HasWildcard(path string) bool {
	return strings.ContainsAny(path, wildcards)
}

// Expand returns the concrete paths named by path.
//
// A path without wildcards yields itself unchanged; whether it exists is
// decided by whoever opens it. A wildcard path yields every regular file in
// its directory whose name matches the pattern, including symlinks to
// regular files. A directory that cannot be listed yields a single NOT_FOUND
// error; a wildcard in the directory part yields INVALID_INPUT.
//
// The sequence lists the directory on each iteration.
func Expand(path string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !HasWildcard(path) {
			yield(path, nil)
			return
		}

		dir, pattern := filepath.Split(path)
		if HasWildcard(dir) {
			yield("", errors.New(errors.ErrCodeInvalidInput, "wildcards are only supported in the file name: %s", path))
			return
		}
		listDir := dir
		if listDir == "" {
			listDir = "."
		}
		entries, err := os.ReadDir(listDir)
		if err != nil {
			yield("", errors.Wrap(errors.ErrCodeNotFound, err, "list directory %s", listDir))
			return
		}

		for _, e := range entries {
			if !Match(pattern, e.Name()) {
				continue
			}
			full := filepath.Join(dir, e.Name())
			if !isRegular(full, e) {
				continue
			}
			if !yield(full, nil) {
				return
			}
		}
	}
}

// isRegular reports whether e is a regular file or a symlink to one.
func isRegular(path string, e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// Match reports whether name matches pattern, where '*' matches any run of
// characters (including none) and '?' matches exactly one character.
func Match(pattern, name string) bool {
	p, n := []rune(pattern), []rune(name)
	var pi, ni int
	star, mark := -1, 0
	for ni < len(n) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == n[ni]):
			pi++
			ni++
		case pi < len(p) && p[pi] == '*':
			star, mark = pi, ni
			pi++
		case star >= 0:
			// Let the last '*' absorb one more character.
			mark++
			pi, ni = star+1, mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
