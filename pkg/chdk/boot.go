package chdk

import (
	"maps"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matzehuels/fwmeta/pkg/errors"
)

// DefaultBootFiles maps each category to the file the camera boots from.
var DefaultBootFiles = map[string]string{
	CategoryPS:  "DISKBOOT.BIN",
	CategoryEOS: "AUTOEXEC.BIN",
}

// BootTable resolves boot file names by category.
type BootTable struct {
	files map[string]string
}

// categoryKey normalizes a category name. Casers are stateful, so each call
// gets its own.
func categoryKey(s string) string {
	return cases.Upper(language.Und).String(s)
}

// NewBootTable returns the default table with overrides applied.
// Category names are case-insensitive.
func NewBootTable(overrides map[string]string) *BootTable {
	files := make(map[string]string, len(DefaultBootFiles)+len(overrides))
	for k, v := range DefaultBootFiles {
		files[categoryKey(k)] = v
	}
	for k, v := range overrides {
		files[categoryKey(k)] = v
	}
	return &BootTable{files: files}
}

// BootFileName returns the boot file for category.
func (b *BootTable) BootFileName(category string) (string, error) {
	name, ok := b.files[categoryKey(category)]
	if !ok {
		return "", errors.New(errors.ErrCodeUnsupported, "no boot file for category %q", category)
	}
	return name, nil
}

// Categories returns the known category names, sorted.
func (b *BootTable) Categories() []string {
	return slices.Sorted(maps.Keys(b.files))
}
