package chdk

import (
	"context"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/matzehuels/fwmeta/pkg/errors"
	"github.com/matzehuels/fwmeta/pkg/software"
)

// DefaultLanguage is assumed when a package name has no language suffix.
const DefaultLanguage = "en"

// packageNameRe matches <platform>-<revision>-<version>[-<build>][-full|-small][_<lang>].zip
var packageNameRe = regexp.MustCompile(
	`(?i)^([a-z0-9_]+)-(\d{3}[a-z])-(\d+(?:\.\d+)+(?:-?(?:alpha|beta|rc)\d*)?)(?:-(\d+))?(?:-(full|small))?(?:_([a-z]{2,3}(?:-[a-z0-9]+)*))?\.zip$`,
)

// PackageName is a parsed CHDK package file name.
type PackageName struct {
	Platform string
	Revision string
	Version  string
	Build    string // changeset number, if present
	Flavor   string // "full", "small" or empty
	Language string // canonical BCP 47 tag
}

// ParseName parses a package display name. Names that do not follow the
// CHDK naming convention are INVALID_INPUT.
func ParseName(name string) (*PackageName, error) {
	m := packageNameRe.FindStringSubmatch(name)
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unrecognized package name: %s", name)
	}

	lang := m[6]
	if lang == "" {
		lang = DefaultLanguage
	}
	tag, err := CanonicalLanguage(lang)
	if err != nil {
		return nil, err
	}

	return &PackageName{
		Platform: strings.ToLower(m[1]),
		Revision: strings.ToLower(m[2]),
		Version:  strings.ToLower(m[3]),
		Build:    m[4],
		Flavor:   strings.ToLower(m[5]),
		Language: tag,
	}, nil
}

// CanonicalLanguage returns the canonical BCP 47 form of a language tag.
func CanonicalLanguage(s string) (string, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid language %q", s)
	}
	return tag.String(), nil
}

// FileName derives product and camera from package names.
type FileName struct {
	ProductName string
}

// Product returns the product implied by name, created at the given time.
func (f *FileName) Product(ctx context.Context, name string, created time.Time) (*software.Product, error) {
	pn, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	return &software.Product{
		Name:     f.ProductName,
		Version:  pn.Version,
		Language: pn.Language,
		Created:  created.UTC(),
	}, nil
}

// Camera returns the camera implied by name.
func (f *FileName) Camera(ctx context.Context, name string) (*software.Camera, error) {
	pn, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	return &software.Camera{Platform: pn.Platform, Revision: pn.Revision}, nil
}
