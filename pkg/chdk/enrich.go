package chdk

import (
	"context"
	"regexp"
	"strings"

	"github.com/matzehuels/fwmeta/pkg/errors"
	"github.com/matzehuels/fwmeta/pkg/software"
)

// Categories returns the record's category, or Default when the record has none.
type Categories struct {
	Default string
}

// Category validates and normalizes the category.
func (c *Categories) Category(ctx context.Context, sw *software.Software) (*software.Category, error) {
	name := c.Default
	if sw.Category != nil && sw.Category.Name != "" {
		name = sw.Category.Name
	}
	name = strings.ToUpper(name)
	switch name {
	case CategoryPS, CategoryEOS:
		return &software.Category{Name: name}, nil
	}
	return nil, errors.New(errors.ErrCodeProviderFailure, "unknown category %q", name)
}

// Source channels.
const (
	ChannelRelease = "release"
	ChannelTrunk   = "trunk"
)

var knownSources = map[string]string{
	"CHDK":    "https://mighty-hoernsche.de/",
	"CHDK_DE": "https://forum.chdk-treff.de/download.php",
	"SDM":     "https://www.zenoshrdlu.com/kapstuff/zsdm.html",
	"ML":      "https://builds.magiclantern.fm/",
	"400PLUS": "https://github.com/400plus/400plus",
}

// Sources maps a product to where its builds are published.
type Sources struct{}

// Source requires a product. Stable builds come from the release channel,
// everything else from trunk.
func (Sources) Source(ctx context.Context, sw *software.Software) (*software.Source, error) {
	if sw.Product == nil {
		return nil, errors.New(errors.ErrCodeProviderFailure, "source requires a product")
	}
	url, ok := knownSources[strings.ToUpper(sw.Product.Name)]
	if !ok {
		return nil, errors.New(errors.ErrCodeProviderFailure, "unknown product %q", sw.Product.Name)
	}
	channel := ChannelRelease
	if buildStatus(sw.Product.Version) != "" {
		channel = ChannelTrunk
	}
	return &software.Source{Name: sw.Product.Name, Channel: channel, URL: url}, nil
}

var statusRe = regexp.MustCompile(`(alpha|beta|rc)\d*$`)

// buildStatus returns the pre-release marker of a version, or "" for stable.
func buildStatus(version string) string {
	return statusRe.FindString(strings.ToLower(version))
}

// Builds derives build information from the product version.
type Builds struct{}

// Build keeps a changeset found by the detector.
func (Builds) Build(ctx context.Context, sw *software.Software) (*software.Build, error) {
	if sw.Product == nil {
		return nil, errors.New(errors.ErrCodeProviderFailure, "build requires a product")
	}
	b := &software.Build{
		Name:   sw.Product.Name,
		Status: buildStatus(sw.Product.Version),
	}
	if sw.Build != nil {
		b.Changeset = sw.Build.Changeset
		b.Creator = sw.Build.Creator
	}
	return b, nil
}

// Compilers reports the toolchain CHDK builds are made with.
type Compilers struct{}

// Compiler returns the ARM GCC toolchain.
func (Compilers) Compiler(ctx context.Context, sw *software.Software) (*software.Compiler, error) {
	return &software.Compiler{Name: "gcc", Platform: "arm-none-eabi", Version: "4.9.3"}, nil
}

// Encoding names.
const (
	EncodingPlain       = "plain"
	EncodingDancingBits = "dancingbits"
)

// Encodings normalizes encoding hints.
type Encodings struct{}

// Encoding returns plain for a nil hint. Dancing bits need a variant
// between 1 and 5.
func (Encodings) Encoding(ctx context.Context, hint *software.Encoding) (*software.Encoding, error) {
	if hint == nil {
		return &software.Encoding{Name: EncodingPlain}, nil
	}
	switch name := strings.ToLower(hint.Name); name {
	case EncodingPlain:
		return &software.Encoding{Name: name}, nil
	case EncodingDancingBits:
		if hint.Data == nil || *hint.Data < 1 || *hint.Data > 5 {
			return nil, errors.New(errors.ErrCodeProviderFailure, "invalid dancing bits variant")
		}
		v := *hint.Data
		return &software.Encoding{Name: name, Data: &v}, nil
	default:
		return nil, errors.New(errors.ErrCodeProviderFailure, "unknown encoding %q", hint.Name)
	}
}
