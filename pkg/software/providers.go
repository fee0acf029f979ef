package software

import (
	"context"
	"time"

	"github.com/matzehuels/fwmeta/pkg/errors"
)

// Detector inspects raw boot file bytes and returns whatever metadata it can
// recognize. It may return a partial record together with an error; a nil
// record means nothing could be recognized at all.
type Detector interface {
	Detect(ctx context.Context, data []byte) (*Software, error)
}

// ProductProvider derives product metadata from a package display name.
type ProductProvider interface {
	Product(ctx context.Context, name string, created time.Time) (*Product, error)
}

// CameraProvider derives camera metadata from a package display name.
type CameraProvider interface {
	Camera(ctx context.Context, name string) (*Camera, error)
}

// CategoryProvider returns the category for a record.
type CategoryProvider interface {
	Category(ctx context.Context, sw *Software) (*Category, error)
}

// SourceProvider returns the source for a record.
type SourceProvider interface {
	Source(ctx context.Context, sw *Software) (*Source, error)
}

// BuildProvider returns build information for a record.
type BuildProvider interface {
	Build(ctx context.Context, sw *Software) (*Build, error)
}

// CompilerProvider returns compiler information for a record.
type CompilerProvider interface {
	Compiler(ctx context.Context, sw *Software) (*Compiler, error)
}

// EncodingProvider normalizes an encoding hint. The hint may be nil.
type EncodingProvider interface {
	Encoding(ctx context.Context, hint *Encoding) (*Encoding, error)
}

// BootResolver maps a category name to the boot file name used by that category.
type BootResolver interface {
	BootFileName(category string) (string, error)
}

// Providers bundles every capability needed to build a record.
type Providers struct {
	Detector Detector
	Product  ProductProvider
	Camera   CameraProvider
	Category CategoryProvider
	Source   SourceProvider
	Build    BuildProvider
	Compiler CompilerProvider
	Encoding EncodingProvider
	Boot     BootResolver
}

// Validate returns an INVALID_INPUT error naming the first missing provider.
func (p Providers) Validate() error {
	checks := []struct {
		name    string
		missing bool
	}{
		{"detector", p.Detector == nil},
		{"product", p.Product == nil},
		{"camera", p.Camera == nil},
		{"category", p.Category == nil},
		{"source", p.Source == nil},
		{"build", p.Build == nil},
		{"compiler", p.Compiler == nil},
		{"encoding", p.Encoding == nil},
		{"boot resolver", p.Boot == nil},
	}
	for _, c := range checks {
		if c.missing {
			return errors.New(errors.ErrCodeInvalidInput, "%s provider is required", c.name)
		}
	}
	return nil
}
