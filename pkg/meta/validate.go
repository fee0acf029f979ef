package meta

import (
	"context"

	"github.com/matzehuels/fwmeta/pkg/archive"
	"github.com/matzehuels/fwmeta/pkg/software"
)

// Mismatch is a field where the binary and the package name disagree.
type Mismatch struct {
	Field    string // dotted path, e.g. "camera.revision"
	Expected string // value implied by the package name
	Actual   string // value read from the binary
}

// Validate compares a detected record with the product and camera implied by
// the package name and timestamp. It never modifies sw. A provider that
// cannot interpret the package name is logged and its fields are skipped.
func (p *Pipeline) Validate(ctx context.Context, sw *software.Software, x archive.Extraction) []Mismatch {
	logger := p.logger().With("archive", x.Archive)
	var out []Mismatch
	add := func(field, expected, actual string) {
		if expected != actual {
			out = append(out, Mismatch{Field: field, Expected: expected, Actual: actual})
		}
	}

	if p.Category != "" && sw.Category != nil {
		add("category.name", p.Category, sw.Category.Name)
	}

	product, err := p.Providers.Product.Product(ctx, x.Archive, x.Modified)
	switch {
	case err != nil:
		logger.Warn("cannot derive product from package name", "err", err)
	case product != nil:
		var actual software.Product
		if sw.Product != nil {
			actual = *sw.Product
		}
		add("product.name", product.Name, actual.Name)
		add("product.version", product.Version, actual.Version)
		add("product.language", product.Language, actual.Language)
	}

	camera, err := p.Providers.Camera.Camera(ctx, x.Archive)
	switch {
	case err != nil:
		logger.Warn("cannot derive camera from package name", "err", err)
	case camera != nil:
		add("camera.platform", camera.Platform, sw.Camera.Platform)
		add("camera.revision", camera.Revision, sw.Camera.Revision)
	}

	return out
}
