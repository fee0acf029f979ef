// Package meta turns extracted boot files into complete metadata records.
//
// A [Pipeline] runs the binary detector on the boot file bytes and then
// takes one of two paths:
//
//   - When the detector recognized the camera, the binary is authoritative.
//     Product and camera are cross-checked against what the package name
//     implies, and every disagreement is logged as a warning.
//   - Otherwise the package is generic (a bootloader without a camera
//     signature). Product and camera are derived from the package name and
//     the boot file timestamp.
//
// Both paths finish with the same enrichment steps, in a fixed order:
// category, source, build, compiler, encoding.
package meta

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fwmeta/pkg/archive"
	"github.com/matzehuels/fwmeta/pkg/cache"
	"github.com/matzehuels/fwmeta/pkg/errors"
	"github.com/matzehuels/fwmeta/pkg/observability"
	"github.com/matzehuels/fwmeta/pkg/software"
)

// HashName identifies the digest stored in Software.Hash.
const HashName = "sha256"

// Pipeline builds one record per extraction. It holds no per-call state and
// may be shared.
type Pipeline struct {
	Providers software.Providers
	Category  string      // expected category; empty skips the category check
	Logger    *log.Logger // optional
}

// Process builds the record for x.
//
// A detector that returns no record at all fails with DETECTION_FAILED. A
// detector that returns a partial record and an error is logged and the
// partial record is used. Provider errors fail with PROVIDER_FAILURE.
// Validation disagreements never fail.
func (p *Pipeline) Process(ctx context.Context, x archive.Extraction) (sw *software.Software, err error) {
	start := time.Now()
	branch := ""
	defer func() {
		observability.Scan().OnRecordComplete(ctx, x.Archive, branch, time.Since(start), err)
	}()

	logger := p.logger().With("archive", x.Archive, "entry", x.Entry)

	sw, err = p.Providers.Detector.Detect(ctx, x.Data)
	if sw == nil {
		if errors.IsContext(err) {
			return nil, err
		}
		logger.Error("cannot detect software", "err", err)
		if err == nil {
			return nil, errors.New(errors.ErrCodeDetection, "cannot detect software in %s", x.Archive)
		}
		return nil, errors.Wrap(errors.ErrCodeDetection, err, "cannot detect software in %s", x.Archive)
	}
	if err != nil {
		logger.Error("partial detection", "err", err)
	}

	if sw.Version == "" {
		sw.Version = software.SchemaVersion
	}
	sw.Hash = &software.Hash{Name: HashName, Value: cache.Hash(x.Data)}

	if sw.Camera != nil {
		branch = observability.BranchDetected
		for _, m := range p.Validate(ctx, sw, x) {
			logger.Warn("mismatching "+m.Field, "expected", m.Expected, "actual", m.Actual)
			observability.Scan().OnMismatch(ctx, x.Archive, m.Field, m.Expected, m.Actual)
		}
		if err := p.enrich(ctx, sw); err != nil {
			return nil, err
		}
	} else {
		branch = observability.BranchDerived
		product, err := p.Providers.Product.Product(ctx, x.Archive, x.Modified)
		if err := check("product", product, err); err != nil {
			return nil, err
		}
		sw.Product = product

		if err := p.enrich(ctx, sw); err != nil {
			return nil, err
		}

		camera, err := p.Providers.Camera.Camera(ctx, x.Archive)
		if err := check("camera", camera, err); err != nil {
			return nil, err
		}
		sw.Camera = camera
	}

	if missing := sw.Missing(); len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeProviderFailure, "incomplete record for %s: missing %v", x.Archive, missing)
	}
	logger.Debug("record complete", "branch", branch)
	return sw, nil
}

// enrich fills the provider-owned sub-records in order. Each provider sees
// the record as left by the previous one.
func (p *Pipeline) enrich(ctx context.Context, sw *software.Software) error {
	pr := p.Providers

	category, err := pr.Category.Category(ctx, sw)
	if err := check("category", category, err); err != nil {
		return err
	}
	sw.Category = category

	source, err := pr.Source.Source(ctx, sw)
	if err := check("source", source, err); err != nil {
		return err
	}
	sw.Source = source

	build, err := pr.Build.Build(ctx, sw)
	if err := check("build", build, err); err != nil {
		return err
	}
	sw.Build = build

	compiler, err := pr.Compiler.Compiler(ctx, sw)
	if err := check("compiler", compiler, err); err != nil {
		return err
	}
	sw.Compiler = compiler

	encoding, err := pr.Encoding.Encoding(ctx, sw.Encoding)
	if err := check("encoding", encoding, err); err != nil {
		return err
	}
	sw.Encoding = encoding

	return nil
}

// check turns a provider result into PROVIDER_FAILURE when it failed or
// returned nothing. Context errors pass through unchanged.
func check[T any](name string, v *T, err error) error {
	if err != nil {
		if errors.IsContext(err) {
			return err
		}
		return errors.Wrap(errors.ErrCodeProviderFailure, err, "%s provider", name)
	}
	if v == nil {
		return errors.New(errors.ErrCodeProviderFailure, "%s provider returned no result", name)
	}
	return nil
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger == nil {
		return discard
	}
	return p.Logger
}

var discard = log.NewWithOptions(io.Discard, log.Options{})
