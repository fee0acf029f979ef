// Package zipmeta produces firmware metadata records from ZIP packages.
//
// It ties the pieces together: a path argument (possibly a wildcard) is
// expanded into package files, each package is walked for boot files at any
// nesting depth, and each boot file is turned into a record.
//
// # Usage
//
//	p, err := zipmeta.New(zipmeta.Options{
//	    Providers: chdk.Providers(),
//	    Category:  "PS",
//	})
//	if err != nil {
//	    return err
//	}
//	for sw, err := range p.Software(ctx, "downloads/*.zip") {
//	    if err != nil {
//	        log.Warn("skipped", "err", err)
//	        continue
//	    }
//	    fmt.Println(sw.Camera.Platform)
//	}
//
// The sequences are lazy: nothing is opened until iteration begins, and each
// iteration starts over from the path argument.
package zipmeta

import (
	"context"
	stderrors "errors"
	"io"
	"iter"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fwmeta/pkg/archive"
	"github.com/matzehuels/fwmeta/pkg/errors"
	"github.com/matzehuels/fwmeta/pkg/meta"
	"github.com/matzehuels/fwmeta/pkg/pathexpand"
	"github.com/matzehuels/fwmeta/pkg/software"
)

// Options configures a Provider.
type Options struct {
	Providers       software.Providers
	Category        string      // product category; selects the boot file and is checked against detections
	BootFile        string      // overrides the boot file resolved from Category
	NestedExtension string      // extension of nested archives (default: .zip)
	Logger          *log.Logger // optional
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.NestedExtension == "" {
		opts.NestedExtension = archive.DefaultNestedExtension
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return opts
}

// Provider extracts metadata records from packages. Its configuration is
// fixed at construction, so one Provider may serve concurrent scans.
type Provider struct {
	bootFile string
	logger   *log.Logger
	walker   *archive.Walker
	pipeline *meta.Pipeline
}

// Result is a record together with where it was found.
type Result struct {
	Package  string   // path of the top-level package file
	Archive  string   // display name of the archive holding the boot file
	Chain    []string // archive display names from the package down to Archive
	Entry    string   // boot file entry name
	Software *software.Software
}

// New validates opts and resolves the boot file name once.
func New(opts Options) (*Provider, error) {
	opts = opts.WithDefaults()
	if err := opts.Providers.Validate(); err != nil {
		return nil, err
	}
	if err := errors.ValidateExtension(opts.NestedExtension); err != nil {
		return nil, err
	}

	bootFile := opts.BootFile
	if bootFile == "" {
		if opts.Category == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "a category or boot file is required")
		}
		name, err := opts.Providers.Boot.BootFileName(opts.Category)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve boot file for category %s", opts.Category)
		}
		bootFile = name
	}
	if err := errors.ValidateBootFileName(bootFile); err != nil {
		return nil, err
	}

	return &Provider{
		bootFile: bootFile,
		logger:   opts.Logger,
		walker: &archive.Walker{
			BootFile:        bootFile,
			NestedExtension: opts.NestedExtension,
			Logger:          opts.Logger,
		},
		pipeline: &meta.Pipeline{
			Providers: opts.Providers,
			Category:  opts.Category,
			Logger:    opts.Logger,
		},
	}, nil
}

// BootFile returns the resolved boot file name.
func (p *Provider) BootFile() string {
	return p.bootFile
}

// Walker returns the archive walker configured for this provider.
func (p *Provider) Walker() *archive.Walker {
	return p.walker
}

// Software yields one record per boot file found under path.
//
// Errors are yielded in place of records. A package that is missing or
// cannot be read ends that package only and scanning continues with the next
// expanded path. A boot file whose record cannot be built is skipped after
// its error. A cancelled context is yielded once and ends the sequence.
func (p *Provider) Software(ctx context.Context, path string) iter.Seq2[*software.Software, error] {
	return func(yield func(*software.Software, error) bool) {
		for res, err := range p.Scan(ctx, path) {
			var sw *software.Software
			if res != nil {
				sw = res.Software
			}
			if !yield(sw, err) {
				return
			}
		}
	}
}

// Scan is like Software but yields each record with its location.
func (p *Provider) Scan(ctx context.Context, path string) iter.Seq2[*Result, error] {
	return func(yield func(*Result, error) bool) {
		for pkg, err := range pathexpand.Expand(path) {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				if !yield(nil, err) || errors.IsContext(err) {
					return
				}
				continue
			}
			if !p.scanPackage(ctx, pkg, yield) {
				return
			}
		}
	}
}

// scanPackage reports whether scanning should continue.
func (p *Provider) scanPackage(ctx context.Context, pkg string, yield func(*Result, error) bool) bool {
	r, err := archive.Open(pkg)
	if err != nil {
		p.logger.Error("cannot open package", "path", pkg, "err", err)
		return yield(nil, err)
	}
	defer r.Close()

	for x, err := range p.walker.Walk(ctx, r, r.Name()) {
		if err != nil {
			if !errors.IsContext(err) {
				p.logger.Error("cannot read package", "path", pkg, "err", err)
			}
			return yield(nil, err) && !errors.IsContext(err)
		}

		sw, err := p.pipeline.Process(ctx, x)
		if err != nil {
			if !yield(nil, err) || errors.IsContext(err) {
				return false
			}
			continue
		}

		res := &Result{
			Package:  pkg,
			Archive:  x.Archive,
			Chain:    x.Chain,
			Entry:    x.Entry,
			Software: sw,
		}
		if !yield(res, nil) {
			return false
		}
	}
	return true
}

// Collect gathers every record under path. Errors do not stop collection;
// they are joined and returned with whatever records were built.
func (p *Provider) Collect(ctx context.Context, path string) ([]*software.Software, error) {
	var (
		out  []*software.Software
		errs []error
	)
	for sw, err := range p.Software(ctx, path) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, sw)
	}
	return out, stderrors.Join(errs...)
}
