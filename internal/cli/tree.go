package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fwmeta/pkg/archive"
	"github.com/matzehuels/fwmeta/pkg/cache"
	"github.com/matzehuels/fwmeta/pkg/errors"
	"github.com/matzehuels/fwmeta/pkg/render"
	"github.com/matzehuels/fwmeta/pkg/render/tree"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	output    string  // output file; DOT on stdout when empty
	format    string  // output format; derived from the output extension when empty
	hideFiles bool    // show only archives and boot files
	sizes     bool    // include uncompressed sizes
	scale     float64 // PNG scale factor
	bootFile  string  // overrides the configured boot file
	category  string  // overrides the configured category
}

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "tree <package>",
		Short: "Show the archive nesting of a package",
		Long: `Tree draws the archives nested inside one package and marks the boot files
a scan would pick up. Without --output the graph is printed as DOT.`,
		Example: `  fwmeta tree bundle.zip
  fwmeta tree bundle.zip -o bundle.svg --hide-files`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := treeFormat(opts.format, opts.output)
			if err != nil {
				return err
			}
			opts.format = format
			return c.runTree(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, pdf, png (default: from --output, else dot)")
	cmd.Flags().BoolVar(&opts.hideFiles, "hide-files", false, "show only archives and boot files")
	cmd.Flags().BoolVar(&opts.sizes, "sizes", false, "show uncompressed sizes")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "scale factor for PNG output")
	cmd.Flags().StringVar(&opts.bootFile, "boot-file", "", "boot file name to highlight (overrides category)")
	cmd.Flags().StringVar(&opts.category, "category", "", "product category, e.g. PS or EOS")

	return cmd
}

// treeFormat picks the output format from the flag or the output extension.
func treeFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "" || format == "gv" {
			format = formatDOT
		}
	}
	switch format {
	case formatDOT, formatSVG, formatPDF, formatPNG:
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (use dot, svg, pdf or png)", format)
	}
	if format != formatDOT && output == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "--output is required for %s", format)
	}
	return format, nil
}

func (c *CLI) runTree(ctx context.Context, stdout io.Writer, pkg string, opts treeOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.category != "" {
		cfg.Category = opts.category
	}
	if opts.bootFile != "" {
		cfg.BootFile = opts.bootFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	p, err := c.newProvider(cfg, cache.NewNullCache())
	if err != nil {
		return err
	}

	r, err := archive.Open(pkg)
	if err != nil {
		return err
	}
	defer r.Close()

	root, err := p.Walker().Inspect(ctx, r, r.Name())
	if err != nil {
		return err
	}
	logger.Debug("Inspected package", "path", pkg,
		"archives", root.Count(archive.KindArchive), "boot_files", root.Count(archive.KindBoot))

	dot := tree.ToDOT(root, tree.Options{HideFiles: opts.hideFiles, Sizes: opts.sizes})
	if opts.output == "" {
		fmt.Fprint(stdout, dot)
		return nil
	}

	if (opts.format == formatPDF || opts.format == formatPNG) && !render.Available() {
		return errors.New(errors.ErrCodeUnsupported, "%s output requires rsvg-convert on PATH", opts.format)
	}

	sp := startSpinner(ctx, "Rendering "+opts.format+"...")

	var data []byte
	switch opts.format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		data, err = tree.RenderSVG(ctx, dot)
	case formatPDF:
		data, err = tree.RenderPDF(ctx, dot)
	case formatPNG:
		data, err = tree.RenderPNG(ctx, dot, opts.scale)
	}
	if err != nil {
		if sp.Interrupted() {
			sp.Stop()
			return ctx.Err()
		}
		sp.Fail("Rendering failed")
		return err
	}
	sp.Update("Writing " + opts.output)
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		sp.Fail("Write failed")
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", opts.output)
	}

	sp.Succeed("%s: %s, %s",
		r.Name(), plural(root.Count(archive.KindArchive), "archive"), plural(root.Count(archive.KindBoot), "boot file"))
	printFile(opts.output)
	return nil
}
