package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/fwmeta/pkg/errors"
)

func TestTreeFormat(t *testing.T) {
	tests := []struct {
		format, output string
		want           string
		wantErr        bool
	}{
		{"", "", formatDOT, false},
		{"", "out.svg", formatSVG, false},
		{"", "out.PNG", formatPNG, false},
		{"", "out.gv", formatDOT, false},
		{"pdf", "tree", formatPDF, false},
		{"svg", "", "", true},
		{"jpeg", "out.jpeg", "", true},
		{"", "out.txt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format+"|"+tt.output, func(t *testing.T) {
			got, err := treeFormat(tt.format, tt.output)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("err = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("treeFormat(%q, %q) = %q, want %q", tt.format, tt.output, got, tt.want)
			}
		})
	}
}

func TestTreeDOT(t *testing.T) {
	dir, cfg := fixtures(t)

	out, err := execute(t, "tree", "--config", cfg, filepath.Join(dir, "bundle.zip"))
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	for _, want := range []string{"digraph G", "bundle.zip", "ixus70-101b-1.5.0-beta.zip", "diskboot.bin"} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT missing %q:\n%s", want, out)
		}
	}
}

func TestTreeDOTFile(t *testing.T) {
	dir, cfg := fixtures(t)
	output := filepath.Join(dir, "tree.dot")

	if _, err := execute(t, "tree", "--config", cfg, "--hide-files", "-o", output,
		filepath.Join(dir, "a720-100c-1.4.1-4567-full_de.zip")); err != nil {
		t.Fatalf("tree: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "DISKBOOT.BIN") {
		t.Error("boot file missing from tree")
	}
	if strings.Contains(string(data), "readme.txt") {
		t.Error("--hide-files should omit plain members")
	}
}

func TestTreeMissingPackage(t *testing.T) {
	_, cfg := fixtures(t)
	_, err := execute(t, "tree", "--config", cfg, filepath.Join(t.TempDir(), "missing.zip"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}
