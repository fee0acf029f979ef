// Package chdk provides metadata providers for CHDK firmware packages.
//
// CHDK packages are named after the camera they target, e.g.
// "a720-100c-1.4.1-4567-full_de.zip", and carry a boot file whose binary
// contains version and camera markers. The providers here read both.
package chdk

import (
	"github.com/matzehuels/fwmeta/pkg/software"
)

// Category names.
const (
	CategoryPS  = "PS"  // PowerShot
	CategoryEOS = "EOS" // EOS
)

// DefaultProductName is the product recorded when none is configured.
const DefaultProductName = "CHDK"

// Options configures the default provider set.
type Options struct {
	ProductName string            // default: CHDK
	Category    string            // default: PS
	Boot        map[string]string // category -> boot file overrides
}

// Providers returns a complete provider set for CHDK packages.
func Providers(opts Options) software.Providers {
	if opts.ProductName == "" {
		opts.ProductName = DefaultProductName
	}
	if opts.Category == "" {
		opts.Category = CategoryPS
	}

	names := &FileName{ProductName: opts.ProductName}
	return software.Providers{
		Detector: &SignatureDetector{ProductName: opts.ProductName, Category: opts.Category},
		Product:  names,
		Camera:   names,
		Category: &Categories{Default: opts.Category},
		Source:   Sources{},
		Build:    Builds{},
		Compiler: Compilers{},
		Encoding: Encodings{},
		Boot:     NewBootTable(opts.Boot),
	}
}
