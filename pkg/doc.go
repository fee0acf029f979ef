// Package pkg provides the core libraries for fwmeta firmware metadata extraction.
//
// # Overview
//
// fwmeta reads camera firmware packages: ZIP archives that may contain
// further ZIP archives, somewhere inside of which sits a boot file. For every
// boot file found it builds one [software] record describing category,
// product, camera, source, build, compiler and encoding. The pkg directory
// is organized into four areas:
//
//  1. Traversal ([archive], [pathexpand]) - open packages and walk nested archives
//  2. Metadata ([software], [meta], [chdk]) - records, providers and the per-record pipeline
//  3. Facade ([zipmeta]) - path in, lazy sequence of records out
//  4. Infrastructure ([cache], [catalog], [config], [errors], [observability])
//
// # Architecture
//
// The typical data flow through fwmeta:
//
//	path or glob
//	     ↓
//	[pathexpand] (one or more package files)
//	     ↓
//	[archive] Walker (boot file bytes + location, depth-first)
//	     ↓
//	[meta] Pipeline (detect → validate or derive → enrich)
//	     ↓
//	*software.Software records, optionally stored in a [catalog]
//
// # Quick Start
//
// Scan a package with the CHDK providers:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/fwmeta/pkg/chdk"
//	    "github.com/matzehuels/fwmeta/pkg/zipmeta"
//	)
//
//	p, err := zipmeta.New(zipmeta.Options{
//	    Providers: chdk.Providers(chdk.Options{}),
//	    Category:  chdk.CategoryPS,
//	})
//	if err != nil {
//	    return err
//	}
//	for sw, err := range p.Software(context.Background(), "downloads/*.zip") {
//	    if err != nil {
//	        log.Warn("skipped", "err", err)
//	        continue
//	    }
//	    fmt.Println(sw.Camera.Platform, sw.Product.Version)
//	}
//
// # Main Packages
//
// [archive] - ZIP reading over klauspost/compress. The Walker descends into
// nested archives in entry order and yields every entry whose name equals the
// boot file name, ignoring case. Inspect builds the nesting tree drawn by
// [render/tree].
//
// [meta] - The record pipeline. A record whose camera the detector found is
// cross-checked against the package name; otherwise product and camera are
// derived from the package name. Enrichment fills in the rest. The
// CachingDetector reuses detections keyed by boot file hash.
//
// [chdk] - Default providers for CHDK packages: signature detection in the
// boot binary, package name parsing and fixed enrichment tables.
//
// [cache] - Detection cache backends: file (CLI), Redis (shared), null.
//
// [catalog] - Persistent scan results in files or MongoDB, and a read-only
// HTTP API over either.
//
// # Testing
//
// Run tests:
//
//	go test ./...                                      # All tests
//	FWMETA_TEST_REDIS_ADDR=localhost:6379 go test ./pkg/cache/
//	FWMETA_TEST_MONGO_URI=mongodb://localhost go test ./pkg/catalog/
//
// [archive]: https://pkg.go.dev/github.com/matzehuels/fwmeta/pkg/archive
// [pathexpand]: https://pkg.go.dev/github.com/matzehuels/fwmeta/pkg/pathexpand
// [software]: https://pkg.go.dev/github.com/matzehuels/fwmeta/pkg/software
// [meta]: https://pkg.go.dev/github.com/matzehuels/fwmeta/pkg/meta
// [chdk]: https://pkg.go.dev/github.com/matzehuels/fwmeta/pkg/chdk
// [zipmeta]: https://pkg.go.dev/github.com/matzehuels/fwmeta/pkg/zipmeta
// [cache]: https://pkg.go.dev/github.com/matzehuels/fwmeta/pkg/cache
// [catalog]: https://pkg.go.dev/github.com/matzehuels/fwmeta/pkg/catalog
// [config]: https://pkg.go.dev/github.com/matzehuels/fwmeta/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/fwmeta/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/fwmeta/pkg/observability
// [render/tree]: https://pkg.go.dev/github.com/matzehuels/fwmeta/pkg/render/tree
package pkg
