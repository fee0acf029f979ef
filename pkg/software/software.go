// Package software defines the firmware metadata record and the capability
// interfaces that produce it.
//
// A [Software] record describes one boot file found inside a distribution
// package. Its sub-records are filled by independent providers: a binary
// [Detector] reads the boot bytes, and name-based providers derive the
// product and camera from the package's display name.
package software

import (
	"time"
)

// SchemaVersion is the record format version written into every record.
const SchemaVersion = "1.0"

// Software is the metadata record for a single boot file.
type Software struct {
	Version  string    `json:"version" bson:"version"`
	Category *Category `json:"category,omitempty" bson:"category,omitempty"`
	Product  *Product  `json:"product,omitempty" bson:"product,omitempty"`
	Camera   *Camera   `json:"camera,omitempty" bson:"camera,omitempty"`
	Source   *Source   `json:"source,omitempty" bson:"source,omitempty"`
	Build    *Build    `json:"build,omitempty" bson:"build,omitempty"`
	Compiler *Compiler `json:"compiler,omitempty" bson:"compiler,omitempty"`
	Encoding *Encoding `json:"encoding,omitempty" bson:"encoding,omitempty"`
	Hash     *Hash     `json:"hash,omitempty" bson:"hash,omitempty"`
}

// Category identifies the product family (e.g. "PS" or "EOS").
type Category struct {
	Name string `json:"name" bson:"name"`
}

// Product identifies the firmware product and release.
type Product struct {
	Name     string    `json:"name" bson:"name"`
	Version  string    `json:"version,omitempty" bson:"version,omitempty"`
	Language string    `json:"language,omitempty" bson:"language,omitempty"` // canonical BCP 47 tag
	Created  time.Time `json:"created,omitzero" bson:"created,omitempty"`    // UTC
}

// Camera identifies the target camera model.
type Camera struct {
	Platform string `json:"platform" bson:"platform"`
	Revision string `json:"revision" bson:"revision"`
}

// Source identifies where a build was obtained.
type Source struct {
	Name    string `json:"name" bson:"name"`
	Channel string `json:"channel,omitempty" bson:"channel,omitempty"`
	URL     string `json:"url,omitempty" bson:"url,omitempty"`
}

// Build describes the build that produced the firmware.
type Build struct {
	Name      string `json:"name,omitempty" bson:"name,omitempty"`
	Status    string `json:"status,omitempty" bson:"status,omitempty"`
	Changeset string `json:"changeset,omitempty" bson:"changeset,omitempty"`
	Creator   string `json:"creator,omitempty" bson:"creator,omitempty"`
}

// Compiler describes the toolchain used for the build.
type Compiler struct {
	Name     string `json:"name" bson:"name"`
	Platform string `json:"platform,omitempty" bson:"platform,omitempty"`
	Version  string `json:"version,omitempty" bson:"version,omitempty"`
}

// Encoding describes how the boot file payload is encoded.
// Data carries the encoding parameter, if the encoding has one.
type Encoding struct {
	Name string  `json:"name" bson:"name"`
	Data *uint32 `json:"data,omitempty" bson:"data,omitempty"`
}

// Hash is a content digest of the boot file bytes.
type Hash struct {
	Name  string `json:"name" bson:"name"`
	Value string `json:"value" bson:"value"`
}

// Missing returns the names of required sub-records that are still nil.
// A complete record returns an empty slice.
func (s *Software) Missing() []string {
	var missing []string
	if s.Category == nil {
		missing = append(missing, "category")
	}
	if s.Product == nil {
		missing = append(missing, "product")
	}
	if s.Camera == nil {
		missing = append(missing, "camera")
	}
	if s.Source == nil {
		missing = append(missing, "source")
	}
	if s.Build == nil {
		missing = append(missing, "build")
	}
	if s.Compiler == nil {
		missing = append(missing, "compiler")
	}
	if s.Encoding == nil {
		missing = append(missing, "encoding")
	}
	return missing
}

// Complete reports whether every required sub-record is present.
func (s *Software) Complete() bool {
	return len(s.Missing()) == 0
}
