package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Keyer generates cache keys.
type Keyer interface {
	// DetectionKey returns the key for a detection result of the boot file
	// with the given content hash, produced by the named detector.
	DetectionKey(detector, contentHash string) string
}

// DefaultKeyer produces keys of the form "detect:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key generator.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DetectionKey hashes the detector name with the content hash so that
// switching detectors never returns stale results.
func (DefaultKeyer) DetectionKey(detector, contentHash string) string {
	return hashKey("detect", detector, contentHash)
}

// ScopedKeyer prefixes the keys of another Keyer so that several
// installations can share one backend without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "fwmeta:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// DetectionKey returns the inner key with the prefix prepended.
func (k *ScopedKeyer) DetectionKey(detector, contentHash string) string {
	return k.prefix + k.inner.DetectionKey(detector, contentHash)
}

// hashKey returns "<kind>:<sha256 of parts>". Parts are NUL-separated so
// ("ab", "c") and ("a", "bc") differ.
func hashKey(kind string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 digest of data. Records use it as their
// content hash and FileCache as its file name.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
