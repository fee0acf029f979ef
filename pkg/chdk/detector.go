package chdk

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/fwmeta/pkg/errors"
	"github.com/matzehuels/fwmeta/pkg/software"
)

var (
	versionMarkerRe  = regexp.MustCompile(`CHDK (\d+(?:\.\d+)+(?:-?(?:alpha|beta|rc)\d*)?)(?:-(\d+))?`)
	cameraMarkerRe   = regexp.MustCompile(`Camera: ([A-Za-z0-9_]+) rev (\d{3}[A-Za-z])`)
	languageMarkerRe = regexp.MustCompile(`Language: ([A-Za-z]{2,3}(?:-[A-Za-z0-9]+)*)`)
	encodingMarkerRe = regexp.MustCompile(`DANCINGBITS=(\d+)`)
)

// SignatureDetector recognizes CHDK boot files by the text markers the build
// embeds in the binary:
//
//	CHDK 1.4.1-4567
//	Camera: a720 rev 100c
//	Language: de
//	DANCINGBITS=3
//
// A boot file with a version marker but no camera marker is a generic
// loader. A boot file without any marker yields a record that only carries
// the category, together with a DETECTION_FAILED error.
type SignatureDetector struct {
	ProductName string
	Category    string
}

// Detect reads the markers from data.
func (d *SignatureDetector) Detect(ctx context.Context, data []byte) (*software.Software, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sw := &software.Software{
		Version:  software.SchemaVersion,
		Category: &software.Category{Name: d.Category},
	}

	if m := encodingMarkerRe.FindSubmatch(data); m != nil {
		n, err := strconv.ParseUint(string(m[1]), 10, 32)
		if err == nil {
			v := uint32(n)
			sw.Encoding = &software.Encoding{Name: EncodingDancingBits, Data: &v}
		}
	}

	m := versionMarkerRe.FindSubmatch(data)
	if m == nil {
		return sw, errors.New(errors.ErrCodeDetection, "no version marker in boot file")
	}

	lang := DefaultLanguage
	if lm := languageMarkerRe.FindSubmatch(data); lm != nil {
		lang = string(lm[1])
	}
	tag, err := CanonicalLanguage(lang)
	if err != nil {
		return sw, errors.Wrap(errors.ErrCodeDetection, err, "invalid language marker")
	}

	sw.Product = &software.Product{
		Name:     d.ProductName,
		Version:  strings.ToLower(string(m[1])),
		Language: tag,
	}
	if len(m[2]) > 0 {
		sw.Build = &software.Build{Changeset: string(m[2])}
	}

	if cm := cameraMarkerRe.FindSubmatch(data); cm != nil {
		sw.Camera = &software.Camera{
			Platform: string(bytes.ToLower(cm[1])),
			Revision: string(bytes.ToLower(cm[2])),
		}
	}
	return sw, nil
}
