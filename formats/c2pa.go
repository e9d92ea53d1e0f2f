package formats

import (
	"bytes"
	"unicode/utf8"

	"github.com/google/uuid"
)

// C2PAMarker is the JUMBF box UUID announcing a C2PA manifest store.
var C2PAMarker = uuid.MustParse("d8fe07ff-f1d9-4d9a-a05e-a80b5a9fd85a")

// FindC2PA scans data for the C2PA marker at any offset. When the marker is
// present, manifest is the span from the first '{' to the last '}' after it,
// provided that span is valid UTF-8. The span is a bracket heuristic, not a
// JSON parse: unrelated braces in trailing bytes widen it.
func FindC2PA(data []byte) (found bool, manifest string) {
	pos := bytes.Index(data, C2PAMarker[:])
	if pos < 0 {
		return false, ""
	}
	manifest, _ = c2paManifest(data[pos:])
	return true, manifest
}

// c2paManifest extracts the brace span from a slice starting at the marker.
func c2paManifest(b []byte) (string, bool) {
	if len(b) < len(C2PAMarker)+4 {
		return "", false
	}
	payload := b[len(C2PAMarker):]
	start := bytes.IndexByte(payload, '{')
	end := bytes.LastIndexByte(payload, '}')
	if start < 0 || end <= start {
		return "", false
	}
	span := payload[start : end+1]
	if !utf8.Valid(span) {
		return "", false
	}
	return string(span), true
}
