package imgcore

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
)

const pngDataURLPrefix = "data:image/png;base64,"

var pngEncoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// EncodePNG serializes img losslessly. Identical pixels always produce
// identical bytes: no timestamps or optional chunks are written.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// ToTransportString encodes img as PNG and returns it as a
// "data:image/png;base64,..." string with the standard base64 alphabet.
func ToTransportString(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// TransportPayload returns the encoded PNG bytes of a transport string.
func TransportPayload(s string) ([]byte, error) {
	payload, ok := strings.CutPrefix(s, pngDataURLPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidTransport, pngDataURLPrefix)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransport, err)
	}
	return data, nil
}

// DecodeTransportString reverses ToTransportString.
func DecodeTransportString(s string) (image.Image, error) {
	data, err := TransportPayload(s)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransport, err)
	}
	return img, nil
}
