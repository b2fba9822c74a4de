// Package imaging normalizes uploaded images into the text-safe
// payload stored in the image side table.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height for stored images.
const MaxDimension = 1024

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 70

// payloadPrefix makes the encoded payload directly usable as an image
// source by consumers.
const payloadPrefix = "data:image/jpeg;base64,"

// ErrDecode is wrapped by all malformed-input failures.
var ErrDecode = errors.New("image decode failed")

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Encode reads image data, validates the format by sniffing bytes,
// downscales proportionally so neither dimension exceeds MaxDimension
// (never upscaling), re-encodes as JPEG, and returns the result as a
// base64 data URL suitable for embedding in a document field.
func Encode(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading image data: %w", err)
	}

	// Sniff actual MIME type from bytes (not trusting client headers).
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return "", fmt.Errorf("%w: unsupported format %s (only JPEG and PNG accepted)", ErrDecode, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("encoding JPEG: %w", err)
	}

	return payloadPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode reverses Encode, returning the raw JPEG bytes of a stored
// payload. Used when a consumer needs the binary image back.
func Decode(payload string) ([]byte, error) {
	b64, ok := strings.CutPrefix(payload, payloadPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: not an encoded image payload", ErrDecode)
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return data, nil
}

// downscale resizes the image so neither dimension exceeds maxDim.
// The scale factor comes from the larger dimension, so aspect ratio is
// preserved exactly. Returns the original image if already within
// bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	// Register decoders (jpeg is registered by default, but be explicit).
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
