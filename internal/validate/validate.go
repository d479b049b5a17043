// Package validate admits or rejects caller supplied images before anything
// is sent upstream. The checks run cheapest first: data URI prefix, base64,
// raster header, allow-list, pixel cap. Nothing here reads more than the
// image header; full decodes only happen in Shrink after admission.
package validate

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"slate-api/internal/config"
	"slate-api/internal/shared"
)

// Image is an admitted image: the raw bytes plus what the decoder reported.
type Image struct {
	Data   []byte
	Format string // canonical upper case, e.g. "PNG"
	MIME   string // e.g. "image/png"
	Width  int
	Height int
}

func (i *Image) Pixels() int {
	return i.Width * i.Height
}

// Validate runs the admission pipeline over a base64 string, optionally
// prefixed data:image/<fmt>;base64,. Failures come back as a RequestError
// carrying the caller facing message joined with the matching classification
// sentinel.
func Validate(raw string, cfg *config.Config) (*Image, error) {
	payload, declaredMIME := splitDataURI(raw)

	// A prefix naming a format outside the allow-list fails before any
	// decoding work.
	if declaredMIME != "" {
		if declared := formatFromMIME(declaredMIME); !cfg.AllowedFormat(declared) {
			return nil, errors.Join(
				&shared.RequestError{StatusCode: 400, Err: errors.New("Invalid image format")},
				shared.ErrImageFormat,
			)
		}
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, errors.Join(
			&shared.RequestError{StatusCode: 400, Err: errors.New("Invalid base64 image data")},
			shared.ErrImageDecode,
			err,
		)
	}

	imgConfig, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(
			&shared.RequestError{StatusCode: 400, Err: errors.New("Invalid image: Unable to identify image format")},
			shared.ErrImageUnreadable,
			err,
		)
	}
	canonical := config.CanonicalFormat(format)

	if !cfg.AllowedFormat(canonical) {
		return nil, errors.Join(
			&shared.RequestError{
				StatusCode: 400,
				Err:        fmt.Errorf("Unsupported image format: %s. Allowed formats: %s", canonical, cfg.FormatList()),
			},
			shared.ErrImageFormat,
		)
	}

	if imgConfig.Width*imgConfig.Height > cfg.MaxImagePixels {
		return nil, errors.Join(
			&shared.RequestError{
				StatusCode: 400,
				Err: fmt.Errorf("Image is too large: %dx%d pixels exceeds %d pixel limit",
					imgConfig.Width, imgConfig.Height, cfg.MaxImagePixels),
			},
			shared.ErrImageTooLarge,
		)
	}

	return &Image{
		Data:   data,
		Format: canonical,
		MIME:   "image/" + strings.ToLower(canonical),
		Width:  imgConfig.Width,
		Height: imgConfig.Height,
	}, nil
}

// splitDataURI strips a data:<mime>;base64, prefix when present and reports
// the declared mime. Anything without the prefix passes through untouched.
func splitDataURI(s string) (payload, declaredMIME string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}
	idx := strings.IndexByte(s, ',')
	if idx <= 0 {
		return s, ""
	}
	meta := s[len("data:"):idx]
	if semi := strings.IndexByte(meta, ';'); semi >= 0 {
		meta = meta[:semi]
	}
	return s[idx+1:], meta
}

// decodeBase64 tries standard base64 first, then the url-safe alphabet.
func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	} else if b2, err2 := base64.URLEncoding.DecodeString(s); err2 == nil {
		return b2, nil
	} else {
		return nil, err
	}
}

// formatFromMIME maps "image/png" to the canonical "PNG". A mime without a
// subtype canonicalizes as-is and will fail the allow-list.
func formatFromMIME(mime string) string {
	if idx := strings.IndexByte(mime, '/'); idx >= 0 {
		mime = mime[idx+1:]
	}
	return config.CanonicalFormat(mime)
}
