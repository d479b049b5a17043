package validate

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"slate-api/internal/shared"
)

// Shrink re-encodes an admitted image for upload, bounding the long side at
// maxDim to cut upstream token cost. Aspect ratio is preserved and images
// already inside the bound are only recompressed. Any decode or encode
// trouble falls back to the original bytes; the upload still happens, just
// bigger.
func Shrink(img *Image, maxDim int) ([]byte, string) {
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return img.Data, img.MIME
	}

	bounds := decoded.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		long := w
		if h > long {
			long = h
		}
		scale := float64(maxDim) / float64(long)
		newW := int(float64(w)*scale + 0.5)
		newH := int(float64(h)*scale + 0.5)
		if newW < 1 {
			newW = 1
		}
		if newH < 1 {
			newH = 1
		}
		decoded = scaleDownNN(decoded, newW, newH)
	}

	var out bytes.Buffer
	switch img.Format {
	case "JPEG":
		err = jpeg.Encode(&out, decoded, &jpeg.Options{Quality: shared.UploadJPEGQuality})
		if err == nil {
			return out.Bytes(), "image/jpeg"
		}
	default:
		// PNG and anything else the operator allowed goes out lossless;
		// not every decodable format has an encoder.
		err = png.Encode(&out, decoded)
		if err == nil {
			return out.Bytes(), "image/png"
		}
	}
	return img.Data, img.MIME
}

func scaleDownNN(src image.Image, newW, newH int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	sb := src.Bounds()
	srcW := sb.Dx()
	srcH := sb.Dy()
	for y := 0; y < newH; y++ {
		sy := sb.Min.Y + (y*srcH)/newH
		for x := 0; x < newW; x++ {
			sx := sb.Min.X + (x*srcW)/newW
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}
