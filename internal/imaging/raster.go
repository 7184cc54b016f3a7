package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

func (l *Loader) loadRaster(path string, format Format) (*Study, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening study: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s study: %w", format, err)
	}
	return l.normalize(path, format, img, "", "")
}

// normalize downscales src so that neither edge exceeds the maximum
// dimension, then re-encodes it as PNG for the vision providers.
func (l *Loader) normalize(path string, format Format, src image.Image, bodyPart, modality string) (*Study, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("study %s has empty bounds", path)
	}

	if w > l.maxDim || h > l.maxDim {
		scale := float64(l.maxDim) / float64(w)
		if h > w {
			scale = float64(l.maxDim) / float64(h)
		}
		dw := int(float64(w)*scale + 0.5)
		dh := int(float64(h)*scale + 0.5)
		if dw < 1 {
			dw = 1
		}
		if dh < 1 {
			dh = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		src = dst
		w, h = dw, dh
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, fmt.Errorf("encoding normalized study: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())

	return &Study{
		Path:     path,
		Format:   format,
		Width:    w,
		Height:   h,
		BodyPart: bodyPart,
		Modality: modality,
		PNG:      buf.Bytes(),
		Digest:   hex.EncodeToString(sum[:]),
	}, nil
}
