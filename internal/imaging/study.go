package imaging

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tkordic/anamnesis/internal/model"
)

// Format identifies the on-disk encoding of a study.
type Format string

const (
	FormatDICOM Format = "dicom"
	FormatPNG   Format = "png"
	FormatJPEG  Format = "jpeg"
)

// Study is a patient imaging study normalized for vision analysis.
// PNG holds the pixel data re-encoded as PNG and downscaled so that
// neither edge exceeds the configured maximum dimension.
type Study struct {
	Path     string
	Format   Format
	Width    int
	Height   int
	BodyPart string
	Modality string
	PNG      []byte
	Digest   string
}

// Loader reads imaging studies from disk.
type Loader struct {
	maxDim int
}

// NewLoader creates a loader with the given imaging settings.
func NewLoader(cfg model.ImagingConfig) *Loader {
	maxDim := cfg.MaxDimension
	if maxDim <= 0 {
		maxDim = 1024
	}
	return &Loader{maxDim: maxDim}
}

// Load reads the study at path, dispatching on the file extension.
func (l *Loader) Load(path string) (*Study, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dcm", ".dicom":
		return l.loadDICOM(path)
	case ".png":
		return l.loadRaster(path, FormatPNG)
	case ".jpg", ".jpeg":
		return l.loadRaster(path, FormatJPEG)
	default:
		return nil, fmt.Errorf("unsupported study format %q (expected .dcm, .png or .jpg)", filepath.Ext(path))
	}
}
