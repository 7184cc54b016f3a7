package imaging

import (
	"fmt"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func (l *Loader) loadDICOM(path string) (*Study, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing DICOM file: %w", err)
	}

	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("DICOM file has no pixel data: %w", err)
	}
	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return nil, fmt.Errorf("unexpected pixel data representation in %s", path)
	}
	if len(info.Frames) == 0 {
		return nil, fmt.Errorf("DICOM file %s contains no frames", path)
	}

	// Only the first frame participates in analysis.
	img, err := info.Frames[0].GetImage()
	if err != nil {
		return nil, fmt.Errorf("decoding DICOM frame: %w", err)
	}

	return l.normalize(path, FormatDICOM, img, stringValue(&ds, tag.BodyPartExamined), stringValue(&ds, tag.Modality))
}

// stringValue returns the first string of a tag, or "" when the tag is
// absent or carries a different value representation.
func stringValue(ds *dicom.Dataset, t tag.Tag) string {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return ""
	}
	vals, ok := el.Value.GetValue().([]string)
	if !ok || len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}
