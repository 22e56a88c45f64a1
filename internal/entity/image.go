package entity

import "time"

// LabelImage is one uploaded label image, identified by its upload name.
type LabelImage struct {
	ID   string
	Data []byte
}

// ImageResult is the OCR outcome for one image. It is not modified after aggregation.
type ImageResult struct {
	ID         string        `json:"id"`
	Text       string        `json:"-"`
	Normalized string        `json:"-"`
	Excerpt    string        `json:"excerpt"`
	Lines      int           `json:"lines"`
	Warnings   []string      `json:"warnings,omitempty"`
	Duration   time.Duration `json:"-"`
}

// Empty reports whether OCR recovered no usable text from the image.
func (r ImageResult) Empty() bool {
	return r.Normalized == ""
}
