package models

import (
	"strconv"
	"strings"
)

// Format is one row of the download tool's format listing
type Format struct {
	FormatID   string `json:"format_id"`
	Ext        string `json:"ext"`
	Resolution string `json:"resolution"` // "WIDTHxHEIGHT"
	Detail     string `json:"detail"`
}

// Dimensions parses the resolution. ok is false when it is not "WxH".
func (f Format) Dimensions() (width, height int, ok bool) {
	w, h, found := strings.Cut(f.Resolution, "x")
	if !found {
		return 0, 0, false
	}
	width, werr := strconv.Atoi(w)
	height, herr := strconv.Atoi(h)
	if werr != nil || herr != nil {
		return 0, 0, false
	}
	return width, height, true
}

// Quality returns the resolution tier of the format.
func (f Format) Quality() Quality {
	_, h, ok := f.Dimensions()
	if !ok {
		return QualityUnknown
	}
	return QualityFromHeight(h)
}
