package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Belphemur/HLSCapture/internal/apperrors"
)

// maxBodyBytes bounds request bodies; they only carry two URLs.
const maxBodyBytes = 1 << 20

// CaptureRequest is the body of /capture and /preview.
type CaptureRequest struct {
	ManifestURL string `json:"m3u8_url"`
	PageURL     string `json:"page_url"`
}

// Validate implements validator.
func (r *CaptureRequest) Validate() error {
	r.ManifestURL = strings.TrimSpace(r.ManifestURL)
	r.PageURL = strings.TrimSpace(r.PageURL)
	if r.ManifestURL == "" {
		return apperrors.NewMissingFieldError("m3u8_url")
	}
	return nil
}

// SubtitleRequest is the body of /subtitle.
type SubtitleRequest struct {
	SubtitleURL string `json:"subtitle_url"`
	PageURL     string `json:"page_url"`
}

// Validate implements validator.
func (r *SubtitleRequest) Validate() error {
	r.SubtitleURL = strings.TrimSpace(r.SubtitleURL)
	r.PageURL = strings.TrimSpace(r.PageURL)
	if r.SubtitleURL == "" {
		return apperrors.NewMissingFieldError("subtitle_url")
	}
	return nil
}

type validator interface {
	Validate() error
}

// decodeRequest reads a JSON body into dst and validates it. All failures are
// returned as *apperrors.ErrInvalidRequest.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst validator) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return &apperrors.ErrInvalidRequest{Reason: "empty body"}
		}
		return &apperrors.ErrInvalidRequest{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return dst.Validate()
}
