package handlers

import (
	"net/http"

	"github.com/Belphemur/HLSCapture/internal/models"
	"github.com/Belphemur/HLSCapture/internal/services"
)

// CaptureHandler serves the browser extension endpoints.
type CaptureHandler struct {
	service services.CaptureService
}

// NewCaptureHandler creates a handler backed by service.
func NewCaptureHandler(service services.CaptureService) *CaptureHandler {
	return &CaptureHandler{service: service}
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Status string `json:"status"`
	DryRun bool   `json:"dry_run"`
}

// DownloadsResponse is returned by GET /downloads.
type DownloadsResponse struct {
	Downloads []models.DownloadState `json:"downloads"`
}

// Capture handles POST /capture.
func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if err := decodeRequest(w, r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	RespondJSON(w, http.StatusOK, h.service.Capture(r.Context(), req.ManifestURL, req.PageURL))
}

// Subtitle handles POST /subtitle.
func (h *CaptureHandler) Subtitle(w http.ResponseWriter, r *http.Request) {
	var req SubtitleRequest
	if err := decodeRequest(w, r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	RespondJSON(w, http.StatusOK, h.service.SubmitSubtitle(r.Context(), req.SubtitleURL, req.PageURL))
}

// Preview handles POST /preview.
func (h *CaptureHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if err := decodeRequest(w, r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	RespondJSON(w, http.StatusOK, h.service.Preview(r.Context(), req.ManifestURL, req.PageURL))
}

// Status handles GET /status.
func (h *CaptureHandler) Status(w http.ResponseWriter, _ *http.Request) {
	RespondJSON(w, http.StatusOK, StatusResponse{Status: models.ResponseOK, DryRun: h.service.DryRun()})
}

// Downloads handles GET /downloads.
func (h *CaptureHandler) Downloads(w http.ResponseWriter, _ *http.Request) {
	downloads := h.service.Downloads()
	if downloads == nil {
		downloads = []models.DownloadState{}
	}
	RespondJSON(w, http.StatusOK, DownloadsResponse{Downloads: downloads})
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	RespondError(w, http.StatusNotFound, "not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
}
