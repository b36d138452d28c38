package handlers

import (
	"net/http"

	"github.com/campusconnect/server/internal/api/problem"
	"github.com/campusconnect/server/internal/media"
)

// UploadsHandler accepts multipart image uploads and returns the hosted
// URLs. Upload happens before event submission; the lifecycle service
// only ever sees the resulting URLs.
type UploadsHandler struct {
	Uploader media.Uploader
	Env      string
}

func NewUploadsHandler(uploader media.Uploader, env string) *UploadsHandler {
	return &UploadsHandler{Uploader: uploader, Env: env}
}

// Upload handles POST /events/upload. The form may carry multiple
// files under the "images" field; URLs come back in submission order.
func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.Uploader == nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Uploads not configured", nil, h.Env)
		return
	}

	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid multipart body", err, h.Env)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "No images provided", nil, h.Env)
		return
	}

	urls := make([]string, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Unreadable image", err, h.Env)
			return
		}
		uploadedURL, err := h.Uploader.Upload(r.Context(), file)
		_ = file.Close()
		if err != nil {
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Upload failed", err, h.Env)
			return
		}
		urls = append(urls, uploadedURL)
	}

	writeJSON(w, http.StatusOK, map[string]any{"urls": urls})
}

// multipart parts beyond this stay on disk instead of in memory.
const uploadMemoryLimit = 8 << 20
