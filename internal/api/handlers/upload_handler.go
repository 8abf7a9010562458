package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vibhu2208/Aadhar-Homes/internal/storage"
)

// UploadHandler serves pre-signed upload URLs for the admin panel, which
// then PUTs media straight to the bucket.
type UploadHandler struct {
	mediaStorage storage.IMediaStorage
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(mediaStorage storage.IMediaStorage) *UploadHandler {
	return &UploadHandler{mediaStorage: mediaStorage}
}

type presignRequest struct {
	Folder      string `json:"folder"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

var allowedUploadFolders = map[string]bool{
	"projects":   true,
	"newlaunch":  true,
	"gallery":    true,
	"floorplans": true,
	"brochures":  true,
	"logos":      true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Presign handles POST /api/uploads/presign (admin only).
func (h *UploadHandler) Presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Filename == "" {
		respondError(c, http.StatusBadRequest, "Filename is required")
		return
	}
	if !allowedUploadFolders[req.Folder] {
		respondError(c, http.StatusBadRequest, "Invalid upload folder")
		return
	}
	if !allowedContentTypes[strings.ToLower(req.ContentType)] {
		respondError(c, http.StatusBadRequest, "Unsupported content type")
		return
	}

	ticket, err := h.mediaStorage.PresignUpload(c.Request.Context(), req.Folder, req.Filename, req.ContentType)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": ticket})
}
