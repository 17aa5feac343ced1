package handlers

import (
	"encoding/json"
	"net/http"

	"layer-backend/internal/middleware"
	"layer-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// MediaHandler handles layer photo uploads
type MediaHandler struct {
	mediaService *services.MediaService
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService *services.MediaService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
	}
}

// UploadRequest is the body for POST /api/v1/photos/upload
type UploadRequest struct {
	LayerID     string `json:"layer_id"`
	ContentType string `json:"content_type"`
}

// UploadPhoto handles POST /api/v1/photos/upload
func (h *MediaHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.LayerID == "" {
		respondError(w, "layer_id is required", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	resp, err := h.mediaService.PresignLayerPhoto(ctx, accountID, req.LayerID, req.ContentType)
	if err != nil {
		log.Error().
			Err(err).
			Str("account_id", accountID).
			Str("layer_id", req.LayerID).
			Msg("Failed to presign photo upload")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
