package handlers

import (
	"encoding/json"
	"net/http"

	"layer-backend/internal/middleware"
	"layer-backend/internal/models"
	"layer-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *services.ProfileService
	mediaService   *services.MediaService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService, mediaService *services.MediaService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		mediaService:   mediaService,
	}
}

// ProfileResponse is a profile with its layers.
type ProfileResponse struct {
	Profile *models.Profile `json:"profile"`
	Layers  []*models.Layer `json:"layers"`
}

// CompleteOnboarding handles POST /api/v1/profiles
func (h *ProfileHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)

	var req services.OnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, layers, err := h.profileService.CompleteOnboarding(ctx, accountID, req)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("Failed to complete onboarding")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("account_id", accountID).
		Str("profile_id", profile.ID).
		Int("layers", len(layers)).
		Msg("Profile created")

	respondJSON(w, http.StatusCreated, ProfileResponse{Profile: profile, Layers: layers})
}

// GetMyProfile handles GET /api/v1/profiles/me
func (h *ProfileHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)

	profile, layers, err := h.profileService.GetWithLayers(ctx, accountID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProfileResponse{
		Profile: profile,
		Layers:  h.mediaService.ResolvePhotoURLs(layers),
	})
}

// UpdateProfileRequest is the body for PATCH /api/v1/profiles/me
type UpdateProfileRequest struct {
	DisplayName string  `json:"display_name"`
	Bio         *string `json:"bio,omitempty"`
}

// UpdateProfile handles PATCH /api/v1/profiles/me
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.profileService.UpdateDetails(ctx, accountID, req.DisplayName, req.Bio)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("Failed to update profile")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// SetPrimaryLayer handles PUT /api/v1/profiles/me/layers/{layer_id}/primary
func (h *ProfileHandler) SetPrimaryLayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)
	layerID := chi.URLParam(r, "layer_id")

	if layerID == "" {
		respondError(w, "layer_id is required", http.StatusBadRequest)
		return
	}

	if err := h.profileService.SetPrimaryLayer(ctx, accountID, layerID); err != nil {
		log.Error().Err(err).Str("account_id", accountID).Str("layer_id", layerID).Msg("Failed to set primary layer")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("account_id", accountID).Str("layer_id", layerID).Msg("Primary layer changed")
	w.WriteHeader(http.StatusNoContent)
}

// PushTokenRequest is the body for POST /api/v1/profiles/me/push-token
type PushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// RegisterPushToken handles POST /api/v1/profiles/me/push-token
func (h *ProfileHandler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)

	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.profileService.RegisterPushToken(ctx, accountID, req.PushToken); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
