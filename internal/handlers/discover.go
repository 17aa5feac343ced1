package handlers

import (
	"encoding/json"
	"net/http"

	"layer-backend/internal/middleware"
	"layer-backend/internal/models"
	"layer-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// DiscoverHandler handles candidate listing and swipe submission
type DiscoverHandler struct {
	candidateService *services.CandidateService
	swipeService     *services.SwipeService
	mediaService     *services.MediaService
}

// NewDiscoverHandler creates a new discover handler
func NewDiscoverHandler(candidateService *services.CandidateService, swipeService *services.SwipeService, mediaService *services.MediaService) *DiscoverHandler {
	return &DiscoverHandler{
		candidateService: candidateService,
		swipeService:     swipeService,
		mediaService:     mediaService,
	}
}

// CandidatesResponse wraps the candidate pool.
type CandidatesResponse struct {
	Candidates []services.Candidate `json:"candidates"`
}

// ListCandidates handles GET /api/v1/candidates
func (h *DiscoverHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)

	candidates, err := h.candidateService.Select(ctx, accountID)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("Failed to list candidates")
		respondServiceError(w, err)
		return
	}
	if candidates == nil {
		candidates = []services.Candidate{}
	}
	for i := range candidates {
		resolved := h.mediaService.ResolvePhotoURLs([]*models.Layer{candidates[i].VisibleLayer})
		candidates[i].VisibleLayer = resolved[0]
	}

	respondJSON(w, http.StatusOK, CandidatesResponse{Candidates: candidates})
}

// SwipeRequest is the body for POST /api/v1/swipes
type SwipeRequest struct {
	SwipedID   string               `json:"swiped_id"`
	LayerShown models.LayerType     `json:"layer_shown"`
	Decision   models.SwipeDecision `json:"decision"`
}

// SubmitSwipe handles POST /api/v1/swipes
func (h *DiscoverHandler) SubmitSwipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)

	var req SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SwipedID == "" {
		respondError(w, "swiped_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.swipeService.RecordSwipe(ctx, accountID, req.SwipedID, req.LayerShown, req.Decision)
	if err != nil {
		log.Error().
			Err(err).
			Str("account_id", accountID).
			Str("swiped_id", req.SwipedID).
			Msg("Failed to record swipe")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("account_id", accountID).
		Str("swiped_id", req.SwipedID).
		Str("decision", string(req.Decision)).
		Bool("matched", result.Matched).
		Msg("Swipe recorded")

	respondJSON(w, http.StatusOK, result)
}
