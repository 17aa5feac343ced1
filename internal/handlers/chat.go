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

// ChatHandler handles match listing and the conversation feed
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// ListMatches handles GET /api/v1/matches
func (h *ChatHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)

	summaries, err := h.chatService.ListMatches(ctx, accountID)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("Failed to list matches")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string][]services.MatchSummary{"matches": summaries})
}

// GetMatchState handles GET /api/v1/matches/{match_id}
func (h *ChatHandler) GetMatchState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)
	matchID := chi.URLParam(r, "match_id")

	match, err := h.chatService.GetMatchState(ctx, accountID, matchID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, match)
}

// ListMessages handles GET /api/v1/matches/{match_id}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)
	matchID := chi.URLParam(r, "match_id")

	messages, err := h.chatService.ListMessages(ctx, accountID, matchID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}

	respondJSON(w, http.StatusOK, map[string][]*models.Message{"messages": messages})
}

// PostMessageRequest is the body for POST /api/v1/matches/{match_id}/messages
type PostMessageRequest struct {
	Content string `json:"content"`
}

// PostMessage handles POST /api/v1/matches/{match_id}/messages
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := middleware.GetAccountID(ctx)
	matchID := chi.URLParam(r, "match_id")

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.chatService.PostMessage(ctx, accountID, matchID, req.Content)
	if err != nil {
		log.Error().
			Err(err).
			Str("account_id", accountID).
			Str("match_id", matchID).
			Msg("Failed to post message")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}
