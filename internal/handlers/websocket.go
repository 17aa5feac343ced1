package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"layer-backend/internal/middleware"
	"layer-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // clients connect from app webviews and dev hosts
	},
}

// WebSocketHandler handles realtime event subscriptions
type WebSocketHandler struct {
	hub            *services.Hub
	profileService *services.ProfileService
	chatService    *services.ChatService
	jwtSecret      string
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.Hub, profileService *services.ProfileService, chatService *services.ChatService, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		profileService: profileService,
		chatService:    chatService,
		jwtSecret:      jwtSecret,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	accountID, err := middleware.ValidateToken(token, h.jwtSecret)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	ctx := r.Context()
	profile, err := h.profileService.GetByAccount(ctx, accountID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(profile.ID, conn)
	defer h.hub.Unregister(profile.ID)

	// Tell online match counterparts that this profile came online.
	h.notifyCounterparts(accountID, profile.ID, true)
	defer h.notifyCounterparts(accountID, profile.ID, false)

	log.Info().Str("profile_id", profile.ID).Msg("WebSocket connection established")

	// This channel is server-push only; the read loop exists to detect
	// disconnects and reject anything the client sends.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("profile_id", profile.ID).Msg("WebSocket error")
			}
			break
		}

		var frame services.Event
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.sendError(conn, "Invalid message format")
			continue
		}
		h.sendError(conn, "Unknown message type")
	}
}

func (h *WebSocketHandler) notifyCounterparts(accountID, profileID string, online bool) {
	// Uses a fresh context: the request context is gone by the time the
	// deferred offline notification runs.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	summaries, err := h.chatService.ListMatches(ctx, accountID)
	if err != nil {
		log.Debug().Err(err).Str("profile_id", profileID).Msg("Skipping peer status fan-out")
		return
	}
	for _, s := range summaries {
		if h.hub.IsOnline(s.Counterpart.ID) {
			h.hub.NotifyPeerStatus(s.Counterpart.ID, profileID, online)
		}
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	frame := services.Event{Type: "error", Error: message}
	data, _ := json.Marshal(frame)
	conn.WriteMessage(websocket.TextMessage, data)
}
