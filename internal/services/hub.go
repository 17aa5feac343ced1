package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"layer-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event is the JSON frame fanned out to connected clients.
type Event struct {
	Type        string           `json:"type"`
	MatchID     string           `json:"match_id,omitempty"`
	Match       *models.Match    `json:"match,omitempty"`
	Message     *models.Message  `json:"message,omitempty"`
	LayerType   models.LayerType `json:"layer_type,omitempty"`
	RecipientID string           `json:"recipient_id,omitempty"`
	Online      *bool            `json:"online,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// wsConn is the subset of *websocket.Conn the hub needs.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub manages WebSocket connections keyed by profile id and fans out one
// event per engine state change. Recipients without a live connection fall
// back to a push notification when one is configured.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]wsConn
	push        *PushService
}

// NewHub creates a new hub
func NewHub(push *PushService) *Hub {
	return &Hub{
		connections: make(map[string]wsConn),
		push:        push,
	}
}

// Register registers a WebSocket connection for a profile, replacing any
// existing one
func (h *Hub) Register(profileID string, conn *websocket.Conn) {
	h.register(profileID, conn)
}

func (h *Hub) register(profileID string, conn wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[profileID]; exists {
		existing.Close()
	}
	h.connections[profileID] = conn

	log.Info().Str("profile_id", profileID).Msg("WebSocket connection registered")
}

// Unregister removes the WebSocket connection for a profile
func (h *Hub) Unregister(profileID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[profileID]; exists {
		conn.Close()
		delete(h.connections, profileID)
		log.Info().Str("profile_id", profileID).Msg("WebSocket connection unregistered")
	}
}

// IsOnline checks if a profile has a live connection
func (h *Hub) IsOnline(profileID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[profileID]
	return exists
}

// SendToUser sends an event to a specific profile's connection
func (h *Hub) SendToUser(profileID string, event Event) error {
	h.mu.RLock()
	conn, exists := h.connections[profileID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("profile %s is not connected", profileID)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(profileID)
		return fmt.Errorf("failed to send event: %w", err)
	}

	return nil
}

// MatchCreated notifies both participants of a new match.
func (h *Hub) MatchCreated(match *models.Match) {
	event := Event{Type: "match_created", MatchID: match.ID, Match: match}
	for _, participantID := range []string{match.User1ID, match.User2ID} {
		h.deliver(participantID, event, "It's a match!", "You have a new match")
	}
}

// LayerRevealed notifies the recipient that a counterpart layer unlocked.
func (h *Hub) LayerRevealed(matchID, recipientID string, layerType models.LayerType) {
	event := Event{
		Type:        "layer_revealed",
		MatchID:     matchID,
		RecipientID: recipientID,
		LayerType:   layerType,
	}
	h.deliver(recipientID, event, "New layer revealed", "You've discovered a new layer of your match's personality")
}

// MessagePosted notifies the recipient of a new message.
func (h *Hub) MessagePosted(msg *models.Message, recipientID string) {
	event := Event{Type: "message_posted", MatchID: msg.MatchID, Message: msg}
	h.deliver(recipientID, event, "New message", msg.Content)
}

// deliver sends the event over the websocket when the profile is online,
// otherwise hands it to the push service.
func (h *Hub) deliver(profileID string, event Event, pushTitle, pushBody string) {
	if h.IsOnline(profileID) {
		if err := h.SendToUser(profileID, event); err == nil {
			return
		}
		log.Warn().Str("profile_id", profileID).Str("type", event.Type).Msg("WebSocket delivery failed, falling back to push")
	}
	if h.push != nil {
		h.push.Alert(profileID, pushTitle, pushBody)
	}
}

// NotifyPeerStatus tells a profile that their match counterpart went
// online or offline.
func (h *Hub) NotifyPeerStatus(profileID, peerID string, online bool) {
	if profileID == "" {
		return
	}
	event := Event{Type: "peer_status", RecipientID: peerID, Online: &online}
	if err := h.SendToUser(profileID, event); err != nil {
		log.Debug().Err(err).Str("profile_id", profileID).Msg("Failed to notify peer status")
	}
}
