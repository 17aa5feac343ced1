package services

import (
	"context"
	"fmt"

	"layer-backend/internal/config"
	"layer-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// RevealService is the state machine that unlocks layers of one match
// participant for the other as the conversation deepens. Unlocking is
// monotonic: a layer, once revealed, is never re-hidden.
type RevealService struct {
	profiles ProfileStore
	layers   LayerStore
	matches  MatchStore
	reveal   *config.RevealConfig
	notifier Notifier
}

// NewRevealService creates a new reveal service
func NewRevealService(profiles ProfileStore, layers LayerStore, matches MatchStore, reveal *config.RevealConfig, notifier Notifier) *RevealService {
	return &RevealService{
		profiles: profiles,
		layers:   layers,
		matches:  matches,
		reveal:   reveal,
		notifier: notifier,
	}
}

// Evaluate runs the reveal transition after a message from senderID brought
// the match's conversation to messageCount messages. When the count hits a
// threshold of the sender's privacy strategy, the next not-yet-revealed
// layer of the sender unlocks for the recipient, in the sender's stored
// layer order. Each (match, recipient, threshold) milestone fires at most
// once, so replayed messages cannot double-unlock.
func (s *RevealService) Evaluate(ctx context.Context, match *models.Match, senderID string, messageCount int) error {
	recipientID := match.OtherParticipant(senderID)
	if recipientID == "" {
		return fmt.Errorf("sender %s is not a participant of match %s: %w", senderID, match.ID, ErrForbidden)
	}

	sender, err := s.profiles.GetByID(ctx, senderID)
	if err != nil {
		return fmt.Errorf("failed to load sender profile: %w", err)
	}

	if !containsThreshold(s.reveal.ThresholdsFor(sender.PrivacyStrategy), messageCount) {
		return nil
	}

	senderLayers, err := s.layers.ListByProfile(ctx, senderID)
	if err != nil {
		return fmt.Errorf("failed to load sender layers: %w", err)
	}
	ordered := make([]models.LayerType, 0, len(senderLayers))
	for _, l := range senderLayers {
		ordered = append(ordered, l.Type)
	}

	next, unlocked, err := s.matches.RevealNext(ctx, match.ID, recipientID, messageCount, ordered)
	if err != nil {
		return fmt.Errorf("failed to unlock layer: %w", err)
	}
	if !unlocked {
		return nil
	}

	log.Info().
		Str("match_id", match.ID).
		Str("recipient_id", recipientID).
		Str("layer_type", string(next)).
		Int("message_count", messageCount).
		Msg("Layer revealed")

	if s.notifier != nil {
		s.notifier.LayerRevealed(match.ID, recipientID, next)
	}
	return nil
}

func containsThreshold(thresholds []int, n int) bool {
	for _, t := range thresholds {
		if t == n {
			return true
		}
	}
	return false
}
