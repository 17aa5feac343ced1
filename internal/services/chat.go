package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"layer-backend/internal/models"
	"layer-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MatchSummary is one entry of a user's match list.
type MatchSummary struct {
	Match         *models.Match   `json:"match"`
	Counterpart   *models.Profile `json:"counterpart"`
	RevealedCount int             `json:"revealed_count"`
}

// ChatService handles the conversation feed and match state queries
type ChatService struct {
	profiles ProfileStore
	matches  MatchStore
	messages MessageStore
	reveal   *RevealService
	notifier Notifier
}

// NewChatService creates a new chat service
func NewChatService(profiles ProfileStore, matches MatchStore, messages MessageStore, reveal *RevealService, notifier Notifier) *ChatService {
	return &ChatService{
		profiles: profiles,
		matches:  matches,
		messages: messages,
		reveal:   reveal,
		notifier: notifier,
	}
}

// PostMessage validates, appends and returns a message, then runs the
// reveal transition for the new message count. A failed reveal check is
// logged and skipped; it never blocks message delivery.
func (s *ChatService) PostMessage(ctx context.Context, accountID, matchID, content string) (*models.Message, error) {
	sender, err := s.profiles.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("sender has no profile: %w", ErrProfileRequired)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
		}
		return nil, err
	}
	if !match.HasParticipant(sender.ID) {
		return nil, ErrForbidden
	}

	msg := &models.Message{
		ID:        uuid.New().String(),
		MatchID:   matchID,
		SenderID:  sender.ID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MessagePosted(msg, match.OtherParticipant(sender.ID))
	}

	// The count is recomputed, not assigned at insert: two exactly
	// concurrent messages can both observe the later count and a threshold
	// between them goes unclaimed until the next milestone.
	count, err := s.messages.CountByMatch(ctx, matchID)
	if err != nil {
		log.Warn().Err(err).Str("match_id", matchID).Msg("Skipping reveal check: count unavailable")
		return msg, nil
	}
	if err := s.reveal.Evaluate(ctx, match, sender.ID, count); err != nil {
		log.Warn().Err(err).Str("match_id", matchID).Msg("Skipping reveal check")
	}

	return msg, nil
}

// ListMessages returns a match's messages in conversation order. Only
// participants may read them.
func (s *ChatService) ListMessages(ctx context.Context, accountID, matchID string) ([]*models.Message, error) {
	_, match, err := s.requireParticipant(ctx, accountID, matchID)
	if err != nil {
		return nil, err
	}
	return s.messages.ListByMatch(ctx, match.ID)
}

// GetMatchState returns the match with its participants and revealed layer
// sets. Only participants may read it.
func (s *ChatService) GetMatchState(ctx context.Context, accountID, matchID string) (*models.Match, error) {
	_, match, err := s.requireParticipant(ctx, accountID, matchID)
	if err != nil {
		return nil, err
	}
	return match, nil
}

// ListMatches returns the account's matches with counterpart profiles and
// the viewer's revealed-layer counts.
func (s *ChatService) ListMatches(ctx context.Context, accountID string) ([]MatchSummary, error) {
	viewer, err := s.profiles.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("viewer has no profile: %w", ErrProfileRequired)
	}

	matches, err := s.matches.ListByProfile(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]MatchSummary, 0, len(matches))
	for _, m := range matches {
		counterpart, err := s.profiles.GetByID(ctx, m.OtherParticipant(viewer.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to load counterpart profile: %w", err)
		}
		summaries = append(summaries, MatchSummary{
			Match:         m,
			Counterpart:   counterpart,
			RevealedCount: len(m.RevealedLayers[viewer.ID]),
		})
	}
	return summaries, nil
}

func (s *ChatService) requireParticipant(ctx context.Context, accountID, matchID string) (*models.Profile, *models.Match, error) {
	profile, err := s.profiles.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("requester has no profile: %w", ErrProfileRequired)
	}
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
		}
		return nil, nil, err
	}
	if !match.HasParticipant(profile.ID) {
		return nil, nil, ErrForbidden
	}
	return profile, match, nil
}
