package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"layer-backend/internal/catalog"
	"layer-backend/internal/models"
	"layer-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SwipeResult is the outcome of recording a swipe.
type SwipeResult struct {
	Matched bool          `json:"matched"`
	Match   *models.Match `json:"match,omitempty"`
}

// SwipeService owns the swipe ledger and mutual-match detection
type SwipeService struct {
	profiles ProfileStore
	layers   LayerStore
	swipes   SwipeStore
	matches  MatchStore
	notifier Notifier
}

// NewSwipeService creates a new swipe service
func NewSwipeService(profiles ProfileStore, layers LayerStore, swipes SwipeStore, matches MatchStore, notifier Notifier) *SwipeService {
	return &SwipeService{
		profiles: profiles,
		layers:   layers,
		swipes:   swipes,
		matches:  matches,
		notifier: notifier,
	}
}

// RecordSwipe appends a swipe to the ledger and, for positive decisions,
// checks whether the counterpart has already swiped positively; if so the
// match is created. Match creation is idempotent per unordered pair: racing
// opposite swipes both observe the same single match.
func (s *SwipeService) RecordSwipe(ctx context.Context, accountID, swipedID string, layerShown models.LayerType, decision models.SwipeDecision) (*SwipeResult, error) {
	swiper, err := s.profiles.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("swiper has no profile: %w", ErrProfileRequired)
	}

	if !decision.Valid() {
		return nil, fmt.Errorf("unknown decision %q: %w", decision, ErrValidation)
	}
	if !catalog.ValidType(layerShown) {
		return nil, fmt.Errorf("unknown layer type %q: %w", layerShown, ErrValidation)
	}
	if swipedID == swiper.ID {
		return nil, ErrSelfSwipe
	}
	if _, err := s.profiles.GetByID(ctx, swipedID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("swiped profile %s: %w", swipedID, ErrNotFound)
		}
		return nil, err
	}

	// layer_shown records which of the swiped profile's layers was visible,
	// so it must be one the target actually holds.
	targetLayers, err := s.layers.ListByProfile(ctx, swipedID)
	if err != nil {
		return nil, fmt.Errorf("failed to load swiped profile layers: %w", err)
	}
	if !holdsLayer(targetLayers, layerShown) {
		return nil, fmt.Errorf("profile %s holds no %q layer: %w", swipedID, layerShown, ErrValidation)
	}

	swipe := &models.Swipe{
		ID:         uuid.New().String(),
		SwiperID:   swiper.ID,
		SwipedID:   swipedID,
		LayerShown: layerShown,
		Decision:   decision,
		CreatedAt:  time.Now(),
	}
	if err := s.swipes.Create(ctx, swipe); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSwipe
		}
		return nil, err
	}

	// Left swipes never produce matches regardless of the other side.
	if !decision.Positive() {
		return &SwipeResult{Matched: false}, nil
	}

	reverse, err := s.swipes.Get(ctx, swipedID, swiper.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &SwipeResult{Matched: false}, nil
		}
		return nil, err
	}
	if !reverse.Decision.Positive() {
		return &SwipeResult{Matched: false}, nil
	}

	match, err := s.createMatch(ctx, swiper.ID, swipedID, layerShown, reverse.LayerShown)
	if err != nil {
		return nil, err
	}
	return &SwipeResult{Matched: true, Match: match}, nil
}

// createMatch builds the match for a completed pair. The matched layer is
// the category of the layer the completing swiper saw; each participant's
// revealed set is seeded with the one layer type of the other they had
// already seen when they swiped.
func (s *SwipeService) createMatch(ctx context.Context, swiperID, swipedID string, layerShown, reverseLayerShown models.LayerType) (*models.Match, error) {
	matchedCategory, _ := catalog.CategoryOf(layerShown)

	user1, user2 := swiperID, swipedID
	if user1 > user2 {
		user1, user2 = user2, user1
	}

	match := &models.Match{
		ID:           uuid.New().String(),
		User1ID:      user1,
		User2ID:      user2,
		MatchedLayer: matchedCategory,
		RevealedLayers: map[string][]models.LayerType{
			swiperID: {layerShown},
			swipedID: {reverseLayerShown},
		},
		CreatedAt: time.Now(),
	}

	match, created, err := s.matches.Create(ctx, match)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	if created {
		log.Info().
			Str("match_id", match.ID).
			Str("user1_id", match.User1ID).
			Str("user2_id", match.User2ID).
			Str("matched_layer", string(match.MatchedLayer)).
			Msg("Match created")
		if s.notifier != nil {
			s.notifier.MatchCreated(match)
		}
	}
	return match, nil
}

func holdsLayer(layers []*models.Layer, t models.LayerType) bool {
	for _, l := range layers {
		if l.Type == t {
			return true
		}
	}
	return false
}
