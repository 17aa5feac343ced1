package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"layer-backend/internal/catalog"
	"layer-backend/internal/models"
	"layer-backend/internal/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory implementation of every store interface,
// mirroring the constraints the Postgres schema enforces: unique ordered
// swipe pairs, unique normalized match pairs, at-most-once milestones.
type memStore struct {
	mu         sync.Mutex
	profiles   map[string]*models.Profile
	layers     map[string][]*models.Layer
	swipes     map[string]*models.Swipe
	matches    map[string]*models.Match
	pairIndex  map[string]string
	messages   map[string][]*models.Message
	milestones map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		profiles:   make(map[string]*models.Profile),
		layers:     make(map[string][]*models.Layer),
		swipes:     make(map[string]*models.Swipe),
		matches:    make(map[string]*models.Match),
		pairIndex:  make(map[string]string),
		messages:   make(map[string][]*models.Message),
		milestones: make(map[string]bool),
	}
}

func swipeKey(swiperID, swipedID string) string { return swiperID + "|" + swipedID }

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// ProfileStore

func (s *memStore) Create(ctx context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile not found: %w", repository.ErrNotFound)
	}
	return p, nil
}

func (s *memStore) GetByAccountID(ctx context.Context, accountID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("profile not found: %w", repository.ErrNotFound)
}

func (s *memStore) ListOthers(ctx context.Context, profileID string) ([]*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Profile
	for _, p := range s.profiles {
		if p.ID != profileID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) UpdateDetails(ctx context.Context, profileID, displayName string, bio *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[profileID]
	if !ok {
		return fmt.Errorf("profile not found: %w", repository.ErrNotFound)
	}
	p.DisplayName = displayName
	p.Bio = bio
	return nil
}

func (s *memStore) UpdatePushToken(ctx context.Context, profileID string, pushToken *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[profileID]
	if !ok {
		return fmt.Errorf("profile not found: %w", repository.ErrNotFound)
	}
	p.PushToken = pushToken
	return nil
}

// LayerStore

func (s *memStore) CreateBatch(ctx context.Context, layers []*models.Layer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range layers {
		s.layers[l.ProfileID] = append(s.layers[l.ProfileID], l)
	}
	return nil
}

func (s *memStore) GetLayerByID(ctx context.Context, id string) (*models.Layer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ls := range s.layers {
		for _, l := range ls {
			if l.ID == id {
				return l, nil
			}
		}
	}
	return nil, fmt.Errorf("layer not found: %w", repository.ErrNotFound)
}

func (s *memStore) ListByProfile(ctx context.Context, profileID string) ([]*models.Layer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Layer, len(s.layers[profileID]))
	copy(out, s.layers[profileID])
	return out, nil
}

func (s *memStore) SetPrimary(ctx context.Context, profileID, layerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for _, l := range s.layers[profileID] {
		if l.ID == layerID {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("layer not found: %w", repository.ErrNotFound)
	}
	for _, l := range s.layers[profileID] {
		l.IsPrimary = l.ID == layerID
	}
	return nil
}

func (s *memStore) AppendPhoto(ctx context.Context, layerID, photoKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ls := range s.layers {
		for _, l := range ls {
			if l.ID == layerID {
				l.Photos = append(l.Photos, photoKey)
				return nil
			}
		}
	}
	return fmt.Errorf("layer not found: %w", repository.ErrNotFound)
}

// SwipeStore

func (s *memStore) CreateSwipe(ctx context.Context, sw *models.Swipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := swipeKey(sw.SwiperID, sw.SwipedID)
	if _, exists := s.swipes[key]; exists {
		return fmt.Errorf("swipe already recorded: %w", repository.ErrDuplicate)
	}
	s.swipes[key] = sw
	return nil
}

func (s *memStore) GetSwipe(ctx context.Context, swiperID, swipedID string) (*models.Swipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, ok := s.swipes[swipeKey(swiperID, swipedID)]
	if !ok {
		return nil, fmt.Errorf("swipe not found: %w", repository.ErrNotFound)
	}
	return sw, nil
}

func (s *memStore) ListSwipedIDs(ctx context.Context, swiperID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, sw := range s.swipes {
		if sw.SwiperID == swiperID {
			ids = append(ids, sw.SwipedID)
		}
	}
	return ids, nil
}

// MatchStore

func (s *memStore) CreateMatch(ctx context.Context, m *models.Match) (*models.Match, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(m.User1ID, m.User2ID)
	if existingID, exists := s.pairIndex[key]; exists {
		return s.matches[existingID], false, nil
	}
	s.pairIndex[key] = m.ID
	s.matches[m.ID] = m
	return m, true, nil
}

func (s *memStore) GetMatchByID(ctx context.Context, id string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("match not found: %w", repository.ErrNotFound)
	}
	return m, nil
}

func (s *memStore) ListMatchesByProfile(ctx context.Context, profileID string) ([]*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Match
	for _, m := range s.matches {
		if m.HasParticipant(profileID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// RevealNext mirrors the repository's transactional semantics: claim,
// selection and append happen under one lock, and a missing match leaves
// the milestone unclaimed.
func (s *memStore) RevealNext(ctx context.Context, matchID, recipientID string, threshold int, ordered []models.LayerType) (models.LayerType, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return "", false, fmt.Errorf("match not found: %w", repository.ErrNotFound)
	}
	key := fmt.Sprintf("%s|%s|%d", matchID, recipientID, threshold)
	if s.milestones[key] {
		return "", false, nil
	}
	s.milestones[key] = true

	seen := make(map[models.LayerType]bool, len(m.RevealedLayers[recipientID]))
	for _, t := range m.RevealedLayers[recipientID] {
		seen[t] = true
	}
	for _, t := range ordered {
		if !seen[t] {
			m.RevealedLayers[recipientID] = append(m.RevealedLayers[recipientID], t)
			return t, true, nil
		}
	}
	return "", false, nil
}

// MessageStore

func (s *memStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.MatchID] = append(s.messages[msg.MatchID], msg)
	return nil
}

func (s *memStore) ListMessagesByMatch(ctx context.Context, matchID string) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Message, len(s.messages[matchID]))
	copy(out, s.messages[matchID])
	return out, nil
}

func (s *memStore) CountByMatch(ctx context.Context, matchID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages[matchID]), nil
}

// Interface adapters: the store interfaces use overlapping method names
// (Create, GetByID, ListByProfile), so the non-profile aggregates get thin
// views over the shared memStore. memStore itself is the ProfileStore.

type layerView struct{ *memStore }

func (v layerView) GetByID(ctx context.Context, id string) (*models.Layer, error) {
	return v.memStore.GetLayerByID(ctx, id)
}

type swipeView struct{ *memStore }

func (v swipeView) Create(ctx context.Context, sw *models.Swipe) error {
	return v.memStore.CreateSwipe(ctx, sw)
}
func (v swipeView) Get(ctx context.Context, swiperID, swipedID string) (*models.Swipe, error) {
	return v.memStore.GetSwipe(ctx, swiperID, swipedID)
}

type matchView struct{ *memStore }

func (v matchView) Create(ctx context.Context, m *models.Match) (*models.Match, bool, error) {
	return v.memStore.CreateMatch(ctx, m)
}
func (v matchView) GetByID(ctx context.Context, id string) (*models.Match, error) {
	return v.memStore.GetMatchByID(ctx, id)
}
func (v matchView) ListByProfile(ctx context.Context, profileID string) ([]*models.Match, error) {
	return v.memStore.ListMatchesByProfile(ctx, profileID)
}

type messageView struct{ *memStore }

func (v messageView) Create(ctx context.Context, msg *models.Message) error {
	return v.memStore.CreateMessage(ctx, msg)
}
func (v messageView) ListByMatch(ctx context.Context, matchID string) ([]*models.Message, error) {
	return v.memStore.ListMessagesByMatch(ctx, matchID)
}

// spyNotifier records emitted events.
type spyNotifier struct {
	mu             sync.Mutex
	matchesCreated []*models.Match
	reveals        []revealEvent
	messages       []messageEvent
}

type revealEvent struct {
	matchID     string
	recipientID string
	layerType   models.LayerType
}

type messageEvent struct {
	msg         *models.Message
	recipientID string
}

func (n *spyNotifier) MatchCreated(match *models.Match) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matchesCreated = append(n.matchesCreated, match)
}

func (n *spyNotifier) LayerRevealed(matchID, recipientID string, layerType models.LayerType) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reveals = append(n.reveals, revealEvent{matchID, recipientID, layerType})
}

func (n *spyNotifier) MessagePosted(msg *models.Message, recipientID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, messageEvent{msg, recipientID})
}

// Test data builders.

func seedProfile(store *memStore, accountID, name string, strategy models.PrivacyStrategy) *models.Profile {
	p := &models.Profile{
		ID:              uuid.New().String(),
		AccountID:       accountID,
		DisplayName:     name,
		PrivacyStrategy: strategy,
		CreatedAt:       time.Now(),
	}
	store.profiles[p.ID] = p
	return p
}

func seedLayers(store *memStore, profileID string, types ...models.LayerType) []*models.Layer {
	layers := make([]*models.Layer, 0, len(types))
	for i, t := range types {
		cat, _ := catalog.CategoryOf(t)
		layers = append(layers, &models.Layer{
			ID:        uuid.New().String(),
			ProfileID: profileID,
			Category:  cat,
			Type:      t,
			Photos:    []string{},
			IsPrimary: i == 0,
			Position:  i,
			CreatedAt: time.Now(),
		})
	}
	store.layers[profileID] = layers
	return layers
}
