package services

import (
	"context"
	"fmt"

	"layer-backend/internal/models"
)

// Candidate is one swipeable profile together with the single layer the
// requester is allowed to see.
type Candidate struct {
	Profile          *models.Profile `json:"profile"`
	VisibleLayer     *models.Layer   `json:"visible_layer"`
	HiddenLayerCount int             `json:"hidden_layer_count"`
}

// CandidateService produces the swipe pool for a requesting profile
type CandidateService struct {
	profiles ProfileStore
	layers   LayerStore
	swipes   SwipeStore
}

// NewCandidateService creates a new candidate service
func NewCandidateService(profiles ProfileStore, layers LayerStore, swipes SwipeStore) *CandidateService {
	return &CandidateService{
		profiles: profiles,
		layers:   layers,
		swipes:   swipes,
	}
}

// Select returns the pool of swipeable profiles for an account, each paired
// with exactly one visible layer. Already-decided candidates never reappear,
// whatever the decision was. Read-only.
func (s *CandidateService) Select(ctx context.Context, accountID string) ([]Candidate, error) {
	requester, err := s.profiles.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("requester has no profile: %w", ErrProfileRequired)
	}

	requesterLayers, err := s.layers.ListByProfile(ctx, requester.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requester layers: %w", err)
	}
	ownCategories := make(map[models.LayerCategory]bool, len(requesterLayers))
	for _, l := range requesterLayers {
		ownCategories[l.Category] = true
	}

	swipedIDs, err := s.swipes.ListSwipedIDs(ctx, requester.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load swipe history: %w", err)
	}
	decided := make(map[string]bool, len(swipedIDs))
	for _, id := range swipedIDs {
		decided[id] = true
	}

	pool, err := s.profiles.ListOthers(ctx, requester.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	var candidates []Candidate
	for _, p := range pool {
		if decided[p.ID] {
			continue
		}
		layers, err := s.layers.ListByProfile(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load candidate layers: %w", err)
		}
		visible := chooseVisibleLayer(layers, ownCategories)
		if visible == nil {
			continue
		}
		candidates = append(candidates, Candidate{
			Profile:          p,
			VisibleLayer:     visible,
			HiddenLayerCount: len(layers) - 1,
		})
	}

	return candidates, nil
}

// chooseVisibleLayer picks which single layer of a candidate the requester
// sees: a primary layer whose category the requester also holds, else the
// primary layer, else the first layer in stored order.
func chooseVisibleLayer(layers []*models.Layer, ownCategories map[models.LayerCategory]bool) *models.Layer {
	if len(layers) == 0 {
		return nil
	}
	for _, l := range layers {
		if l.IsPrimary && ownCategories[l.Category] {
			return l
		}
	}
	for _, l := range layers {
		if l.IsPrimary {
			return l
		}
	}
	return layers[0]
}
