package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"layer-backend/internal/catalog"
	"layer-backend/internal/models"
	"layer-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	minLayers = 3
	maxLayers = 5
)

// ProfileService handles profile and layer business logic
type ProfileService struct {
	profiles ProfileStore
	layers   LayerStore
}

// NewProfileService creates a new profile service
func NewProfileService(profiles ProfileStore, layers LayerStore) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		layers:   layers,
	}
}

// OnboardingLayer is one layer selection in an onboarding submission.
type OnboardingLayer struct {
	Category  models.LayerCategory `json:"layer_category"`
	Type      models.LayerType     `json:"layer_type"`
	Tagline   *string              `json:"tagline,omitempty"`
	Photos    []string             `json:"photos"`
	IsPrimary bool                 `json:"is_primary"`
}

// OnboardingRequest is the accumulated onboarding draft, submitted once.
type OnboardingRequest struct {
	DisplayName     string                 `json:"display_name"`
	Age             *int                   `json:"age,omitempty"`
	Bio             *string                `json:"bio,omitempty"`
	PrivacyStrategy models.PrivacyStrategy `json:"privacy_strategy"`
	Layers          []OnboardingLayer      `json:"layers"`
}

// CompleteOnboarding creates the account's profile together with its 3 to 5
// layers. The first layer is primary unless another one is flagged.
func (s *ProfileService) CompleteOnboarding(ctx context.Context, accountID string, req OnboardingRequest) (*models.Profile, []*models.Layer, error) {
	if strings.TrimSpace(req.DisplayName) == "" {
		return nil, nil, fmt.Errorf("display_name is required: %w", ErrValidation)
	}
	if req.PrivacyStrategy == "" {
		req.PrivacyStrategy = models.StrategyBalanced
	}
	if !req.PrivacyStrategy.Valid() {
		return nil, nil, fmt.Errorf("unknown privacy strategy %q: %w", req.PrivacyStrategy, ErrValidation)
	}
	if len(req.Layers) < minLayers || len(req.Layers) > maxLayers {
		return nil, nil, fmt.Errorf("profile needs %d to %d layers, got %d: %w",
			minLayers, maxLayers, len(req.Layers), ErrValidation)
	}

	primaryIdx := 0
	primarySeen := false
	for i, l := range req.Layers {
		cat, ok := catalog.CategoryOf(l.Type)
		if !ok {
			return nil, nil, fmt.Errorf("unknown layer type %q: %w", l.Type, ErrValidation)
		}
		if l.Category != cat {
			return nil, nil, fmt.Errorf("layer type %q does not belong to category %q: %w",
				l.Type, l.Category, ErrValidation)
		}
		if l.IsPrimary {
			if primarySeen {
				return nil, nil, fmt.Errorf("more than one primary layer: %w", ErrValidation)
			}
			primarySeen = true
			primaryIdx = i
		}
	}

	if existing, err := s.profiles.GetByAccountID(ctx, accountID); err == nil && existing != nil {
		return nil, nil, fmt.Errorf("account already onboarded: %w", ErrProfileExists)
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}

	now := time.Now()
	profile := &models.Profile{
		ID:              uuid.New().String(),
		AccountID:       accountID,
		DisplayName:     strings.TrimSpace(req.DisplayName),
		Age:             req.Age,
		Bio:             req.Bio,
		PrivacyStrategy: req.PrivacyStrategy,
		CreatedAt:       now,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, nil, fmt.Errorf("failed to create profile: %w", err)
	}

	layers := make([]*models.Layer, 0, len(req.Layers))
	for i, l := range req.Layers {
		photos := l.Photos
		if photos == nil {
			photos = []string{}
		}
		layers = append(layers, &models.Layer{
			ID:        uuid.New().String(),
			ProfileID: profile.ID,
			Category:  l.Category,
			Type:      l.Type,
			Tagline:   l.Tagline,
			Photos:    photos,
			IsPrimary: i == primaryIdx,
			Position:  i,
			CreatedAt: now,
		})
	}
	if err := s.layers.CreateBatch(ctx, layers); err != nil {
		return nil, nil, fmt.Errorf("failed to create layers: %w", err)
	}

	return profile, layers, nil
}

// GetByAccount returns the profile owned by an account, or ErrProfileRequired
// when onboarding has not completed yet.
func (s *ProfileService) GetByAccount(ctx context.Context, accountID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileRequired
		}
		return nil, err
	}
	return profile, nil
}

// GetWithLayers returns a profile together with its layers in stored order.
func (s *ProfileService) GetWithLayers(ctx context.Context, accountID string) (*models.Profile, []*models.Layer, error) {
	profile, err := s.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	layers, err := s.layers.ListByProfile(ctx, profile.ID)
	if err != nil {
		return nil, nil, err
	}
	return profile, layers, nil
}

// UpdateDetails updates the owner-editable fields of the account's profile.
func (s *ProfileService) UpdateDetails(ctx context.Context, accountID, displayName string, bio *string) (*models.Profile, error) {
	profile, err := s.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, fmt.Errorf("display_name is required: %w", ErrValidation)
	}
	if err := s.profiles.UpdateDetails(ctx, profile.ID, strings.TrimSpace(displayName), bio); err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, profile.ID)
}

// SetPrimaryLayer atomically swaps the account's primary layer.
func (s *ProfileService) SetPrimaryLayer(ctx context.Context, accountID, layerID string) error {
	profile, err := s.GetByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	layer, err := s.layers.GetByID(ctx, layerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if layer.ProfileID != profile.ID {
		return ErrForbidden
	}
	return s.layers.SetPrimary(ctx, profile.ID, layerID)
}

// RegisterPushToken stores the APNs device token for the account's profile.
func (s *ProfileService) RegisterPushToken(ctx context.Context, accountID string, pushToken *string) error {
	profile, err := s.GetByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	return s.profiles.UpdatePushToken(ctx, profile.ID, pushToken)
}
