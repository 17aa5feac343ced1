package services

import (
	"context"
	"testing"

	"layer-backend/internal/catalog"
	"layer-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileFixture() (*memStore, *ProfileService) {
	store := newMemStore()
	return store, NewProfileService(store, layerView{store})
}

func onboardingLayers(types ...models.LayerType) []OnboardingLayer {
	out := make([]OnboardingLayer, 0, len(types))
	for _, t := range types {
		cat, _ := catalog.CategoryOf(t)
		out = append(out, OnboardingLayer{Category: cat, Type: t})
	}
	return out
}

func TestCompleteOnboarding(t *testing.T) {
	ctx := context.Background()

	t.Run("requires display name", func(t *testing.T) {
		_, svc := newProfileFixture()
		_, _, err := svc.CompleteOnboarding(ctx, "acc-1", OnboardingRequest{
			DisplayName: "   ",
			Layers:      onboardingLayers("runner", "artist", "reader"),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects unknown strategy", func(t *testing.T) {
		_, svc := newProfileFixture()
		_, _, err := svc.CompleteOnboarding(ctx, "acc-1", OnboardingRequest{
			DisplayName:     "Alice",
			PrivacyStrategy: "paranoid",
			Layers:          onboardingLayers("runner", "artist", "reader"),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("enforces layer count bounds", func(t *testing.T) {
		_, svc := newProfileFixture()
		_, _, err := svc.CompleteOnboarding(ctx, "acc-1", OnboardingRequest{
			DisplayName: "Alice",
			Layers:      onboardingLayers("runner", "artist"),
		})
		assert.ErrorIs(t, err, ErrValidation)

		_, _, err = svc.CompleteOnboarding(ctx, "acc-1", OnboardingRequest{
			DisplayName: "Alice",
			Layers:      onboardingLayers("runner", "artist", "reader", "hiker", "gym", "comedy"),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects unknown layer type", func(t *testing.T) {
		_, svc := newProfileFixture()
		layers := onboardingLayers("runner", "artist", "reader")
		layers[2].Type = "juggler"
		_, _, err := svc.CompleteOnboarding(ctx, "acc-1", OnboardingRequest{
			DisplayName: "Alice",
			Layers:      layers,
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects type outside its category", func(t *testing.T) {
		_, svc := newProfileFixture()
		layers := onboardingLayers("runner", "artist", "reader")
		layers[0].Category = models.CategoryNature
		_, _, err := svc.CompleteOnboarding(ctx, "acc-1", OnboardingRequest{
			DisplayName: "Alice",
			Layers:      layers,
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects two primary layers", func(t *testing.T) {
		_, svc := newProfileFixture()
		layers := onboardingLayers("runner", "artist", "reader")
		layers[0].IsPrimary = true
		layers[1].IsPrimary = true
		_, _, err := svc.CompleteOnboarding(ctx, "acc-1", OnboardingRequest{
			DisplayName: "Alice",
			Layers:      layers,
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("defaults strategy and first-layer primary", func(t *testing.T) {
		_, svc := newProfileFixture()
		profile, layers, err := svc.CompleteOnboarding(ctx, "acc-1", OnboardingRequest{
			DisplayName: "  Alice  ",
			Layers:      onboardingLayers("runner", "artist", "reader"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice", profile.DisplayName)
		assert.Equal(t, models.StrategyBalanced, profile.PrivacyStrategy)
		require.Len(t, layers, 3)
		assert.True(t, layers[0].IsPrimary)
		assert.False(t, layers[1].IsPrimary)
		assert.False(t, layers[2].IsPrimary)
		assert.Equal(t, 0, layers[0].Position)
		assert.Equal(t, 2, layers[2].Position)
		assert.NotNil(t, layers[0].Photos)
	})

	t.Run("honors an explicit primary flag", func(t *testing.T) {
		_, svc := newProfileFixture()
		layers := onboardingLayers("runner", "artist", "reader")
		layers[1].IsPrimary = true
		_, created, err := svc.CompleteOnboarding(ctx, "acc-1", OnboardingRequest{
			DisplayName:     "Alice",
			PrivacyStrategy: models.StrategyMysterious,
			Layers:          layers,
		})
		require.NoError(t, err)
		assert.False(t, created[0].IsPrimary)
		assert.True(t, created[1].IsPrimary)
	})

	t.Run("rejects a second onboarding for the account", func(t *testing.T) {
		_, svc := newProfileFixture()
		req := OnboardingRequest{
			DisplayName: "Alice",
			Layers:      onboardingLayers("runner", "artist", "reader"),
		}
		_, _, err := svc.CompleteOnboarding(ctx, "acc-1", req)
		require.NoError(t, err)
		_, _, err = svc.CompleteOnboarding(ctx, "acc-1", req)
		assert.ErrorIs(t, err, ErrProfileExists)
	})
}

func TestGetByAccount(t *testing.T) {
	ctx := context.Background()
	store, svc := newProfileFixture()
	seedProfile(store, "acc-1", "Alice", models.StrategyOpen)

	t.Run("returns the owned profile", func(t *testing.T) {
		p, err := svc.GetByAccount(ctx, "acc-1")
		require.NoError(t, err)
		assert.Equal(t, "Alice", p.DisplayName)
	})

	t.Run("maps missing profile to onboarding requirement", func(t *testing.T) {
		_, err := svc.GetByAccount(ctx, "acc-ghost")
		assert.ErrorIs(t, err, ErrProfileRequired)
	})
}

func TestUpdateDetails(t *testing.T) {
	ctx := context.Background()
	store, svc := newProfileFixture()
	seedProfile(store, "acc-1", "Alice", models.StrategyBalanced)

	t.Run("updates name and bio", func(t *testing.T) {
		bio := "hello"
		p, err := svc.UpdateDetails(ctx, "acc-1", " Alicia ", &bio)
		require.NoError(t, err)
		assert.Equal(t, "Alicia", p.DisplayName)
		require.NotNil(t, p.Bio)
		assert.Equal(t, "hello", *p.Bio)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := svc.UpdateDetails(ctx, "acc-1", "  ", nil)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestSetPrimaryLayer(t *testing.T) {
	ctx := context.Background()
	store, svc := newProfileFixture()
	alice := seedProfile(store, "acc-1", "Alice", models.StrategyBalanced)
	aliceLayers := seedLayers(store, alice.ID, "runner", "artist", "reader")
	bob := seedProfile(store, "acc-2", "Bob", models.StrategyBalanced)
	bobLayers := seedLayers(store, bob.ID, "gym", "hiker", "comedy")

	t.Run("swaps the primary", func(t *testing.T) {
		require.NoError(t, svc.SetPrimaryLayer(ctx, "acc-1", aliceLayers[2].ID))
		assert.False(t, aliceLayers[0].IsPrimary)
		assert.True(t, aliceLayers[2].IsPrimary)
	})

	t.Run("rejects someone else's layer", func(t *testing.T) {
		err := svc.SetPrimaryLayer(ctx, "acc-1", bobLayers[0].ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing layer", func(t *testing.T) {
		err := svc.SetPrimaryLayer(ctx, "acc-1", "no-such-layer")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRegisterPushToken(t *testing.T) {
	ctx := context.Background()
	store, svc := newProfileFixture()
	alice := seedProfile(store, "acc-1", "Alice", models.StrategyBalanced)

	token := "device-token"
	require.NoError(t, svc.RegisterPushToken(ctx, "acc-1", &token))
	require.NotNil(t, alice.PushToken)
	assert.Equal(t, "device-token", *alice.PushToken)

	require.NoError(t, svc.RegisterPushToken(ctx, "acc-1", nil))
	assert.Nil(t, alice.PushToken)
}
