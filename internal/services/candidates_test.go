package services

import (
	"context"
	"testing"
	"time"

	"layer-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCandidateFixture() (*memStore, *CandidateService) {
	store := newMemStore()
	return store, NewCandidateService(store, layerView{store}, swipeView{store})
}

func TestSelectCandidates(t *testing.T) {
	ctx := context.Background()

	t.Run("requires profile", func(t *testing.T) {
		_, svc := newCandidateFixture()
		_, err := svc.Select(ctx, "acc-ghost")
		assert.ErrorIs(t, err, ErrProfileRequired)
	})

	t.Run("excludes self and already-swiped profiles", func(t *testing.T) {
		store, svc := newCandidateFixture()
		me := seedProfile(store, "acc-me", "Me", models.StrategyBalanced)
		seedLayers(store, me.ID, "runner", "artist", "reader")
		liked := seedProfile(store, "acc-liked", "Liked", models.StrategyBalanced)
		seedLayers(store, liked.ID, "gym", "hiker", "comedy")
		passed := seedProfile(store, "acc-passed", "Passed", models.StrategyBalanced)
		seedLayers(store, passed.ID, "yogi", "writer", "gamer")
		fresh := seedProfile(store, "acc-fresh", "Fresh", models.StrategyBalanced)
		seedLayers(store, fresh.ID, "surfer", "singer", "cyclist")

		store.swipes[swipeKey(me.ID, liked.ID)] = &models.Swipe{
			SwiperID: me.ID, SwipedID: liked.ID,
			Decision: models.SwipeRight, CreatedAt: time.Now(),
		}
		store.swipes[swipeKey(me.ID, passed.ID)] = &models.Swipe{
			SwiperID: me.ID, SwipedID: passed.ID,
			Decision: models.SwipeLeft, CreatedAt: time.Now(),
		}

		candidates, err := svc.Select(ctx, "acc-me")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, fresh.ID, candidates[0].Profile.ID)
	})

	t.Run("being swiped by others does not hide them", func(t *testing.T) {
		store, svc := newCandidateFixture()
		me := seedProfile(store, "acc-me", "Me", models.StrategyBalanced)
		seedLayers(store, me.ID, "runner", "artist", "reader")
		admirer := seedProfile(store, "acc-admirer", "Admirer", models.StrategyBalanced)
		seedLayers(store, admirer.ID, "gym", "hiker", "comedy")

		store.swipes[swipeKey(admirer.ID, me.ID)] = &models.Swipe{
			SwiperID: admirer.ID, SwipedID: me.ID,
			Decision: models.SwipeRight, CreatedAt: time.Now(),
		}

		candidates, err := svc.Select(ctx, "acc-me")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, admirer.ID, candidates[0].Profile.ID)
	})

	t.Run("prefers a primary layer in a shared category", func(t *testing.T) {
		store, svc := newCandidateFixture()
		me := seedProfile(store, "acc-me", "Me", models.StrategyBalanced)
		seedLayers(store, me.ID, "gym", "artist", "reader")
		other := seedProfile(store, "acc-other", "Other", models.StrategyBalanced)
		// Primary is "crossfit" (fitness), same category as my "gym".
		seedLayers(store, other.ID, "crossfit", "hiker", "comedy")

		candidates, err := svc.Select(ctx, "acc-me")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, models.LayerType("crossfit"), candidates[0].VisibleLayer.Type)
		assert.Equal(t, 2, candidates[0].HiddenLayerCount)
	})

	t.Run("falls back to the primary layer", func(t *testing.T) {
		store, svc := newCandidateFixture()
		me := seedProfile(store, "acc-me", "Me", models.StrategyBalanced)
		seedLayers(store, me.ID, "runner", "artist", "reader")
		other := seedProfile(store, "acc-other", "Other", models.StrategyBalanced)
		// No category overlap with me; primary "gym" still wins.
		seedLayers(store, other.ID, "gym", "hiker", "comedy")

		candidates, err := svc.Select(ctx, "acc-me")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, models.LayerType("gym"), candidates[0].VisibleLayer.Type)
	})

	t.Run("non-primary shared category loses to the primary", func(t *testing.T) {
		store, svc := newCandidateFixture()
		me := seedProfile(store, "acc-me", "Me", models.StrategyBalanced)
		seedLayers(store, me.ID, "hiker", "artist", "reader")
		other := seedProfile(store, "acc-other", "Other", models.StrategyBalanced)
		// "gardener" (nature) matches my "hiker" but is not primary.
		seedLayers(store, other.ID, "gym", "gardener", "comedy")

		candidates, err := svc.Select(ctx, "acc-me")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, models.LayerType("gym"), candidates[0].VisibleLayer.Type)
	})

	t.Run("first stored layer when none is primary", func(t *testing.T) {
		store, svc := newCandidateFixture()
		me := seedProfile(store, "acc-me", "Me", models.StrategyBalanced)
		seedLayers(store, me.ID, "runner", "artist", "reader")
		other := seedProfile(store, "acc-other", "Other", models.StrategyBalanced)
		layers := seedLayers(store, other.ID, "gym", "hiker", "comedy")
		for _, l := range layers {
			l.IsPrimary = false
		}

		candidates, err := svc.Select(ctx, "acc-me")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, models.LayerType("gym"), candidates[0].VisibleLayer.Type)
	})

	t.Run("skips profiles without layers", func(t *testing.T) {
		store, svc := newCandidateFixture()
		me := seedProfile(store, "acc-me", "Me", models.StrategyBalanced)
		seedLayers(store, me.ID, "runner", "artist", "reader")
		seedProfile(store, "acc-bare", "Bare", models.StrategyBalanced)

		candidates, err := svc.Select(ctx, "acc-me")
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})
}
