package services

import (
	"context"

	"layer-backend/internal/models"
)

// Store interfaces consumed by the services. The pgx repositories in
// internal/repository satisfy them; tests substitute in-memory fakes.

// ProfileStore persists profiles.
type ProfileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByAccountID(ctx context.Context, accountID string) (*models.Profile, error)
	ListOthers(ctx context.Context, profileID string) ([]*models.Profile, error)
	UpdateDetails(ctx context.Context, profileID, displayName string, bio *string) error
	UpdatePushToken(ctx context.Context, profileID string, pushToken *string) error
}

// LayerStore persists profile layers.
type LayerStore interface {
	CreateBatch(ctx context.Context, layers []*models.Layer) error
	GetByID(ctx context.Context, id string) (*models.Layer, error)
	ListByProfile(ctx context.Context, profileID string) ([]*models.Layer, error)
	SetPrimary(ctx context.Context, profileID, layerID string) error
	AppendPhoto(ctx context.Context, layerID, photoKey string) error
}

// SwipeStore persists the append-only swipe ledger.
type SwipeStore interface {
	Create(ctx context.Context, swipe *models.Swipe) error
	Get(ctx context.Context, swiperID, swipedID string) (*models.Swipe, error)
	ListSwipedIDs(ctx context.Context, swiperID string) ([]string, error)
}

// MatchStore persists matches and their reveal state.
type MatchStore interface {
	Create(ctx context.Context, match *models.Match) (*models.Match, bool, error)
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListByProfile(ctx context.Context, profileID string) ([]*models.Match, error)
	RevealNext(ctx context.Context, matchID, recipientID string, threshold int, ordered []models.LayerType) (models.LayerType, bool, error)
}

// MessageStore persists conversation messages.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByMatch(ctx context.Context, matchID string) ([]*models.Message, error)
	CountByMatch(ctx context.Context, matchID string) (int, error)
}

// Notifier receives one event per engine state change and fans it out to
// connected clients. Delivery is at-least-once; consumers must tolerate
// re-delivery.
type Notifier interface {
	MatchCreated(match *models.Match)
	LayerRevealed(matchID, recipientID string, layerType models.LayerType)
	MessagePosted(msg *models.Message, recipientID string)
}
