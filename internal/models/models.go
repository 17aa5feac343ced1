package models

import "time"

// LayerCategory identifies one of the fixed personality facet groups.
type LayerCategory string

const (
	CategoryMovement     LayerCategory = "movement"
	CategoryCreative     LayerCategory = "creative"
	CategoryFitness      LayerCategory = "fitness"
	CategoryIntellectual LayerCategory = "intellectual"
	CategoryNature       LayerCategory = "nature"
	CategoryPerformer    LayerCategory = "performer"
)

// LayerType identifies a concrete layer within a category.
type LayerType string

// SwipeDecision is the closed set of swipe outcomes.
type SwipeDecision string

const (
	SwipeLeft  SwipeDecision = "left"
	SwipeRight SwipeDecision = "right"
	SwipeSuper SwipeDecision = "super"
)

// Valid reports whether d is one of the known decisions.
func (d SwipeDecision) Valid() bool {
	return d == SwipeLeft || d == SwipeRight || d == SwipeSuper
}

// Positive reports whether d can complete a mutual match.
func (d SwipeDecision) Positive() bool {
	return d == SwipeRight || d == SwipeSuper
}

// PrivacyStrategy controls how quickly a profile's layers are revealed.
type PrivacyStrategy string

const (
	StrategyMysterious PrivacyStrategy = "mysterious"
	StrategyBalanced   PrivacyStrategy = "balanced"
	StrategyOpen       PrivacyStrategy = "open"
)

// Valid reports whether s is one of the known strategies.
func (s PrivacyStrategy) Valid() bool {
	return s == StrategyMysterious || s == StrategyBalanced || s == StrategyOpen
}

// Profile represents a user's dating profile
type Profile struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	DisplayName     string          `json:"display_name"`
	Age             *int            `json:"age,omitempty"`
	Bio             *string         `json:"bio,omitempty"`
	PrivacyStrategy PrivacyStrategy `json:"privacy_strategy"`
	PushToken       *string         `json:"push_token,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Layer represents one personality facet of a profile.
// A profile carries 3 to 5 layers, exactly one of them primary.
type Layer struct {
	ID        string        `json:"id"`
	ProfileID string        `json:"profile_id"`
	Category  LayerCategory `json:"layer_category"`
	Type      LayerType     `json:"layer_type"`
	Tagline   *string       `json:"tagline,omitempty"`
	Photos    []string      `json:"photos"`
	IsPrimary bool          `json:"is_primary"`
	Position  int           `json:"position"`
	CreatedAt time.Time     `json:"created_at"`
}

// Swipe is an immutable decision by one profile about another, scoped to
// the layer that was visible at decision time. At most one swipe exists
// per ordered (swiper, swiped) pair.
type Swipe struct {
	ID         string        `json:"id"`
	SwiperID   string        `json:"swiper_id"`
	SwipedID   string        `json:"swiped_id"`
	LayerShown LayerType     `json:"layer_shown"`
	Decision   SwipeDecision `json:"decision"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Match pairs two profiles after mutual positive swipes. User1ID < User2ID
// always holds so the pair key is unique regardless of swipe order.
// RevealedLayers maps each participant id to the layer types of the other
// participant that are unlocked for them.
type Match struct {
	ID             string                 `json:"id"`
	User1ID        string                 `json:"user1_id"`
	User2ID        string                 `json:"user2_id"`
	MatchedLayer   LayerCategory          `json:"matched_layer"`
	RevealedLayers map[string][]LayerType `json:"revealed_layers"`
	CreatedAt      time.Time              `json:"created_at"`
}

// OtherParticipant returns the counterpart of profileID in the match,
// or "" if profileID is not a participant.
func (m *Match) OtherParticipant(profileID string) string {
	switch profileID {
	case m.User1ID:
		return m.User2ID
	case m.User2ID:
		return m.User1ID
	}
	return ""
}

// HasParticipant reports whether profileID is one of the match's two sides.
func (m *Match) HasParticipant(profileID string) bool {
	return profileID == m.User1ID || profileID == m.User2ID
}

// Message belongs to a match and is immutable once created.
type Message struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
