package services

import "errors"

// Service-level error taxonomy. Handlers map these to HTTP statuses with
// errors.Is; services never return raw repository errors for expected
// failure modes.
var (
	// ErrValidation marks malformed or missing required input.
	ErrValidation = errors.New("invalid input")

	// ErrEmptyMessage is returned when message content is empty after trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrDuplicateSwipe is returned when the ordered (swiper, swiped) pair
	// already has a recorded swipe. Swipes have no update path.
	ErrDuplicateSwipe = errors.New("swipe already recorded")

	// ErrSelfSwipe is returned when a profile swipes on itself.
	ErrSelfSwipe = errors.New("cannot swipe on yourself")

	// ErrForbidden is returned when the actor is not a participant of the
	// resource acted on.
	ErrForbidden = errors.New("not a participant")

	// ErrNotFound is returned when a referenced profile, layer, match or
	// message does not exist.
	ErrNotFound = errors.New("not found")

	// ErrProfileRequired is returned when an operation needs a profile the
	// requester has not created yet (pre-onboarding).
	ErrProfileRequired = errors.New("profile not created yet")

	// ErrProfileExists is returned when onboarding is re-submitted for an
	// account that already has a profile.
	ErrProfileExists = errors.New("profile already exists")
)
