package services

import (
	"context"
	"fmt"
	"time"

	"layer-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// PushService delivers APNs notifications to profiles that registered a
// device token and have no live websocket connection.
type PushService struct {
	client   *apns2.Client
	topic    string
	profiles ProfileStore
}

// NewPushService creates a token-based APNs client from the configured
// signing key.
func NewPushService(cfg config.APNSConfig, profiles ProfileStore) (*PushService, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	t := &token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	}

	client := apns2.NewTokenClient(t)
	if cfg.Sandbox {
		client = client.Development()
	} else {
		client = client.Production()
	}

	return &PushService{
		client:   client,
		topic:    cfg.Topic,
		profiles: profiles,
	}, nil
}

// Alert sends a basic alert notification to a profile's registered device.
// Profiles without a push token are skipped silently.
func (s *PushService) Alert(profileID, title, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		log.Warn().Err(err).Str("profile_id", profileID).Msg("Push skipped: profile lookup failed")
		return
	}
	if profile.PushToken == nil || *profile.PushToken == "" {
		return
	}

	notification := &apns2.Notification{
		DeviceToken: *profile.PushToken,
		Topic:       s.topic,
		Payload:     payload.NewPayload().AlertTitle(title).AlertBody(body).Sound("default"),
	}

	res, err := s.client.PushWithContext(ctx, notification)
	if err != nil {
		log.Error().Err(err).Str("profile_id", profileID).Msg("Push delivery failed")
		return
	}
	if !res.Sent() {
		log.Warn().
			Str("profile_id", profileID).
			Int("status", res.StatusCode).
			Str("reason", res.Reason).
			Msg("Push rejected by APNs")
	}
}
