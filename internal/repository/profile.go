package repository

import (
	"context"
	"errors"
	"fmt"

	"layer-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is wrapped into errors returned when a requested row does
// not exist, so callers can test with errors.Is without importing pgx.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is wrapped into errors caused by unique constraint violations.
var ErrDuplicate = errors.New("duplicate")

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, account_id, display_name, age, bio, privacy_strategy, push_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		profile.ID, profile.AccountID, profile.DisplayName, profile.Age,
		profile.Bio, profile.PrivacyStrategy, profile.PushToken, profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, account_id, display_name, age, bio, privacy_strategy, push_token, created_at
		FROM profiles
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByAccountID retrieves the profile owned by an account
func (r *ProfileRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Profile, error) {
	query := `
		SELECT id, account_id, display_name, age, bio, privacy_strategy, push_token, created_at
		FROM profiles
		WHERE account_id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, accountID))
}

// ListOthers retrieves all profiles except the given one
func (r *ProfileRepository) ListOthers(ctx context.Context, profileID string) ([]*models.Profile, error) {
	query := `
		SELECT id, account_id, display_name, age, bio, privacy_strategy, push_token, created_at
		FROM profiles
		WHERE id <> $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		var p models.Profile
		err := rows.Scan(
			&p.ID, &p.AccountID, &p.DisplayName, &p.Age,
			&p.Bio, &p.PrivacyStrategy, &p.PushToken, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return profiles, nil
}

// UpdateDetails updates the owner-editable fields of a profile
func (r *ProfileRepository) UpdateDetails(ctx context.Context, profileID, displayName string, bio *string) error {
	query := `UPDATE profiles SET display_name = $1, bio = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query, displayName, bio, profileID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile not found: %w", ErrNotFound)
	}
	return nil
}

// UpdatePushToken updates the push token for a profile
func (r *ProfileRepository) UpdatePushToken(ctx context.Context, profileID string, pushToken *string) error {
	query := `UPDATE profiles SET push_token = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, pushToken, profileID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

func (r *ProfileRepository) scanOne(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.AccountID, &p.DisplayName, &p.Age,
		&p.Bio, &p.PrivacyStrategy, &p.PushToken, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}
