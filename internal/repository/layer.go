package repository

import (
	"context"
	"errors"
	"fmt"

	"layer-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LayerRepository handles database operations for profile layers
type LayerRepository struct {
	db *pgxpool.Pool
}

// NewLayerRepository creates a new layer repository
func NewLayerRepository(db *pgxpool.Pool) *LayerRepository {
	return &LayerRepository{db: db}
}

// CreateBatch inserts all layers of a profile in one transaction
func (r *LayerRepository) CreateBatch(ctx context.Context, layers []*models.Layer) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO user_layers (id, profile_id, layer_category, layer_type, tagline, photos, is_primary, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, layer := range layers {
		_, err := tx.Exec(ctx, query,
			layer.ID, layer.ProfileID, layer.Category, layer.Type,
			layer.Tagline, layer.Photos, layer.IsPrimary, layer.Position, layer.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create layer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit layers: %w", err)
	}
	return nil
}

// GetByID retrieves a layer by ID
func (r *LayerRepository) GetByID(ctx context.Context, id string) (*models.Layer, error) {
	query := `
		SELECT id, profile_id, layer_category, layer_type, tagline, photos, is_primary, position, created_at
		FROM user_layers
		WHERE id = $1
	`
	var l models.Layer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.ProfileID, &l.Category, &l.Type,
		&l.Tagline, &l.Photos, &l.IsPrimary, &l.Position, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("layer not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get layer: %w", err)
	}
	return &l, nil
}

// ListByProfile retrieves a profile's layers in stored order
func (r *LayerRepository) ListByProfile(ctx context.Context, profileID string) ([]*models.Layer, error) {
	query := `
		SELECT id, profile_id, layer_category, layer_type, tagline, photos, is_primary, position, created_at
		FROM user_layers
		WHERE profile_id = $1
		ORDER BY position
	`
	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list layers: %w", err)
	}
	defer rows.Close()

	var layers []*models.Layer
	for rows.Next() {
		var l models.Layer
		err := rows.Scan(
			&l.ID, &l.ProfileID, &l.Category, &l.Type,
			&l.Tagline, &l.Photos, &l.IsPrimary, &l.Position, &l.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan layer: %w", err)
		}
		layers = append(layers, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating layers: %w", err)
	}

	return layers, nil
}

// SetPrimary clears the current primary layer of a profile and sets a new
// one as a single atomic swap.
func (r *LayerRepository) SetPrimary(ctx context.Context, profileID, layerID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE user_layers SET is_primary = false WHERE profile_id = $1 AND is_primary`, profileID,
	); err != nil {
		return fmt.Errorf("failed to clear primary layer: %w", err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE user_layers SET is_primary = true WHERE id = $1 AND profile_id = $2`, layerID, profileID,
	)
	if err != nil {
		return fmt.Errorf("failed to set primary layer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("layer not found: %w", ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit primary swap: %w", err)
	}
	return nil
}

// AppendPhoto adds a photo reference to a layer
func (r *LayerRepository) AppendPhoto(ctx context.Context, layerID, photoKey string) error {
	query := `UPDATE user_layers SET photos = array_append(photos, $1) WHERE id = $2`
	result, err := r.db.Exec(ctx, query, photoKey, layerID)
	if err != nil {
		return fmt.Errorf("failed to append photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("layer not found: %w", ErrNotFound)
	}
	return nil
}
