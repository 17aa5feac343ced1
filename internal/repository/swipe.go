package repository

import (
	"context"
	"errors"
	"fmt"

	"layer-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SwipeRepository handles database operations for swipes
type SwipeRepository struct {
	db *pgxpool.Pool
}

// NewSwipeRepository creates a new swipe repository
func NewSwipeRepository(db *pgxpool.Pool) *SwipeRepository {
	return &SwipeRepository{db: db}
}

// Create appends a swipe to the ledger. The unique constraint on
// (swiper_id, swiped_id) makes re-swiping the same target fail with
// ErrDuplicate.
func (r *SwipeRepository) Create(ctx context.Context, swipe *models.Swipe) error {
	query := `
		INSERT INTO swipes (id, swiper_id, swiped_id, layer_shown, decision, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		swipe.ID, swipe.SwiperID, swipe.SwipedID, swipe.LayerShown, swipe.Decision, swipe.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("swipe already recorded: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create swipe: %w", err)
	}
	return nil
}

// Get retrieves the swipe for an ordered (swiper, swiped) pair
func (r *SwipeRepository) Get(ctx context.Context, swiperID, swipedID string) (*models.Swipe, error) {
	query := `
		SELECT id, swiper_id, swiped_id, layer_shown, decision, created_at
		FROM swipes
		WHERE swiper_id = $1 AND swiped_id = $2
	`
	var s models.Swipe
	err := r.db.QueryRow(ctx, query, swiperID, swipedID).Scan(
		&s.ID, &s.SwiperID, &s.SwipedID, &s.LayerShown, &s.Decision, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("swipe not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get swipe: %w", err)
	}
	return &s, nil
}

// ListSwipedIDs retrieves the ids of all profiles the swiper has decided on
func (r *SwipeRepository) ListSwipedIDs(ctx context.Context, swiperID string) ([]string, error) {
	query := `SELECT swiped_id FROM swipes WHERE swiper_id = $1`
	rows, err := r.db.Query(ctx, query, swiperID)
	if err != nil {
		return nil, fmt.Errorf("failed to list swipes: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan swipe: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating swipes: %w", err)
	}

	return ids, nil
}
