package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"layer-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchRepository handles database operations for matches and their
// reveal state
type MatchRepository struct {
	db *pgxpool.Pool
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a match for a normalized pair. The unique constraint on
// (user1_id, user2_id) serializes racing opposite swipes: the loser's
// insert is a no-op and the winner's row is returned instead. The second
// return value reports whether this call created the row.
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) (*models.Match, bool, error) {
	revealed, err := json.Marshal(match.RevealedLayers)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode revealed layers: %w", err)
	}

	query := `
		INSERT INTO matches (id, user1_id, user2_id, matched_layer, revealed_layers, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user1_id, user2_id) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query,
		match.ID, match.User1ID, match.User2ID, match.MatchedLayer, revealed, match.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create match: %w", err)
	}
	if result.RowsAffected() == 1 {
		return match, true, nil
	}

	existing, err := r.GetByPair(ctx, match.User1ID, match.User2ID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetByID retrieves a match by ID
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `
		SELECT id, user1_id, user2_id, matched_layer, revealed_layers, created_at
		FROM matches
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByPair retrieves the match for a normalized (user1 < user2) pair
func (r *MatchRepository) GetByPair(ctx context.Context, user1ID, user2ID string) (*models.Match, error) {
	query := `
		SELECT id, user1_id, user2_id, matched_layer, revealed_layers, created_at
		FROM matches
		WHERE user1_id = $1 AND user2_id = $2
	`
	return r.scanOne(r.db.QueryRow(ctx, query, user1ID, user2ID))
}

// ListByProfile retrieves all matches a profile participates in
func (r *MatchRepository) ListByProfile(ctx context.Context, profileID string) ([]*models.Match, error) {
	query := `
		SELECT id, user1_id, user2_id, matched_layer, revealed_layers, created_at
		FROM matches
		WHERE user1_id = $1 OR user2_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

// RevealNext consumes the reveal milestone at the given message-count
// threshold for (match, recipient) and unlocks the first type in ordered not
// yet present in the recipient's revealed set. Claim, read, selection and
// append run in one transaction with the match row locked, so concurrent
// evaluations for the same match serialize and each unlocks a distinct
// layer. A failure rolls the claim back with the unlock; milestones are
// never half-consumed. Returns false when the milestone was already claimed
// or nothing remains to unlock.
func (r *MatchRepository) RevealNext(ctx context.Context, matchID, recipientID string, threshold int, ordered []models.LayerType) (models.LayerType, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx,
		`SELECT revealed_layers FROM matches WHERE id = $1 FOR UPDATE`, matchID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, fmt.Errorf("match not found: %w", ErrNotFound)
		}
		return "", false, fmt.Errorf("failed to lock match: %w", err)
	}

	result, err := tx.Exec(ctx, `
		INSERT INTO match_reveals (match_id, recipient_id, threshold, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (match_id, recipient_id, threshold) DO NOTHING
	`, matchID, recipientID, threshold)
	if err != nil {
		return "", false, fmt.Errorf("failed to claim reveal milestone: %w", err)
	}
	if result.RowsAffected() == 0 {
		return "", false, nil
	}

	revealed := make(map[string][]models.LayerType)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &revealed); err != nil {
			return "", false, fmt.Errorf("failed to decode revealed layers: %w", err)
		}
	}

	seen := make(map[models.LayerType]bool, len(revealed[recipientID]))
	for _, t := range revealed[recipientID] {
		seen[t] = true
	}
	var next models.LayerType
	for _, t := range ordered {
		if !seen[t] {
			next = t
			break
		}
	}
	if next == "" {
		// All layers are unlocked; keep the claim so the milestone stays
		// consumed.
		if err := tx.Commit(ctx); err != nil {
			return "", false, fmt.Errorf("failed to commit reveal: %w", err)
		}
		return "", false, nil
	}

	revealed[recipientID] = append(revealed[recipientID], next)
	updated, err := json.Marshal(revealed)
	if err != nil {
		return "", false, fmt.Errorf("failed to encode revealed layers: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE matches SET revealed_layers = $1 WHERE id = $2`, updated, matchID,
	); err != nil {
		return "", false, fmt.Errorf("failed to update revealed layers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", false, fmt.Errorf("failed to commit reveal: %w", err)
	}
	return next, true, nil
}

func (r *MatchRepository) scanOne(row pgx.Row) (*models.Match, error) {
	var m models.Match
	var raw []byte
	err := row.Scan(&m.ID, &m.User1ID, &m.User2ID, &m.MatchedLayer, &raw, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("match not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	m.RevealedLayers = make(map[string][]models.LayerType)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m.RevealedLayers); err != nil {
			return nil, fmt.Errorf("failed to decode revealed layers: %w", err)
		}
	}
	return &m, nil
}
