package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"breaktime-service/src/models"
)

// UpsertUser creates the user on first contact or refreshes the profile
// fields on every later one. Last writer wins on username and full name.
func (s *Store) UpsertUser(ctx context.Context, q Querier, externalID int64, username, fullName string, now time.Time) (*models.User, error) {
	query := `
		INSERT INTO users (external_id, username, full_name, created_at, updated_at, last_active_at)
		VALUES ($1, $2, $3, $4, $4, $4)
		ON CONFLICT (external_id) DO UPDATE
		SET username = EXCLUDED.username,
		    full_name = EXCLUDED.full_name,
		    updated_at = EXCLUDED.updated_at,
		    last_active_at = EXCLUDED.last_active_at
		RETURNING id, external_id, COALESCE(username, ''), full_name, created_at, updated_at, last_active_at
	`

	var user models.User
	err := q.QueryRowContext(ctx, query, externalID, username, fullName, now).Scan(
		&user.ID,
		&user.ExternalID,
		&user.Username,
		&user.FullName,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastActiveAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return &user, nil
}

// GetUserByExternalID looks a user up by the chat platform identifier.
func (s *Store) GetUserByExternalID(ctx context.Context, externalID int64) (*models.User, error) {
	query := `
		SELECT id, external_id, COALESCE(username, ''), full_name, created_at, updated_at, last_active_at
		FROM users
		WHERE external_id = $1
	`

	var user models.User
	err := s.pool().QueryRowContext(ctx, query, externalID).Scan(
		&user.ID,
		&user.ExternalID,
		&user.Username,
		&user.FullName,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastActiveAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// ListUsers returns every known user ordered by full name.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, external_id, COALESCE(username, ''), full_name, created_at, updated_at, last_active_at
		FROM users
		ORDER BY full_name
	`

	rows, err := s.pool().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.ExternalID,
			&user.Username,
			&user.FullName,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.LastActiveAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
