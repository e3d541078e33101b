package repository

import (
	"context"
	"database/sql"
	"fmt"

	"breaktime-service/src/models"
)

// GetActiveSession returns the user's open break, or nil when available.
// Inside a transaction the row is locked so concurrent lifecycle calls
// for the same user serialize.
func (s *Store) GetActiveSession(ctx context.Context, q Querier, userID int64, forUpdate bool) (*models.ActiveSession, error) {
	query := `
		SELECT user_id, break_type_id, start_time, reason, group_chat_id, source, created_at
		FROM active_sessions
		WHERE user_id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var session models.ActiveSession
	err := q.QueryRowContext(ctx, query, userID).Scan(
		&session.UserID,
		&session.BreakTypeID,
		&session.StartTime,
		&session.Reason,
		&session.GroupChatID,
		&session.Source,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}

	return &session, nil
}

// CreateActiveSession opens a break for the user. The primary key on
// user_id rejects a second open break at the store.
func (s *Store) CreateActiveSession(ctx context.Context, q Querier, session *models.ActiveSession) error {
	query := `
		INSERT INTO active_sessions
		(user_id, break_type_id, start_time, reason, group_chat_id, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.ExecContext(ctx, query,
		session.UserID,
		session.BreakTypeID,
		session.StartTime,
		session.Reason,
		session.GroupChatID,
		session.Source,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create active session: %w", err)
	}

	return nil
}

// DeleteActiveSession closes the user's open break. Returns whether a
// row was actually removed.
func (s *Store) DeleteActiveSession(ctx context.Context, q Querier, userID int64) (bool, error) {
	query := `DELETE FROM active_sessions WHERE user_id = $1`

	res, err := q.ExecContext(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete active session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}

	return affected > 0, nil
}

// ListActiveSessionDetails returns every open break joined with its
// user and break type, oldest start first.
func (s *Store) ListActiveSessionDetails(ctx context.Context) ([]models.ActiveSessionDetail, error) {
	query := `
		SELECT a.user_id, a.break_type_id, a.start_time, a.reason, a.group_chat_id,
		       a.source, a.created_at,
		       u.external_id, COALESCE(u.username, ''), u.full_name,
		       bt.code, bt.display_name, bt.time_limit_minutes
		FROM active_sessions a
		JOIN users u ON u.id = a.user_id
		JOIN break_types bt ON bt.id = a.break_type_id
		ORDER BY a.start_time
	`

	rows, err := s.pool().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.ActiveSessionDetail
	for rows.Next() {
		var d models.ActiveSessionDetail
		if err := rows.Scan(
			&d.UserID,
			&d.BreakTypeID,
			&d.StartTime,
			&d.Reason,
			&d.GroupChatID,
			&d.Source,
			&d.CreatedAt,
			&d.ExternalID,
			&d.Username,
			&d.FullName,
			&d.BreakTypeCode,
			&d.BreakTypeName,
			&d.TimeLimitMinutes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan active session: %w", err)
		}
		sessions = append(sessions, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active sessions: %w", err)
	}

	return sessions, nil
}

// UpsertImporterSession records an implied-open break discovered during
// reconciliation. An importer-created row is corrected to the
// snapshot's view; a bot-created row is authoritative and never
// touched here.
func (s *Store) UpsertImporterSession(ctx context.Context, session *models.ActiveSession) (bool, error) {
	query := `
		INSERT INTO active_sessions
		(user_id, break_type_id, start_time, reason, group_chat_id, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET break_type_id = EXCLUDED.break_type_id,
		    start_time = EXCLUDED.start_time,
		    reason = EXCLUDED.reason,
		    group_chat_id = EXCLUDED.group_chat_id,
		    created_at = EXCLUDED.created_at
		WHERE active_sessions.source = $6
	`

	res, err := s.pool().ExecContext(ctx, query,
		session.UserID,
		session.BreakTypeID,
		session.StartTime,
		session.Reason,
		session.GroupChatID,
		models.SourceImporter,
		session.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert importer session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read upsert result: %w", err)
	}

	return affected > 0, nil
}

// DeleteImporterSession removes one importer-created session. The
// source guard means a bot session that replaced it is left alone.
func (s *Store) DeleteImporterSession(ctx context.Context, userID int64) (bool, error) {
	query := `DELETE FROM active_sessions WHERE user_id = $1 AND source = $2`

	res, err := s.pool().ExecContext(ctx, query, userID, models.SourceImporter)
	if err != nil {
		return false, fmt.Errorf("failed to delete importer session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}

	return affected > 0, nil
}
