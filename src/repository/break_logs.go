package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"breaktime-service/src/models"
)

const logDetailColumns = `
	bl.id, bl.user_id, bl.break_type_id, bl.action, bl.timestamp,
	to_char(bl.log_date, 'YYYY-MM-DD'), bl.duration_minutes, bl.reason,
	bl.group_chat_id, bl.source,
	u.external_id, COALESCE(u.username, ''), u.full_name,
	bt.code, bt.display_name, bt.time_limit_minutes, bt.counted_in_total
`

// InsertLog appends one event to the log. The replay constraint makes
// duplicate (user, timestamp, action) triples a no-op; the return value
// reports whether the row was actually written.
func (s *Store) InsertLog(ctx context.Context, q Querier, entry *models.BreakLogEntry) (bool, error) {
	query := `
		INSERT INTO break_logs
		(user_id, break_type_id, action, timestamp, log_date, duration_minutes, reason, group_chat_id, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT break_logs_replay_key DO NOTHING
	`

	res, err := q.ExecContext(ctx, query,
		entry.UserID,
		entry.BreakTypeID,
		entry.Action,
		entry.Timestamp,
		entry.LogDate,
		entry.DurationMinutes,
		entry.Reason,
		entry.GroupChatID,
		entry.Source,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert break log: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return affected > 0, nil
}

// MaxLogTimestamp returns the newest event timestamp, or nil when the
// log is empty. The importer uses it as its high-water mark.
func (s *Store) MaxLogTimestamp(ctx context.Context) (*time.Time, error) {
	query := `SELECT MAX(timestamp) FROM break_logs`

	var ts sql.NullTime
	if err := s.pool().QueryRowContext(ctx, query).Scan(&ts); err != nil {
		return nil, fmt.Errorf("failed to read max log timestamp: %w", err)
	}

	if !ts.Valid {
		return nil, nil
	}
	return &ts.Time, nil
}

// CountLogs returns the total size of the event log.
func (s *Store) CountLogs(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool().QueryRowContext(ctx, `SELECT COUNT(*) FROM break_logs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count break logs: %w", err)
	}
	return count, nil
}

// LogsForDate returns every event on one calendar date, joined with its
// user and break type, in timestamp order.
func (s *Store) LogsForDate(ctx context.Context, date string) ([]models.BreakLogDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM break_logs bl
		JOIN users u ON u.id = bl.user_id
		JOIN break_types bt ON bt.id = bl.break_type_id
		WHERE bl.log_date = $1
		ORDER BY bl.timestamp
	`, logDetailColumns)

	rows, err := s.pool().QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs for date: %w", err)
	}
	defer rows.Close()

	return scanLogDetails(rows)
}

// LogsBetweenDates returns all events with log_date in [from, to],
// inclusive on both ends, in timestamp order.
func (s *Store) LogsBetweenDates(ctx context.Context, from, to string) ([]models.BreakLogDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM break_logs bl
		JOIN users u ON u.id = bl.user_id
		JOIN break_types bt ON bt.id = bl.break_type_id
		WHERE bl.log_date BETWEEN $1 AND $2
		ORDER BY bl.timestamp
	`, logDetailColumns)

	rows, err := s.pool().QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs between dates: %w", err)
	}
	defer rows.Close()

	return scanLogDetails(rows)
}

// LogsForUserBetween returns one user's events with log_date in
// [from, to], newest first, for the history view.
func (s *Store) LogsForUserBetween(ctx context.Context, userID int64, from, to string) ([]models.BreakLogDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM break_logs bl
		JOIN users u ON u.id = bl.user_id
		JOIN break_types bt ON bt.id = bl.break_type_id
		WHERE bl.user_id = $1 AND bl.log_date BETWEEN $2 AND $3
		ORDER BY bl.timestamp DESC
	`, logDetailColumns)

	rows, err := s.pool().QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query user logs: %w", err)
	}
	defer rows.Close()

	return scanLogDetails(rows)
}

func scanLogDetails(rows *sql.Rows) ([]models.BreakLogDetail, error) {
	var entries []models.BreakLogDetail
	for rows.Next() {
		var e models.BreakLogDetail
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.BreakTypeID,
			&e.Action,
			&e.Timestamp,
			&e.LogDate,
			&e.DurationMinutes,
			&e.Reason,
			&e.GroupChatID,
			&e.Source,
			&e.ExternalID,
			&e.Username,
			&e.FullName,
			&e.BreakTypeCode,
			&e.BreakTypeName,
			&e.TimeLimitMinutes,
			&e.CountedInTotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan break log: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate break logs: %w", err)
	}

	return entries, nil
}
