package repository

import (
	"context"
	"fmt"
	"time"

	"breaktime-service/src/models"
)

// InsertAlert appends a raised alert to the audit trail.
func (s *Store) InsertAlert(ctx context.Context, alert *models.ComplianceAlert) error {
	query := `
		INSERT INTO compliance_alerts
		(id, user_id, break_type_id, alert_type, severity, alert_timestamp,
		 duration_at_alert, over_limit_minutes, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool().ExecContext(ctx, query,
		alert.ID,
		alert.UserID,
		alert.BreakTypeID,
		alert.AlertType,
		alert.Severity,
		alert.AlertTimestamp,
		alert.DurationAtAlert,
		alert.OverLimitMinutes,
		alert.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	return nil
}

// AlertsBetween returns audited alerts raised in [from, to), newest
// first, capped at limit rows.
func (s *Store) AlertsBetween(ctx context.Context, from, to time.Time, limit int) ([]models.ComplianceAlert, error) {
	query := `
		SELECT a.id, a.user_id, u.full_name, a.break_type_id, bt.display_name,
		       a.alert_type, a.severity, a.alert_timestamp,
		       a.duration_at_alert, a.over_limit_minutes, a.message
		FROM compliance_alerts a
		JOIN users u ON u.id = a.user_id
		JOIN break_types bt ON bt.id = a.break_type_id
		WHERE a.alert_timestamp >= $1 AND a.alert_timestamp < $2
		ORDER BY a.alert_timestamp DESC
		LIMIT $3
	`

	rows, err := s.pool().QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.ComplianceAlert
	for rows.Next() {
		var a models.ComplianceAlert
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.FullName,
			&a.BreakTypeID,
			&a.BreakType,
			&a.AlertType,
			&a.Severity,
			&a.AlertTimestamp,
			&a.DurationAtAlert,
			&a.OverLimitMinutes,
			&a.Message,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}

	return alerts, nil
}
