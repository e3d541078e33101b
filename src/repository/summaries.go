package repository

import (
	"context"
	"fmt"

	"breaktime-service/src/models"
)

// UpsertDailySummary replaces the full summary row for its
// (user, date) key. Recomputation is idempotent because every column
// is overwritten.
func (s *Store) UpsertDailySummary(ctx context.Context, summary *models.DailySummary) error {
	query := `
		INSERT INTO daily_summaries
		(user_id, summary_date, break_count, break_duration_total,
		 restroom_count, restroom_duration_total,
		 extended_count, extended_duration_total,
		 other_count, other_duration_total,
		 total_breaks, total_duration, total_duration_all,
		 breaks_within_limit, breaks_over_limit, compliance_rate,
		 max_overdue_minutes, missing_clock_backs, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now())
		ON CONFLICT (user_id, summary_date) DO UPDATE
		SET break_count = EXCLUDED.break_count,
		    break_duration_total = EXCLUDED.break_duration_total,
		    restroom_count = EXCLUDED.restroom_count,
		    restroom_duration_total = EXCLUDED.restroom_duration_total,
		    extended_count = EXCLUDED.extended_count,
		    extended_duration_total = EXCLUDED.extended_duration_total,
		    other_count = EXCLUDED.other_count,
		    other_duration_total = EXCLUDED.other_duration_total,
		    total_breaks = EXCLUDED.total_breaks,
		    total_duration = EXCLUDED.total_duration,
		    total_duration_all = EXCLUDED.total_duration_all,
		    breaks_within_limit = EXCLUDED.breaks_within_limit,
		    breaks_over_limit = EXCLUDED.breaks_over_limit,
		    compliance_rate = EXCLUDED.compliance_rate,
		    max_overdue_minutes = EXCLUDED.max_overdue_minutes,
		    missing_clock_backs = EXCLUDED.missing_clock_backs,
		    updated_at = now()
	`

	_, err := s.pool().ExecContext(ctx, query,
		summary.UserID,
		summary.SummaryDate,
		summary.BreakCount,
		summary.BreakDurationTotal,
		summary.RestroomCount,
		summary.RestroomDurationTotal,
		summary.ExtendedCount,
		summary.ExtendedDurationTotal,
		summary.OtherCount,
		summary.OtherDurationTotal,
		summary.TotalBreaks,
		summary.TotalDuration,
		summary.TotalDurationAll,
		summary.BreaksWithinLimit,
		summary.BreaksOverLimit,
		summary.ComplianceRate,
		summary.MaxOverdueMinutes,
		summary.MissingClockBacks,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily summary: %w", err)
	}

	return nil
}

const summaryColumns = `
	ds.user_id, to_char(ds.summary_date, 'YYYY-MM-DD'),
	ds.break_count, ds.break_duration_total,
	ds.restroom_count, ds.restroom_duration_total,
	ds.extended_count, ds.extended_duration_total,
	ds.other_count, ds.other_duration_total,
	ds.total_breaks, ds.total_duration, ds.total_duration_all,
	ds.breaks_within_limit, ds.breaks_over_limit, ds.compliance_rate,
	ds.max_overdue_minutes, ds.missing_clock_backs
`

func scanSummary(scan func(dest ...any) error, d *models.DailySummaryDetail) error {
	return scan(
		&d.UserID,
		&d.SummaryDate,
		&d.BreakCount,
		&d.BreakDurationTotal,
		&d.RestroomCount,
		&d.RestroomDurationTotal,
		&d.ExtendedCount,
		&d.ExtendedDurationTotal,
		&d.OtherCount,
		&d.OtherDurationTotal,
		&d.TotalBreaks,
		&d.TotalDuration,
		&d.TotalDurationAll,
		&d.BreaksWithinLimit,
		&d.BreaksOverLimit,
		&d.ComplianceRate,
		&d.MaxOverdueMinutes,
		&d.MissingClockBacks,
		&d.FullName,
	)
}

// SummariesForDate returns every user's summary row for one date.
func (s *Store) SummariesForDate(ctx context.Context, date string) ([]models.DailySummaryDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s, u.full_name
		FROM daily_summaries ds
		JOIN users u ON u.id = ds.user_id
		WHERE ds.summary_date = $1
		ORDER BY u.full_name
	`, summaryColumns)

	rows, err := s.pool().QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries for date: %w", err)
	}
	defer rows.Close()

	var summaries []models.DailySummaryDetail
	for rows.Next() {
		var d models.DailySummaryDetail
		if err := scanSummary(rows.Scan, &d); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summaries: %w", err)
	}

	return summaries, nil
}

// SummariesBetween returns all summary rows with dates in [from, to],
// ordered by date then name, for the reports view.
func (s *Store) SummariesBetween(ctx context.Context, from, to string) ([]models.DailySummaryDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s, u.full_name
		FROM daily_summaries ds
		JOIN users u ON u.id = ds.user_id
		WHERE ds.summary_date BETWEEN $1 AND $2
		ORDER BY ds.summary_date, u.full_name
	`, summaryColumns)

	rows, err := s.pool().QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries between dates: %w", err)
	}
	defer rows.Close()

	var summaries []models.DailySummaryDetail
	for rows.Next() {
		var d models.DailySummaryDetail
		if err := scanSummary(rows.Scan, &d); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		summaries = append(summaries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summaries: %w", err)
	}

	return summaries, nil
}
