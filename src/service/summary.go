package service

import (
	"context"
	"log/slog"
	"time"

	"breaktime-service/src/models"
	"breaktime-service/src/repository"
)

// SummaryService rebuilds the precomputed daily rollups from the log.
type SummaryService struct {
	store    *repository.Store
	location *time.Location
}

// NewSummaryService creates a new summary service.
func NewSummaryService(store *repository.Store, location *time.Location) *SummaryService {
	return &SummaryService{
		store:    store,
		location: location,
	}
}

// BuildDailySummary computes one user's rollup from their entries for a
// date. Pure; recomputing from the same log always yields the same row.
func BuildDailySummary(userID int64, date string, entries []models.BreakLogDetail) models.DailySummary {
	summary := models.DailySummary{
		UserID:      userID,
		SummaryDate: date,
	}

	for i := range entries {
		e := &entries[i]
		if e.Action != models.ActionBack || e.DurationMinutes == nil {
			continue
		}
		d := *e.DurationMinutes
		switch e.BreakTypeCode {
		case "B":
			summary.BreakCount++
			summary.BreakDurationTotal += d
		case "W":
			summary.RestroomCount++
			summary.RestroomDurationTotal += d
		case "P":
			summary.ExtendedCount++
			summary.ExtendedDurationTotal += d
		case "O":
			summary.OtherCount++
			summary.OtherDurationTotal += d
		}
		summary.TotalBreaks++
		if e.CountedInTotal {
			summary.TotalDuration += d
		}
		summary.TotalDurationAll += d
	}

	within, over := ComplianceCounts(entries)
	summary.BreaksWithinLimit = within
	summary.BreaksOverLimit = over
	summary.ComplianceRate = ComplianceRate(within, over)
	summary.MaxOverdueMinutes = MaxOverdue(entries)
	summary.MissingClockBacks = MissingClockBacks(entries)

	summary.BreakDurationTotal = models.Round1(summary.BreakDurationTotal)
	summary.RestroomDurationTotal = models.Round1(summary.RestroomDurationTotal)
	summary.ExtendedDurationTotal = models.Round1(summary.ExtendedDurationTotal)
	summary.OtherDurationTotal = models.Round1(summary.OtherDurationTotal)
	summary.TotalDuration = models.Round1(summary.TotalDuration)
	summary.TotalDurationAll = models.Round1(summary.TotalDurationAll)

	return summary
}

// Recompute rebuilds summaries for a date. With a user filter only that
// user is rebuilt; otherwise every user with entries on the date is.
// Rows are replaced wholesale so the operation is safe to repeat.
func (s *SummaryService) Recompute(ctx context.Context, date string, externalID *int64) (int, error) {
	entries, err := s.store.LogsForDate(ctx, date)
	if err != nil {
		return 0, err
	}

	var filterID *int64
	if externalID != nil {
		user, err := s.store.GetUserByExternalID(ctx, *externalID)
		if err != nil {
			return 0, err
		}
		if user == nil {
			return 0, models.ErrUserNotFound
		}
		filterID = &user.ID
	}

	byUser := make(map[int64][]models.BreakLogDetail)
	for i := range entries {
		e := &entries[i]
		if filterID != nil && e.UserID != *filterID {
			continue
		}
		byUser[e.UserID] = append(byUser[e.UserID], *e)
	}

	var recomputed int
	for userID, userEntries := range byUser {
		summary := BuildDailySummary(userID, date, userEntries)
		if err := s.store.UpsertDailySummary(ctx, &summary); err != nil {
			return recomputed, err
		}
		recomputed++
	}

	slog.Info("Recomputed daily summaries", "date", date, "count", recomputed)

	return recomputed, nil
}
