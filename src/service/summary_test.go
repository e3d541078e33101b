package service

import (
	"testing"
	"time"

	"breaktime-service/src/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildDailySummary(t *testing.T) {
	entries := []models.BreakLogDetail{
		back(7, "B", "Break", 25, intPtr(30), true),
		back(7, "B", "Break", 33, intPtr(30), true),
		back(7, "W", "Restroom", 4, intPtr(5), false),
		back(7, "P", "Extended Restroom", 8, intPtr(10), true),
		back(7, "O", "Other", 50, nil, true),
		out(7, "B", time.Now()), // open break, no BACK yet
	}

	summary := BuildDailySummary(7, "2025-06-02", entries)

	assert.Equal(t, int64(7), summary.UserID)
	assert.Equal(t, "2025-06-02", summary.SummaryDate)

	assert.Equal(t, 2, summary.BreakCount)
	assert.Equal(t, 58.0, summary.BreakDurationTotal)
	assert.Equal(t, 1, summary.RestroomCount)
	assert.Equal(t, 4.0, summary.RestroomDurationTotal)
	assert.Equal(t, 1, summary.ExtendedCount)
	assert.Equal(t, 1, summary.OtherCount)

	assert.Equal(t, 5, summary.TotalBreaks)
	assert.Equal(t, 116.0, summary.TotalDuration) // restroom excluded
	assert.Equal(t, 120.0, summary.TotalDurationAll)

	assert.Equal(t, 4, summary.BreaksWithinLimit)
	assert.Equal(t, 1, summary.BreaksOverLimit)
	assert.Equal(t, 80.0, summary.ComplianceRate)
	assert.Equal(t, 3.0, summary.MaxOverdueMinutes)
	assert.Equal(t, 1, summary.MissingClockBacks)
}

func TestBuildDailySummary_Empty(t *testing.T) {
	summary := BuildDailySummary(7, "2025-06-02", nil)

	assert.Equal(t, 0, summary.TotalBreaks)
	assert.Equal(t, 100.0, summary.ComplianceRate)
	assert.Equal(t, 0, summary.MissingClockBacks)
}

func TestBuildDailySummary_Idempotent(t *testing.T) {
	entries := []models.BreakLogDetail{
		back(7, "B", "Break", 25, intPtr(30), true),
		back(7, "W", "Restroom", 6, intPtr(5), false),
	}

	first := BuildDailySummary(7, "2025-06-02", entries)
	second := BuildDailySummary(7, "2025-06-02", entries)
	assert.Equal(t, first, second)
}
