package service

import (
	"testing"
	"time"

	"breaktime-service/src/models"
	"breaktime-service/src/schemas"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

// back builds a completed entry for aggregation tests.
func back(userID int64, code, name string, duration float64, limitMinutes *int, counted bool) models.BreakLogDetail {
	return models.BreakLogDetail{
		BreakLogEntry: models.BreakLogEntry{
			UserID:          userID,
			Action:          models.ActionBack,
			DurationMinutes: floatPtr(duration),
		},
		FullName:         "Agent",
		BreakTypeCode:    code,
		BreakTypeName:    name,
		TimeLimitMinutes: limitMinutes,
		CountedInTotal:   counted,
	}
}

func out(userID int64, code string, ts time.Time) models.BreakLogDetail {
	return models.BreakLogDetail{
		BreakLogEntry: models.BreakLogEntry{
			UserID:    userID,
			Action:    models.ActionOut,
			Timestamp: ts,
		},
		FullName:      "Agent",
		BreakTypeCode: code,
	}
}

func TestComplianceCounts(t *testing.T) {
	entries := []models.BreakLogDetail{
		back(1, "B", "Break", 25, intPtr(30), true),
		back(1, "B", "Break", 35, intPtr(30), true),
		back(1, "O", "Other", 90, nil, true), // no limit, always within
		out(1, "B", time.Now()),              // OUT rows never count
	}

	within, over := ComplianceCounts(entries)
	assert.Equal(t, 2, within)
	assert.Equal(t, 1, over)
}

func TestComplianceRate(t *testing.T) {
	assert.Equal(t, 100.0, ComplianceRate(0, 0))
	assert.Equal(t, 100.0, ComplianceRate(5, 0))
	assert.Equal(t, 0.0, ComplianceRate(0, 3))
	assert.Equal(t, 66.7, ComplianceRate(2, 1))
}

func TestTotalBreakTime_ExcludesUncountedTypes(t *testing.T) {
	entries := []models.BreakLogDetail{
		back(1, "B", "Break", 20, intPtr(30), true),
		back(1, "W", "Restroom", 4, intPtr(5), false),
		back(1, "P", "Extended Restroom", 8, intPtr(10), true),
	}

	assert.Equal(t, 28.0, TotalBreakTime(entries))
	assert.Equal(t, 32.0, TotalBreakTimeAll(entries))
}

func TestMaxOverdue(t *testing.T) {
	entries := []models.BreakLogDetail{
		back(1, "B", "Break", 33.5, intPtr(30), true),
		back(1, "B", "Break", 42, intPtr(30), true),
		back(1, "W", "Restroom", 4, intPtr(5), false),
	}

	assert.Equal(t, 12.0, MaxOverdue(entries))
	assert.Equal(t, 0.0, MaxOverdue(nil))
}

func TestMissingClockBacks(t *testing.T) {
	now := time.Now()
	entries := []models.BreakLogDetail{
		out(1, "B", now),
		out(2, "W", now),
		back(1, "B", "Break", 20, intPtr(30), true),
	}
	assert.Equal(t, 1, MissingClockBacks(entries))

	// More backs than outs is reported verbatim, not clamped.
	entries = []models.BreakLogDetail{
		back(1, "B", "Break", 20, intPtr(30), true),
		back(2, "B", "Break", 10, intPtr(30), true),
	}
	assert.Equal(t, -2, MissingClockBacks(entries))
}

func TestDistribution(t *testing.T) {
	entries := []models.BreakLogDetail{
		back(1, "B", "Break", 20, intPtr(30), true),
		back(2, "B", "Break", 25, intPtr(30), true),
		back(1, "W", "Restroom", 4, intPtr(5), false),
		back(3, "P", "Extended Restroom", 9, intPtr(10), true),
	}

	dist := Distribution(entries)
	require.Len(t, dist, 3)

	// Sorted by code.
	assert.Equal(t, "B", dist[0].BreakTypeCode)
	assert.Equal(t, 2, dist[0].Count)
	assert.Equal(t, 45.0, dist[0].TotalMinutes)
	assert.Equal(t, 50.0, dist[0].Percentage)

	assert.Equal(t, "P", dist[1].BreakTypeCode)
	assert.Equal(t, 25.0, dist[1].Percentage)

	assert.Equal(t, "W", dist[2].BreakTypeCode)
	assert.Equal(t, 25.0, dist[2].Percentage)
}

func TestDistribution_Empty(t *testing.T) {
	assert.Empty(t, Distribution(nil))
}

func TestHourlyHistogram(t *testing.T) {
	loc := time.UTC
	entries := []models.BreakLogDetail{
		out(1, "B", time.Date(2025, 6, 2, 9, 15, 0, 0, loc)),
		out(2, "B", time.Date(2025, 6, 2, 9, 45, 0, 0, loc)),
		{
			BreakLogEntry: models.BreakLogEntry{
				UserID:    1,
				Action:    models.ActionBack,
				Timestamp: time.Date(2025, 6, 2, 9, 50, 0, 0, loc),
			},
		},
	}

	buckets := HourlyHistogram(entries, loc)
	require.Len(t, buckets, 24)

	assert.Equal(t, 9, buckets[9].Hour)
	assert.Equal(t, 2, buckets[9].Outs)
	assert.Equal(t, 1, buckets[9].Backs)
	assert.Equal(t, 1, buckets[9].Net)
	assert.Equal(t, 0, buckets[10].Outs)
}

func TestHourlyHistogram_NegativeNet(t *testing.T) {
	loc := time.UTC
	entries := []models.BreakLogDetail{
		out(1, "B", time.Date(2025, 6, 2, 13, 0, 0, 0, loc)),
		{
			BreakLogEntry: models.BreakLogEntry{
				Action:    models.ActionBack,
				Timestamp: time.Date(2025, 6, 2, 14, 5, 0, 0, loc),
			},
		},
	}

	buckets := HourlyHistogram(entries, loc)
	assert.Equal(t, 1, buckets[13].Net)
	assert.Equal(t, -1, buckets[14].Net)
}

func TestAgentSummaries(t *testing.T) {
	a := back(1, "B", "Break", 35, intPtr(30), true)
	a.FullName = "Alice"
	b1 := back(2, "B", "Break", 20, intPtr(30), true)
	b1.FullName = "Bob"
	b2 := back(2, "W", "Restroom", 3, intPtr(5), false)
	b2.FullName = "Bob"

	summaries := AgentSummaries([]models.BreakLogDetail{a, b1, b2}, map[int64]bool{2: true})
	require.Len(t, summaries, 2)

	assert.Equal(t, "Alice", summaries[0].FullName)
	assert.Equal(t, 1, summaries[0].BreaksOverLimit)
	assert.Equal(t, 0.0, summaries[0].ComplianceRate)
	assert.False(t, summaries[0].OnBreak)

	assert.Equal(t, "Bob", summaries[1].FullName)
	assert.Equal(t, 2, summaries[1].TotalBreaks)
	assert.Equal(t, 20.0, summaries[1].TotalMinutes) // restroom excluded
	assert.Equal(t, 100.0, summaries[1].ComplianceRate)
	assert.True(t, summaries[1].OnBreak)
}

func TestMissingClockBacksByUserType(t *testing.T) {
	now := time.Date(2025, 6, 2, 11, 30, 0, 0, time.UTC)

	// One Break round-trip plus a Restroom out with no back.
	o1 := out(1, "B", now.Add(-time.Hour))
	o1.ExternalID = 1001
	b1 := back(1, "B", "Break", 20, intPtr(30), true)
	b1.ExternalID = 1001
	o2 := out(1, "W", now)
	o2.ExternalID = 1001
	o2.BreakTypeName = "Restroom"

	missing := MissingClockBacksByUserType([]models.BreakLogDetail{o1, b1, o2})
	require.Len(t, missing, 1)

	assert.Equal(t, int64(1001), missing[0].UserID)
	assert.Equal(t, "W", missing[0].BreakTypeCode)
	assert.Equal(t, "Restroom", missing[0].BreakType)
	assert.Equal(t, 1, missing[0].Missing)
	assert.Equal(t, now.Format(time.RFC3339), missing[0].LastOut)
}

func TestMissingClockBacksByUserType_Balanced(t *testing.T) {
	entries := []models.BreakLogDetail{
		out(1, "B", time.Now()),
		back(1, "B", "Break", 20, intPtr(30), true),
	}
	assert.Empty(t, MissingClockBacksByUserType(entries))
}

func TestComplianceTrend(t *testing.T) {
	a := back(1, "B", "Break", 20, intPtr(30), true)
	a.LogDate = "2025-06-01"
	b := back(1, "B", "Break", 40, intPtr(30), true)
	b.LogDate = "2025-06-02"

	trend := ComplianceTrend([]models.BreakLogDetail{a, b}, []string{"2025-05-31", "2025-06-01", "2025-06-02"})
	require.Len(t, trend, 3)

	// A day with no breaks is trivially compliant.
	assert.Equal(t, "2025-05-31", trend[0].Date)
	assert.Equal(t, 100.0, trend[0].ComplianceRate)

	assert.Equal(t, 100.0, trend[1].ComplianceRate)
	assert.Equal(t, 0.0, trend[2].ComplianceRate)
	assert.Equal(t, 1, trend[2].BreaksOverLimit)
}

func TestPeakHours(t *testing.T) {
	buckets := []schemas.HourlyBucket{
		{Hour: 9, Outs: 2},
		{Hour: 10, Outs: 0},
		{Hour: 13, Outs: 5},
		{Hour: 15, Outs: 2},
	}

	peaks := PeakHours(buckets, 2)
	require.Len(t, peaks, 2)
	assert.Equal(t, 13, peaks[0].Hour)
	assert.Equal(t, 9, peaks[1].Hour) // tie broken by earlier hour

	// Hours with no outs never appear even when top is generous.
	assert.Len(t, PeakHours(buckets, 10), 3)
}

func TestOverdueSessions(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	sessions := []models.ActiveSessionDetail{
		{
			ActiveSession:    models.ActiveSession{UserID: 1, StartTime: now.Add(-40 * time.Minute)},
			TimeLimitMinutes: intPtr(30),
		},
		{
			ActiveSession:    models.ActiveSession{UserID: 2, StartTime: now.Add(-10 * time.Minute)},
			TimeLimitMinutes: intPtr(30),
		},
		{
			// No limit means never overdue.
			ActiveSession: models.ActiveSession{UserID: 3, StartTime: now.Add(-5 * time.Hour)},
		},
	}

	overdue := OverdueSessions(sessions, now)
	require.Len(t, overdue, 1)
	assert.Equal(t, int64(1), overdue[0].UserID)
}
