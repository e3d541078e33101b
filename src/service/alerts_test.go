package service

import (
	"testing"
	"time"

	"breaktime-service/src/models"
	"breaktime-service/src/schemas"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySeverity(t *testing.T) {
	_, raised := ClassifySeverity(0)
	assert.False(t, raised)

	_, raised = ClassifySeverity(4.9)
	assert.False(t, raised)

	severity, raised := ClassifySeverity(5)
	assert.True(t, raised)
	assert.Equal(t, SeverityWarning, severity)

	severity, raised = ClassifySeverity(14.9)
	assert.True(t, raised)
	assert.Equal(t, SeverityWarning, severity)

	severity, raised = ClassifySeverity(15)
	assert.True(t, raised)
	assert.Equal(t, SeverityCritical, severity)
}

func overdueSession(userID int64, startedAgo time.Duration, limitMinutes int, now time.Time) models.ActiveSessionDetail {
	return models.ActiveSessionDetail{
		ActiveSession: models.ActiveSession{
			UserID:      userID,
			BreakTypeID: 1,
			StartTime:   now.Add(-startedAgo),
		},
		FullName:         "Agent",
		BreakTypeName:    "Break",
		TimeLimitMinutes: intPtr(limitMinutes),
	}
}

func TestBuildOverdueAlerts(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	sessions := []models.ActiveSessionDetail{
		overdueSession(1, 50*time.Minute, 30, now), // 20 over, critical
		overdueSession(2, 37*time.Minute, 30, now), // 7 over, warning
		overdueSession(3, 32*time.Minute, 30, now), // 2 over, suppressed
		overdueSession(4, 10*time.Minute, 30, now), // not over at all
		{
			// No limit never alerts.
			ActiveSession: models.ActiveSession{UserID: 5, StartTime: now.Add(-6 * time.Hour)},
			FullName:      "Agent",
			BreakTypeName: "Other",
		},
	}

	alerts := BuildOverdueAlerts(sessions, now)
	require.Len(t, alerts, 2)

	assert.Equal(t, int64(1), alerts[0].UserID)
	assert.Equal(t, SeverityCritical, alerts[0].Severity)
	assert.Equal(t, AlertTypeOverdue, alerts[0].AlertType)
	assert.Equal(t, 50.0, alerts[0].DurationAtAlert)
	assert.Equal(t, 20.0, alerts[0].OverLimitMinutes)
	assert.Contains(t, alerts[0].Message, "Break")
	assert.NotEmpty(t, alerts[0].ID)

	assert.Equal(t, int64(2), alerts[1].UserID)
	assert.Equal(t, SeverityWarning, alerts[1].Severity)
}

func TestBuildOverdueAlerts_FreshInstancesEachPoll(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	sessions := []models.ActiveSessionDetail{
		overdueSession(1, 50*time.Minute, 30, now),
	}

	first := BuildOverdueAlerts(sessions, now)
	second := BuildOverdueAlerts(sessions, now.Add(30*time.Second))
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	// Same overdue session raises a new alert every cycle.
	assert.NotEqual(t, first[0].ID, second[0].ID)
}

func TestBuildAlertSummary(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	overdue := []models.ComplianceAlert{
		{Severity: SeverityCritical},
		{Severity: SeverityWarning},
		{Severity: SeverityWarning},
	}
	missing := []schemas.MissingClockBack{
		{UserID: 1001, BreakTypeCode: "W", BreakType: "Restroom", Missing: 1},
		{UserID: 1002, BreakTypeCode: "B", BreakType: "Break", Missing: 2},
	}

	summary := BuildAlertSummary("2025-06-02", now, overdue, missing)

	assert.Equal(t, "2025-06-02", summary.Date)
	assert.Equal(t, now.Format(time.RFC3339), summary.GeneratedAt)
	assert.Equal(t, 3, summary.OverdueCount)
	assert.Equal(t, 2, summary.WarningCount)
	assert.Equal(t, 1, summary.CriticalCount)
	assert.Equal(t, 3, summary.TotalMissing)
	assert.Equal(t, missing, summary.MissingClockBacks)
}

func TestBuildAlertSummary_Empty(t *testing.T) {
	summary := BuildAlertSummary("2025-06-02", time.Now(), nil, nil)

	assert.Zero(t, summary.OverdueCount)
	assert.Zero(t, summary.TotalMissing)
	assert.NotNil(t, summary.MissingClockBacks)
}

func TestAlertEvaluatorRecent(t *testing.T) {
	ev := NewAlertEvaluator(nil, nil, "breaktime.alerts", 30*time.Second, time.UTC)

	for i := 0; i < recentAlertsCap+10; i++ {
		ev.remember(models.ComplianceAlert{ID: string(rune('a' + i%26)), UserID: int64(i)})
	}

	recent := ev.Recent()
	require.Len(t, recent, recentAlertsCap)

	// Newest first.
	assert.Equal(t, int64(recentAlertsCap+9), recent[0].UserID)
}
