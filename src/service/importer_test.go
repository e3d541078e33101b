package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breaktime-service/src/models"
)

func TestAfterWatermark(t *testing.T) {
	mark := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	assert.True(t, AfterWatermark(mark.Add(time.Second), &mark))
	assert.True(t, AfterWatermark(mark, &mark), "rows at the watermark replay through the unique constraint")
	assert.False(t, AfterWatermark(mark.Add(-time.Second), &mark))

	// Empty table, everything is new.
	assert.True(t, AfterWatermark(mark.Add(-time.Hour), nil))
}

func importerSession(userID int64, source models.Source, start time.Time) models.ActiveSessionDetail {
	return models.ActiveSessionDetail{
		ActiveSession: models.ActiveSession{
			UserID:    userID,
			StartTime: start,
			Source:    source,
		},
	}
}

func TestStaleImporterSessions(t *testing.T) {
	cutoff := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	sessions := []models.ActiveSessionDetail{
		importerSession(1, models.SourceImporter, cutoff.Add(-time.Hour)),
		importerSession(2, models.SourceImporter, cutoff.Add(time.Minute)),
		importerSession(3, models.SourceBot, cutoff.Add(-time.Hour)),
	}

	stale := StaleImporterSessions(sessions, nil, cutoff)
	require.Len(t, stale, 1)
	assert.Equal(t, int64(1), stale[0])
}

func TestStaleImporterSessions_ImpliedOpenSurvives(t *testing.T) {
	cutoff := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	sessions := []models.ActiveSessionDetail{
		importerSession(1, models.SourceImporter, cutoff.Add(-time.Hour)),
		importerSession(2, models.SourceImporter, cutoff.Add(-time.Hour)),
	}

	// User 1 is still open per today's snapshot, so only user 2 goes.
	stale := StaleImporterSessions(sessions, map[int64]bool{1: true}, cutoff)
	require.Len(t, stale, 1)
	assert.Equal(t, int64(2), stale[0])
}

func TestStaleImporterSessions_BoundaryStart(t *testing.T) {
	cutoff := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	sessions := []models.ActiveSessionDetail{
		importerSession(1, models.SourceImporter, cutoff),
	}

	assert.Empty(t, StaleImporterSessions(sessions, nil, cutoff))
}
