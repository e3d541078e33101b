package service

import (
	"strings"
	"testing"
	"time"

	"breaktime-service/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotHeader = "user_id,username,full_name,break_type,action,timestamp,reason\n"

func TestParseSnapshot(t *testing.T) {
	data := snapshotHeader +
		"101,alice,Alice Reyes,Break,OUT,2025-06-02 09:00:00,\n" +
		"101,alice,Alice Reyes,Break,BACK,2025-06-02 09:25:00,\n" +
		"102,bob,Bob Cruz,Extended Restroom,OUT,2025-06-02T10:00:00+08:00,\n" +
		"103,carol,Carol Tan,Other,OUT,2025-06-02 11:00:00,doctor visit\n"

	rows, skipped, err := ParseSnapshot(strings.NewReader(data), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, rows, 4)

	assert.Equal(t, int64(101), rows[0].ExternalID)
	assert.Equal(t, "B", rows[0].TypeCode)
	assert.Equal(t, models.ActionOut, rows[0].Action)

	// Label translation at the boundary.
	assert.Equal(t, "P", rows[2].TypeCode)
	assert.Equal(t, "doctor visit", rows[3].Reason)
}

func TestParseSnapshot_MalformedRowsSkipped(t *testing.T) {
	data := snapshotHeader +
		"101,alice,Alice Reyes,Break,OUT,2025-06-02 09:00:00,\n" +
		"not-a-number,x,Broken,Break,OUT,2025-06-02 09:01:00,\n" +
		"102,bob,Bob Cruz,Siesta,OUT,2025-06-02 09:02:00,\n" + // unknown label
		"103,carol,Carol Tan,Break,NAP,2025-06-02 09:03:00,\n" + // bad action
		"104,dan,Dan Lee,Break,OUT,yesterday,\n" + // bad timestamp
		"105,eve,,Break,OUT,2025-06-02 09:05:00,\n" // missing name

	rows, skipped, err := ParseSnapshot(strings.NewReader(data), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 5, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(101), rows[0].ExternalID)
}

func TestParseSnapshot_CodesAccepted(t *testing.T) {
	data := snapshotHeader + "101,alice,Alice Reyes,W,OUT,2025-06-02 09:00:00,\n"

	rows, skipped, err := ParseSnapshot(strings.NewReader(data), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, "W", rows[0].TypeCode)
}

func snapRow(id int64, code string, action models.Action, ts time.Time) SnapshotRow {
	return SnapshotRow{
		ExternalID: id,
		FullName:   "Agent",
		TypeCode:   code,
		Action:     action,
		Timestamp:  ts,
	}
}

func TestPairDurations(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rows := []SnapshotRow{
		snapRow(101, "B", models.ActionOut, base),
		snapRow(102, "W", models.ActionOut, base.Add(5*time.Minute)),
		snapRow(101, "B", models.ActionBack, base.Add(25*time.Minute+30*time.Second)),
		snapRow(102, "W", models.ActionBack, base.Add(9*time.Minute)),
	}

	PairDurations(rows)

	require.NotNil(t, rows[2].DurationMinutes)
	assert.Equal(t, 25.5, *rows[2].DurationMinutes)
	require.NotNil(t, rows[3].DurationMinutes)
	assert.Equal(t, 4.0, *rows[3].DurationMinutes)

	// OUT rows never get a duration.
	assert.Nil(t, rows[0].DurationMinutes)
}

func TestPairDurations_UnmatchedBack(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rows := []SnapshotRow{
		snapRow(101, "B", models.ActionBack, base),
	}

	PairDurations(rows)
	assert.Nil(t, rows[0].DurationMinutes)
}

func TestDeriveOpenSessions(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rows := []SnapshotRow{
		snapRow(101, "B", models.ActionOut, base),
		snapRow(101, "B", models.ActionBack, base.Add(20*time.Minute)),
		snapRow(102, "W", models.ActionOut, base.Add(30*time.Minute)),
		snapRow(103, "B", models.ActionOut, base.Add(40*time.Minute)),
		snapRow(103, "B", models.ActionBack, base.Add(50*time.Minute)),
		snapRow(103, "P", models.ActionOut, base.Add(55*time.Minute)),
	}

	open := DeriveOpenSessions(rows)
	require.Len(t, open, 2)

	assert.Equal(t, int64(102), open[0].ExternalID)
	assert.Equal(t, "W", open[0].TypeCode)
	assert.Equal(t, int64(103), open[1].ExternalID)
	assert.Equal(t, "P", open[1].TypeCode)
}

func TestDeriveOpenSessions_BackOfOtherTypeKeepsOut(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rows := []SnapshotRow{
		snapRow(101, "W", models.ActionOut, base),
		snapRow(101, "B", models.ActionOut, base.Add(30*time.Minute)),
		snapRow(101, "B", models.ActionBack, base.Add(60*time.Minute)),
	}

	open := DeriveOpenSessions(rows)
	require.Len(t, open, 1)
	assert.Equal(t, int64(101), open[0].ExternalID)
	assert.Equal(t, "W", open[0].TypeCode)
}

func TestDeriveOpenSessions_AllClosed(t *testing.T) {
	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rows := []SnapshotRow{
		snapRow(101, "B", models.ActionOut, base),
		snapRow(101, "B", models.ActionBack, base.Add(20*time.Minute)),
	}

	assert.Empty(t, DeriveOpenSessions(rows))
}

func TestWithinGraceWindow(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 10, 0, 0, time.UTC)
	grace := 3 * time.Minute

	assert.True(t, WithinGraceWindow(now.Add(-2*time.Minute), now, grace))
	assert.True(t, WithinGraceWindow(now.Add(-3*time.Minute), now, grace))
	assert.False(t, WithinGraceWindow(now.Add(-3*time.Minute-time.Second), now, grace))
}

func TestSnapshotPath(t *testing.T) {
	im := NewImporter(nil, nil, "data/snapshots", 3*time.Minute, 2*time.Hour, 30*time.Second, time.UTC)
	assert.Equal(t, "data/snapshots/break_logs_2025-06-02.csv", im.SnapshotPath("2025-06-02"))
}
