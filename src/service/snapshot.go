package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"breaktime-service/src/models"
)

// Snapshot CSV contract. One file per calendar date, named
// break_logs_YYYY-MM-DD.csv, header row then one event per line:
//
//	user_id,username,full_name,break_type,action,timestamp,reason
//
// break_type carries the human label ("Extended Restroom"); codes are
// accepted too. Timestamps are RFC3339 or "2006-01-02 15:04:05" in the
// service timezone.

// breakTypeLabels translates snapshot labels to catalogue codes at the
// boundary. Unknown labels make the row malformed.
var breakTypeLabels = map[string]string{
	"Break":             "B",
	"Restroom":          "W",
	"Extended Restroom": "P",
	"Other":             "O",
	"B":                 "B",
	"W":                 "W",
	"P":                 "P",
	"O":                 "O",
}

// SnapshotRow is one parsed snapshot event.
type SnapshotRow struct {
	ExternalID int64
	Username   string
	FullName   string
	TypeCode   string
	Action     models.Action
	Timestamp  time.Time
	Reason     string

	// DurationMinutes is filled for BACK rows by PairDurations.
	DurationMinutes *float64
}

// ParseSnapshot reads a snapshot stream. Malformed rows are skipped and
// counted; a read failure aborts the whole file.
func ParseSnapshot(r io.Reader, location *time.Location) ([]SnapshotRow, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var rows []SnapshotRow
	var skipped int
	for i, record := range records {
		if i == 0 && len(record) > 0 && record[0] == "user_id" {
			continue // header
		}
		row, ok := parseSnapshotRecord(record, location)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	return rows, skipped, nil
}

func parseSnapshotRecord(record []string, location *time.Location) (SnapshotRow, bool) {
	if len(record) < 6 {
		return SnapshotRow{}, false
	}

	externalID, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil || externalID == 0 {
		return SnapshotRow{}, false
	}

	code, ok := breakTypeLabels[record[3]]
	if !ok {
		return SnapshotRow{}, false
	}

	action := models.Action(record[4])
	if action != models.ActionOut && action != models.ActionBack {
		return SnapshotRow{}, false
	}

	ts, err := parseSnapshotTime(record[5], location)
	if err != nil {
		return SnapshotRow{}, false
	}

	row := SnapshotRow{
		ExternalID: externalID,
		Username:   record[1],
		FullName:   record[2],
		TypeCode:   code,
		Action:     action,
		Timestamp:  ts,
	}
	if row.FullName == "" {
		return SnapshotRow{}, false
	}
	if len(record) > 6 {
		row.Reason = record[6]
	}
	return row, true
}

func parseSnapshotTime(s string, location *time.Location) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.ParseInLocation("2006-01-02 15:04:05", s, location)
}

// PairDurations matches each BACK row to the nearest preceding
// unmatched OUT for the same user and type, and fills its duration.
// Rows must be in timestamp order.
func PairDurations(rows []SnapshotRow) {
	type key struct {
		user int64
		code string
	}
	open := make(map[key]int)

	for i := range rows {
		k := key{rows[i].ExternalID, rows[i].TypeCode}
		switch rows[i].Action {
		case models.ActionOut:
			open[k] = i
		case models.ActionBack:
			if j, ok := open[k]; ok {
				d := models.Round1(rows[i].Timestamp.Sub(rows[j].Timestamp).Minutes())
				rows[i].DurationMinutes = &d
				delete(open, k)
			}
		}
	}
}

// DeriveOpenSessions returns, per user, the latest OUT with no
// matching BACK. Pairing is per break type, so a BACK from one break
// never closes a pending OUT of another. Rows must be in timestamp
// order.
func DeriveOpenSessions(rows []SnapshotRow) []SnapshotRow {
	type key struct {
		user int64
		code string
	}
	unmatched := make(map[key]*SnapshotRow)
	var order []int64
	seen := make(map[int64]bool)

	for i := range rows {
		row := &rows[i]
		k := key{row.ExternalID, row.TypeCode}
		switch row.Action {
		case models.ActionOut:
			if !seen[row.ExternalID] {
				seen[row.ExternalID] = true
				order = append(order, row.ExternalID)
			}
			unmatched[k] = row
		case models.ActionBack:
			delete(unmatched, k)
		}
	}

	var open []SnapshotRow
	for _, id := range order {
		var latest *SnapshotRow
		for k, out := range unmatched {
			if k.user != id {
				continue
			}
			if latest == nil || out.Timestamp.After(latest.Timestamp) {
				latest = out
			}
		}
		if latest != nil {
			open = append(open, *latest)
		}
	}
	return open
}
