package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"breaktime-service/src/models"
	"breaktime-service/src/repository"
)

// Importer reconciles the database with daily CSV snapshots written by
// the chat adapter. Replay is idempotent; a sweep can run at any time
// without corrupting anything.
type Importer struct {
	store      *repository.Store
	catalogue  *repository.Catalogue
	dir        string
	grace      time.Duration
	staleAfter time.Duration
	interval   time.Duration
	location   *time.Location
	now        func() time.Time
}

// NewImporter creates a new snapshot importer.
func NewImporter(store *repository.Store, catalogue *repository.Catalogue, dir string, grace, staleAfter, interval time.Duration, location *time.Location) *Importer {
	return &Importer{
		store:      store,
		catalogue:  catalogue,
		dir:        dir,
		grace:      grace,
		staleAfter: staleAfter,
		interval:   interval,
		location:   location,
		now:        time.Now,
	}
}

// ImportStats reports what one sweep did.
type ImportStats struct {
	SnapshotFound  int `json:"snapshot_found"`
	RowsParsed     int `json:"rows_parsed"`
	RowsSkipped    int `json:"rows_skipped"`
	RowsImported   int `json:"rows_imported"`
	SessionsOpened int `json:"sessions_opened"`
	StaleDeleted   int `json:"stale_deleted"`
}

// SnapshotPath returns the expected snapshot file for a date.
func (im *Importer) SnapshotPath(date string) string {
	return filepath.Join(im.dir, fmt.Sprintf("break_logs_%s.csv", date))
}

// SweepOnce runs one reconciliation cycle against today's snapshot. A
// missing snapshot is normal; an unreadable one aborts the cycle before
// any write.
func (im *Importer) SweepOnce(ctx context.Context) (ImportStats, error) {
	var stats ImportStats
	now := im.now()
	date := LogDate(now, im.location)

	implied := map[int64]bool{}

	path := im.SnapshotPath(date)
	f, err := os.Open(path)
	if err == nil {
		stats.SnapshotFound = 1
		defer f.Close()

		rows, skipped, err := ParseSnapshot(f, im.location)
		if err != nil {
			return stats, fmt.Errorf("snapshot %s unreadable: %w", path, err)
		}
		stats.RowsParsed = len(rows)
		stats.RowsSkipped = skipped

		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Timestamp.Before(rows[j].Timestamp)
		})
		PairDurations(rows)

		watermark, err := im.store.MaxLogTimestamp(ctx)
		if err != nil {
			return stats, err
		}

		imported, err := im.importRows(ctx, rows, watermark)
		stats.RowsImported = imported
		if err != nil {
			return stats, err
		}

		opened, openUsers, err := im.openImpliedSessions(ctx, DeriveOpenSessions(rows), now)
		stats.SessionsOpened = opened
		implied = openUsers
		if err != nil {
			return stats, err
		}
	} else if !os.IsNotExist(err) {
		return stats, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}

	sessions, err := im.store.ListActiveSessionDetails(ctx)
	if err != nil {
		return stats, err
	}
	for _, userID := range StaleImporterSessions(sessions, implied, now.Add(-im.staleAfter)) {
		deleted, err := im.store.DeleteImporterSession(ctx, userID)
		if err != nil {
			return stats, err
		}
		if deleted {
			stats.StaleDeleted++
		}
	}

	if stats.RowsImported > 0 || stats.SessionsOpened > 0 || stats.StaleDeleted > 0 {
		slog.Info("Reconciliation sweep applied changes",
			"date", date,
			"rows_imported", stats.RowsImported,
			"rows_skipped", stats.RowsSkipped,
			"sessions_opened", stats.SessionsOpened,
			"stale_deleted", stats.StaleDeleted)
	}

	return stats, nil
}

func (im *Importer) importRows(ctx context.Context, rows []SnapshotRow, watermark *time.Time) (int, error) {
	var imported int
	pool := im.store
	for i := range rows {
		row := &rows[i]
		if !AfterWatermark(row.Timestamp, watermark) {
			continue
		}
		breakType := im.catalogue.ByCode(row.TypeCode)
		if breakType == nil {
			continue
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return imported, err
		}

		user, err := pool.UpsertUser(ctx, tx, row.ExternalID, row.Username, row.FullName, row.Timestamp)
		if err != nil {
			tx.Rollback()
			return imported, err
		}

		entry := &models.BreakLogEntry{
			UserID:          user.ID,
			BreakTypeID:     breakType.ID,
			Action:          row.Action,
			Timestamp:       row.Timestamp,
			LogDate:         LogDate(row.Timestamp, im.location),
			DurationMinutes: row.DurationMinutes,
			Reason:          optional(row.Reason),
			Source:          models.SourceImporter,
		}
		inserted, err := pool.InsertLog(ctx, tx, entry)
		if err != nil {
			tx.Rollback()
			return imported, err
		}

		if err := tx.Commit(); err != nil {
			return imported, fmt.Errorf("failed to commit import row: %w", err)
		}
		if inserted {
			imported++
		}
	}
	return imported, nil
}

// openImpliedSessions materializes snapshot-implied open breaks as
// importer sessions. An OUT inside the grace window is skipped so a
// bot write racing the sweep always wins. The returned set holds every
// user the snapshot still implies open, grace-skipped ones included,
// so the stale cleanup never deletes a session the snapshot vouches
// for.
func (im *Importer) openImpliedSessions(ctx context.Context, open []SnapshotRow, now time.Time) (int, map[int64]bool, error) {
	var opened int
	implied := make(map[int64]bool, len(open))
	for i := range open {
		row := &open[i]
		breakType := im.catalogue.ByCode(row.TypeCode)
		if breakType == nil {
			continue
		}

		user, err := im.store.GetUserByExternalID(ctx, row.ExternalID)
		if err != nil {
			return opened, implied, err
		}
		if user == nil {
			continue
		}
		implied[user.ID] = true

		if WithinGraceWindow(row.Timestamp, now, im.grace) {
			continue
		}

		session := &models.ActiveSession{
			UserID:      user.ID,
			BreakTypeID: breakType.ID,
			StartTime:   row.Timestamp,
			Reason:      optional(row.Reason),
			Source:      models.SourceImporter,
			CreatedAt:   now,
		}
		inserted, err := im.store.UpsertImporterSession(ctx, session)
		if err != nil {
			return opened, implied, err
		}
		if inserted {
			opened++
		}
	}
	return opened, implied, nil
}

// AfterWatermark reports whether a snapshot row still needs importing
// given the latest timestamp already stored. Rows strictly older than
// the watermark are known replays; rows at the watermark itself pass
// through and land on the replay constraint. A nil watermark means an
// empty table, so everything is new.
func AfterWatermark(ts time.Time, watermark *time.Time) bool {
	return watermark == nil || !ts.Before(*watermark)
}

// StaleImporterSessions picks the importer-sourced sessions that have
// outlived the cutoff and are no longer implied open by today's
// snapshot. Bot-sourced sessions are never candidates.
func StaleImporterSessions(sessions []models.ActiveSessionDetail, implied map[int64]bool, cutoff time.Time) []int64 {
	var stale []int64
	for i := range sessions {
		s := &sessions[i]
		if s.Source != models.SourceImporter {
			continue
		}
		if implied[s.UserID] {
			continue
		}
		if s.StartTime.Before(cutoff) {
			stale = append(stale, s.UserID)
		}
	}
	return stale
}

// WithinGraceWindow reports whether an implied-open OUT is too recent
// to act on.
func WithinGraceWindow(outAt, now time.Time, grace time.Duration) bool {
	return now.Sub(outAt) <= grace
}

// Run sweeps on the configured interval until the context is cancelled.
func (im *Importer) Run(ctx context.Context) {
	ticker := time.NewTicker(im.interval)
	defer ticker.Stop()

	slog.Info("Snapshot importer started", "dir", im.dir, "interval", im.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Snapshot importer stopped")
			return
		case <-ticker.C:
			if _, err := im.SweepOnce(ctx); err != nil {
				slog.Error("Reconciliation sweep failed", "error", err)
			}
		}
	}
}
