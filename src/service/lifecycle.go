package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"breaktime-service/src/models"
	"breaktime-service/src/repository"
	"breaktime-service/src/schemas"
)

// MirrorSink receives committed log entries for asynchronous fan-out.
// Enqueue must never block the caller.
type MirrorSink interface {
	Enqueue(entry models.BreakLogDetail)
}

// BreakService handles the break lifecycle state machine.
type BreakService struct {
	store     *repository.Store
	catalogue *repository.Catalogue
	mirror    MirrorSink
	location  *time.Location
	now       func() time.Time
}

// NewBreakService creates a new break lifecycle service. mirror may be
// nil when no broker is configured.
func NewBreakService(store *repository.Store, catalogue *repository.Catalogue, mirror MirrorSink, location *time.Location) *BreakService {
	return &BreakService{
		store:     store,
		catalogue: catalogue,
		mirror:    mirror,
		location:  location,
		now:       time.Now,
	}
}

// LogDate formats a timestamp as the service-timezone calendar date
// that aggregation groups by.
func LogDate(ts time.Time, location *time.Location) string {
	return ts.In(location).Format("2006-01-02")
}

// validateStart decides whether a start request may proceed given the
// requested type and the user's current session, if any.
func validateStart(breakType *models.BreakType, reason string, active *models.ActiveSession, catalogue *repository.Catalogue) error {
	if breakType == nil {
		return models.ErrUnknownBreakType
	}
	if breakType.RequiresReason && reason == "" {
		return models.ErrReasonRequired
	}
	if active != nil {
		activeType := catalogue.ByID(active.BreakTypeID)
		e := &models.AlreadyOnBreakError{}
		if activeType != nil {
			e.ActiveTypeCode = activeType.Code
			e.ActiveTypeName = activeType.DisplayName
		}
		return e
	}
	return nil
}

// validateEnd decides whether an end request matches the open session.
func validateEnd(requestedCode string, active *models.ActiveSession, catalogue *repository.Catalogue) error {
	if active == nil {
		return models.ErrNoActiveBreak
	}
	activeType := catalogue.ByID(active.BreakTypeID)
	if activeType == nil {
		return models.ErrUnknownBreakType
	}
	if requestedCode != activeType.Code {
		return &models.TypeMismatchError{
			RequestedCode: requestedCode,
			ActiveCode:    activeType.Code,
			ActiveName:    activeType.DisplayName,
		}
	}
	return nil
}

// StartBreak records an OUT event and opens the user's session. The
// user row, the log entry and the session are written in one
// transaction so a crash never leaves a half-open break.
func (s *BreakService) StartBreak(ctx context.Context, req *schemas.BreakActionRequest) (*schemas.BreakActionResponse, error) {
	breakType := s.catalogue.ByCode(req.BreakTypeCode)
	if breakType == nil {
		return nil, models.ErrUnknownBreakType
	}
	if breakType.RequiresReason && req.Reason == "" {
		return nil, models.ErrReasonRequired
	}

	now := s.now()

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := s.store.UpsertUser(ctx, tx, req.UserID, req.Username, req.FullName, now)
	if err != nil {
		return nil, err
	}

	active, err := s.store.GetActiveSession(ctx, tx, user.ID, true)
	if err != nil {
		return nil, err
	}
	if err := validateStart(breakType, req.Reason, active, s.catalogue); err != nil {
		return nil, err
	}

	entry := &models.BreakLogEntry{
		UserID:      user.ID,
		BreakTypeID: breakType.ID,
		Action:      models.ActionOut,
		Timestamp:   now,
		LogDate:     LogDate(now, s.location),
		Reason:      optional(req.Reason),
		GroupChatID: req.GroupChatID,
		Source:      models.SourceBot,
	}
	if _, err := s.store.InsertLog(ctx, tx, entry); err != nil {
		return nil, err
	}

	session := &models.ActiveSession{
		UserID:      user.ID,
		BreakTypeID: breakType.ID,
		StartTime:   now,
		Reason:      optional(req.Reason),
		GroupChatID: req.GroupChatID,
		Source:      models.SourceBot,
		CreatedAt:   now,
	}
	if err := s.store.CreateActiveSession(ctx, tx, session); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit break start: %w", err)
	}

	slog.Info("Break started",
		"user_id", user.ID,
		"external_id", user.ExternalID,
		"break_type", breakType.Code)

	s.publishMirror(entry, user, breakType)

	return &schemas.BreakActionResponse{
		Message:       fmt.Sprintf("%s is now on %s", user.FullName, breakType.DisplayName),
		UserID:        user.ExternalID,
		BreakTypeCode: breakType.Code,
		BreakType:     breakType.DisplayName,
		Action:        string(models.ActionOut),
		Timestamp:     now.In(s.location).Format(time.RFC3339),
	}, nil
}

// EndBreak records a BACK event and closes the user's session. The
// session row is deleted before the BACK entry is appended, inside the
// same transaction, so replaying the commit can never double-close.
func (s *BreakService) EndBreak(ctx context.Context, req *schemas.BreakActionRequest) (*schemas.BreakActionResponse, error) {
	if s.catalogue.ByCode(req.BreakTypeCode) == nil {
		return nil, models.ErrUnknownBreakType
	}

	now := s.now()

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := s.store.UpsertUser(ctx, tx, req.UserID, req.Username, req.FullName, now)
	if err != nil {
		return nil, err
	}

	active, err := s.store.GetActiveSession(ctx, tx, user.ID, true)
	if err != nil {
		return nil, err
	}
	if err := validateEnd(req.BreakTypeCode, active, s.catalogue); err != nil {
		return nil, err
	}
	breakType := s.catalogue.ByID(active.BreakTypeID)

	if _, err := s.store.DeleteActiveSession(ctx, tx, user.ID); err != nil {
		return nil, err
	}

	duration := models.Round1(now.Sub(active.StartTime).Minutes())
	entry := &models.BreakLogEntry{
		UserID:          user.ID,
		BreakTypeID:     active.BreakTypeID,
		Action:          models.ActionBack,
		Timestamp:       now,
		LogDate:         LogDate(now, s.location),
		DurationMinutes: &duration,
		Reason:          active.Reason,
		GroupChatID:     active.GroupChatID,
		Source:          models.SourceBot,
	}
	if _, err := s.store.InsertLog(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit break end: %w", err)
	}

	slog.Info("Break ended",
		"user_id", user.ID,
		"external_id", user.ExternalID,
		"break_type", breakType.Code,
		"duration_minutes", duration)

	s.publishMirror(entry, user, breakType)

	return &schemas.BreakActionResponse{
		Message:         fmt.Sprintf("%s is back from %s", user.FullName, breakType.DisplayName),
		UserID:          user.ExternalID,
		BreakTypeCode:   breakType.Code,
		BreakType:       breakType.DisplayName,
		Action:          string(models.ActionBack),
		Timestamp:       now.In(s.location).Format(time.RFC3339),
		DurationMinutes: &duration,
	}, nil
}

func (s *BreakService) publishMirror(entry *models.BreakLogEntry, user *models.User, breakType *models.BreakType) {
	if s.mirror == nil {
		return
	}
	detail := models.BreakLogDetail{
		BreakLogEntry:    *entry,
		ExternalID:       user.ExternalID,
		Username:         user.Username,
		FullName:         user.FullName,
		BreakTypeCode:    breakType.Code,
		BreakTypeName:    breakType.DisplayName,
		TimeLimitMinutes: breakType.TimeLimitMinutes,
		CountedInTotal:   breakType.CountedInTotal,
	}
	s.mirror.Enqueue(detail)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
