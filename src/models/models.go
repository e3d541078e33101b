package models

import "time"

// Action marks which side of a break an event records.
type Action string

const (
	ActionOut  Action = "OUT"
	ActionBack Action = "BACK"
)

// Source records which writer created or last touched a row.
type Source string

const (
	SourceBot      Source = "bot"
	SourceImporter Source = "importer"
)

// User is an employee known from the chat platform. Created on first
// break action, never deleted.
type User struct {
	ID           int64     `json:"id"`
	ExternalID   int64     `json:"external_id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// BreakType is static reference data, loaded once at startup.
type BreakType struct {
	ID               int64  `json:"id"`
	Code             string `json:"code"`
	DisplayName      string `json:"display_name"`
	TimeLimitMinutes *int   `json:"time_limit_minutes,omitempty"`
	CountedInTotal   bool   `json:"counted_in_total"`
	RequiresReason   bool   `json:"requires_reason"`
}

// BreakLogEntry is one row of the append-only event log.
type BreakLogEntry struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	BreakTypeID     int64     `json:"break_type_id"`
	Action          Action    `json:"action"`
	Timestamp       time.Time `json:"timestamp"`
	LogDate         string    `json:"log_date"` // YYYY-MM-DD
	DurationMinutes *float64  `json:"duration_minutes,omitempty"`
	Reason          *string   `json:"reason,omitempty"`
	GroupChatID     *int64    `json:"group_chat_id,omitempty"`
	Source          Source    `json:"source"`
}

// ActiveSession is the single open break for a user. Existence of a row
// means "on break"; absence means "available".
type ActiveSession struct {
	UserID      int64     `json:"user_id"`
	BreakTypeID int64     `json:"break_type_id"`
	StartTime   time.Time `json:"start_time"`
	Reason      *string   `json:"reason,omitempty"`
	GroupChatID *int64    `json:"group_chat_id,omitempty"`
	Source      Source    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// DailySummary is the precomputed per-user per-day rollup. Always
// replaced wholesale for its (user, date) key, never patched.
type DailySummary struct {
	UserID                 int64   `json:"user_id"`
	SummaryDate            string  `json:"summary_date"`
	BreakCount             int     `json:"break_count"`
	BreakDurationTotal     float64 `json:"break_duration_total"`
	RestroomCount          int     `json:"restroom_count"`
	RestroomDurationTotal  float64 `json:"restroom_duration_total"`
	ExtendedCount          int     `json:"extended_count"`
	ExtendedDurationTotal  float64 `json:"extended_duration_total"`
	OtherCount             int     `json:"other_count"`
	OtherDurationTotal     float64 `json:"other_duration_total"`
	TotalBreaks            int     `json:"total_breaks"`
	TotalDuration          float64 `json:"total_duration"`
	TotalDurationAll       float64 `json:"total_duration_all"`
	BreaksWithinLimit      int     `json:"breaks_within_limit"`
	BreaksOverLimit        int     `json:"breaks_over_limit"`
	ComplianceRate         float64 `json:"compliance_rate"`
	MaxOverdueMinutes      float64 `json:"max_overdue_minutes"`
	MissingClockBacks      int     `json:"missing_clock_backs"`
}

// ComplianceAlert is an audit record of a raised alert. Live alert state
// is recomputed every poll; this table only preserves history.
type ComplianceAlert struct {
	ID               string    `json:"id"`
	UserID           int64     `json:"user_id"`
	FullName         string    `json:"full_name"`
	BreakTypeID      int64     `json:"break_type_id"`
	BreakType        string    `json:"break_type"`
	AlertType        string    `json:"alert_type"` // overdue, missing_back
	Severity         string    `json:"severity"`   // warning, critical
	AlertTimestamp   time.Time `json:"alert_timestamp"`
	DurationAtAlert  float64   `json:"duration_at_alert"`
	OverLimitMinutes float64   `json:"over_limit_minutes"`
	Message          string    `json:"message"`
}
