package models

import "time"

// ActiveSessionDetail is an active session joined with its user and
// break type, as the dashboard and the pollers consume it.
type ActiveSessionDetail struct {
	ActiveSession
	ExternalID       int64  `json:"external_id"`
	Username         string `json:"username"`
	FullName         string `json:"full_name"`
	BreakTypeCode    string `json:"break_type_code"`
	BreakTypeName    string `json:"break_type_name"`
	TimeLimitMinutes *int   `json:"time_limit_minutes,omitempty"`
}

// ElapsedMinutes returns how long the session has been open at now,
// rounded to one decimal minute.
func (s *ActiveSessionDetail) ElapsedMinutes(now time.Time) float64 {
	return Round1(now.Sub(s.StartTime).Minutes())
}

// BreakLogDetail is a log entry joined with user and break type fields,
// the row shape every aggregation works from.
type BreakLogDetail struct {
	BreakLogEntry
	ExternalID       int64  `json:"external_id"`
	Username         string `json:"username"`
	FullName         string `json:"full_name"`
	BreakTypeCode    string `json:"break_type_code"`
	BreakTypeName    string `json:"break_type_name"`
	TimeLimitMinutes *int   `json:"time_limit_minutes,omitempty"`
	CountedInTotal   bool   `json:"counted_in_total"`
}

// WithinLimit reports whether a completed entry stayed inside its break
// type's limit. Entries with no configured limit always count as within.
func (e *BreakLogDetail) WithinLimit() bool {
	if e.Action != ActionBack || e.DurationMinutes == nil {
		return false
	}
	if e.TimeLimitMinutes == nil {
		return true
	}
	return *e.DurationMinutes <= float64(*e.TimeLimitMinutes)
}

// OverLimit reports whether a completed entry exceeded a configured limit.
func (e *BreakLogDetail) OverLimit() bool {
	if e.Action != ActionBack || e.DurationMinutes == nil || e.TimeLimitMinutes == nil {
		return false
	}
	return *e.DurationMinutes > float64(*e.TimeLimitMinutes)
}

// DailySummaryDetail is a summary row joined with the user's name.
type DailySummaryDetail struct {
	DailySummary
	FullName string `json:"full_name"`
}
