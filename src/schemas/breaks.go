package schemas

// BreakActionRequest is the body for starting or ending a break. The
// chat adapter forwards it verbatim from the parsed command.
type BreakActionRequest struct {
	UserID        int64  `json:"user_id" binding:"required"`
	Username      string `json:"username"`
	FullName      string `json:"full_name" binding:"required"`
	BreakTypeCode string `json:"break_type_code" binding:"required"`
	Reason        string `json:"reason"`
	GroupChatID   *int64 `json:"group_chat_id"`
}

// BreakActionResponse reports a completed lifecycle transition.
type BreakActionResponse struct {
	Message         string   `json:"message"`
	UserID          int64    `json:"user_id"`
	BreakTypeCode   string   `json:"break_type_code"`
	BreakType       string   `json:"break_type"`
	Action          string   `json:"action"`
	Timestamp       string   `json:"timestamp"`
	DurationMinutes *float64 `json:"duration_minutes,omitempty"`
}

// RecomputeSummariesRequest asks for a daily summary rebuild. With no
// user filter, every user active on the date is recomputed.
type RecomputeSummariesRequest struct {
	Date   string `json:"date" binding:"required"` // YYYY-MM-DD
	UserID *int64 `json:"user_id"`
}

// RecomputeSummariesResponse reports how many summaries were rebuilt.
type RecomputeSummariesResponse struct {
	Message    string `json:"message"`
	Date       string `json:"date"`
	Recomputed int    `json:"recomputed"`
}
