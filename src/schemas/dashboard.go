package schemas

// ActiveBreak is one open session as the dashboard shows it.
type ActiveBreak struct {
	UserID           int64    `json:"user_id"`
	Username         string   `json:"username,omitempty"`
	FullName         string   `json:"full_name"`
	BreakTypeCode    string   `json:"break_type_code"`
	BreakType        string   `json:"break_type"`
	StartTime        string   `json:"start_time"`
	ElapsedMinutes   float64  `json:"elapsed_minutes"`
	TimeLimitMinutes *int     `json:"time_limit_minutes,omitempty"`
	OverLimitMinutes *float64 `json:"over_limit_minutes,omitempty"`
	Reason           string   `json:"reason,omitempty"`
	Source           string   `json:"source"`
}

// RealtimeResponse is the live floor view plus today's headline numbers.
type RealtimeResponse struct {
	Timestamp           string        `json:"timestamp"`
	OnBreakCount        int           `json:"on_break_count"`
	OverdueCount        int           `json:"overdue_count"`
	CompletedToday      int           `json:"completed_today"`
	TotalBreakTimeToday float64       `json:"total_break_time_today"`
	ComplianceRateToday float64       `json:"compliance_rate_today"`
	ActiveBreaks        []ActiveBreak `json:"active_breaks"`
}

// TypeDistribution is one break type's share of a day's completed breaks.
type TypeDistribution struct {
	BreakTypeCode string  `json:"break_type_code"`
	BreakType     string  `json:"break_type"`
	Count         int     `json:"count"`
	TotalMinutes  float64 `json:"total_minutes"`
	Percentage    float64 `json:"percentage"`
}

// HourlyBucket is one hour of the clock-out histogram. Net is outs
// minus backs and is deliberately left unclamped.
type HourlyBucket struct {
	Hour  int `json:"hour"`
	Outs  int `json:"outs"`
	Backs int `json:"backs"`
	Net   int `json:"net"`
}

// AgentSummary is one user's aggregate for a date.
type AgentSummary struct {
	UserID            int64   `json:"user_id"`
	FullName          string  `json:"full_name"`
	TotalBreaks       int     `json:"total_breaks"`
	TotalMinutes      float64 `json:"total_minutes"`
	BreaksWithinLimit int     `json:"breaks_within_limit"`
	BreaksOverLimit   int     `json:"breaks_over_limit"`
	ComplianceRate    float64 `json:"compliance_rate"`
	MissingClockBacks int     `json:"missing_clock_backs"`
	OnBreak           bool    `json:"on_break"`
}

// ComplianceResponse is the team-level compliance read for a date.
type ComplianceResponse struct {
	Date              string  `json:"date"`
	BreaksWithinLimit int     `json:"breaks_within_limit"`
	BreaksOverLimit   int     `json:"breaks_over_limit"`
	ComplianceRate    float64 `json:"compliance_rate"`
	MaxOverdueMinutes float64 `json:"max_overdue_minutes"`
	MissingClockBacks int     `json:"missing_clock_backs"`
}

// ComplianceSummaryResponse is the compliance read over a date range.
type ComplianceSummaryResponse struct {
	StartDate         string  `json:"start_date"`
	EndDate           string  `json:"end_date"`
	TotalBreaks       int     `json:"total_breaks"`
	TotalBreakTime    float64 `json:"total_break_time"`
	TotalBreakTimeAll float64 `json:"total_break_time_all"`
	BreaksWithinLimit int     `json:"breaks_within_limit"`
	BreaksOverLimit   int     `json:"breaks_over_limit"`
	ComplianceRate    float64 `json:"compliance_rate"`
	MaxOverdueMinutes float64 `json:"max_overdue_minutes"`
	MissingClockBacks int     `json:"missing_clock_backs"`
}

// MissingClockBack is one user's unmatched clock-outs for one break
// type on a date.
type MissingClockBack struct {
	UserID        int64  `json:"user_id"`
	FullName      string `json:"full_name"`
	BreakTypeCode string `json:"break_type_code"`
	BreakType     string `json:"break_type"`
	Missing       int    `json:"missing"`
	LastOut       string `json:"last_out,omitempty"`
}

// AlertSummaryResponse is the current alert picture for a date.
type AlertSummaryResponse struct {
	Date              string             `json:"date"`
	GeneratedAt       string             `json:"generated_at"`
	OverdueCount      int                `json:"overdue_count"`
	WarningCount      int                `json:"warning_count"`
	CriticalCount     int                `json:"critical_count"`
	TotalMissing      int                `json:"total_missing"`
	MissingClockBacks []MissingClockBack `json:"missing_clock_backs"`
}

// AgentDayStats is one day of an agent's detail view.
type AgentDayStats struct {
	Date              string  `json:"date"`
	TotalBreaks       int     `json:"total_breaks"`
	TotalMinutes      float64 `json:"total_minutes"`
	BreaksWithinLimit int     `json:"breaks_within_limit"`
	BreaksOverLimit   int     `json:"breaks_over_limit"`
	ComplianceRate    float64 `json:"compliance_rate"`
	MissingClockBacks int     `json:"missing_clock_backs"`
}

// AgentDetailResponse is one agent's aggregate plus per-day breakdown
// over a trailing window.
type AgentDetailResponse struct {
	UserID    int64           `json:"user_id"`
	Username  string          `json:"username,omitempty"`
	FullName  string          `json:"full_name"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Totals    AgentSummary    `json:"totals"`
	Daily     []AgentDayStats `json:"daily"`
}

// DailyReport is the full end-of-day report document.
type DailyReport struct {
	Date              string             `json:"date"`
	GeneratedAt       string             `json:"generated_at"`
	TotalBreaks       int                `json:"total_breaks"`
	TotalBreakTime    float64            `json:"total_break_time"`
	TotalBreakTimeAll float64            `json:"total_break_time_all"`
	Compliance        ComplianceResponse `json:"compliance"`
	Distribution      []TypeDistribution `json:"distribution"`
	Agents            []AgentSummary     `json:"agents"`
	MissingClockBacks []MissingClockBack `json:"missing_clock_backs"`
	PeakHours         []HourlyBucket     `json:"peak_hours"`
}

// WeeklyReport is the seven-day report document.
type WeeklyReport struct {
	StartDate    string                    `json:"start_date"`
	EndDate      string                    `json:"end_date"`
	GeneratedAt  string                    `json:"generated_at"`
	Compliance   ComplianceSummaryResponse `json:"compliance"`
	Trend        []ComplianceResponse      `json:"trend"`
	Distribution []TypeDistribution        `json:"distribution"`
	Agents       []AgentSummary            `json:"agents"`
}

// HealthResponse reports service and database liveness.
type HealthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	BreakLogCount int64  `json:"break_log_count"`
}

// DashboardResponse is the combined daily overview.
type DashboardResponse struct {
	Date             string             `json:"date"`
	TotalBreaks      int                `json:"total_breaks"`
	TotalBreakTime   float64            `json:"total_break_time"`
	OnBreakCount     int                `json:"on_break_count"`
	OverdueCount     int                `json:"overdue_count"`
	Compliance       ComplianceResponse `json:"compliance"`
	Distribution     []TypeDistribution `json:"distribution"`
	Agents           []AgentSummary     `json:"agents"`
	Hourly           []HourlyBucket     `json:"hourly"`
}
