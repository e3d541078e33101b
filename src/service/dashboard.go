package service

import (
	"context"
	"fmt"
	"time"

	"breaktime-service/src/models"
	"breaktime-service/src/repository"
	"breaktime-service/src/schemas"
)

// DashboardService answers the read-side queries. All heavy lifting is
// in the pure aggregation functions; this layer only fetches rows and
// assembles responses.
type DashboardService struct {
	store    *repository.Store
	location *time.Location
	now      func() time.Time
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store *repository.Store, location *time.Location) *DashboardService {
	return &DashboardService{
		store:    store,
		location: location,
		now:      time.Now,
	}
}

// Today returns the current calendar date in the service timezone.
func (s *DashboardService) Today() string {
	return LogDate(s.now(), s.location)
}

func (s *DashboardService) toActiveBreak(d *models.ActiveSessionDetail, now time.Time) schemas.ActiveBreak {
	ab := schemas.ActiveBreak{
		UserID:           d.ExternalID,
		Username:         d.Username,
		FullName:         d.FullName,
		BreakTypeCode:    d.BreakTypeCode,
		BreakType:        d.BreakTypeName,
		StartTime:        d.StartTime.In(s.location).Format(time.RFC3339),
		ElapsedMinutes:   d.ElapsedMinutes(now),
		TimeLimitMinutes: d.TimeLimitMinutes,
		Source:           string(d.Source),
	}
	if d.Reason != nil {
		ab.Reason = *d.Reason
	}
	if d.TimeLimitMinutes != nil {
		if over := ab.ElapsedMinutes - float64(*d.TimeLimitMinutes); over > 0 {
			rounded := models.Round1(over)
			ab.OverLimitMinutes = &rounded
		}
	}
	return ab
}

// ActiveBreaks returns every open session, oldest first.
func (s *DashboardService) ActiveBreaks(ctx context.Context) ([]schemas.ActiveBreak, error) {
	sessions, err := s.store.ListActiveSessionDetails(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	breaks := make([]schemas.ActiveBreak, 0, len(sessions))
	for i := range sessions {
		breaks = append(breaks, s.toActiveBreak(&sessions[i], now))
	}
	return breaks, nil
}

// OverdueBreaks returns only the open sessions past their limit.
func (s *DashboardService) OverdueBreaks(ctx context.Context) ([]schemas.ActiveBreak, error) {
	sessions, err := s.store.ListActiveSessionDetails(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	overdue := OverdueSessions(sessions, now)
	breaks := make([]schemas.ActiveBreak, 0, len(overdue))
	for i := range overdue {
		breaks = append(breaks, s.toActiveBreak(&overdue[i], now))
	}
	return breaks, nil
}

// Realtime is the live floor view: who is out, who is overdue, and
// today's headline numbers.
func (s *DashboardService) Realtime(ctx context.Context) (*schemas.RealtimeResponse, error) {
	sessions, err := s.store.ListActiveSessionDetails(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := LogDate(now, s.location)
	entries, err := s.store.LogsForDate(ctx, today)
	if err != nil {
		return nil, err
	}
	within, over := ComplianceCounts(entries)

	resp := &schemas.RealtimeResponse{
		Timestamp:           now.In(s.location).Format(time.RFC3339),
		OnBreakCount:        len(sessions),
		CompletedToday:      within + over,
		TotalBreakTimeToday: TotalBreakTime(entries),
		ComplianceRateToday: ComplianceRate(within, over),
		ActiveBreaks:        make([]schemas.ActiveBreak, 0, len(sessions)),
	}
	for i := range sessions {
		ab := s.toActiveBreak(&sessions[i], now)
		if ab.OverLimitMinutes != nil {
			resp.OverdueCount++
		}
		resp.ActiveBreaks = append(resp.ActiveBreaks, ab)
	}
	return resp, nil
}

// Compliance computes the team compliance read for one date.
func (s *DashboardService) Compliance(ctx context.Context, date string) (*schemas.ComplianceResponse, error) {
	entries, err := s.store.LogsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return complianceFor(date, entries), nil
}

func complianceFor(date string, entries []models.BreakLogDetail) *schemas.ComplianceResponse {
	within, over := ComplianceCounts(entries)
	return &schemas.ComplianceResponse{
		Date:              date,
		BreaksWithinLimit: within,
		BreaksOverLimit:   over,
		ComplianceRate:    ComplianceRate(within, over),
		MaxOverdueMinutes: MaxOverdue(entries),
		MissingClockBacks: MissingClockBacks(entries),
	}
}

// Distribution returns the break type distribution over a date range.
func (s *DashboardService) Distribution(ctx context.Context, from, to string) ([]schemas.TypeDistribution, error) {
	entries, err := s.store.LogsBetweenDates(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return Distribution(entries), nil
}

// trailingDates returns the window of calendar dates ending today.
func (s *DashboardService) trailingDates(days int) []string {
	end := s.now().In(s.location)
	dates := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		dates = append(dates, end.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	return dates
}

// ComplianceTrend returns one compliance read per day for a trailing
// window ending today.
func (s *DashboardService) ComplianceTrend(ctx context.Context, days int) ([]schemas.ComplianceResponse, error) {
	dates := s.trailingDates(days)
	entries, err := s.store.LogsBetweenDates(ctx, dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, err
	}
	return ComplianceTrend(entries, dates), nil
}

// ComplianceSummary returns the compliance read over a date range.
func (s *DashboardService) ComplianceSummary(ctx context.Context, from, to string) (*schemas.ComplianceSummaryResponse, error) {
	entries, err := s.store.LogsBetweenDates(ctx, from, to)
	if err != nil {
		return nil, err
	}

	within, over := ComplianceCounts(entries)
	return &schemas.ComplianceSummaryResponse{
		StartDate:         from,
		EndDate:           to,
		TotalBreaks:       within + over,
		TotalBreakTime:    TotalBreakTime(entries),
		TotalBreakTimeAll: TotalBreakTimeAll(entries),
		BreaksWithinLimit: within,
		BreaksOverLimit:   over,
		ComplianceRate:    ComplianceRate(within, over),
		MaxOverdueMinutes: MaxOverdue(entries),
		MissingClockBacks: MissingClockBacks(entries),
	}, nil
}

// PeakHours returns the busiest clock-out hours for one date.
func (s *DashboardService) PeakHours(ctx context.Context, date string, top int) ([]schemas.HourlyBucket, error) {
	entries, err := s.store.LogsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return PeakHours(HourlyHistogram(entries, s.location), top), nil
}

// MissingClockBacks returns the per-user per-type unmatched clock-outs
// for one date.
func (s *DashboardService) MissingClockBacks(ctx context.Context, date string) ([]schemas.MissingClockBack, error) {
	entries, err := s.store.LogsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return MissingClockBacksByUserType(entries), nil
}

// AgentDetail returns one agent's totals and per-day breakdown over a
// trailing window ending today.
func (s *DashboardService) AgentDetail(ctx context.Context, externalID int64, days int) (*schemas.AgentDetailResponse, error) {
	user, err := s.store.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	dates := s.trailingDates(days)
	from, to := dates[0], dates[len(dates)-1]
	entries, err := s.store.LogsForUserBetween(ctx, user.ID, from, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]models.BreakLogDetail)
	for i := range entries {
		byDate[entries[i].LogDate] = append(byDate[entries[i].LogDate], entries[i])
	}

	resp := &schemas.AgentDetailResponse{
		UserID:    user.ExternalID,
		Username:  user.Username,
		FullName:  user.FullName,
		StartDate: from,
		EndDate:   to,
	}
	for _, date := range dates {
		dayEntries := byDate[date]
		if len(dayEntries) == 0 {
			continue
		}
		day := BuildDailySummary(user.ID, date, dayEntries)
		resp.Daily = append(resp.Daily, schemas.AgentDayStats{
			Date:              date,
			TotalBreaks:       day.TotalBreaks,
			TotalMinutes:      day.TotalDuration,
			BreaksWithinLimit: day.BreaksWithinLimit,
			BreaksOverLimit:   day.BreaksOverLimit,
			ComplianceRate:    day.ComplianceRate,
			MissingClockBacks: day.MissingClockBacks,
		})
	}

	within, over := ComplianceCounts(entries)
	resp.Totals = schemas.AgentSummary{
		UserID:            user.ExternalID,
		FullName:          user.FullName,
		TotalBreaks:       within + over,
		TotalMinutes:      TotalBreakTime(entries),
		BreaksWithinLimit: within,
		BreaksOverLimit:   over,
		ComplianceRate:    ComplianceRate(within, over),
		MissingClockBacks: MissingClockBacks(entries),
	}

	return resp, nil
}

// DailyReport assembles the end-of-day report document for one date.
func (s *DashboardService) DailyReport(ctx context.Context, date string) (*schemas.DailyReport, error) {
	entries, err := s.store.LogsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	onBreak, err := s.onBreakSet(ctx)
	if err != nil {
		return nil, err
	}

	compliance := complianceFor(date, entries)
	return &schemas.DailyReport{
		Date:              date,
		GeneratedAt:       s.now().In(s.location).Format(time.RFC3339),
		TotalBreaks:       compliance.BreaksWithinLimit + compliance.BreaksOverLimit,
		TotalBreakTime:    TotalBreakTime(entries),
		TotalBreakTimeAll: TotalBreakTimeAll(entries),
		Compliance:        *compliance,
		Distribution:      Distribution(entries),
		Agents:            AgentSummaries(entries, onBreak),
		MissingClockBacks: MissingClockBacksByUserType(entries),
		PeakHours:         PeakHours(HourlyHistogram(entries, s.location), 5),
	}, nil
}

// WeeklyReport assembles the seven-day report ending on the given date.
func (s *DashboardService) WeeklyReport(ctx context.Context, endDate string) (*schemas.WeeklyReport, error) {
	end, err := time.ParseInLocation("2006-01-02", endDate, s.location)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", endDate, err)
	}

	dates := make([]string, 0, 7)
	for i := 6; i >= 0; i-- {
		dates = append(dates, end.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	from := dates[0]

	entries, err := s.store.LogsBetweenDates(ctx, from, endDate)
	if err != nil {
		return nil, err
	}
	summary, err := s.ComplianceSummary(ctx, from, endDate)
	if err != nil {
		return nil, err
	}
	onBreak, err := s.onBreakSet(ctx)
	if err != nil {
		return nil, err
	}

	return &schemas.WeeklyReport{
		StartDate:    from,
		EndDate:      endDate,
		GeneratedAt:  s.now().In(s.location).Format(time.RFC3339),
		Compliance:   *summary,
		Trend:        ComplianceTrend(entries, dates),
		Distribution: Distribution(entries),
		Agents:       AgentSummaries(entries, onBreak),
	}, nil
}

// Health reports database liveness and the size of the event log.
func (s *DashboardService) Health(ctx context.Context) (*schemas.HealthResponse, error) {
	if err := s.store.Ping(ctx); err != nil {
		return &schemas.HealthResponse{Status: "degraded", Database: "error"}, err
	}
	count, err := s.store.CountLogs(ctx)
	if err != nil {
		return &schemas.HealthResponse{Status: "degraded", Database: "error"}, err
	}
	return &schemas.HealthResponse{
		Status:        "ok",
		Database:      "ok",
		BreakLogCount: count,
	}, nil
}

// Hourly returns the 24-bucket clock-out histogram for one date.
func (s *DashboardService) Hourly(ctx context.Context, date string) ([]schemas.HourlyBucket, error) {
	entries, err := s.store.LogsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return HourlyHistogram(entries, s.location), nil
}

// Agents returns per-user rollups for one date.
func (s *DashboardService) Agents(ctx context.Context, date string) ([]schemas.AgentSummary, error) {
	entries, err := s.store.LogsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	onBreak, err := s.onBreakSet(ctx)
	if err != nil {
		return nil, err
	}
	return AgentSummaries(entries, onBreak), nil
}

// Dashboard assembles the combined daily overview in one response.
func (s *DashboardService) Dashboard(ctx context.Context, date string) (*schemas.DashboardResponse, error) {
	entries, err := s.store.LogsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	sessions, err := s.store.ListActiveSessionDetails(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	onBreak := make(map[int64]bool, len(sessions))
	for i := range sessions {
		onBreak[sessions[i].UserID] = true
	}

	compliance := complianceFor(date, entries)
	return &schemas.DashboardResponse{
		Date:           date,
		TotalBreaks:    compliance.BreaksWithinLimit + compliance.BreaksOverLimit,
		TotalBreakTime: TotalBreakTime(entries),
		OnBreakCount:   len(sessions),
		OverdueCount:   len(OverdueSessions(sessions, now)),
		Compliance:     *compliance,
		Distribution:   Distribution(entries),
		Agents:         AgentSummaries(entries, onBreak),
		Hourly:         HourlyHistogram(entries, s.location),
	}, nil
}

// History returns one user's log entries across a date range.
func (s *DashboardService) History(ctx context.Context, externalID int64, from, to string) ([]models.BreakLogDetail, error) {
	user, err := s.store.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return s.store.LogsForUserBetween(ctx, user.ID, from, to)
}

// Reports returns stored daily summaries across a date range.
func (s *DashboardService) Reports(ctx context.Context, from, to string) ([]models.DailySummaryDetail, error) {
	return s.store.SummariesBetween(ctx, from, to)
}

// Users lists every known user.
func (s *DashboardService) Users(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// AlertHistory returns audited alerts raised during one calendar date.
func (s *DashboardService) AlertHistory(ctx context.Context, date string, limit int) ([]models.ComplianceAlert, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.location)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return s.store.AlertsBetween(ctx, day, day.AddDate(0, 0, 1), limit)
}

// LogsForDate exposes a date's raw joined entries, used by the export.
func (s *DashboardService) LogsForDate(ctx context.Context, date string) ([]models.BreakLogDetail, error) {
	return s.store.LogsForDate(ctx, date)
}

func (s *DashboardService) onBreakSet(ctx context.Context) (map[int64]bool, error) {
	sessions, err := s.store.ListActiveSessionDetails(ctx)
	if err != nil {
		return nil, err
	}
	onBreak := make(map[int64]bool, len(sessions))
	for i := range sessions {
		onBreak[sessions[i].UserID] = true
	}
	return onBreak, nil
}
