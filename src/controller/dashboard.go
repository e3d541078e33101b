package controller

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"breaktime-service/src/models"
	"breaktime-service/src/repository"
	"breaktime-service/src/schemas"
	"breaktime-service/src/service"
	"breaktime-service/src/utils"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Service   *service.DashboardService
	Catalogue *repository.Catalogue
}

func NewDashboardController(svc *service.DashboardService, catalogue *repository.Catalogue) *DashboardController {
	return &DashboardController{
		Service:   svc,
		Catalogue: catalogue,
	}
}

// dateParam reads the date query parameter, defaulting to today in the
// service timezone. An empty string return means the response was
// already written.
func (dc *DashboardController) dateParam(ctx *gin.Context) string {
	date := ctx.DefaultQuery("date", dc.Service.Today())
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.SendError(ctx, schemas.NewBadRequestError("date must be YYYY-MM-DD", ctx.FullPath()))
		return ""
	}
	return date
}

func (dc *DashboardController) rangeParams(ctx *gin.Context) (string, string, bool) {
	today := dc.Service.Today()
	from := ctx.DefaultQuery("start_date", today)
	to := ctx.DefaultQuery("end_date", today)
	for _, d := range []string{from, to} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			utils.SendError(ctx, schemas.NewBadRequestError("start_date and end_date must be YYYY-MM-DD", ctx.FullPath()))
			return "", "", false
		}
	}
	return from, to, true
}

// @Summary List active breaks
// @Description Returns every currently open break session
// @Tags dashboard
// @Produce json
// @Success 200 {array} schemas.ActiveBreak
// @Failure 500 {object} schemas.ErrorResponse
// @Router /breaks/active [get]
func (dc *DashboardController) GetActiveBreaks(ctx *gin.Context) {
	breaks, err := dc.Service.ActiveBreaks(ctx.Request.Context())
	if err != nil {
		slog.Error("Failed to list active breaks", "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, breaks)
}

// @Summary List overdue breaks
// @Description Returns open breaks past their type's time limit
// @Tags dashboard
// @Produce json
// @Success 200 {array} schemas.ActiveBreak
// @Failure 500 {object} schemas.ErrorResponse
// @Router /breaks/overdue [get]
func (dc *DashboardController) GetOverdueBreaks(ctx *gin.Context) {
	breaks, err := dc.Service.OverdueBreaks(ctx.Request.Context())
	if err != nil {
		slog.Error("Failed to list overdue breaks", "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, breaks)
}

// @Summary Realtime floor view
// @Description Returns who is out and who is overdue right now
// @Tags dashboard
// @Produce json
// @Success 200 {object} schemas.RealtimeResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /dashboard/realtime [get]
func (dc *DashboardController) GetRealtime(ctx *gin.Context) {
	resp, err := dc.Service.Realtime(ctx.Request.Context())
	if err != nil {
		slog.Error("Failed to build realtime view", "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// @Summary Daily dashboard
// @Description Returns the combined daily overview for a date
// @Tags dashboard
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} schemas.DashboardResponse
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /dashboard [get]
func (dc *DashboardController) GetDashboard(ctx *gin.Context) {
	date := dc.dateParam(ctx)
	if date == "" {
		return
	}
	resp, err := dc.Service.Dashboard(ctx.Request.Context(), date)
	if err != nil {
		slog.Error("Failed to build dashboard", "date", date, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// @Summary Break type distribution
// @Description Returns completed break counts and share per type over a period
// @Tags dashboard
// @Produce json
// @Param date query string false "Single date (YYYY-MM-DD), defaults to today"
// @Param start_date query string false "Range start (YYYY-MM-DD), overrides date"
// @Param end_date query string false "Range end (YYYY-MM-DD), overrides date"
// @Success 200 {array} schemas.TypeDistribution
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /dashboard/distribution [get]
func (dc *DashboardController) GetDistribution(ctx *gin.Context) {
	date := dc.dateParam(ctx)
	if date == "" {
		return
	}
	from := ctx.DefaultQuery("start_date", date)
	to := ctx.DefaultQuery("end_date", date)
	for _, d := range []string{from, to} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			utils.SendError(ctx, schemas.NewBadRequestError("start_date and end_date must be YYYY-MM-DD", ctx.FullPath()))
			return
		}
	}
	dist, err := dc.Service.Distribution(ctx.Request.Context(), from, to)
	if err != nil {
		slog.Error("Failed to build distribution", "start_date", from, "end_date", to, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, dist)
}

// @Summary Per-agent rollups
// @Description Returns each user's break aggregates for a date
// @Tags dashboard
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} schemas.AgentSummary
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /dashboard/agents [get]
func (dc *DashboardController) GetAgents(ctx *gin.Context) {
	date := dc.dateParam(ctx)
	if date == "" {
		return
	}
	agents, err := dc.Service.Agents(ctx.Request.Context(), date)
	if err != nil {
		slog.Error("Failed to build agent rollups", "date", date, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, agents)
}

// @Summary Hourly histogram
// @Description Returns the 24-bucket clock-out histogram for a date
// @Tags dashboard
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} schemas.HourlyBucket
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /dashboard/hourly [get]
func (dc *DashboardController) GetHourly(ctx *gin.Context) {
	date := dc.dateParam(ctx)
	if date == "" {
		return
	}
	hourly, err := dc.Service.Hourly(ctx.Request.Context(), date)
	if err != nil {
		slog.Error("Failed to build hourly histogram", "date", date, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, hourly)
}

// @Summary Team compliance
// @Description Returns the team compliance read for a date
// @Tags dashboard
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} schemas.ComplianceResponse
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /dashboard/compliance [get]
func (dc *DashboardController) GetCompliance(ctx *gin.Context) {
	date := dc.dateParam(ctx)
	if date == "" {
		return
	}
	resp, err := dc.Service.Compliance(ctx.Request.Context(), date)
	if err != nil {
		slog.Error("Failed to compute compliance", "date", date, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// daysParam reads a bounded day-count query parameter. A zero return
// means the response was already written.
func (dc *DashboardController) daysParam(ctx *gin.Context, def, max int) int {
	days, err := strconv.Atoi(ctx.DefaultQuery("days", strconv.Itoa(def)))
	if err != nil || days < 1 || days > max {
		utils.SendError(ctx, schemas.NewBadRequestError(fmt.Sprintf("days must be an integer between 1 and %d", max), ctx.FullPath()))
		return 0
	}
	return days
}

// @Summary Compliance trend
// @Description Returns the per-day compliance read over the trailing N days
// @Tags dashboard
// @Produce json
// @Param days query int false "Trailing window in days (1-90), defaults to 7"
// @Success 200 {array} schemas.ComplianceResponse
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /dashboard/compliance/trend [get]
func (dc *DashboardController) GetComplianceTrend(ctx *gin.Context) {
	days := dc.daysParam(ctx, 7, 90)
	if days == 0 {
		return
	}
	trend, err := dc.Service.ComplianceTrend(ctx.Request.Context(), days)
	if err != nil {
		slog.Error("Failed to build compliance trend", "days", days, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, trend)
}

// @Summary Compliance summary
// @Description Returns aggregated compliance over a date range
// @Tags dashboard
// @Produce json
// @Param start_date query string false "Range start (YYYY-MM-DD), defaults to today"
// @Param end_date query string false "Range end (YYYY-MM-DD), defaults to today"
// @Success 200 {object} schemas.ComplianceSummaryResponse
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /dashboard/compliance/summary [get]
func (dc *DashboardController) GetComplianceSummary(ctx *gin.Context) {
	from, to, ok := dc.rangeParams(ctx)
	if !ok {
		return
	}
	resp, err := dc.Service.ComplianceSummary(ctx.Request.Context(), from, to)
	if err != nil {
		slog.Error("Failed to build compliance summary", "start_date", from, "end_date", to, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// @Summary Peak break hours
// @Description Returns the busiest clock-out hours for a date
// @Tags dashboard
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param top query int false "Number of hours to return (1-24), defaults to 5"
// @Success 200 {array} schemas.HourlyBucket
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /dashboard/peak-hours [get]
func (dc *DashboardController) GetPeakHours(ctx *gin.Context) {
	date := dc.dateParam(ctx)
	if date == "" {
		return
	}
	top, err := strconv.Atoi(ctx.DefaultQuery("top", "5"))
	if err != nil || top < 1 || top > 24 {
		utils.SendError(ctx, schemas.NewBadRequestError("top must be an integer between 1 and 24", ctx.FullPath()))
		return
	}
	hours, err := dc.Service.PeakHours(ctx.Request.Context(), date, top)
	if err != nil {
		slog.Error("Failed to build peak hours", "date", date, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, hours)
}

// @Summary Agent detail
// @Description Returns one agent's totals and per-day stats over the trailing N days
// @Tags dashboard
// @Produce json
// @Param user_id path int true "User ID (chat platform identifier)"
// @Param days query int false "Trailing window in days (1-90), defaults to 7"
// @Success 200 {object} schemas.AgentDetailResponse
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /agents/{user_id} [get]
func (dc *DashboardController) GetAgentDetail(ctx *gin.Context) {
	externalID, err := strconv.ParseInt(ctx.Param("user_id"), 10, 64)
	if err != nil {
		utils.SendError(ctx, schemas.NewBadRequestError("user_id must be an integer", ctx.FullPath()))
		return
	}
	days := dc.daysParam(ctx, 7, 90)
	if days == 0 {
		return
	}

	detail, err := dc.Service.AgentDetail(ctx.Request.Context(), externalID, days)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			utils.SendError(ctx, schemas.NewNotFoundError("user not found", ctx.FullPath()))
			return
		}
		slog.Error("Failed to build agent detail", "user_id", externalID, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// @Summary Daily report
// @Description Returns the full report document for a date
// @Tags reports
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} schemas.DailyReport
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /reports/daily [get]
func (dc *DashboardController) GetDailyReport(ctx *gin.Context) {
	date := dc.dateParam(ctx)
	if date == "" {
		return
	}
	report, err := dc.Service.DailyReport(ctx.Request.Context(), date)
	if err != nil {
		slog.Error("Failed to build daily report", "date", date, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// @Summary Weekly report
// @Description Returns the seven-day report ending on a date
// @Tags reports
// @Produce json
// @Param end_date query string false "Week end (YYYY-MM-DD), defaults to today"
// @Success 200 {object} schemas.WeeklyReport
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /reports/weekly [get]
func (dc *DashboardController) GetWeeklyReport(ctx *gin.Context) {
	endDate := ctx.DefaultQuery("end_date", dc.Service.Today())
	if _, err := time.Parse("2006-01-02", endDate); err != nil {
		utils.SendError(ctx, schemas.NewBadRequestError("end_date must be YYYY-MM-DD", ctx.FullPath()))
		return
	}
	report, err := dc.Service.WeeklyReport(ctx.Request.Context(), endDate)
	if err != nil {
		slog.Error("Failed to build weekly report", "end_date", endDate, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// @Summary Health check
// @Description Reports database liveness and the size of the event log
// @Tags health
// @Produce json
// @Success 200 {object} schemas.HealthResponse
// @Failure 503 {object} schemas.HealthResponse
// @Router /health [get]
func (dc *DashboardController) GetHealth(ctx *gin.Context) {
	resp, err := dc.Service.Health(ctx.Request.Context())
	if err != nil {
		slog.Error("Health check failed", "error", err.Error())
		ctx.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// @Summary Stored daily reports
// @Description Returns precomputed daily summaries across a date range
// @Tags dashboard
// @Produce json
// @Param start_date query string false "Range start (YYYY-MM-DD), defaults to today"
// @Param end_date query string false "Range end (YYYY-MM-DD), defaults to today"
// @Success 200 {array} models.DailySummaryDetail
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /reports [get]
func (dc *DashboardController) GetReports(ctx *gin.Context) {
	from, to, ok := dc.rangeParams(ctx)
	if !ok {
		return
	}
	reports, err := dc.Service.Reports(ctx.Request.Context(), from, to)
	if err != nil {
		slog.Error("Failed to fetch reports", "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, reports)
}

// @Summary User break history
// @Description Returns one user's log entries across a date range
// @Tags dashboard
// @Produce json
// @Param user_id path int true "User ID (chat platform identifier)"
// @Param start_date query string false "Range start (YYYY-MM-DD), defaults to today"
// @Param end_date query string false "Range end (YYYY-MM-DD), defaults to today"
// @Success 200 {array} models.BreakLogDetail
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /history/{user_id} [get]
func (dc *DashboardController) GetHistory(ctx *gin.Context) {
	externalID, err := strconv.ParseInt(ctx.Param("user_id"), 10, 64)
	if err != nil {
		utils.SendError(ctx, schemas.NewBadRequestError("user_id must be an integer", ctx.FullPath()))
		return
	}
	from, to, ok := dc.rangeParams(ctx)
	if !ok {
		return
	}

	entries, err := dc.Service.History(ctx.Request.Context(), externalID, from, to)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			utils.SendError(ctx, schemas.NewNotFoundError("user not found", ctx.FullPath()))
			return
		}
		slog.Error("Failed to fetch history", "user_id", externalID, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, entries)
}

// @Summary Export logs as CSV
// @Description Streams a date's log entries as a CSV download
// @Tags dashboard
// @Produce text/csv
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {string} string "CSV content"
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /export [get]
func (dc *DashboardController) ExportLogs(ctx *gin.Context) {
	date := dc.dateParam(ctx)
	if date == "" {
		return
	}
	entries, err := dc.Service.LogsForDate(ctx.Request.Context(), date)
	if err != nil {
		slog.Error("Failed to fetch logs for export", "date", date, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}

	ctx.Header("Content-Type", "text/csv")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=break_logs_%s.csv", date))

	w := csv.NewWriter(ctx.Writer)
	w.Write([]string{"user_id", "username", "full_name", "break_type", "action", "timestamp", "duration_minutes", "reason", "source"})
	for i := range entries {
		e := &entries[i]
		duration := ""
		if e.DurationMinutes != nil {
			duration = strconv.FormatFloat(*e.DurationMinutes, 'f', 1, 64)
		}
		reason := ""
		if e.Reason != nil {
			reason = *e.Reason
		}
		w.Write([]string{
			strconv.FormatInt(e.ExternalID, 10),
			e.Username,
			e.FullName,
			e.BreakTypeName,
			string(e.Action),
			e.Timestamp.Format(time.RFC3339),
			duration,
			reason,
			string(e.Source),
		})
	}
	w.Flush()
}

// @Summary List users
// @Description Returns every known user
// @Tags dashboard
// @Produce json
// @Success 200 {array} models.User
// @Failure 500 {object} schemas.ErrorResponse
// @Router /users [get]
func (dc *DashboardController) GetUsers(ctx *gin.Context) {
	users, err := dc.Service.Users(ctx.Request.Context())
	if err != nil {
		slog.Error("Failed to list users", "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, users)
}

// @Summary List break types
// @Description Returns the break type catalogue
// @Tags dashboard
// @Produce json
// @Success 200 {array} models.BreakType
// @Router /break-types [get]
func (dc *DashboardController) GetBreakTypes(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dc.Catalogue.All())
}
