package controller

import (
	"log/slog"
	"net/http"
	"time"

	"breaktime-service/src/schemas"
	"breaktime-service/src/service"
	"breaktime-service/src/utils"

	"github.com/gin-gonic/gin"
)

const alertHistoryLimit = 500

type AlertController struct {
	Evaluator *service.AlertEvaluator
	Service   *service.DashboardService
}

func NewAlertController(evaluator *service.AlertEvaluator, svc *service.DashboardService) *AlertController {
	return &AlertController{
		Evaluator: evaluator,
		Service:   svc,
	}
}

// @Summary Recent alerts
// @Description Returns the most recently raised compliance alerts, newest first
// @Tags alerts
// @Produce json
// @Success 200 {array} models.ComplianceAlert
// @Router /alerts [get]
func (ac *AlertController) GetRecentAlerts(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, ac.Evaluator.Recent())
}

// @Summary Alert history
// @Description Returns audited alerts raised on a date
// @Tags alerts
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} models.ComplianceAlert
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /alerts/history [get]
func (ac *AlertController) GetAlertHistory(ctx *gin.Context) {
	date := ctx.DefaultQuery("date", ac.Service.Today())
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.SendError(ctx, schemas.NewBadRequestError("date must be YYYY-MM-DD", ctx.FullPath()))
		return
	}

	alerts, err := ac.Service.AlertHistory(ctx.Request.Context(), date, alertHistoryLimit)
	if err != nil {
		slog.Error("Failed to fetch alert history", "date", date, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, alerts)
}

// @Summary Missing clock-backs
// @Description Returns per-user, per-type counts of clock-outs with no clock-back for a date
// @Tags alerts
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} schemas.MissingClockBack
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /alerts/missing [get]
func (ac *AlertController) GetMissingClockBacks(ctx *gin.Context) {
	date := ctx.DefaultQuery("date", ac.Service.Today())
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.SendError(ctx, schemas.NewBadRequestError("date must be YYYY-MM-DD", ctx.FullPath()))
		return
	}

	missing, err := ac.Service.MissingClockBacks(ctx.Request.Context(), date)
	if err != nil {
		slog.Error("Failed to compute missing clock-backs", "date", date, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	if missing == nil {
		missing = []schemas.MissingClockBack{}
	}
	ctx.JSON(http.StatusOK, missing)
}

// @Summary Alert summary
// @Description Returns the live overdue counts plus the day's missing clock-backs
// @Tags alerts
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} schemas.AlertSummaryResponse
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /alerts/summary [get]
func (ac *AlertController) GetAlertSummary(ctx *gin.Context) {
	date := ctx.DefaultQuery("date", ac.Service.Today())
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.SendError(ctx, schemas.NewBadRequestError("date must be YYYY-MM-DD", ctx.FullPath()))
		return
	}

	overdue, err := ac.Evaluator.CurrentOverdue(ctx.Request.Context())
	if err != nil {
		slog.Error("Failed to evaluate overdue sessions", "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	missing, err := ac.Service.MissingClockBacks(ctx.Request.Context(), date)
	if err != nil {
		slog.Error("Failed to compute missing clock-backs", "date", date, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}

	ctx.JSON(http.StatusOK, service.BuildAlertSummary(date, time.Now(), overdue, missing))
}
