package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"breaktime-service/src/models"
	"breaktime-service/src/schemas"
	"breaktime-service/src/service"
	"breaktime-service/src/utils"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Summaries *service.SummaryService
	Importer  *service.Importer
}

func NewAdminController(summaries *service.SummaryService, importer *service.Importer) *AdminController {
	return &AdminController{
		Summaries: summaries,
		Importer:  importer,
	}
}

// @Summary Recompute daily summaries
// @Description Rebuilds the stored rollups for a date from the log
// @Tags admin
// @Accept json
// @Produce json
// @Param RecomputeSummariesRequest body schemas.RecomputeSummariesRequest true "Recompute Request"
// @Success 200 {object} schemas.RecomputeSummariesResponse
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /summaries/recompute [post]
func (ac *AdminController) RecomputeSummaries(ctx *gin.Context) {
	var req schemas.RecomputeSummariesRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		slog.Error("Invalid request body", "error", err.Error())
		utils.SendError(ctx, schemas.NewBadRequestError("Invalid JSON format: "+err.Error(), ctx.FullPath()))
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		utils.SendError(ctx, schemas.NewBadRequestError("date must be YYYY-MM-DD", ctx.FullPath()))
		return
	}

	recomputed, err := ac.Summaries.Recompute(ctx.Request.Context(), req.Date, req.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			utils.SendError(ctx, schemas.NewNotFoundError("user not found", ctx.FullPath()))
			return
		}
		slog.Error("Failed to recompute summaries", "date", req.Date, "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}

	ctx.JSON(http.StatusOK, schemas.RecomputeSummariesResponse{
		Message:    "Daily summaries recomputed successfully",
		Date:       req.Date,
		Recomputed: recomputed,
	})
}

// @Summary Trigger a reconciliation sweep
// @Description Runs one snapshot import cycle immediately
// @Tags admin
// @Produce json
// @Success 200 {object} service.ImportStats
// @Failure 500 {object} schemas.ErrorResponse
// @Router /import/sweep [post]
func (ac *AdminController) TriggerSweep(ctx *gin.Context) {
	stats, err := ac.Importer.SweepOnce(ctx.Request.Context())
	if err != nil {
		slog.Error("Manual reconciliation sweep failed", "error", err.Error())
		utils.SendError(ctx, schemas.NewInternalError("internal error", ctx.FullPath()))
		return
	}
	ctx.JSON(http.StatusOK, stats)
}
