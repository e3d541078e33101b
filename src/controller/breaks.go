package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"breaktime-service/src/models"
	"breaktime-service/src/schemas"
	"breaktime-service/src/service"
	"breaktime-service/src/utils"

	"github.com/gin-gonic/gin"
)

type BreakController struct {
	Service *service.BreakService
}

func NewBreakController(svc *service.BreakService) *BreakController {
	return &BreakController{
		Service: svc,
	}
}

// @Summary Start a break
// @Description Records a clock-out and opens the user's break session
// @Tags breaks
// @Accept json
// @Produce json
// @Param BreakActionRequest body schemas.BreakActionRequest true "Break Start Request"
// @Success 200 {object} schemas.BreakActionResponse
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 409 {object} schemas.ErrorResponse
// @Failure 422 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /breaks/start [post]
func (bc *BreakController) StartBreak(ctx *gin.Context) {
	var req schemas.BreakActionRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		slog.Error("Invalid request body", "error", err.Error())
		utils.SendError(ctx, schemas.NewBadRequestError("Invalid JSON format: "+err.Error(), ctx.FullPath()))
		return
	}

	resp, err := bc.Service.StartBreak(ctx.Request.Context(), &req)
	if err != nil {
		utils.SendError(ctx, translateLifecycleError(err, ctx.FullPath()))
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// @Summary End a break
// @Description Records a clock-back and closes the user's break session
// @Tags breaks
// @Accept json
// @Produce json
// @Param BreakActionRequest body schemas.BreakActionRequest true "Break End Request"
// @Success 200 {object} schemas.BreakActionResponse
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 409 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /breaks/end [post]
func (bc *BreakController) EndBreak(ctx *gin.Context) {
	var req schemas.BreakActionRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		slog.Error("Invalid request body", "error", err.Error())
		utils.SendError(ctx, schemas.NewBadRequestError("Invalid JSON format: "+err.Error(), ctx.FullPath()))
		return
	}

	resp, err := bc.Service.EndBreak(ctx.Request.Context(), &req)
	if err != nil {
		utils.SendError(ctx, translateLifecycleError(err, ctx.FullPath()))
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// translateLifecycleError maps domain errors onto the API error shapes.
func translateLifecycleError(err error, instance string) *schemas.ErrorResponse {
	var alreadyOn *models.AlreadyOnBreakError
	var mismatch *models.TypeMismatchError

	switch {
	case errors.As(err, &alreadyOn):
		return schemas.AlreadyOnBreakConflict(alreadyOn.Error(), instance)
	case errors.As(err, &mismatch):
		return schemas.BreakTypeMismatchConflict(mismatch.Error(), instance)
	case errors.Is(err, models.ErrNoActiveBreak):
		return schemas.NoActiveBreakConflict(err.Error(), instance)
	case errors.Is(err, models.ErrReasonRequired):
		return schemas.ReasonRequiredError(err.Error(), instance)
	case errors.Is(err, models.ErrUnknownBreakType):
		return schemas.NewBadRequestError(err.Error(), instance)
	case errors.Is(err, models.ErrUserNotFound):
		return schemas.NewNotFoundError(err.Error(), instance)
	default:
		slog.Error("Lifecycle operation failed", "error", err.Error())
		return schemas.NewInternalError("internal error", instance)
	}
}
