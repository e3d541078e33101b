package utils

import (
	"breaktime-service/src/schemas"

	"github.com/bytedance/gopkg/util/logger"
	"github.com/gin-gonic/gin"
)

// SendError writes an RFC 7807 error response and logs it.
func SendError(ctx *gin.Context, errorResp *schemas.ErrorResponse) {
	ctx.JSON(errorResp.Status, errorResp)
	logger.Error("Error: ", errorResp.Detail)
}
