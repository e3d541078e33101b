package router

import (
	"net/http"

	"breaktime-service/logger"
	"breaktime-service/src/controller"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Breaks    *controller.BreakController
	Dashboard *controller.DashboardController
	Alerts    *controller.AlertController
	Admin     *controller.AdminController
}

// NewRouter creates the gin engine and registers all routes.
func NewRouter(c Controllers) *gin.Engine {
	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/health", c.Dashboard.GetHealth)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		api.POST("/breaks/start", c.Breaks.StartBreak)
		api.POST("/breaks/end", c.Breaks.EndBreak)
		api.GET("/breaks/active", c.Dashboard.GetActiveBreaks)
		api.GET("/breaks/overdue", c.Dashboard.GetOverdueBreaks)

		api.GET("/dashboard", c.Dashboard.GetDashboard)
		api.GET("/dashboard/realtime", c.Dashboard.GetRealtime)
		api.GET("/dashboard/distribution", c.Dashboard.GetDistribution)
		api.GET("/dashboard/agents", c.Dashboard.GetAgents)
		api.GET("/dashboard/hourly", c.Dashboard.GetHourly)
		api.GET("/dashboard/compliance", c.Dashboard.GetCompliance)
		api.GET("/dashboard/compliance/trend", c.Dashboard.GetComplianceTrend)
		api.GET("/dashboard/compliance/summary", c.Dashboard.GetComplianceSummary)
		api.GET("/dashboard/peak-hours", c.Dashboard.GetPeakHours)

		api.GET("/reports", c.Dashboard.GetReports)
		api.GET("/reports/daily", c.Dashboard.GetDailyReport)
		api.GET("/reports/weekly", c.Dashboard.GetWeeklyReport)
		api.GET("/agents/:user_id", c.Dashboard.GetAgentDetail)
		api.GET("/history/:user_id", c.Dashboard.GetHistory)
		api.GET("/export", c.Dashboard.ExportLogs)
		api.GET("/users", c.Dashboard.GetUsers)
		api.GET("/break-types", c.Dashboard.GetBreakTypes)

		api.GET("/alerts", c.Alerts.GetRecentAlerts)
		api.GET("/alerts/history", c.Alerts.GetAlertHistory)
		api.GET("/alerts/missing", c.Alerts.GetMissingClockBacks)
		api.GET("/alerts/summary", c.Alerts.GetAlertSummary)

		api.POST("/summaries/recompute", c.Admin.RecomputeSummaries)
		api.POST("/import/sweep", c.Admin.TriggerSweep)
	}

	if logger.Logger != nil {
		logger.Logger.Info("API routes registered")
	}

	return router
}

// corsMiddleware allows the dashboard frontend to call from any origin.
func corsMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}
