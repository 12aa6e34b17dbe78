package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/incident-report-tracker/internal/handler"
	"github.com/iliyamo/incident-report-tracker/internal/middleware"
	"github.com/iliyamo/incident-report-tracker/internal/model"
)

// RegisterEmployees registers the employee CRUD routes.
func RegisterEmployees(e *echo.Echo, h *handler.EmployeeHandler) {
	g := e.Group("/employees")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// RegisterReports registers the report lifecycle routes.
func RegisterReports(e *echo.Echo, h *handler.ReportHandler) {
	g := e.Group("/reports")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/employee/:employeeId", h.ListByEmployee)
	g.GET("/status/:status", h.ListByStatus)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id/status", h.PatchStatus)
	g.DELETE("/:id", h.Delete)
}

// RegisterReportLog registers the audit trail routes.  Purging entries is
// reserved for admins.
func RegisterReportLog(e *echo.Echo, h *handler.ReportLogHandler, v middleware.TokenVerifier) {
	g := e.Group("/reports-log")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/report/:reportId", h.ListByReport)
	g.GET("/status/:status", h.ListByStatus)
	g.GET("/history/:reportId", h.History)
	g.POST("", h.Append)

	jwt, admin := middleware.JWTAuth(v), middleware.RequireRole(model.RoleAdmin)
	g.DELETE("/:id", h.Delete, jwt, admin)
	g.DELETE("/report/:reportId", h.Purge, jwt, admin)
}
