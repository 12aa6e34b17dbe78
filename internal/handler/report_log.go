package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/incident-report-tracker/internal/model"
	"github.com/iliyamo/incident-report-tracker/internal/service"
)

// ReportLogService exposes the audit trail to the handler.
type ReportLogService interface {
	Get(ctx context.Context, id int64) (*model.ReportLogDetail, error)
	ListAll(ctx context.Context) ([]model.ReportLogDetail, error)
	ListByStatus(ctx context.Context, status string) ([]model.ReportLogDetail, error)
	ListByReport(ctx context.Context, reportID int64) ([]model.ReportLogEntry, error)
	History(ctx context.Context, reportID int64) ([]model.ReportLogDetail, error)
	Append(ctx context.Context, reportID int64, status string) (*model.ReportLogEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
	PurgeReport(ctx context.Context, reportID int64) (int64, error)
}

var _ ReportLogService = (*service.ReportLogService)(nil)

type ReportLogHandler struct {
	svc ReportLogService
}

func NewReportLogHandler(svc ReportLogService) *ReportLogHandler {
	return &ReportLogHandler{svc: svc}
}

type appendLogReq struct {
	ReportID int64  `json:"report_id" validate:"required,gt=0"`
	Status   string `json:"status" validate:"required,max=64"`
}

// List handles GET /reports-log, newest first.
func (h *ReportLogHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.svc.ListAll(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportLogHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	entry, err := h.svc.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

// ListByReport handles GET /reports-log/report/:reportId, oldest first.
func (h *ReportLogHandler) ListByReport(c echo.Context) error {
	id, err := pathID(c, "reportId")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.svc.ListByReport(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ListByStatus handles GET /reports-log/status/:status, newest first.
func (h *ReportLogHandler) ListByStatus(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.svc.ListByStatus(ctx, c.Param("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// History handles GET /reports-log/history/:reportId; 404 when empty.
func (h *ReportLogHandler) History(c echo.Context) error {
	id, err := pathID(c, "reportId")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.svc.History(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Append handles POST /reports-log.  The report's status moves to the
// recorded value.
func (h *ReportLogHandler) Append(c echo.Context) error {
	var req appendLogReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	entry, err := h.svc.Append(ctx, req.ReportID, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// Delete handles DELETE /reports-log/:id.
func (h *ReportLogHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.svc.DeleteEntry(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "log entry deleted"})
}

// Purge handles DELETE /reports-log/report/:reportId.
func (h *ReportLogHandler) Purge(c echo.Context) error {
	id, err := pathID(c, "reportId")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	removed, err := h.svc.PurgeReport(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": removed})
}
