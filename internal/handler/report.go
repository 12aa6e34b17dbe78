package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/incident-report-tracker/internal/model"
	"github.com/iliyamo/incident-report-tracker/internal/service"
)

// ReportService is the report lifecycle the handler drives.
type ReportService interface {
	Create(ctx context.Context, in service.CreateReportInput) (*model.ReportDetail, error)
	Get(ctx context.Context, id int64) (*model.ReportDetail, error)
	List(ctx context.Context) ([]model.ReportDetail, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]model.ReportDetail, error)
	ListByStatus(ctx context.Context, status string) ([]model.ReportDetail, error)
	Update(ctx context.Context, id int64, in service.UpdateReportInput) (*model.ReportDetail, error)
	PatchStatus(ctx context.Context, id int64, status string) (*model.ReportDetail, error)
	Delete(ctx context.Context, id int64) error
}

var _ ReportService = (*service.ReportService)(nil)

type ReportHandler struct {
	svc ReportService
}

func NewReportHandler(svc ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

type createReportReq struct {
	EmployeeID  int64  `json:"employee_id" validate:"required,gt=0"`
	Description string `json:"description" validate:"required"`
	Area        string `json:"area" validate:"required,max=255"`
	Status      string `json:"status" validate:"max=64"`
}

type updateReportReq struct {
	EmployeeID  int64  `json:"employee_id" validate:"required,gt=0"`
	Description string `json:"description" validate:"required"`
	Area        string `json:"area" validate:"required,max=255"`
	Status      string `json:"status" validate:"required,max=64"`
}

type statusReq struct {
	Status string `json:"status" validate:"required,max=64"`
}

func (h *ReportHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.svc.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	rep, err := h.svc.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

// ListByEmployee handles GET /reports/employee/:employeeId.
func (h *ReportHandler) ListByEmployee(c echo.Context) error {
	id, err := pathID(c, "employeeId")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.svc.ListByEmployee(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ListByStatus handles GET /reports/status/:status.
func (h *ReportHandler) ListByStatus(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.svc.ListByStatus(ctx, c.Param("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /reports.  The status defaults to "Sin Revision".
func (h *ReportHandler) Create(c echo.Context) error {
	var req createReportReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	rep, err := h.svc.Create(ctx, service.CreateReportInput{
		EmployeeID:  req.EmployeeID,
		Description: req.Description,
		Area:        req.Area,
		Status:      req.Status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, rep)
}

// Update handles PUT /reports/:id; every field is required.
func (h *ReportHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req updateReportReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	rep, err := h.svc.Update(ctx, id, service.UpdateReportInput{
		EmployeeID:  req.EmployeeID,
		Description: req.Description,
		Area:        req.Area,
		Status:      req.Status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

// PatchStatus handles PATCH /reports/:id/status.
func (h *ReportHandler) PatchStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req statusReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	rep, err := h.svc.PatchStatus(ctx, id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

// Delete handles DELETE /reports/:id; the report's log goes with it.
func (h *ReportHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.svc.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "report deleted"})
}
