package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/incident-report-tracker/internal/model"
	"github.com/iliyamo/incident-report-tracker/internal/service"
)

// EmployeeService is the employee management the handler drives.
type EmployeeService interface {
	Create(ctx context.Context, in service.EmployeeInput) (*model.Employee, error)
	Get(ctx context.Context, id int64) (*model.Employee, error)
	List(ctx context.Context) ([]model.Employee, error)
	Update(ctx context.Context, id int64, in service.EmployeeInput) (*model.Employee, error)
	Delete(ctx context.Context, id int64) error
}

var _ EmployeeService = (*service.EmployeeService)(nil)

type EmployeeHandler struct {
	svc EmployeeService
}

func NewEmployeeHandler(svc EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

type employeeReq struct {
	Name     string `json:"name" validate:"required,max=255"`
	Number   int64  `json:"number" validate:"required,gt=0"`
	HireDate string `json:"hire_date" validate:"required"`
}

func (r employeeReq) input() service.EmployeeInput {
	return service.EmployeeInput{Name: r.Name, Number: r.Number, HireDate: r.HireDate}
}

// List handles GET /employees.
func (h *EmployeeHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.svc.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /employees/:id.
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	e, err := h.svc.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// Create handles POST /employees.
func (h *EmployeeHandler) Create(c echo.Context) error {
	var req employeeReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	e, err := h.svc.Create(ctx, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

// Update handles PUT /employees/:id.
func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req employeeReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	e, err := h.svc.Update(ctx, id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// Delete handles DELETE /employees/:id.  An employee with reports is 409.
func (h *EmployeeHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.svc.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "employee deleted"})
}
