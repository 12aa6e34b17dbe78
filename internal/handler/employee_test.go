package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/incident-report-tracker/internal/model"
	"github.com/iliyamo/incident-report-tracker/internal/repository"
	"github.com/iliyamo/incident-report-tracker/internal/service"
)

type stubEmployees struct {
	in  service.EmployeeInput
	err error
}

func (s *stubEmployees) Create(_ context.Context, in service.EmployeeInput) (*model.Employee, error) {
	s.in = in
	if s.err != nil {
		return nil, s.err
	}
	d, _ := model.ParseDate(in.HireDate)
	return &model.Employee{ID: 1, Name: in.Name, Number: in.Number, HireDate: d}, nil
}

func (s *stubEmployees) Get(context.Context, int64) (*model.Employee, error) { return nil, s.err }

func (s *stubEmployees) List(context.Context) ([]model.Employee, error) {
	return []model.Employee{}, s.err
}

func (s *stubEmployees) Update(context.Context, int64, service.EmployeeInput) (*model.Employee, error) {
	return nil, s.err
}

func (s *stubEmployees) Delete(context.Context, int64) error { return s.err }

func employeeServer(svc EmployeeService) *echoServer {
	e := newTestEcho()
	h := NewEmployeeHandler(svc)
	e.GET("/employees", h.List)
	e.POST("/employees", h.Create)
	e.DELETE("/employees/:id", h.Delete)
	return &echoServer{e}
}

func TestCreateEmployee(t *testing.T) {
	svc := &stubEmployees{}
	s := employeeServer(svc)

	rec := s.call(http.MethodPost, "/employees", `{"name":"Ana","number":7,"hire_date":"2024-01-01"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Ana","number":7,"hire_date":"2024-01-01"}`, rec.Body.String())

	rec = s.call(http.MethodPost, "/employees", `{"name":"Ana","number":0,"hire_date":"2024-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.call(http.MethodPost, "/employees", `{"name":"`+strings.Repeat("n", 256)+`","number":7,"hire_date":"2024-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"max"`)
}

func TestDeleteEmployeeWithReports(t *testing.T) {
	s := employeeServer(&stubEmployees{err: repository.ErrEmployeeHasReports})
	rec := s.call(http.MethodDelete, "/employees/1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"employee has reports and cannot be deleted"}`, rec.Body.String())
}

func TestListEmployeesEmptyIsArray(t *testing.T) {
	rec := employeeServer(&stubEmployees{}).call(http.MethodGet, "/employees", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
