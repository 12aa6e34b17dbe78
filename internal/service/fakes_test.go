package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/incident-report-tracker/internal/model"
	"github.com/iliyamo/incident-report-tracker/internal/repository"
	"github.com/iliyamo/incident-report-tracker/internal/utils"
)

// memStore keeps employees, reports and the status log in memory with the
// same all-or-nothing semantics as the SQL repositories.  failLogAppend
// makes the next log insert fail, as a dropped connection would.
type memStore struct {
	mu sync.Mutex

	employees map[int64]model.Employee
	reports   map[int64]model.Report
	logs      []model.ReportLogEntry

	nextEmployee, nextReport, nextLog int64
	clock                             time.Time

	failLogAppend bool
}

func newMemStore() *memStore {
	return &memStore{
		employees: map[int64]model.Employee{},
		reports:   map[int64]model.Report{},
		clock:     time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// appendLog validates everything first so a failure leaves no trace.
func (m *memStore) appendLog(reportID int64, status string) error {
	if m.failLogAppend {
		m.failLogAppend = false
		return &repository.StorageError{Op: "append report log", Err: context.DeadlineExceeded}
	}
	m.nextLog++
	m.logs = append(m.logs, model.ReportLogEntry{ID: m.nextLog, ReportID: reportID, Status: status, CreatedAt: m.tick()})
	return nil
}

// employees

func (m *memStore) Exists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.employees[id]
	return ok, nil
}

func (m *memStore) Create(_ context.Context, e *model.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.employees {
		if other.Number == e.Number {
			return repository.ErrEmployeeNumberExists
		}
	}
	m.nextEmployee++
	e.ID = m.nextEmployee
	m.employees[e.ID] = *e
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, repository.ErrEmployeeNotFound
	}
	return &e, nil
}

func (m *memStore) List(_ context.Context) ([]model.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Employee{}
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Update(_ context.Context, e *model.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[e.ID]; !ok {
		return repository.ErrEmployeeNotFound
	}
	m.employees[e.ID] = *e
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return repository.ErrEmployeeNotFound
	}
	for _, r := range m.reports {
		if r.EmployeeID == id {
			return repository.ErrEmployeeHasReports
		}
	}
	delete(m.employees, id)
	return nil
}

// reportStore adapts memStore to ReportStore; its method set overlaps with
// the employee one.
type reportStore struct{ *memStore }

func (s reportStore) Create(_ context.Context, rep *model.Report) error {
	m := s.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[rep.EmployeeID]; !ok {
		return repository.ErrEmployeeNotFound
	}
	id := m.nextReport + 1
	if err := m.appendLog(id, rep.Status); err != nil {
		return err
	}
	m.nextReport = id
	rep.ID = id
	rep.CreatedAt = m.clock
	m.reports[id] = *rep
	return nil
}

func (s reportStore) RecordStatusChange(_ context.Context, id int64, status string) error {
	m := s.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return repository.ErrReportNotFound
	}
	if err := m.appendLog(id, status); err != nil {
		return err
	}
	r.Status = status
	m.reports[id] = r
	return nil
}

func (s reportStore) Update(_ context.Context, rep *model.Report) (bool, error) {
	m := s.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.reports[rep.ID]
	if !ok {
		return false, repository.ErrReportNotFound
	}
	changed := cur.Status != rep.Status
	if changed {
		if err := m.appendLog(rep.ID, rep.Status); err != nil {
			return false, err
		}
	}
	rep.CreatedAt = cur.CreatedAt
	m.reports[rep.ID] = *rep
	return changed, nil
}

func (s reportStore) GetByID(_ context.Context, id int64) (*model.ReportDetail, error) {
	m := s.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, repository.ErrReportNotFound
	}
	return &model.ReportDetail{Report: r, EmployeeName: m.employees[r.EmployeeID].Name}, nil
}

func (s reportStore) filter(keep func(model.Report) bool) []model.ReportDetail {
	m := s.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ReportDetail{}
	for _, r := range m.reports {
		if keep(r) {
			out = append(out, model.ReportDetail{Report: r, EmployeeName: m.employees[r.EmployeeID].Name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s reportStore) List(context.Context) ([]model.ReportDetail, error) {
	return s.filter(func(model.Report) bool { return true }), nil
}

func (s reportStore) ListByEmployee(_ context.Context, id int64) ([]model.ReportDetail, error) {
	return s.filter(func(r model.Report) bool { return r.EmployeeID == id }), nil
}

func (s reportStore) ListByStatus(_ context.Context, status string) ([]model.ReportDetail, error) {
	return s.filter(func(r model.Report) bool { return r.Status == status }), nil
}

func (s reportStore) Delete(_ context.Context, id int64) error {
	m := s.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[id]; !ok {
		return repository.ErrReportNotFound
	}
	kept := m.logs[:0]
	for _, e := range m.logs {
		if e.ReportID != id {
			kept = append(kept, e)
		}
	}
	m.logs = kept
	delete(m.reports, id)
	return nil
}

// logStore adapts memStore to ReportLogStore.
type logStore struct{ *memStore }

func (s logStore) detail(e model.ReportLogEntry) model.ReportLogDetail {
	r := s.reports[e.ReportID]
	return model.ReportLogDetail{ReportLogEntry: e, ReportDescription: r.Description, EmployeeName: s.employees[r.EmployeeID].Name}
}

func (s logStore) GetByID(_ context.Context, id int64) (*model.ReportLogDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.logs {
		if e.ID == id {
			d := s.detail(e)
			return &d, nil
		}
	}
	return nil, repository.ErrLogEntryNotFound
}

func (s logStore) ListAll(context.Context) ([]model.ReportLogDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.ReportLogDetail{}
	for i := len(s.logs) - 1; i >= 0; i-- {
		out = append(out, s.detail(s.logs[i]))
	}
	return out, nil
}

func (s logStore) ListByStatus(_ context.Context, status string) ([]model.ReportLogDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.ReportLogDetail{}
	for i := len(s.logs) - 1; i >= 0; i-- {
		if s.logs[i].Status == status {
			out = append(out, s.detail(s.logs[i]))
		}
	}
	return out, nil
}

func (s logStore) History(_ context.Context, reportID int64) ([]model.ReportLogDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.ReportLogDetail{}
	for _, e := range s.logs {
		if e.ReportID == reportID {
			out = append(out, s.detail(e))
		}
	}
	if len(out) == 0 {
		return nil, repository.ErrHistoryNotFound
	}
	return out, nil
}

func (s logStore) ListByReport(_ context.Context, reportID int64) ([]model.ReportLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.ReportLogEntry{}
	for _, e := range s.logs {
		if e.ReportID == reportID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s logStore) latest(reportID int64) int64 {
	var id int64
	for _, e := range s.logs {
		if e.ReportID == reportID {
			id = e.ID
		}
	}
	return id
}

func (s logStore) DeleteEntry(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.logs {
		if e.ID != id {
			continue
		}
		if s.latest(e.ReportID) == id {
			return repository.ErrLatestLogEntry
		}
		s.logs = append(s.logs[:i], s.logs[i+1:]...)
		return nil
	}
	return repository.ErrLogEntryNotFound
}

func (s logStore) PurgeReport(_ context.Context, reportID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[reportID]; !ok {
		return 0, repository.ErrReportNotFound
	}
	latest := s.latest(reportID)
	var removed int64
	kept := s.logs[:0]
	for _, e := range s.logs {
		if e.ReportID == reportID && e.ID != latest {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.logs = kept
	return removed, nil
}

// recordingNotifier remembers every event it is given.
type recordingNotifier struct {
	mu     sync.Mutex
	events []model.ReportEvent
}

func (n *recordingNotifier) Notify(_ context.Context, ev model.ReportEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) Events() []model.ReportEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.ReportEvent(nil), n.events...)
}

// memUsers is an in-memory UserStore.
type memUsers struct {
	mu        sync.Mutex
	byID      map[int64]model.User
	next      int64
	failToken bool
}

func newMemUsers() *memUsers { return &memUsers{byID: map[int64]model.User{}} }

func (m *memUsers) Create(_ context.Context, u *model.User, password string, cost int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = repository.NormalizeEmail(u.Email)
	for _, other := range m.byID {
		if other.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	m.next++
	u.ID = m.next
	u.PasswordHash = hash
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = repository.NormalizeEmail(email)
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUsers) UpdatePushToken(_ context.Context, id int64, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failToken {
		return &repository.StorageError{Op: "update push token", Err: context.DeadlineExceeded}
	}
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PushToken = token
	m.byID[id] = u
	return nil
}

func (m *memUsers) ListAdminsWithPushToken(context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.User{}
	for _, u := range m.byID {
		if u.Role == model.RoleAdmin && u.PushToken != nil && *u.PushToken != "" {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
