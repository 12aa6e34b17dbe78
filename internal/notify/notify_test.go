package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/incident-report-tracker/internal/model"
)

type staticAdmins struct {
	users []model.User
	err   error
}

func (s staticAdmins) ListAdminsWithPushToken(context.Context) ([]model.User, error) {
	return s.users, s.err
}

func admin(id int64, token string) model.User {
	return model.User{ID: id, Name: "admin", Role: model.RoleAdmin, PushToken: &token}
}

// fakeSender fails for the tokens listed in fail.
type fakeSender struct {
	mu   sync.Mutex
	fail map[string]bool
	sent []string
	data []map[string]any
}

func (f *fakeSender) Send(_ context.Context, token, _, _ string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, token)
	f.data = append(f.data, data)
	if f.fail[token] {
		return errors.New("device not registered")
	}
	return nil
}

func TestNotifyAdminsOutcomesAreIndependent(t *testing.T) {
	sender := &fakeSender{fail: map[string]bool{"b": true}}
	d := NewDispatcher(staticAdmins{users: []model.User{admin(1, "a"), admin(2, "b"), admin(3, "c")}}, sender, 2)

	res, err := d.NotifyAdmins(context.Background(), "t", "b", map[string]any{"report_id": int64(4)})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []string{"device not registered"}, res.Errors)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, sender.sent)
	for _, data := range sender.data {
		assert.Equal(t, int64(4), data["report_id"])
		assert.Contains(t, data, "target_user_id")
	}
}

func TestNotifyAdminsWithoutAdmins(t *testing.T) {
	sender := &fakeSender{}
	res, err := NewDispatcher(staticAdmins{}, sender, 0).NotifyAdmins(context.Background(), "t", "b", nil)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, sender.sent)

	_, err = NewDispatcher(staticAdmins{err: errors.New("db down")}, sender, 0).NotifyAdmins(context.Background(), "t", "b", nil)
	assert.Error(t, err)
}

func TestMessage(t *testing.T) {
	title, body := Message(model.ReportEvent{Type: model.EventReportCreated, ReportID: 3, Area: "plumbing", EmployeeName: "Ana", Description: "leak"})
	assert.Equal(t, "New incident report", title)
	assert.Equal(t, "Report #3 (plumbing) filed for Ana: leak", body)

	_, body = Message(model.ReportEvent{Type: model.EventReportStatusChanged, ReportID: 3, Status: "Resuelto"})
	assert.Equal(t, `Report #3 is now "Resuelto"`, body)
}

func TestExpoClientSend(t *testing.T) {
	var got expoMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch got.To {
		case "ExponentPushToken[bad]":
			_, _ = w.Write([]byte(`{"errors":[{"code":"VALIDATION_ERROR","message":"bad token"}]}`))
		case "ExponentPushToken[gone]":
			_, _ = w.Write([]byte(`{"data":{"status":"error","message":"DeviceNotRegistered"}}`))
		case "ExponentPushToken[500]":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"data":{"status":"ok","id":"x"}}`))
		}
	}))
	defer srv.Close()

	c := NewExpoClient(srv.URL, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Send(ctx, "ExponentPushToken[ok]", "title", "body", map[string]any{"k": "v"}))
	assert.Equal(t, "default", got.Sound)
	assert.Equal(t, "high", got.Priority)
	assert.Equal(t, "title", got.Title)

	assert.EqualError(t, c.Send(ctx, "ExponentPushToken[bad]", "t", "b", nil), "push gateway: bad token")
	assert.EqualError(t, c.Send(ctx, "ExponentPushToken[gone]", "t", "b", nil), "push gateway: DeviceNotRegistered")
	assert.Error(t, c.Send(ctx, "ExponentPushToken[500]", "t", "b", nil))
	assert.Equal(t, ErrInvalidToken, c.Send(ctx, " ", "t", "b", nil))
}

func TestAsyncNotifierDoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	sender := &blockingSender{release: release}
	d := NewDispatcher(staticAdmins{users: []model.User{admin(1, "a")}}, sender, 1)
	n := NewAsyncNotifier(d, time.Second, 1)

	start := time.Now()
	n.Notify(context.Background(), model.ReportEvent{Type: model.EventReportCreated, ReportID: 1})
	n.Notify(context.Background(), model.ReportEvent{Type: model.EventReportCreated, ReportID: 2})
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n.Wait(ctx)
	assert.Equal(t, 1, sender.count())
}

type blockingSender struct {
	release chan struct{}
	mu      sync.Mutex
	n       int
}

func (b *blockingSender) Send(ctx context.Context, _, _, _ string, _ map[string]any) error {
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	b.mu.Lock()
	b.n++
	b.mu.Unlock()
	return nil
}

func (b *blockingSender) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}

func TestInFlightCapsAndDrains(t *testing.T) {
	l := NewInFlight(2)
	release := make(chan struct{})
	var mu sync.Mutex
	done := 0
	work := func() {
		<-release
		mu.Lock()
		done++
		mu.Unlock()
	}

	assert.True(t, l.Go(work))
	assert.True(t, l.Go(work))
	assert.False(t, l.Go(work), "third goroutine must be refused at limit 2")

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	l.Wait(short)
	mu.Lock()
	assert.Equal(t, 0, done, "Wait returns on ctx end without finishing work")
	mu.Unlock()

	close(release)
	ctx, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	l.Wait(ctx)
	require.NoError(t, ctx.Err())
	mu.Lock()
	assert.Equal(t, 2, done)
	mu.Unlock()
	assert.True(t, l.Go(func() {}), "slots are free again after Wait")
}
