// Package notify fans report events out to administrators as push
// notifications.  Delivery is best effort: each push succeeds or fails on
// its own and failures are only logged and counted.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/incident-report-tracker/internal/metrics"
	"github.com/iliyamo/incident-report-tracker/internal/model"
)

// Sender delivers one push message to one device token.
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]any) error
}

// AdminLister returns the admins that have a push token.
type AdminLister interface {
	ListAdminsWithPushToken(ctx context.Context) ([]model.User, error)
}

// Result summarizes one fan-out.
type Result struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

const defaultConcurrency = 8

type Dispatcher struct {
	admins      AdminLister
	sender      Sender
	concurrency int
}

// NewDispatcher returns a Dispatcher sending at most concurrency pushes at
// a time.
func NewDispatcher(admins AdminLister, sender Sender, concurrency int) *Dispatcher {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Dispatcher{admins: admins, sender: sender, concurrency: concurrency}
}

// NotifyAdmins sends title and body to every admin with a push token.  The
// returned error is set only when the admins could not be listed; push
// failures are reported in the Result.
func (d *Dispatcher) NotifyAdmins(ctx context.Context, title, body string, data map[string]any) (Result, error) {
	admins, err := d.admins.ListAdminsWithPushToken(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "list admins")
	}
	if len(admins) == 0 {
		log.Debug("notify: no admins with a push token")
		return Result{}, nil
	}

	var (
		mu  sync.Mutex
		res = Result{Total: len(admins)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	sentAt := time.Now().UTC().Format(time.RFC3339)
	for _, admin := range admins {
		admin := admin
		g.Go(func() error {
			payload := make(map[string]any, len(data)+3)
			for k, v := range data {
				payload[k] = v
			}
			payload["timestamp"] = sentAt
			payload["target_user_id"] = admin.ID
			payload["target_user_name"] = admin.Name

			err := d.sender.Send(gctx, *admin.PushToken, title, body, payload)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, err.Error())
				metrics.PushNotifications.WithLabelValues("failure").Inc()
				log.WithError(err).WithField("user_id", admin.ID).Warn("notify: push failed")
				return nil
			}
			res.Successful++
			metrics.PushNotifications.WithLabelValues("success").Inc()
			return nil
		})
	}
	_ = g.Wait()

	log.WithFields(log.Fields{
		"total":      res.Total,
		"successful": res.Successful,
		"failed":     res.Failed,
	}).Info("notify: admin fan-out finished")
	return res, nil
}

// HandleEvent turns a report event into an admin notification.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev model.ReportEvent) error {
	title, body := Message(ev)
	_, err := d.NotifyAdmins(ctx, title, body, map[string]any{
		"type":      ev.Type,
		"report_id": ev.ReportID,
		"status":    ev.Status,
	})
	return err
}

// Message renders the notification title and body for an event.
func Message(ev model.ReportEvent) (title, body string) {
	switch ev.Type {
	case model.EventReportCreated:
		title = "New incident report"
		body = fmt.Sprintf("Report #%d (%s) filed for %s: %s", ev.ReportID, ev.Area, ev.EmployeeName, ev.Description)
	default:
		title = "Report status changed"
		body = fmt.Sprintf("Report #%d is now %q", ev.ReportID, ev.Status)
	}
	return title, body
}
