package notify

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/incident-report-tracker/internal/config"
	"github.com/iliyamo/incident-report-tracker/internal/metrics"
	"github.com/iliyamo/incident-report-tracker/internal/model"
)

// AsyncNotifier runs each fan-out on its own goroutine, detached from the
// request that triggered it.
type AsyncNotifier struct {
	dispatcher *Dispatcher
	timeout    time.Duration
	inflight   *InFlight
}

// NewAsyncNotifier bounds each fan-out by timeout and runs at most
// maxInFlight of them at once; events beyond that are dropped and logged.
func NewAsyncNotifier(d *Dispatcher, timeout time.Duration, maxInFlight int) *AsyncNotifier {
	return &AsyncNotifier{
		dispatcher: d,
		timeout:    timeout,
		inflight:   NewInFlight(maxInFlight),
	}
}

// Notify implements the report service's Notifier.  It never blocks.
func (n *AsyncNotifier) Notify(_ context.Context, ev model.ReportEvent) {
	started := n.inflight.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.dispatcher.HandleEvent(ctx, ev); err != nil {
			log.WithError(err).WithField("report_id", ev.ReportID).Error("notify: fan-out failed")
		}
	})
	if !started {
		metrics.ReportEvents.WithLabelValues(config.TransportDirect, "dropped").Inc()
		log.WithField("report_id", ev.ReportID).Warn("notify: too many notifications in flight, dropping event")
		return
	}
	metrics.ReportEvents.WithLabelValues(config.TransportDirect, "accepted").Inc()
}

// Wait blocks until every in-flight fan-out has finished or ctx ends.
func (n *AsyncNotifier) Wait(ctx context.Context) {
	n.inflight.Wait(ctx)
}
