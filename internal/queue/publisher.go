package queue

import (
	"context"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/incident-report-tracker/internal/config"
	"github.com/iliyamo/incident-report-tracker/internal/metrics"
	"github.com/iliyamo/incident-report-tracker/internal/model"
	"github.com/iliyamo/incident-report-tracker/internal/notify"
)

// Publisher puts report events on the report.events queue.  Each publish
// opens its own connection, so a broker outage only costs the events sent
// while it lasts.
type Publisher struct {
	url      string
	timeout  time.Duration
	inflight *notify.InFlight
}

// NewPublisher returns a Publisher for the broker at url.  Each publish is
// bounded by timeout, and at most maxInFlight run in the background.
func NewPublisher(url string, timeout time.Duration, maxInFlight int) *Publisher {
	return &Publisher{url: url, timeout: timeout, inflight: notify.NewInFlight(maxInFlight)}
}

// Notify publishes ev in the background.  Failures are logged and dropped,
// as are events arriving while the in-flight limit is reached.
func (p *Publisher) Notify(_ context.Context, ev model.ReportEvent) {
	started := p.inflight.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.Publish(ctx, ev); err != nil {
			metrics.ReportEvents.WithLabelValues(config.TransportAMQP, "failed").Inc()
			log.WithError(err).WithField("report_id", ev.ReportID).Warn("rabbitmq: publish failed")
			return
		}
		metrics.ReportEvents.WithLabelValues(config.TransportAMQP, "published").Inc()
	})
	if !started {
		metrics.ReportEvents.WithLabelValues(config.TransportAMQP, "dropped").Inc()
		log.WithField("report_id", ev.ReportID).Warn("rabbitmq: too many publishes in flight, dropping event")
	}
}

// Wait blocks until every background publish has finished or ctx ends.
func (p *Publisher) Wait(ctx context.Context) {
	p.inflight.Wait(ctx)
}

// Publish sends ev as a persistent message and returns any broker error.
func (p *Publisher) Publish(ctx context.Context, ev model.ReportEvent) error {
	body, err := encodeEvent(ev)
	if err != nil {
		return err
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.timeout),
	})
	if err != nil {
		return errors.Wrap(err, "dial broker")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", ReportEventsQueue, false, false, pub); err != nil {
		return errors.Wrap(err, "publish")
	}
	return nil
}

// declare makes sure the durable queue exists.
func declare(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(ReportEventsQueue, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare queue")
	}
	return nil
}
