package queue

import (
	"context"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/incident-report-tracker/internal/model"
)

// EventHandler processes one report event.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev model.ReportEvent) error
}

// Consumer reads report.events and hands every event to a handler.
type Consumer struct {
	url        string
	handler    EventHandler
	timeout    time.Duration
	maxBackoff time.Duration
}

// NewConsumer returns a Consumer; each event is handled under timeout.
func NewConsumer(url string, handler EventHandler, timeout time.Duration) *Consumer {
	return &Consumer{url: url, handler: handler, timeout: timeout, maxBackoff: 30 * time.Second}
}

// Run connects, consumes and reconnects with exponential backoff until ctx
// is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			log.WithError(err).Warnf("report-consumer: dial failed, retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < c.maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("report-consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.WithError(err).Warn("report-consumer: set QoS failed")
	}
	if err := declare(ch); err != nil {
		return err
	}
	msgs, err := ch.Consume(ReportEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "consume")
	}
	log.WithField("queue", ReportEventsQueue).Info("report-consumer: consuming")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				log.WithError(err).Warn("report-consumer: handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// handle decodes and dispatches one message body.
func (c *Consumer) handle(ctx context.Context, body []byte) error {
	ev, err := decodeEvent(body)
	if err != nil {
		return err
	}
	hctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.handler.HandleEvent(hctx, ev)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
