// Package queue carries report events over RabbitMQ: Publisher puts them
// on the report.events queue and Consumer hands them to a notifier.
package queue

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/iliyamo/incident-report-tracker/internal/model"
)

// ReportEventsQueue is the durable queue report events travel on.
const ReportEventsQueue = "report.events"

// encodeEvent serializes ev as the JSON message body.
func encodeEvent(ev model.ReportEvent) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, errors.Wrap(err, "marshal report event")
	}
	return body, nil
}

// decodeEvent parses a message body.  Events without a type or report id
// are rejected.
func decodeEvent(body []byte) (model.ReportEvent, error) {
	var ev model.ReportEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, errors.Wrap(err, "unmarshal report event")
	}
	if ev.Type == "" || ev.ReportID <= 0 {
		return ev, errors.Errorf("malformed report event: type=%q report_id=%d", ev.Type, ev.ReportID)
	}
	return ev, nil
}
