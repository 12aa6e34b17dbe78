package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidToken is returned for an empty device token.
var ErrInvalidToken = errors.New("invalid push token")

// ExpoClient posts messages to an Expo-compatible push API.
type ExpoClient struct {
	url  string
	http *http.Client
}

// NewExpoClient returns a client whose requests are bounded by timeout.
func NewExpoClient(url string, timeout time.Duration) *ExpoClient {
	return &ExpoClient{url: url, http: &http.Client{Timeout: timeout}}
}

type expoMessage struct {
	To       string         `json:"to"`
	Sound    string         `json:"sound"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Data     map[string]any `json:"data,omitempty"`
	Priority string         `json:"priority"`
}

type expoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type expoResponse struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
	Errors []expoError `json:"errors"`
}

// Send delivers one message.  A non-2xx status, a non-empty errors array or
// a ticket with status "error" counts as failure.
func (c *ExpoClient) Send(ctx context.Context, token, title, body string, data map[string]any) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidToken
	}
	payload, err := json.Marshal(expoMessage{
		To:       token,
		Sound:    "default",
		Title:    title,
		Body:     body,
		Data:     data,
		Priority: "high",
	})
	if err != nil {
		return errors.Wrap(err, "encode push message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build push request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "push gateway")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read push response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push gateway: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out expoResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return errors.Wrap(err, "decode push response")
	}
	if len(out.Errors) > 0 {
		return fmt.Errorf("push gateway: %s", out.Errors[0].Message)
	}
	if out.Data.Status == "error" {
		return fmt.Errorf("push gateway: %s", out.Data.Message)
	}
	return nil
}
