package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"nexusq/internal/constants"
	"nexusq/internal/events"
	"nexusq/pkg/circuitbreaker"
)

type Notifier interface {
	Notify(ctx context.Context, ev events.Event) error
}

// StatusError is returned when the webhook answers outside the 2xx range.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("automation webhook returned status %d", e.StatusCode)
}

// WebhookNotifier posts the event row as JSON to the automation webhook.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	breaker *circuitbreaker.Wrapper
}

// NewWebhookNotifier returns a notifier for url. An empty url makes Notify a no-op;
// a nil breaker disables circuit breaking.
func NewWebhookNotifier(url string, client *http.Client, breaker *circuitbreaker.Wrapper) *WebhookNotifier {
	if client == nil {
		client = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	}
	return &WebhookNotifier{
		url:     url,
		client:  client,
		breaker: breaker,
	}
}

func (n *WebhookNotifier) Enabled() bool {
	return n.url != ""
}

func (n *WebhookNotifier) Notify(ctx context.Context, ev events.Event) error {
	if !n.Enabled() {
		return nil
	}

	_, err := circuitbreaker.Do(ctx, n.breaker, func() (struct{}, error) {
		return struct{}{}, n.post(ctx, ev)
	})
	return err
}

func (n *WebhookNotifier) post(ctx context.Context, ev events.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call automation webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		return &StatusError{StatusCode: resp.StatusCode}
	}

	return nil
}
