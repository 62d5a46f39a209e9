package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/errgroup"

	"nexusq/internal/constants"
	"nexusq/internal/logger"
	"nexusq/pkg/metrics"
)

type TargetResult struct {
	URL        string
	StatusCode int
	Err        error
}

func (r TargetResult) OK() bool {
	return r.Err == nil && r.StatusCode >= constants.HTTPStatusOKMin && r.StatusCode < constants.HTTPStatusOKMax
}

// Fanout posts a payload to every configured webhook in parallel.
type Fanout struct {
	urls   []string
	client *http.Client
	logger logger.Logger
}

func NewFanout(urls []string, client *http.Client, log logger.Logger) *Fanout {
	if len(urls) == 0 {
		urls = constants.DefaultIntakeWebhookURLs
	}
	if client == nil {
		client = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	}
	return &Fanout{urls: urls, client: client, logger: log}
}

// Send waits for every target and returns one result per url, in url order.
func (f *Fanout) Send(ctx context.Context, payload Payload) []TargetResult {
	body, err := json.Marshal(payload)
	results := make([]TargetResult, len(f.urls))
	if err != nil {
		for i, u := range f.urls {
			results[i] = TargetResult{URL: u, Err: fmt.Errorf("failed to marshal payload: %w", err)}
		}
		return results
	}

	var g errgroup.Group
	for i, u := range f.urls {
		i, u := i, u
		g.Go(func() error {
			results[i] = f.post(ctx, u, body)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		status := "success"
		if !r.OK() {
			status = "error"
			f.logger.WarnwCtx(ctx, "Intake webhook did not acknowledge",
				"url", r.URL,
				"status_code", r.StatusCode,
				"error", r.Err,
			)
		}
		metrics.IntakeTargetRequestsTotal.WithLabelValues(status).Inc()
	}
	return results
}

func (f *Fanout) post(ctx context.Context, url string, body []byte) TargetResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return TargetResult{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return TargetResult{URL: url, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return TargetResult{URL: url, StatusCode: resp.StatusCode}
}
