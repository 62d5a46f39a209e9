package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"nexusq/internal/constants"
	"nexusq/pkg/circuitbreaker"
	pkgerrors "nexusq/pkg/errors"
)

type WorkflowClient interface {
	UpdateStage(ctx context.Context, update StageUpdate) error
}

type workflowResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// HTTPWorkflowClient posts stage changes to the external pipeline update workflow.
type HTTPWorkflowClient struct {
	url     string
	client  *http.Client
	breaker *circuitbreaker.Wrapper
}

func NewHTTPWorkflowClient(url string, client *http.Client, breaker *circuitbreaker.Wrapper) *HTTPWorkflowClient {
	if url == "" {
		url = constants.DefaultPipelineUpdateURL
	}
	if client == nil {
		client = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	}
	return &HTTPWorkflowClient{
		url:     url,
		client:  client,
		breaker: breaker,
	}
}

// UpdateStage succeeds only on a 2xx answer whose body carries ok=true. Failures are
// returned as ErrBadGateway with the workflow's own error text when it sent one.
func (c *HTTPWorkflowClient) UpdateStage(ctx context.Context, update StageUpdate) error {
	_, err := circuitbreaker.Do(ctx, c.breaker, func() (struct{}, error) {
		return struct{}{}, c.post(ctx, update)
	})
	if err != nil && !pkgerrors.IsBadGateway(err) {
		return pkgerrors.ErrBadGateway.WithMessage("Workflow update failed").WithCause(err)
	}
	return err
}

func (c *HTTPWorkflowClient) post(ctx context.Context, update StageUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal stage update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call pipeline workflow: %w", err)
	}
	defer resp.Body.Close()

	var result workflowResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &result)

	ok2xx := resp.StatusCode >= constants.HTTPStatusOKMin && resp.StatusCode < constants.HTTPStatusOKMax
	if ok2xx && result.OK {
		return nil
	}

	msg := result.Error
	if msg == "" {
		msg = fmt.Sprintf("Workflow update failed (%d)", resp.StatusCode)
	}
	return pkgerrors.ErrBadGateway.WithMessage(msg).WithDetail("status", resp.StatusCode)
}
