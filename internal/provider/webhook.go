package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// webhookRequest is the body posted to the relay.
type webhookRequest struct {
	UserID string   `json:"userId"`
	Tokens []string `json:"tokens"`
	notificationPayload
}

// webhookResponse is the relay's reply. Counts are optional; when absent
// every token is treated as delivered.
type webhookResponse struct {
	MessageID    string `json:"messageId"`
	SuccessCount *int   `json:"successCount,omitempty"`
	FailureCount *int   `json:"failureCount,omitempty"`
}

// WebhookProvider delivers by POSTing the multicast message to a relay.
// The base URL is injected from config so tests can point to a local mock.
type WebhookProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewWebhookProvider(baseURL string, timeout time.Duration) *WebhookProvider {
	return &WebhookProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *WebhookProvider) Name() string { return "webhook" }

// SendMulticast posts the message to the configured URL and
// expects a 202 Accepted response with a JSON body containing messageId.
func (p *WebhookProvider) SendMulticast(ctx context.Context, msg *domain.PushMessage) (*Result, error) {
	body, err := json.Marshal(webhookRequest{
		UserID:              msg.UserID,
		Tokens:              msg.Tokens,
		notificationPayload: newPayload(msg),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("unexpected provider status: %d", resp.StatusCode)
	}

	var sendResp webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&sendResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	res := &Result{SuccessCount: len(msg.Tokens)}
	if sendResp.SuccessCount != nil {
		res.SuccessCount = *sendResp.SuccessCount
	}
	if sendResp.FailureCount != nil {
		res.FailureCount = *sendResp.FailureCount
	}
	return res, nil
}

// compile-time check that WebhookProvider implements Provider
var _ Provider = (*WebhookProvider)(nil)
