package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// WebPushConfig carries the VAPID identity used to sign requests.
type WebPushConfig struct {
	Subscriber      string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	TTL             int
	Timeout         time.Duration
}

// WebPushProvider delivers to browser push subscriptions directly (RFC 8030)
// without a vendor relay. Each token is a JSON-encoded PushSubscription as
// returned by the browser's PushManager.subscribe().
type WebPushProvider struct {
	cfg        WebPushConfig
	httpClient *http.Client
}

func NewWebPushProvider(cfg WebPushConfig) (*WebPushProvider, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, errors.New("webpush: VAPID key pair is required")
	}
	return &WebPushProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (p *WebPushProvider) Name() string { return "webpush" }

// SendMulticast encrypts and posts the payload to every subscription.
// Web Push has no batch endpoint, so tokens are sent one by one and
// each failure is recorded per token.
func (p *WebPushProvider) SendMulticast(ctx context.Context, msg *domain.PushMessage) (*Result, error) {
	if len(msg.Tokens) == 0 {
		return nil, errors.New("webpush: message has no tokens")
	}

	payload, err := json.Marshal(newPayload(msg))
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	urgency := webpush.UrgencyNormal
	if msg.Hints.Priority == "high" {
		urgency = webpush.UrgencyHigh
	}

	res := &Result{}
	for _, token := range msg.Tokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.add(token, p.sendOne(ctx, token, payload, urgency))
	}
	return res, nil
}

func (p *WebPushProvider) sendOne(ctx context.Context, token string, payload []byte, urgency webpush.Urgency) error {
	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(token), &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}
	if sub.Endpoint == "" {
		return errors.New("subscription has no endpoint")
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &sub, &webpush.Options{
		HTTPClient:      p.httpClient,
		Subscriber:      p.cfg.Subscriber,
		VAPIDPublicKey:  p.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: p.cfg.VAPIDPrivateKey,
		TTL:             p.cfg.TTL,
		Urgency:         urgency,
	})
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push service status %d", resp.StatusCode)
	}
	return nil
}

// compile-time check that WebPushProvider implements Provider
var _ Provider = (*WebPushProvider)(nil)
