package provider

import (
	"context"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// TokenFailure reports a single device token the service refused.
type TokenFailure struct {
	Token  string
	Reason string
}

// Result summarises one multicast send. A nil error with a non-zero
// FailureCount means the request was accepted but some tokens were rejected.
type Result struct {
	SuccessCount int
	FailureCount int
	Failures     []TokenFailure
}

func (r *Result) add(token string, err error) {
	if err == nil {
		r.SuccessCount++
		return
	}
	r.FailureCount++
	r.Failures = append(r.Failures, TokenFailure{Token: token, Reason: err.Error()})
}

// Provider abstracts delivery to an external push service.
// Mocking this interface in tests gives full control over delivery outcomes
// without network calls.
type Provider interface {
	Name() string
	SendMulticast(ctx context.Context, msg *domain.PushMessage) (*Result, error)
}

// notificationPayload is the JSON shape web clients and the webhook receive.
// The service worker reads payload.notification.title / .body.
type notificationPayload struct {
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Icon  string `json:"icon,omitempty"`
		Color string `json:"color,omitempty"`
	} `json:"notification"`
	Priority string `json:"priority,omitempty"`
}

func newPayload(msg *domain.PushMessage) notificationPayload {
	var p notificationPayload
	p.Notification.Title = msg.Title
	p.Notification.Body = msg.Body
	p.Notification.Icon = msg.Hints.Icon
	p.Notification.Color = msg.Hints.Color
	p.Priority = msg.Hints.Priority
	return p
}
