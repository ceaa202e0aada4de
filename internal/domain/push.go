package domain

import (
	"strings"
	"time"
)

// Platform identifies the kind of device a push token belongs to.
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

func (p Platform) IsValid() bool {
	switch p {
	case PlatformWeb, PlatformAndroid, PlatformIOS:
		return true
	}
	return false
}

// PushToken is a device registration owned by a user.
type PushToken struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	Platform  Platform  `json:"platform"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterTokenRequest is the inbound payload for token registration.
type RegisterTokenRequest struct {
	Token    string   `json:"token"`
	Platform Platform `json:"platform"`
}

func (r *RegisterTokenRequest) Validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return ErrInvalidToken
	}
	if r.Platform == "" {
		r.Platform = PlatformWeb
	}
	if !r.Platform.IsValid() {
		return ErrInvalidPlatform
	}
	return nil
}

// DeliveryHints are the platform options attached to every push message.
type DeliveryHints struct {
	Priority       string `json:"priority"`
	Icon           string `json:"icon"`
	Color          string `json:"color"`
	DefaultSound   bool   `json:"default_sound"`
	DefaultVibrate bool   `json:"default_vibrate"`
}

// DefaultHints mirror a system-style alert: high priority, default sound and
// vibration, brand accent colour.
var DefaultHints = DeliveryHints{
	Priority:       "high",
	Icon:           "stock_ticker_update",
	Color:          "#4F46E5",
	DefaultSound:   true,
	DefaultVibrate: true,
}

// PushMessage is one multicast send addressed to all of a user's tokens.
type PushMessage struct {
	UserID string        `json:"user_id"`
	Title  string        `json:"title"`
	Body   string        `json:"body"`
	Hints  DeliveryHints `json:"hints"`
	Tokens []string      `json:"tokens"`
}
