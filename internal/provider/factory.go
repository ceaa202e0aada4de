package provider

import (
	"context"
	"fmt"

	"github.com/smarthousehold/inventory-service/internal/config"
)

// New builds the provider selected by PUSH_PROVIDER.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.PushProvider {
	case "fcm":
		return NewFCMProvider(ctx, cfg.FCMCredentialsFile)
	case "webpush":
		return NewWebPushProvider(WebPushConfig{
			Subscriber:      cfg.VAPIDSubscriber,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             cfg.WebPushTTL,
			Timeout:         cfg.ProviderTimeout,
		})
	case "sns":
		return NewSNSProvider(ctx, cfg.AWSRegion)
	case "webhook":
		if cfg.ProviderBaseURL == "" {
			return nil, fmt.Errorf("PROVIDER_BASE_URL is required for the webhook provider")
		}
		return NewWebhookProvider(cfg.ProviderBaseURL, cfg.ProviderTimeout), nil
	default:
		return nil, fmt.Errorf("unknown push provider %q", cfg.PushProvider)
	}
}
