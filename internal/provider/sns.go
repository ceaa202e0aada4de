package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// SNSPublisher is the subset of *sns.Client the provider uses.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSProvider delivers through AWS SNS mobile push. Tokens are platform
// endpoint ARNs created when the device registered.
type SNSProvider struct {
	client SNSPublisher
}

func NewSNSProvider(ctx context.Context, region string) (*SNSProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSNSProviderWithClient(sns.NewFromConfig(cfg)), nil
}

func NewSNSProviderWithClient(c SNSPublisher) *SNSProvider {
	return &SNSProvider{client: c}
}

func (p *SNSProvider) Name() string { return "sns" }

func (p *SNSProvider) SendMulticast(ctx context.Context, msg *domain.PushMessage) (*Result, error) {
	if len(msg.Tokens) == 0 {
		return nil, errors.New("sns: message has no tokens")
	}

	message, err := snsMessage(msg)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, arn := range msg.Tokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, err := p.client.Publish(ctx, &sns.PublishInput{
			TargetArn:        aws.String(arn),
			Message:          aws.String(message),
			MessageStructure: aws.String("json"),
		})
		res.add(arn, err)
	}
	return res, nil
}

// snsMessage builds the per-platform JSON envelope SNS expects when
// MessageStructure is "json". Each platform value is itself a JSON string.
func snsMessage(msg *domain.PushMessage) (string, error) {
	gcm, err := json.Marshal(map[string]any{
		"notification": map[string]any{
			"title": msg.Title,
			"body":  msg.Body,
			"icon":  msg.Hints.Icon,
			"color": msg.Hints.Color,
			"sound": "default",
		},
		"android": map[string]any{"priority": msg.Hints.Priority},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gcm payload: %w", err)
	}

	apns, err := json.Marshal(map[string]any{
		"aps": map[string]any{
			"alert": map[string]string{"title": msg.Title, "body": msg.Body},
			"sound": "default",
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal apns payload: %w", err)
	}

	envelope, err := json.Marshal(map[string]string{
		"default": msg.Body,
		"GCM":     string(gcm),
		"APNS":    string(apns),
	})
	if err != nil {
		return "", fmt.Errorf("marshal sns envelope: %w", err)
	}
	return string(envelope), nil
}

// compile-time check that SNSProvider implements Provider
var _ Provider = (*SNSProvider)(nil)
