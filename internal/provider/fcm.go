package provider

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// fcmMaxTokens is the FCM limit on tokens per multicast request.
const fcmMaxTokens = 500

// MulticastSender is the subset of *messaging.Client the FCM provider uses.
type MulticastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMProvider delivers through Firebase Cloud Messaging.
type FCMProvider struct {
	client MulticastSender
}

// NewFCMProvider initialises a Firebase app from a service-account file.
// An empty path falls back to Application Default Credentials.
func NewFCMProvider(ctx context.Context, credentialsFile string) (*FCMProvider, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return NewFCMProviderWithSender(client), nil
}

func NewFCMProviderWithSender(s MulticastSender) *FCMProvider {
	return &FCMProvider{client: s}
}

func (p *FCMProvider) Name() string { return "fcm" }

// SendMulticast sends msg to every token, splitting into FCM-sized chunks.
// A rejected chunk marks each of its tokens failed and the remaining chunks
// are still sent. An error is returned only when no token was delivered.
func (p *FCMProvider) SendMulticast(ctx context.Context, msg *domain.PushMessage) (*Result, error) {
	if len(msg.Tokens) == 0 {
		return nil, errors.New("fcm: message has no tokens")
	}

	res := &Result{}
	var chunkErr error
	for start := 0; start < len(msg.Tokens); start += fcmMaxTokens {
		end := min(start+fcmMaxTokens, len(msg.Tokens))
		chunk := msg.Tokens[start:end]

		br, err := p.client.SendEachForMulticast(ctx, buildMulticast(msg, chunk))
		if err != nil {
			err = fmt.Errorf("fcm send: %w", err)
			if chunkErr == nil {
				chunkErr = err
			}
			for _, tok := range chunk {
				res.add(tok, err)
			}
			continue
		}
		for i, r := range br.Responses {
			if i >= len(chunk) {
				break
			}
			if r.Success {
				res.add(chunk[i], nil)
				continue
			}
			sendErr := r.Error
			if sendErr == nil {
				sendErr = errors.New("unknown fcm error")
			}
			res.add(chunk[i], sendErr)
		}
	}
	if chunkErr != nil && res.SuccessCount == 0 {
		return res, chunkErr
	}
	return res, nil
}

func buildMulticast(msg *domain.PushMessage, tokens []string) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: msg.Hints.Priority,
			Notification: &messaging.AndroidNotification{
				Icon:                  msg.Hints.Icon,
				Color:                 msg.Hints.Color,
				DefaultSound:          msg.Hints.DefaultSound,
				DefaultVibrateTimings: msg.Hints.DefaultVibrate,
			},
		},
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{"Urgency": msg.Hints.Priority},
		},
	}
}

// compile-time check that FCMProvider implements Provider
var _ Provider = (*FCMProvider)(nil)
