// Package apns submits envelopes to the Apple Push Notification Service.
package apns

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"

	"github.com/jpco-admin/go-push-service/pkg/push"
)

// APNSClient defines the subset of the apns2.Client methods we use.
// This allows mocking for unit tests.
type APNSClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

type Config struct {
	KeyID    string
	TeamID   string
	BundleID string
	// P8KeyContent is the raw string content of the .p8 file.
	P8KeyContent string
}

type Provider struct {
	client APNSClient
	topic  string
	logger *slog.Logger
}

// NewProvider creates a configured APNs provider. It parses the P8 key
// immediately to fail fast on startup if credentials are bad.
func NewProvider(cfg Config, logger *slog.Logger) (*Provider, error) {
	authKey, err := token.AuthKeyFromBytes([]byte(cfg.P8KeyContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse APNs P8 key: %w", err)
	}

	tokenSource := &token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	}

	return &Provider{
		client: apns2.NewTokenClient(tokenSource),
		topic:  cfg.BundleID,
		logger: logger.With("component", "APNSProvider"),
	}, nil
}

// NewProviderWithClient wires an explicit client; used by tests.
func NewProviderWithClient(client APNSClient, bundleID string, logger *slog.Logger) *Provider {
	return &Provider{
		client: client,
		topic:  bundleID,
		logger: logger.With("component", "APNSProvider"),
	}
}

// Send pushes one envelope to one device token over APNs HTTP/2. The context
// bounds the submission, so a stuck connection cannot hold a dispatch open
// past the caller's deadline.
// Unregistered and bad-token reasons classify as token-not-registered so the
// dispatcher prunes the record; configuration mistakes do not, because the
// token itself may be fine.
func (p *Provider) Send(ctx context.Context, env push.Envelope, deviceToken string) (string, error) {
	builder := payload.NewPayload().
		AlertTitle(env.Title).
		AlertBody(env.Body).
		Sound("default").
		Custom("url", env.URL).
		Custom("type", env.Type).
		Custom("correlationId", env.CorrelationID)
	for k, v := range env.Data {
		builder.Custom(k, v)
	}

	res, err := p.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       p.topic,
		Payload:     builder,
	})
	if err != nil {
		return "", &push.ProviderError{Code: push.CodeUnavailable, Err: err}
	}

	if res.Sent() {
		return res.ApnsID, nil
	}

	switch res.Reason {
	case apns2.ReasonBadDeviceToken, apns2.ReasonUnregistered, apns2.ReasonDeviceTokenNotForTopic:
		return "", &push.ProviderError{
			Code: push.CodeTokenNotRegistered,
			Err:  fmt.Errorf("apns rejected token: %s", res.Reason),
		}
	default:
		p.logger.Warn("APNs rejected notification", "reason", res.Reason, "status", res.StatusCode)
		return "", &push.ProviderError{
			Code: push.CodeInternal,
			Err:  fmt.Errorf("apns rejected notification: %s", res.Reason),
		}
	}
}
