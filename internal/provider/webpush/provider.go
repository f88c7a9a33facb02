// Package webpush submits envelopes to browser push services using VAPID.
// The stored device token is the browser's PushSubscription JSON.
package webpush

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/jpco-admin/go-push-service/pkg/push"
)

type Config struct {
	PublicKey       string
	PrivateKey      string
	SubscriberEmail string
	TTL             int
}

type Provider struct {
	cfg        Config
	logger     *slog.Logger
	httpClient *http.Client
}

func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	if cfg.TTL <= 0 {
		cfg.TTL = 60
	}
	return &Provider{
		cfg:        cfg,
		logger:     logger.With("component", "WebPushProvider"),
		httpClient: &http.Client{},
	}
}

// Send pushes one envelope to one subscription. A 404/410 from the push
// service means the subscription is gone and classifies as
// token-not-registered so the dispatcher prunes the record.
func (p *Provider) Send(ctx context.Context, env push.Envelope, token string) (string, error) {
	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(token), &sub); err != nil || sub.Endpoint == "" {
		return "", &push.ProviderError{
			Code: push.CodeInvalidArgument,
			Err:  fmt.Errorf("malformed web push subscription: %w", err),
		}
	}

	payload, err := json.Marshal(map[string]any{
		"notification": map[string]string{
			"title": env.Title,
			"body":  env.Body,
			"icon":  env.Icon,
			"badge": env.Badge,
		},
		"data": map[string]any{
			"url":           env.URL,
			"type":          env.Type,
			"sentAt":        env.SentAt,
			"correlationId": env.CorrelationID,
			"extra":         env.Data,
		},
	})
	if err != nil {
		return "", &push.ProviderError{Code: push.CodeInternal, Err: err}
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &sub, &webpush.Options{
		Subscriber:      p.cfg.SubscriberEmail,
		VAPIDPublicKey:  p.cfg.PublicKey,
		VAPIDPrivateKey: p.cfg.PrivateKey,
		TTL:             p.cfg.TTL,
		HTTPClient:      p.httpClient,
	})
	if err != nil {
		return "", &push.ProviderError{Code: push.CodeUnavailable, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusCreated:
		// Push services return the message resource in the Location header;
		// fall back to the correlation id when absent.
		if loc := resp.Header.Get("Location"); loc != "" {
			return loc, nil
		}
		return env.CorrelationID, nil
	case http.StatusNotFound, http.StatusGone:
		return "", &push.ProviderError{
			Code: push.CodeTokenNotRegistered,
			Err:  fmt.Errorf("subscription gone (status %d)", resp.StatusCode),
		}
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return "", &push.ProviderError{
			Code: push.CodeInvalidArgument,
			Err:  fmt.Errorf("push service rejected payload (status %d)", resp.StatusCode),
		}
	default:
		p.logger.Warn("WebPush rejected", "status", resp.StatusCode, "endpoint", sub.Endpoint)
		return "", &push.ProviderError{
			Code: push.CodeUnavailable,
			Err:  fmt.Errorf("push service returned status %d", resp.StatusCode),
		}
	}
}
