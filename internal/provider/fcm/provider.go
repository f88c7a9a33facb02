// Package fcm submits envelopes to Firebase Cloud Messaging.
package fcm

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"firebase.google.com/go/v4/messaging"

	"github.com/jpco-admin/go-push-service/pkg/push"
)

// MessagingClient defines the subset of the Firebase Messaging API we use.
// This interface allows us to mock the client for unit testing.
type MessagingClient interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

type Provider struct {
	client MessagingClient
	logger *slog.Logger
}

// NewProvider accepts the concrete client but stores it as the interface.
// Note: *messaging.Client automatically satisfies this interface.
func NewProvider(client MessagingClient, logger *slog.Logger) *Provider {
	return &Provider{
		client: client,
		logger: logger.With("component", "FCMProvider"),
	}
}

// Send delivers one envelope to one device token and returns the FCM message
// id. Failures come back as *push.ProviderError so the dispatcher can decide
// whether the token should be pruned.
func (p *Provider) Send(ctx context.Context, env push.Envelope, token string) (string, error) {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: env.Title,
			Body:  env.Body,
		},
		Data: dataPayload(env),
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: env.Title,
				Body:  env.Body,
				Icon:  env.Icon,
				Badge: env.Badge,
			},
		},
	}

	messageID, err := p.client.Send(ctx, msg)
	if err != nil {
		return "", classify(err)
	}
	return messageID, nil
}

// classify maps Firebase SDK error types onto the provider error codes. Only
// registration-token-not-registered triggers token cleanup upstream.
func classify(err error) error {
	switch {
	case messaging.IsRegistrationTokenNotRegistered(err):
		return &push.ProviderError{Code: push.CodeTokenNotRegistered, Err: err}
	case messaging.IsInvalidArgument(err):
		return &push.ProviderError{Code: push.CodeInvalidArgument, Err: err}
	case messaging.IsUnavailable(err):
		return &push.ProviderError{Code: push.CodeUnavailable, Err: err}
	default:
		return &push.ProviderError{Code: push.CodeInternal, Err: err}
	}
}

// dataPayload flattens the envelope extras into the FCM data map. FCM only
// accepts string values.
func dataPayload(env push.Envelope) map[string]string {
	data := make(map[string]string, len(env.Data)+4)
	maps.Copy(data, env.Data)
	data["url"] = env.URL
	data["type"] = env.Type
	data["sentAt"] = env.SentAt.Format(time.RFC3339)
	data["correlationId"] = env.CorrelationID
	return data
}
