// Package dispatch contains the fan-out core: one dispatch call resolves each
// recipient's device token, submits the message to the push provider in
// parallel across recipients, records every attempt in the history log and
// prunes tokens the provider reports as permanently invalid.
package dispatch

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/jpco-admin/go-push-service/pkg/push"
)

const (
	defaultIcon  = "/assets/icons/icon-192x192.png"
	defaultBadge = "/assets/icons/badge-72x72.png"
	defaultURL   = "/notifications"
	defaultType  = "general"
)

// newEnvelope builds the platform-neutral envelope for one fan-out. The
// caller's data map may override the url and type defaults; everything else
// is synthesized here so every provider sees the same envelope.
func newEnvelope(title, body string, data map[string]string) push.Envelope {
	env := push.Envelope{
		Title:         title,
		Body:          body,
		Icon:          defaultIcon,
		Badge:         defaultBadge,
		URL:           defaultURL,
		Type:          defaultType,
		SentAt:        time.Now().UTC(),
		CorrelationID: uuid.NewString(),
	}

	if len(data) > 0 {
		env.Data = make(map[string]string, len(data))
		maps.Copy(env.Data, data)
		if v := data["url"]; v != "" {
			env.URL = v
		}
		if v := data["type"]; v != "" {
			env.Type = v
		}
	}

	return env
}
