package webpush_test

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	webpushgo "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpco-admin/go-push-service/internal/provider/webpush"
	"github.com/jpco-admin/go-push-service/pkg/push"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// subscriptionToken builds a real, encryptable subscription pointing at the
// mock push server. The library encrypts the payload against the p256dh key,
// so the key material has to be a valid P-256 point.
func subscriptionToken(t *testing.T, endpoint string) string {
	t.Helper()

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	token, err := json.Marshal(map[string]any{
		"endpoint": endpoint,
		"keys": map[string]string{
			"p256dh": base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			"auth":   base64.RawURLEncoding.EncodeToString(auth),
		},
	})
	require.NoError(t, err)
	return string(token)
}

func TestWebPushSend(t *testing.T) {
	// Mock push service (simulates Google/Mozilla push endpoints).
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/success":
			w.Header().Set("Location", "https://push.example.com/m/abc-1")
			w.WriteHeader(http.StatusCreated)
		case "/expired":
			w.WriteHeader(http.StatusGone)
		case "/flaky":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer mockServer.Close()

	privateKey, publicKey, err := webpushgo.GenerateVAPIDKeys()
	require.NoError(t, err)

	provider := webpush.NewProvider(webpush.Config{
		PublicKey:       publicKey,
		PrivateKey:      privateKey,
		SubscriberEmail: "mailto:ops@jpco.example.com",
	}, newTestLogger())

	ctx := context.Background()
	env := push.Envelope{
		Title:         "Test",
		Body:          "Body",
		URL:           "/notifications",
		Type:          "general",
		SentAt:        time.Now().UTC(),
		CorrelationID: "corr-web-1",
	}

	t.Run("Success returns location as message id", func(t *testing.T) {
		messageID, err := provider.Send(ctx, env, subscriptionToken(t, mockServer.URL+"/success"))
		require.NoError(t, err)
		assert.Equal(t, "https://push.example.com/m/abc-1", messageID)
	})

	t.Run("Gone subscription classifies as token-not-registered", func(t *testing.T) {
		_, err := provider.Send(ctx, env, subscriptionToken(t, mockServer.URL+"/expired"))
		require.Error(t, err)
		assert.True(t, push.IsTokenNotRegistered(err))
	})

	t.Run("Server error classifies as unavailable", func(t *testing.T) {
		_, err := provider.Send(ctx, env, subscriptionToken(t, mockServer.URL+"/flaky"))
		require.Error(t, err)
		assert.False(t, push.IsTokenNotRegistered(err))
		var pe *push.ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, push.CodeUnavailable, pe.Code)
	})

	t.Run("Malformed subscription token", func(t *testing.T) {
		_, err := provider.Send(ctx, env, "not-json")
		require.Error(t, err)
		var pe *push.ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, push.CodeInvalidArgument, pe.Code)
	})
}
