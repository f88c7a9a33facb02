package config_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpco-admin/go-push-service/pushservice/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpdateConfigWithEnvOverrides(t *testing.T) {
	logger := newTestLogger()

	baseConfig := func() *config.Config {
		return &config.Config{
			ProjectID:  "base-project",
			ListenAddr: ":8080",
			Provider:   config.ProviderFCM,
			Vapid: config.VapidConfig{
				PublicKey:  "base-pub",
				PrivateKey: "base-priv",
			},
		}
	}

	t.Run("Success - All overrides applied", func(t *testing.T) {
		cfg := baseConfig()

		t.Setenv("PROJECT_ID", "env-project")
		t.Setenv("PORT", "9090")
		t.Setenv("PUSH_PROVIDER", "webpush")
		t.Setenv("VAPID_PUBLIC_KEY", "env-pub")
		t.Setenv("VAPID_PRIVATE_KEY", "env-priv")
		t.Setenv("VAPID_SUB_EMAIL", "env@test.com")
		t.Setenv("PROVIDER_TIMEOUT_MS", "2500")
		t.Setenv("REDIS_ADDR", "localhost:6379")

		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, "env-project", finalCfg.ProjectID)
		assert.Equal(t, ":9090", finalCfg.ListenAddr)
		assert.Equal(t, config.ProviderWebPush, finalCfg.Provider)
		assert.Equal(t, "env-pub", finalCfg.Vapid.PublicKey)
		assert.Equal(t, "env-priv", finalCfg.Vapid.PrivateKey)
		assert.Equal(t, "env@test.com", finalCfg.Vapid.SubscriberEmail)
		assert.Equal(t, 2500*time.Millisecond, finalCfg.Dispatch.ProviderTimeout)
		assert.True(t, finalCfg.Redis.Enabled)
	})

	t.Run("Defaults applied", func(t *testing.T) {
		cfg := &config.Config{ProjectID: "p"}

		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, ":8080", finalCfg.ListenAddr)
		assert.Equal(t, config.ProviderFCM, finalCfg.Provider)
	})

	t.Run("Missing project id fails", func(t *testing.T) {
		cfg := &config.Config{}

		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "project_id")
	})

	t.Run("WebPush without VAPID keys fails", func(t *testing.T) {
		cfg := &config.Config{ProjectID: "p", Provider: config.ProviderWebPush}

		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "VAPID")
	})

	t.Run("Unknown provider fails", func(t *testing.T) {
		cfg := &config.Config{ProjectID: "p", Provider: "smoke-signals"}

		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown push provider")
	})
}
