package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jpco-admin/go-push-service/pushservice/config"
)

const sampleYaml = `
project_id: jpco-admin
listen_addr: ":8085"
provider: fcm
cors:
  allowed_origins:
    - https://admin.jpco.example.com
  role: production
redis:
  addr: "redis:6379"
  db: 2
  enabled: true
vapid:
  public_key: pub-key
  private_key: priv-key
  subscriber_email: mailto:ops@jpco.example.com
dispatch:
  provider_timeout_ms: 8000
  store_timeout_ms: 3000
  batch_timeout_ms: 30000
`

func TestNewConfigFromYaml(t *testing.T) {
	var yamlCfg config.YamlConfig
	require.NoError(t, yaml.Unmarshal([]byte(sampleYaml), &yamlCfg))

	cfg, err := config.NewConfigFromYaml(&yamlCfg, newTestLogger())
	require.NoError(t, err)

	assert.Equal(t, "jpco-admin", cfg.ProjectID)
	assert.Equal(t, ":8085", cfg.ListenAddr)
	assert.Equal(t, config.ProviderFCM, cfg.Provider)
	assert.Equal(t, []string{"https://admin.jpco.example.com"}, cfg.CorsConfig.AllowedOrigins)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "pub-key", cfg.Vapid.PublicKey)
	assert.Equal(t, 8*time.Second, cfg.Dispatch.ProviderTimeout)
	assert.Equal(t, 3*time.Second, cfg.Dispatch.StoreTimeout)
	assert.Equal(t, 30*time.Second, cfg.Dispatch.BatchTimeout)
}
