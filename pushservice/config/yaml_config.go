package config

import (
	"log/slog"
	"time"

	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
)

type YamlCorsConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	Role           string   `yaml:"role"`
}

type YamlRedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

type YamlVapidConfig struct {
	PublicKey       string `yaml:"public_key"`
	PrivateKey      string `yaml:"private_key"`
	SubscriberEmail string `yaml:"subscriber_email"`
}

type YamlAPNSConfig struct {
	KeyID        string `yaml:"key_id"`
	TeamID       string `yaml:"team_id"`
	BundleID     string `yaml:"bundle_id"`
	P8KeyContent string `yaml:"p8_key"`
}

type YamlDispatchConfig struct {
	ProviderTimeoutMs int `yaml:"provider_timeout_ms"`
	StoreTimeoutMs    int `yaml:"store_timeout_ms"`
	BatchTimeoutMs    int `yaml:"batch_timeout_ms"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ProjectID      string             `yaml:"project_id"`
	ListenAddr     string             `yaml:"listen_addr"`
	Provider       string             `yaml:"provider"`
	CorsConfig     YamlCorsConfig     `yaml:"cors"`
	RedisConfig    YamlRedisConfig    `yaml:"redis"`
	VapidConfig    YamlVapidConfig    `yaml:"vapid"`
	APNSConfig     YamlAPNSConfig     `yaml:"apns"`
	DispatchConfig YamlDispatchConfig `yaml:"dispatch"`
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	cfg := &Config{
		ProjectID:  baseCfg.ProjectID,
		ListenAddr: baseCfg.ListenAddr,
		Provider:   baseCfg.Provider,
		CorsConfig: middleware.CorsConfig{
			AllowedOrigins: baseCfg.CorsConfig.AllowedOrigins,
			Role:           middleware.CorsRole(baseCfg.CorsConfig.Role),
		},
		Redis: RedisConfig{
			Addr:     baseCfg.RedisConfig.Addr,
			Password: baseCfg.RedisConfig.Password,
			DB:       baseCfg.RedisConfig.DB,
			Enabled:  baseCfg.RedisConfig.Enabled,
		},
		Vapid: VapidConfig{
			PublicKey:       baseCfg.VapidConfig.PublicKey,
			PrivateKey:      baseCfg.VapidConfig.PrivateKey,
			SubscriberEmail: baseCfg.VapidConfig.SubscriberEmail,
		},
		APNS: APNSConfig{
			KeyID:        baseCfg.APNSConfig.KeyID,
			TeamID:       baseCfg.APNSConfig.TeamID,
			BundleID:     baseCfg.APNSConfig.BundleID,
			P8KeyContent: baseCfg.APNSConfig.P8KeyContent,
		},
		Dispatch: DispatchConfig{
			ProviderTimeout: time.Duration(baseCfg.DispatchConfig.ProviderTimeoutMs) * time.Millisecond,
			StoreTimeout:    time.Duration(baseCfg.DispatchConfig.StoreTimeoutMs) * time.Millisecond,
			BatchTimeout:    time.Duration(baseCfg.DispatchConfig.BatchTimeoutMs) * time.Millisecond,
		},
	}

	logger.Debug("YAML config mapping complete",
		"project_id", cfg.ProjectID,
		"listen_addr", cfg.ListenAddr,
		"provider", cfg.Provider,
	)

	return cfg, nil
}
