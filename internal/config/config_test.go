package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, 4, cfg.BatchWorkers)
	assert.Equal(t, 1000, cfg.BatchMaxItems)
	assert.Equal(t, 300000.0, cfg.BasePropertyValue)
	assert.Empty(t, cfg.RiskModelPath)
	assert.Empty(t, cfg.FraudModelPath)
	assert.Empty(t, cfg.DamageModelPath)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "analysis-requests", cfg.KafkaSourceTopic)
	assert.Equal(t, "analysis-results", cfg.KafkaSinkTopic)
	assert.Equal(t, "storm-claims-analysis", cfg.KafkaGroupID)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)

	assert.False(t, cfg.EnvironmentEnabled)
	assert.Equal(t, 5*time.Second, cfg.EnvironmentTimeout)
	assert.Equal(t, 1000, cfg.EnvironmentCacheSize)
	assert.Empty(t, cfg.EnvironmentRedisURL)
	assert.Equal(t, time.Hour, cfg.EnvironmentCacheTTL)

	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, "claims.review.requested", cfg.NATSReviewSubject)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("BATCH_MAX_ITEMS", "250")
	t.Setenv("BASE_PROPERTY_VALUE", "450000")
	t.Setenv("RISK_MODEL_PATH", "/models/risk.json")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("ENVIRONMENT_API_URL", "http://env.local")
	t.Setenv("ENVIRONMENT_API_TOKEN", "secret")
	t.Setenv("ENVIRONMENT_API_TIMEOUT", "2s")
	t.Setenv("ENVIRONMENT_CACHE_SIZE", "50")
	t.Setenv("ENVIRONMENT_REDIS_URL", "redis://cache:6379/0")
	t.Setenv("ENVIRONMENT_CACHE_TTL", "15m")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("NATS_REVIEW_SUBJECT", "review")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 8, cfg.BatchWorkers)
	assert.Equal(t, 250, cfg.BatchMaxItems)
	assert.Equal(t, 450000.0, cfg.BasePropertyValue)
	assert.Equal(t, "/models/risk.json", cfg.RiskModelPath)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.True(t, cfg.EnvironmentEnabled)
	assert.Equal(t, "http://env.local", cfg.EnvironmentAPIURL)
	assert.Equal(t, "secret", cfg.EnvironmentAPIToken)
	assert.Equal(t, 2*time.Second, cfg.EnvironmentTimeout)
	assert.Equal(t, 50, cfg.EnvironmentCacheSize)
	assert.Equal(t, "redis://cache:6379/0", cfg.EnvironmentRedisURL)
	assert.Equal(t, 15*time.Minute, cfg.EnvironmentCacheTTL)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, "review", cfg.NATSReviewSubject)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"shutdown timeout", "SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-1s"},
		{"zero batch size", "BATCH_SIZE", "0"},
		{"batch size too large", "BATCH_SIZE", "1001"},
		{"flush interval", "BATCH_FLUSH_INTERVAL", "not-a-duration"},
		{"zero workers", "BATCH_WORKERS", "0"},
		{"too many workers", "BATCH_WORKERS", "65"},
		{"non-numeric workers", "BATCH_WORKERS", "many"},
		{"max items", "BATCH_MAX_ITEMS", "-5"},
		{"base property value", "BASE_PROPERTY_VALUE", "0"},
		{"environment timeout", "ENVIRONMENT_API_TIMEOUT", "bad"},
		{"cache ttl", "ENVIRONMENT_CACHE_TTL", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_KafkaBrokersCheckedOnlyWhenEnabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", ",")

	_, err := Load()
	require.NoError(t, err)

	t.Setenv("KAFKA_ENABLED", "true")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_InvalidCacheSizeUsesDefault(t *testing.T) {
	t.Setenv("ENVIRONMENT_CACHE_SIZE", "-1")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.EnvironmentCacheSize)
}
