package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Analysis engine configuration.
	BatchWorkers      int
	BatchMaxItems     int
	BasePropertyValue float64
	RiskModelPath     string
	FraudModelPath    string
	DamageModelPath   string

	// Kafka pipeline configuration.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Environment service configuration.
	EnvironmentAPIURL    string
	EnvironmentAPIToken  string
	EnvironmentEnabled   bool
	EnvironmentTimeout   time.Duration
	EnvironmentCacheSize int
	EnvironmentRedisURL  string
	EnvironmentCacheTTL  time.Duration

	// Fraud review notifications.
	NATSURL           string
	NATSReviewSubject string
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	workers, err := parseInt("BATCH_WORKERS", 4, 1, 64)
	if err != nil {
		return nil, err
	}

	maxItems, err := parseInt("BATCH_MAX_ITEMS", 1000, 1, 100000)
	if err != nil {
		return nil, err
	}

	baseValue, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("BASE_PROPERTY_VALUE", "300000"), 64)
	if err != nil || baseValue <= 0 {
		return nil, errors.New("invalid BASE_PROPERTY_VALUE: must be a positive number")
	}

	envTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("ENVIRONMENT_API_TIMEOUT", "5s"))
	if err != nil || envTimeout <= 0 {
		return nil, errors.New("invalid ENVIRONMENT_API_TIMEOUT")
	}

	cacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("ENVIRONMENT_CACHE_TTL", "1h"))
	if err != nil || cacheTTL <= 0 {
		return nil, errors.New("invalid ENVIRONMENT_CACHE_TTL")
	}

	envURL := os.Getenv("ENVIRONMENT_API_URL")

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BatchWorkers:      workers,
		BatchMaxItems:     maxItems,
		BasePropertyValue: baseValue,
		RiskModelPath:     os.Getenv("RISK_MODEL_PATH"),
		FraudModelPath:    os.Getenv("FRAUD_MODEL_PATH"),
		DamageModelPath:   os.Getenv("DAMAGE_MODEL_PATH"),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "analysis-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "analysis-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "storm-claims-analysis"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		EnvironmentAPIURL:    envURL,
		EnvironmentAPIToken:  os.Getenv("ENVIRONMENT_API_TOKEN"),
		EnvironmentEnabled:   envURL != "",
		EnvironmentTimeout:   envTimeout,
		EnvironmentCacheSize: parseCacheSize(),
		EnvironmentRedisURL:  os.Getenv("ENVIRONMENT_REDIS_URL"),
		EnvironmentCacheTTL:  cacheTTL,

		NATSURL:           os.Getenv("NATS_URL"),
		NATSReviewSubject: sharedcfg.EnvOrDefault("NATS_REVIEW_SUBJECT", "claims.review.requested"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if cfg.NATSURL != "" && cfg.NATSReviewSubject == "" {
		return nil, errors.New("NATS_REVIEW_SUBJECT is required when NATS_URL is set")
	}

	return cfg, nil
}

func parseInt(name string, def, lo, hi int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be between %d and %d", name, lo, hi)
	}
	return n, nil
}

func parseCacheSize() int {
	if s := os.Getenv("ENVIRONMENT_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
