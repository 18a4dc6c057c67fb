package config

import (
	"fmt"
	"os"
	"strconv"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type RedisConfig struct {
	Addr           string
	BalanceTTLSecs int
}

// PolicyConfig carries the operational knobs of the status evaluator.
type PolicyConfig struct {
	GracePeriodDays        int
	DelinquencyDefaultDays int
}

type Config struct {
	HTTPPort    int
	DB          DatabaseConfig
	Kafka       KafkaConfig
	Redis       RedisConfig
	Policy      PolicyConfig
	LogLevel    string
	ServiceName string
}

func (c Config) Validate() {
	if c.DB.Password == "" {
		panic("DB_PASSWORD environment variable is required")
	}
}

func Load() Config {
	return Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8094),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "lumen"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "lumen_servicing"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "servicing-events"),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			BalanceTTLSecs: getEnvInt("REDIS_BALANCE_TTL_SECONDS", 300),
		},
		Policy: PolicyConfig{
			GracePeriodDays:        getEnvInt("GRACE_PERIOD_DAYS", 15),
			DelinquencyDefaultDays: getEnvInt("DELINQUENCY_DEFAULT_DAYS", 90),
		},
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServiceName: "servicing",
	}
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
