package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Board   BoardConfig
	Payment PaymentConfig
	Log     LogConfig
}

type ServerConfig struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	MaxRequestBodySize int64
	SessionTTL         time.Duration
}

type BackendConfig struct {
	BaseURL            string
	Timeout            time.Duration
	ServiceToken       string
	BreakerMaxFailures int
	BreakerOpenTimeout time.Duration
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	IdentityTTL time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	Topic         string
	FlushInterval time.Duration
}

type BoardConfig struct {
	UserPageSize int
	FanOutLimit  int
}

type PaymentConfig struct {
	SuccessDelay time.Duration
}

type LogConfig struct {
	Level string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			HTTPPort:           getEnv("HTTP_PORT", "8080"),
			RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			ReadTimeout:        getEnvDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:       getEnvDuration("WRITE_TIMEOUT", 35*time.Second),
			IdleTimeout:        getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
			MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_BYTES", 1<<20)), // 1MB
			SessionTTL:         getEnvDuration("SESSION_TTL", 30*time.Minute),
		},
		Backend: BackendConfig{
			BaseURL:            getEnv("BACKEND_BASE_URL", "http://localhost:8081/api/v1"),
			Timeout:            getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),
			ServiceToken:       getEnv("BACKEND_SERVICE_TOKEN", ""),
			BreakerMaxFailures: getEnvInt("BREAKER_MAX_FAILURES", 5),
			BreakerOpenTimeout: getEnvDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			IdentityTTL: getEnvDuration("IDENTITY_CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:         getEnv("KAFKA_TOPIC", "admin-events"),
			FlushInterval: getEnvDuration("OUTBOX_FLUSH_INTERVAL", time.Second),
		},
		Board: BoardConfig{
			UserPageSize: getEnvInt("BOARD_USER_PAGE_SIZE", 100),
			FanOutLimit:  getEnvInt("BOARD_FANOUT_LIMIT", 8),
		},
		Payment: PaymentConfig{
			SuccessDelay: getEnvDuration("PAYMENT_SUCCESS_DELAY", 2*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		errs = append(errs, errors.New("BACKEND_BASE_URL is required"))
	}
	if c.Board.FanOutLimit <= 0 {
		errs = append(errs, fmt.Errorf("BOARD_FANOUT_LIMIT must be positive, got %d", c.Board.FanOutLimit))
	}
	if c.Board.UserPageSize < 1 || c.Board.UserPageSize > 1000 {
		errs = append(errs, fmt.Errorf("BOARD_USER_PAGE_SIZE must be within 1..1000, got %d", c.Board.UserPageSize))
	}
	if c.Payment.SuccessDelay < 0 {
		errs = append(errs, errors.New("PAYMENT_SUCCESS_DELAY must not be negative"))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
