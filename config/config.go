package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Elastic   ElasticsearchConfig
	Scheduler SchedulerConfig
	Numbering NumberingConfig
	Locale    LocaleConfig
}

type ServerConfig struct {
	AppEnv             string
	GRPCPort           string
	HTTPPort           string
	CORSAllowedOrigins []string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// DatabaseConfig selects one of the supported drivers: postgres, mysql or sqlite3.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite3 only
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

type KafkaConfig struct {
	Brokers           []string
	RequisitionTopic  string
	NotificationTopic string
	GroupID           string
	Enabled           bool
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Enabled   bool
}

type SchedulerConfig struct {
	DelayedSweepCron string
	Timezone         string
	DelayedAfter     time.Duration
}

type NumberingConfig struct {
	CounterTTL time.Duration
}

type LocaleConfig struct {
	Default string
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			GRPCPort: getEnv("GRPC_PORT", ":8082"),
			HTTPPort: getEnv("HTTP_PORT", ":8083"),

			CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", nil),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5433"),
			User:            getEnv("DB_USER", "rims"),
			Password:        getEnv("DB_PASSWORD", "rims"),
			DBName:          getEnv("DB_NAME", "rims_inventory"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			Path:            getEnv("DB_PATH", "./rims.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("DB_CONN_MAX_IDLE_TIME", 60),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", "your-secret-key-change-this-in-prod"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Enabled:  getEnvBool("REDIS_ENABLED", true),
		},
		Kafka: KafkaConfig{
			Brokers:           getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			RequisitionTopic:  getEnv("KAFKA_TOPIC_REQUISITIONS", "rims.requisitions"),
			NotificationTopic: getEnv("KAFKA_TOPIC_NOTIFICATIONS", "rims.notifications"),
			GroupID:           getEnv("KAFKA_GROUP_REQUESTS", "rims-requests"),
			Enabled:           getEnvBool("KAFKA_ENABLED", true),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
			Enabled:   getEnvBool("ELASTICSEARCH_ENABLED", false),
		},
		Scheduler: SchedulerConfig{
			DelayedSweepCron: getEnv("SCHEDULER_DELAYED_SWEEP_CRON", "* * * * *"),
			Timezone:         getEnv("TIMEZONE", "Asia/Jakarta"),
			DelayedAfter:     getEnvDuration("SCHEDULER_DELAYED_AFTER", 15*time.Minute),
		},
		Numbering: NumberingConfig{
			CounterTTL: getEnvDuration("NUMBERING_COUNTER_TTL", 48*time.Hour),
		},
		Locale: LocaleConfig{
			Default: getEnv("LOCALE_DEFAULT", "id"),
		},
	}
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite3":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite3" && c.Database.Path == "" {
		return errors.New("DB_PATH must be provided for sqlite3")
	}
	if c.Server.GRPCPort == "" {
		return errors.New("GRPC_PORT must be provided")
	}
	if c.Server.HTTPPort == "" {
		return errors.New("HTTP_PORT must be provided")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS must be provided when Kafka is enabled")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
