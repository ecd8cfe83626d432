package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string
	LogLevel  slog.Level

	HTTPPort int
	GRPCPort int

	DatabaseURL  string
	MaxDBConns   int32
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string
	// KafkaTopicCompleted routes completion events to their own topic when set.
	KafkaTopicCompleted string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxRetries   int

	ProfileCacheTTL time.Duration
	SessionTTL      time.Duration
	JWTIssuer       string
	JWTSecret       string
	BcryptCost      int

	CatalogPath string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
	S3UsePathStyle  bool
	MaxPhotoBytes   int64

	AccessRoles map[domain.Role]domain.RoleRule
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL         string   `yaml:"postgres_url"`
		RedisURL            string   `yaml:"redis_url"`
		KafkaBrokers        []string `yaml:"kafka_brokers"`
		KafkaTopic          string   `yaml:"kafka_topic"`
		KafkaTopicCompleted string   `yaml:"kafka_topic_completed"`
		S3                  struct {
			Bucket        string `yaml:"bucket"`
			Region        string `yaml:"region"`
			Endpoint      string `yaml:"endpoint"`
			PublicBaseURL string `yaml:"public_base_url"`
			UsePathStyle  bool   `yaml:"use_path_style"`
			MaxPhotoMB    int    `yaml:"max_photo_mb"`
		} `yaml:"s3"`
	} `yaml:"dependencies"`
	Auth struct {
		JWTIssuer       string `yaml:"jwt_issuer"`
		SessionTTLHours int    `yaml:"session_ttl_hours"`
		BcryptCost      int    `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`
	Access struct {
		Roles map[string]domain.RoleRule `yaml:"roles"`
	} `yaml:"access"`
}

// LoadConfig applies defaults, then the YAML file at path when it exists,
// then environment variables. A .env file in the working directory is read
// first and never overrides variables already set.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		ServiceID:          "site-inspection-service",
		LogLevel:           slog.LevelInfo,
		HTTPPort:           8080,
		GRPCPort:           9090,
		MaxDBConns:         20,
		KafkaTopic:         "inspection.events",
		OutboxPollInterval: 2 * time.Second,
		OutboxBatchSize:    100,
		OutboxMaxRetries:   10,
		ProfileCacheTTL:    5 * time.Minute,
		SessionTTL:         12 * time.Hour,
		JWTIssuer:          "site-inspection-service",
		S3Region:           "us-east-1",
		MaxPhotoBytes:      10 << 20,
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if applyErr := applyFile(&cfg, raw); applyErr != nil {
			return Config{}, applyErr
		}
	case !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg.ServiceID = envOrDefault("SERVICE_ID", cfg.ServiceID)
	cfg.LogLevel = parseLevel(envOrDefault("LOG_LEVEL", ""), cfg.LogLevel)
	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopic = envOrDefault("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.KafkaTopicCompleted = envOrDefault("KAFKA_TOPIC_COMPLETED", cfg.KafkaTopicCompleted)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)
	cfg.ProfileCacheTTL = time.Duration(envInt("PROFILE_CACHE_SECONDS", int(cfg.ProfileCacheTTL.Seconds()))) * time.Second
	cfg.SessionTTL = time.Duration(envInt("SESSION_TTL_HOURS", int(cfg.SessionTTL.Hours()))) * time.Hour
	cfg.JWTIssuer = envOrDefault("JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.BcryptCost = envInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.CatalogPath = envOrDefault("CATALOG_PATH", cfg.CatalogPath)
	cfg.S3Bucket = envOrDefault("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = envOrDefault("S3_REGION", envOrDefault("AWS_REGION", cfg.S3Region))
	cfg.S3Endpoint = envOrDefault("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3AccessKey = envOrDefault("S3_ACCESS_KEY", cfg.S3AccessKey)
	cfg.S3SecretKey = envOrDefault("S3_SECRET_KEY", cfg.S3SecretKey)
	cfg.S3PublicBaseURL = envOrDefault("S3_PUBLIC_BASE_URL", cfg.S3PublicBaseURL)
	cfg.S3UsePathStyle = envBool("S3_USE_PATH_STYLE", cfg.S3UsePathStyle)
	cfg.MaxPhotoBytes = int64(envInt("MAX_PHOTO_MB", int(cfg.MaxPhotoBytes>>20))) << 20

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 16 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 16 bytes")
	}
	return cfg, nil
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if f.Service.ID != "" {
		cfg.ServiceID = f.Service.ID
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Service.GRPCPort > 0 {
		cfg.GRPCPort = f.Service.GRPCPort
	}
	cfg.LogLevel = parseLevel(f.Service.LogLevel, cfg.LogLevel)
	if f.Dependencies.PostgresURL != "" {
		cfg.DatabaseURL = f.Dependencies.PostgresURL
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
	}
	if f.Dependencies.KafkaTopic != "" {
		cfg.KafkaTopic = f.Dependencies.KafkaTopic
	}
	cfg.KafkaTopicCompleted = f.Dependencies.KafkaTopicCompleted

	s3 := f.Dependencies.S3
	cfg.S3Bucket = s3.Bucket
	if s3.Region != "" {
		cfg.S3Region = s3.Region
	}
	cfg.S3Endpoint = s3.Endpoint
	cfg.S3PublicBaseURL = s3.PublicBaseURL
	cfg.S3UsePathStyle = s3.UsePathStyle
	if s3.MaxPhotoMB > 0 {
		cfg.MaxPhotoBytes = int64(s3.MaxPhotoMB) << 20
	}

	if f.Auth.JWTIssuer != "" {
		cfg.JWTIssuer = f.Auth.JWTIssuer
	}
	if f.Auth.SessionTTLHours > 0 {
		cfg.SessionTTL = time.Duration(f.Auth.SessionTTLHours) * time.Hour
	}
	if f.Auth.BcryptCost > 0 {
		cfg.BcryptCost = f.Auth.BcryptCost
	}
	cfg.CatalogPath = f.Catalog.Path

	if len(f.Access.Roles) > 0 {
		cfg.AccessRoles = make(map[domain.Role]domain.RoleRule, len(f.Access.Roles))
		for name, rule := range f.Access.Roles {
			for _, slot := range rule.SignSlots {
				if !slot.IsValid() {
					return fmt.Errorf("access role %q: unknown signature slot %q", name, slot)
				}
			}
			cfg.AccessRoles[domain.NormalizeRole(name)] = rule
		}
	}
	return nil
}

func parseLevel(raw string, fallback slog.Level) slog.Level {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return fallback
	}
	return level
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
