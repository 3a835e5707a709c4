package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	minJWTSecretLength = 32
)

type Config struct {
	Env         string
	LogLevel    string
	StorageType string
	Postgres    PostgresConfig
	HTTP        HTTPConfig
	GRPC        GRPCConfig
	Redis       RedisConfig
	NATS        NATSConfig
	Auth        AuthConfig
	Images      ImagesConfig
	Otel        OtelConfig
}

type PostgresConfig struct {
	User     string
	Password string
	DB       string
	Host     string
	Port     int
	SSLMode  string
}

func (pc PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.User,
		pc.Password,
		pc.Host,
		pc.Port,
		pc.DB,
		pc.SSLMode,
	)
}

type HTTPConfig struct {
	Port           string
	AllowedOrigins []string
}

type GRPCConfig struct {
	// Port is empty when the gRPC surface is disabled.
	Port string
}

type RedisConfig struct {
	// Addr is empty when listings are cached in process.
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type NATSConfig struct {
	// URL is empty when post events are not published.
	URL           string
	SubjectPrefix string
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Audience  string
	TTL       time.Duration
	// DevSecret enables POST /auth/dev-token when set.
	DevSecret string
}

type ImagesConfig struct {
	Dir      string
	MaxBytes int64
}

type OtelConfig struct {
	// Endpoint is the OTLP gRPC collector address. Empty disables export.
	Endpoint    string
	ServiceName string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("log_level", "info")
	v.SetDefault("storage_type", StorageMemory)

	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "barefoot")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("http.port", "8080")
	v.SetDefault("http.allowed_origins", "*")
	v.SetDefault("grpc.port", "9090")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 10*time.Minute)

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "barefoot")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "barefoot")
	v.SetDefault("auth.audience", "barefoot-api")
	v.SetDefault("auth.jwt_ttl", 60*time.Minute)
	v.SetDefault("auth.dev_secret", "")

	v.SetDefault("images.dir", "./data/images")
	v.SetDefault("images.max_bytes", 5<<20)

	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.service_name", "barefoot")
}

// LoadConfig reads configuration from the environment and, when path is set,
// from a config file. Environment variables win: postgres.user is read from
// POSTGRES_USER, auth.jwt_ttl from AUTH_JWT_TTL and so on.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := Config{
		Env:         v.GetString("env"),
		LogLevel:    v.GetString("log_level"),
		StorageType: strings.ToLower(v.GetString("storage_type")),
		Postgres: PostgresConfig{
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			DB:       v.GetString("postgres.db"),
			Host:     v.GetString("postgres.host"),
			Port:     v.GetInt("postgres.port"),
			SSLMode:  v.GetString("postgres.sslmode"),
		},
		HTTP: HTTPConfig{
			Port:           v.GetString("http.port"),
			AllowedOrigins: splitList(v.GetString("http.allowed_origins")),
		},
		GRPC: GRPCConfig{
			Port: v.GetString("grpc.port"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			CacheTTL: v.GetDuration("redis.cache_ttl"),
		},
		NATS: NATSConfig{
			URL:           v.GetString("nats.url"),
			SubjectPrefix: v.GetString("nats.subject_prefix"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			Issuer:    v.GetString("auth.issuer"),
			Audience:  v.GetString("auth.audience"),
			TTL:       v.GetDuration("auth.jwt_ttl"),
			DevSecret: v.GetString("auth.dev_secret"),
		},
		Images: ImagesConfig{
			Dir:      v.GetString("images.dir"),
			MaxBytes: v.GetInt64("images.max_bytes"),
		},
		Otel: OtelConfig{
			Endpoint:    v.GetString("otel.endpoint"),
			ServiceName: v.GetString("otel.service_name"),
		},
	}

	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.StorageType {
	case StorageMemory:
	case StoragePostgres:
		if c.Postgres.User == "" {
			errs = append(errs, errors.New("postgres.user is required"))
		}
		if c.Postgres.Host == "" {
			errs = append(errs, errors.New("postgres.host is required"))
		}
		if c.Postgres.DB == "" {
			errs = append(errs, errors.New("postgres.db is required"))
		}
		if c.Postgres.Port <= 0 {
			errs = append(errs, errors.New("postgres.port must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage_type %q is not one of %s, %s", c.StorageType, StorageMemory, StoragePostgres))
	}

	if c.HTTP.Port == "" {
		errs = append(errs, errors.New("http.port is required"))
	}
	if len(c.Auth.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d bytes", minJWTSecretLength))
	}
	if c.Auth.TTL <= 0 {
		errs = append(errs, errors.New("auth.jwt_ttl must be positive"))
	}
	if c.Images.MaxBytes <= 0 {
		errs = append(errs, errors.New("images.max_bytes must be positive"))
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
