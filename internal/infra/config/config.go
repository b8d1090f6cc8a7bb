package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Development placeholders substituted for missing secrets, but only when the
// deployment explicitly runs with app.env=development. Production refuses to
// start on missing secrets instead of silently using these.
const (
	devJWTSecret     = "dev-only-insecure-jwt-secret"
	devEncryptionKey = "dev-only-insecure-encryption-key"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Auth      AuthSettings      `mapstructure:"auth"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Cookie    CookieSettings    `mapstructure:"cookie"`
	CORS      CORSSettings      `mapstructure:"cors"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name      string `mapstructure:"name"`
	Env       string `mapstructure:"env"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	LoginPath string `mapstructure:"login_path"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the Redis connection backing the rate-limit and
// CSRF stores. An empty host keeps both stores in process memory.
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// KafkaSettings configures the security-event producer.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// AuthSettings configures token issuance and crypto secrets.
type AuthSettings struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	EncryptionKey  string        `mapstructure:"encryption_key"`
}

// RateLimitSettings configures per-category fixed windows.
type RateLimitSettings struct {
	GenericLimit        int           `mapstructure:"generic_limit"`
	GenericWindow       time.Duration `mapstructure:"generic_window"`
	LoginLimit          int           `mapstructure:"login_limit"`
	LoginWindow         time.Duration `mapstructure:"login_window"`
	RegistrationLimit   int           `mapstructure:"registration_limit"`
	RegistrationWindow  time.Duration `mapstructure:"registration_window"`
	PasswordResetLimit  int           `mapstructure:"password_reset_limit"`
	PasswordResetWindow time.Duration `mapstructure:"password_reset_window"`
}

// CookieSettings configures the session cookie defaults.
type CookieSettings struct {
	Domain string        `mapstructure:"domain"`
	MaxAge time.Duration `mapstructure:"max_age"`
}

// CORSSettings lists the browser origins allowed to call the API with
// credentials. An empty list disables cross-origin access entirely.
type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type TelemetrySettings struct {
	Namespace string `mapstructure:"namespace"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("IAM")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.login_path",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.key_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"auth.jwt_secret",
		"auth.issuer",
		"auth.access_token_ttl",
		"auth.encryption_key",
		"rate_limit.generic_limit",
		"rate_limit.generic_window",
		"rate_limit.login_limit",
		"rate_limit.login_window",
		"rate_limit.registration_limit",
		"rate_limit.registration_window",
		"rate_limit.password_reset_limit",
		"rate_limit.password_reset_window",
		"cookie.domain",
		"cookie.max_age",
		"cors.allowed_origins",
		"telemetry.namespace",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// IsDevelopment reports whether the deployment explicitly opted into
// development mode.
func (c *AppConfig) IsDevelopment() bool {
	return c.App.Env == "development"
}

// ApplySecretFallbacks fills missing secrets with development placeholders in
// development mode and fails loudly anywhere else.
func (c *AppConfig) ApplySecretFallbacks(log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("config: auth.jwt_secret is required outside development")
		}
		log.Warn("auth.jwt_secret not set, using insecure development placeholder")
		c.Auth.JWTSecret = devJWTSecret
	}

	if strings.TrimSpace(c.Auth.EncryptionKey) == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("config: auth.encryption_key is required outside development")
		}
		log.Warn("auth.encryption_key not set, using insecure development placeholder")
		c.Auth.EncryptionKey = devEncryptionKey
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "platform-iam")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.login_path", "/login")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "iam")
	v.SetDefault("postgres.password", "iam_password")
	v.SetDefault("postgres.database", "iam")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.key_prefix", "iam")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "iam")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "platform-iam")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.encryption_key", "")

	v.SetDefault("rate_limit.generic_limit", 60)
	v.SetDefault("rate_limit.generic_window", "1m")
	v.SetDefault("rate_limit.login_limit", 5)
	v.SetDefault("rate_limit.login_window", "1m")
	v.SetDefault("rate_limit.registration_limit", 3)
	v.SetDefault("rate_limit.registration_window", "1h")
	v.SetDefault("rate_limit.password_reset_limit", 3)
	v.SetDefault("rate_limit.password_reset_window", "1h")

	v.SetDefault("cookie.domain", "")
	v.SetDefault("cookie.max_age", "168h")

	v.SetDefault("cors.allowed_origins", []string{})

	v.SetDefault("telemetry.namespace", "iam")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "IAM_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
