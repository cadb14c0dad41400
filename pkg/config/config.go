package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TCOMMERCE_APP_ENV" required:"true"`
	Port         string `envconfig:"TCOMMERCE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TCOMMERCE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TCOMMERCE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TCOMMERCE_DB_DSN"`
	Driver string `envconfig:"TCOMMERCE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TCOMMERCE_DB_HOST"`
	Port     int    `envconfig:"TCOMMERCE_DB_PORT" default:"5432"`
	User     string `envconfig:"TCOMMERCE_DB_USER"`
	Password string `envconfig:"TCOMMERCE_DB_PASSWORD"`
	Name     string `envconfig:"TCOMMERCE_DB_NAME"`
	SSLMode  string `envconfig:"TCOMMERCE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TCOMMERCE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TCOMMERCE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TCOMMERCE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TCOMMERCE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either TCOMMERCE_DB_DSN or host/user/name settings are required")
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	query := dsn.Query()
	query.Set("sslmode", d.SSLMode)
	dsn.RawQuery = query.Encode()
	d.DSN = dsn.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"TCOMMERCE_REDIS_URL"`
	Address      string        `envconfig:"TCOMMERCE_REDIS_ADDR"`
	Password     string        `envconfig:"TCOMMERCE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TCOMMERCE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TCOMMERCE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TCOMMERCE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TCOMMERCE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TCOMMERCE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TCOMMERCE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TCOMMERCE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TCOMMERCE_JWT_ISSUER" default:"tcommerce"`
	ExpirationMinutes int    `envconfig:"TCOMMERCE_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TCOMMERCE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TCOMMERCE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TCOMMERCE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TCOMMERCE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TCOMMERCE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TCOMMERCE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"TCOMMERCE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"TCOMMERCE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"TCOMMERCE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"TCOMMERCE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"TCOMMERCE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"TCOMMERCE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TCOMMERCE_AUTO_MIGRATE" default:"false"`
}
