package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "EVENTHUB"

type AppConfig struct {
	API       *APIConfig       `mapstructure:"api"`
	Gin       *GinConfig       `mapstructure:"gin"`
	DB        *DBConfig        `mapstructure:"db"`
	Postgres  *PostgresConfig  `mapstructure:"postgres"`
	Redis     *RedisConfig     `mapstructure:"redis"`
	RateLimit *RateLimitConfig `mapstructure:"rate_limit"`
	Broker    *BrokerConfig    `mapstructure:"broker"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	TrustedProxies     []string      `mapstructure:"trusted_proxies"`
	SessionSigningKey  string        `mapstructure:"session_signing_key"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	CookieSecure       bool          `mapstructure:"cookie_secure"`
	BcryptCost         int           `mapstructure:"bcrypt_cost"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

// DBConfig selects the storage backend. SQLite is meant for local runs.
type DBConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DB              string        `mapstructure:"db"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Window      time.Duration `mapstructure:"window"`
}

type BrokerConfig struct {
	Kind    string   `mapstructure:"kind"`
	URL     string   `mapstructure:"url"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Load reads the yaml file at path. Any key can be overridden from the
// environment, e.g. EVENTHUB_API_PORT or EVENTHUB_POSTGRES_HOST.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return decode(v)
}

// LoadAndWatch is Load plus a file watcher. onChange receives the freshly
// decoded config each time the file is written.
func LoadAndWatch(path string, onChange func(*AppConfig, error)) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		onChange(decode(v))
	})
	v.WatchConfig()

	return conf, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.session_ttl", 24*time.Hour)
	v.SetDefault("api.bcrypt_cost", 12)
	v.SetDefault("api.shutdown_timeout", 10*time.Second)
	v.SetDefault("gin.mode", "release")
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 25)
	v.SetDefault("postgres.max_idle_conns", 25)
	v.SetDefault("postgres.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.max_attempts", 10)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("broker.kind", "none")
	v.SetDefault("broker.topic", "booking.confirmed")
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *AppConfig) validate() error {
	if c.API == nil || c.Gin == nil || c.DB == nil || c.Postgres == nil ||
		c.Redis == nil || c.RateLimit == nil || c.Broker == nil {
		return fmt.Errorf("config is missing a section")
	}
	if len(c.API.SessionSigningKey) < 32 {
		return fmt.Errorf("api.session_signing_key must be at least 32 characters")
	}

	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("db.driver %q is not supported", c.DB.Driver)
	}

	switch c.Broker.Kind {
	case "none", "rabbitmq", "kafka":
	default:
		return fmt.Errorf("broker.kind %q is not supported", c.Broker.Kind)
	}

	return nil
}
