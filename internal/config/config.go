package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Catalog  CatalogConfig  `envPrefix:"CATALOG_"`
	Storage  StorageConfig  `envPrefix:"STORAGE_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	SQLite   SQLiteConfig   `envPrefix:"SQLITE_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Session  SessionConfig  `envPrefix:"SESSION_"`
	Log      LogConfig      `envPrefix:"LOG_"`
}

type ServerConfig struct {
	Addr string `env:"ADDR" envDefault:"0.0.0.0:8080"`
	// CORSOrigins is a regular expression matched against the Origin header of /api requests.
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"^https?://localhost(:[0-9]+)?$"`
}

type CatalogConfig struct {
	// Source is an http(s) URL or a file path of the products JSON document.
	Source  string        `env:"SOURCE" envDefault:"products.json"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Retries int           `env:"RETRIES" envDefault:"0"`
}

type StorageDriver string

const (
	StorageMemory StorageDriver = "memory"
	StorageMongo  StorageDriver = "mongo"
	StorageSQLite StorageDriver = "sqlite"
)

type StorageConfig struct {
	Driver StorageDriver `env:"DRIVER" envDefault:"memory"`
}

type DatabaseConfig struct {
	Hosts    []string `env:"HOSTS" envSeparator:"," envDefault:"localhost:27017"`
	Direct   bool     `env:"DIRECT" envDefault:"true"`
	Username string   `env:"USERNAME"`
	Password string   `env:"PASSWORD"`
	AuthDB   string   `env:"AUTH_DB" envDefault:"admin"`
	Database string   `env:"DATABASE" envDefault:"storefront"`
}

type SQLiteConfig struct {
	Path string `env:"PATH" envDefault:"data/storefront.db"`
}

type KafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"storefront.events"`
	Workers int      `env:"WORKERS" envDefault:"4"`
}

type SessionConfig struct {
	// Key is a base64 encoded 32 byte AES key sealing the shopper cookie.
	// A random key is generated at startup when empty, so shoppers get a
	// fresh profile after every restart.
	Key        string        `env:"KEY"`
	CookieName string        `env:"COOKIE_NAME" envDefault:"storefront_profile"`
	MaxAge     time.Duration `env:"MAX_AGE" envDefault:"8760h"`
	Secure     bool          `env:"SECURE" envDefault:"false"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// Load reads the optional .env files then parses the environment.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageMongo, StorageSQLite:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Catalog.Source == "" {
		return fmt.Errorf("catalog source is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers are required when kafka is enabled")
	}
	return nil
}
