package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/filex"
	"github.com/dmitrijs2005/contactkeeper/internal/validation"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreS3       = "s3"
)

type Config struct {
	Store     string `validate:"oneof=memory file sqlite postgres redis s3"`
	StatePath string
	StateKey  string `validate:"required"`

	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3User     string
	S3Password string

	ViaCEPURL     string `validate:"required,url"`
	GeocodeURL    string `validate:"required,url"`
	GeocodeAPIKey string

	RequestTimeout    time.Duration `validate:"gt=0"`
	CEPDebounce       time.Duration `validate:"gte=0"`
	GeocodeRate       float64       `validate:"gt=0"`
	LocateConcurrency int           `validate:"gte=1"`

	LogLevel     string `validate:"oneof=debug info warn warning error"`
	MetricsAddr  string
	OTLPEndpoint string
}

// LoadDefaults populates c with defaults: a JSON file under the user config
// dir, the public ViaCEP and Google endpoints and a 5s lookup timeout.
func (c *Config) LoadDefaults() {
	c.Store = StoreFile
	c.StatePath = filex.DefaultStatePath("contacts.json")
	c.StateKey = "appState"
	c.DSN = filex.DefaultStatePath("contacts.db")
	c.RedisAddr = "127.0.0.1:6379"
	c.S3Region = "us-east-1"
	c.ViaCEPURL = "https://viacep.com.br/ws"
	c.GeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	c.RequestTimeout = 5 * time.Second
	c.CEPDebounce = 300 * time.Millisecond
	c.GeocodeRate = 10
	c.LocateConcurrency = 4
	c.LogLevel = "info"
}

// Validate checks field values and backend prerequisites.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	switch c.Store {
	case StoreFile:
		if c.StatePath == "" {
			return fmt.Errorf("store %q needs a state path", c.Store)
		}
	case StoreSQLite, StorePostgres:
		if c.DSN == "" {
			return fmt.Errorf("store %q needs a dsn", c.Store)
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("store %q needs a redis address", c.Store)
		}
	case StoreS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("store %q needs a bucket", c.Store)
		}
	}
	return nil
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and os.Args, in that order, and validates the result.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], ".env")
}

func load(args []string, envFile string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, envFile); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
