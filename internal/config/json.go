package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/contactkeeper/internal/flagx"
	"github.com/dmitrijs2005/contactkeeper/internal/timex"
)

// JsonConfig is the on-disk shape. Keys missing from the file keep the value
// the Config already had.
type JsonConfig struct {
	Store             string         `json:"store"`
	StatePath         string         `json:"state_path"`
	StateKey          string         `json:"state_key"`
	DSN               string         `json:"dsn"`
	RedisAddr         string         `json:"redis_addr"`
	RedisPassword     string         `json:"redis_password"`
	RedisDB           int            `json:"redis_db"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3Endpoint        string         `json:"s3_endpoint"`
	S3User            string         `json:"s3_user"`
	S3Password        string         `json:"s3_password"`
	ViaCEPURL         string         `json:"viacep_url"`
	GeocodeURL        string         `json:"geocode_url"`
	GeocodeAPIKey     string         `json:"geocode_api_key"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	CEPDebounce       timex.Duration `json:"cep_debounce"`
	GeocodeRate       float64        `json:"geocode_rate"`
	LocateConcurrency int            `json:"locate_concurrency"`
	LogLevel          string         `json:"log_level"`
	MetricsAddr       string         `json:"metrics_addr"`
	OTLPEndpoint      string         `json:"otlp_endpoint"`
}

func toJson(c *Config) JsonConfig {
	return JsonConfig{
		Store: c.Store, StatePath: c.StatePath, StateKey: c.StateKey, DSN: c.DSN,
		RedisAddr: c.RedisAddr, RedisPassword: c.RedisPassword, RedisDB: c.RedisDB,
		S3Bucket: c.S3Bucket, S3Region: c.S3Region, S3Endpoint: c.S3Endpoint,
		S3User: c.S3User, S3Password: c.S3Password,
		ViaCEPURL: c.ViaCEPURL, GeocodeURL: c.GeocodeURL, GeocodeAPIKey: c.GeocodeAPIKey,
		RequestTimeout:    timex.Duration{Duration: c.RequestTimeout},
		CEPDebounce:       timex.Duration{Duration: c.CEPDebounce},
		GeocodeRate:       c.GeocodeRate,
		LocateConcurrency: c.LocateConcurrency,
		LogLevel:          c.LogLevel, MetricsAddr: c.MetricsAddr, OTLPEndpoint: c.OTLPEndpoint,
	}
}

func (jc JsonConfig) apply(c *Config) {
	c.Store, c.StatePath, c.StateKey, c.DSN = jc.Store, jc.StatePath, jc.StateKey, jc.DSN
	c.RedisAddr, c.RedisPassword, c.RedisDB = jc.RedisAddr, jc.RedisPassword, jc.RedisDB
	c.S3Bucket, c.S3Region, c.S3Endpoint = jc.S3Bucket, jc.S3Region, jc.S3Endpoint
	c.S3User, c.S3Password = jc.S3User, jc.S3Password
	c.ViaCEPURL, c.GeocodeURL, c.GeocodeAPIKey = jc.ViaCEPURL, jc.GeocodeURL, jc.GeocodeAPIKey
	c.RequestTimeout = jc.RequestTimeout.Duration
	c.CEPDebounce = jc.CEPDebounce.Duration
	c.GeocodeRate = jc.GeocodeRate
	c.LocateConcurrency = jc.LocateConcurrency
	c.LogLevel, c.MetricsAddr, c.OTLPEndpoint = jc.LogLevel, jc.MetricsAddr, jc.OTLPEndpoint
}

// parseJson overlays cfg with the file named by -c/-config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	jc := toJson(cfg)
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	jc.apply(cfg)
	return nil
}
