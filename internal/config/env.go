package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "CONTACTS_"

// APIKeyEnv holds the Google Geocoding key.
const APIKeyEnv = "GOOGLE_MAPS_API_KEY"

type envLookup func(name string) (string, bool)

// dotenvLookup prefers the process environment and falls back to the values
// read from envFile. A missing file is not an error.
func dotenvLookup(envFile string) (envLookup, error) {
	file := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			file = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	return func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		v, ok := file[name]
		return v, ok
	}, nil
}

func parseEnv(cfg *Config, envFile string) error {
	lookup, err := dotenvLookup(envFile)
	if err != nil {
		return err
	}

	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	var errs []error
	num := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}

	str(envPrefix+"STORE", &cfg.Store)
	str(envPrefix+"STATE_PATH", &cfg.StatePath)
	str(envPrefix+"STATE_KEY", &cfg.StateKey)
	str(envPrefix+"DSN", &cfg.DSN)
	str(envPrefix+"REDIS_ADDR", &cfg.RedisAddr)
	str(envPrefix+"REDIS_PASSWORD", &cfg.RedisPassword)
	num(envPrefix+"REDIS_DB", &cfg.RedisDB)
	str(envPrefix+"S3_BUCKET", &cfg.S3Bucket)
	str(envPrefix+"S3_REGION", &cfg.S3Region)
	str(envPrefix+"S3_ENDPOINT", &cfg.S3Endpoint)
	str(envPrefix+"S3_USER", &cfg.S3User)
	str(envPrefix+"S3_PASSWORD", &cfg.S3Password)
	str(envPrefix+"VIACEP_URL", &cfg.ViaCEPURL)
	str(envPrefix+"GEOCODE_URL", &cfg.GeocodeURL)
	str(APIKeyEnv, &cfg.GeocodeAPIKey)
	num(envPrefix+"LOCATE_CONCURRENCY", &cfg.LocateConcurrency)
	str(envPrefix+"LOG_LEVEL", &cfg.LogLevel)
	str(envPrefix+"METRICS_ADDR", &cfg.MetricsAddr)
	str(envPrefix+"OTLP_ENDPOINT", &cfg.OTLPEndpoint)

	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = d
		}
	}
	dur(envPrefix+"REQUEST_TIMEOUT", &cfg.RequestTimeout)
	dur(envPrefix+"CEP_DEBOUNCE", &cfg.CEPDebounce)

	if v, ok := lookup(envPrefix + "GEOCODE_RATE"); ok {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sGEOCODE_RATE: %w", envPrefix, err))
		} else {
			cfg.GeocodeRate = r
		}
	}
	return errors.Join(errs...)
}
