package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/contactkeeper/internal/config"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/lookup"
	"github.com/dmitrijs2005/contactkeeper/internal/services"
	"github.com/dmitrijs2005/contactkeeper/internal/state"
	"github.com/dmitrijs2005/contactkeeper/internal/state/pgstore"
	"github.com/dmitrijs2005/contactkeeper/internal/state/redisstore"
	"github.com/dmitrijs2005/contactkeeper/internal/state/s3store"
	"github.com/dmitrijs2005/contactkeeper/internal/state/sqlitestore"
)

// OpenStore opens the state backend selected by cfg.Store.
func OpenStore(ctx context.Context, cfg *config.Config) (state.Store, error) {
	var (
		st  state.Store
		err error
	)
	switch cfg.Store {
	case config.StoreMemory:
		st = state.NewMemoryStore()
	case config.StoreFile:
		var fs *state.FileStore
		if fs, err = state.NewFileStore(cfg.StatePath); err == nil {
			st = fs
		}
	case config.StoreSQLite:
		var s *sqlitestore.Store
		if s, err = sqlitestore.Open(ctx, cfg.DSN, cfg.StateKey); err == nil {
			st = s
		}
	case config.StorePostgres:
		var s *pgstore.Store
		if s, err = pgstore.Open(ctx, cfg.DSN, cfg.StateKey); err == nil {
			st = s
		}
	case config.StoreRedis:
		var s *redisstore.Store
		if s, err = redisstore.Open(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.StateKey,
		}); err == nil {
			st = s
		}
	case config.StoreS3:
		var s *s3store.Store
		if s, err = s3store.Open(ctx, s3store.Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			User:     cfg.S3User,
			Password: cfg.S3Password,
			Key:      cfg.StateKey,
		}); err == nil {
			st = s
		}
	default:
		err = fmt.Errorf("unknown store %q", cfg.Store)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Build wires the services and lookup clients for cfg into an App. The
// returned close func releases the store.
func Build(ctx context.Context, cfg *config.Config, logger logging.Logger, in io.Reader, out io.Writer) (*App, func() error, error) {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	logger.Debug(ctx, "state store opened", "store", cfg.Store, "key", cfg.StateKey)

	httpClient := lookup.NewHTTPClient(cfg.RequestTimeout)
	viacep := lookup.NewViaCEPClient(cfg.ViaCEPURL, httpClient, logger)
	geo := lookup.NewGeocodeClient(cfg.GeocodeURL, cfg.GeocodeAPIKey, httpClient, cfg.GeocodeRate, logger)
	if cfg.GeocodeAPIKey == "" {
		logger.Warn(ctx, "GOOGLE_MAPS_API_KEY is not set, geocoding will be rejected")
	}

	accounts := services.NewAccountService(st, logger)
	contacts := services.NewContactDirectory(st, logger)
	locator := services.NewLocator(contacts, geo, cfg.LocateConcurrency, logger)

	app := NewApp(Deps{
		Accounts:    accounts,
		Contacts:    contacts,
		Addresses:   viacep,
		Locator:     locator,
		Logger:      logger,
		CEPDebounce: cfg.CEPDebounce,
	}, in, out)
	return app, st.Close, nil
}
