// Package bootstrap wires the recommender from configuration. Both the HTTP
// server and the CLI build on it so they read and write the same models.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"myArtMarket/business/bandit"
	"myArtMarket/business/recommendation"
	"myArtMarket/internal/repository/bolt"
	"myArtMarket/internal/repository/catalogfile"
	"myArtMarket/internal/repository/memory"
	"myArtMarket/internal/repository/narrative"
	psqlRepo "myArtMarket/internal/repository/postgres"
	redisRepo "myArtMarket/internal/repository/redis"
	"myArtMarket/pkg/config"
	"myArtMarket/pkg/database"
	redisdb "myArtMarket/pkg/database/redis"
	"myArtMarket/pkg/logger"

	"gorm.io/gorm"
)

type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Store   *bandit.ModelStore
	Service *recommendation.Service

	// set when the catalog comes from a YAML file
	CatalogFile *catalogfile.Catalog

	closers []func() error
}

// Build opens every configured backend. ctx bounds background watchers, not
// the lifetime of the returned App; call Close when done.
func Build(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			a.closeAll()
		}
	}()

	if cfg.NeedsPostgres() {
		db, err := database.InitPostgres(cfg)
		if err != nil {
			return nil, err
		}
		if err := psqlRepo.AutoMigrate(db); err != nil {
			return nil, err
		}
		a.DB = db
		a.closers = append(a.closers, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		logger.Info("Database connected successfully")
	}

	durable, err := a.modelRepository()
	if err != nil {
		return nil, err
	}

	var opts []bandit.StoreOption
	cache, err := a.modelCache(ctx)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		opts = append(opts, bandit.WithCache(cache))
	}

	banditCfg := BanditConfig(cfg)
	a.Store = bandit.NewModelStore(durable, banditCfg, opts...)

	catalog, err := a.catalog(ctx)
	if err != nil {
		return nil, err
	}

	var (
		activity recommendation.ActivityRepository
		feedback recommendation.FeedbackRepository
	)
	if a.DB != nil {
		activity = psqlRepo.NewActivityRepository(a.DB, banditCfg.RecentViews, banditCfg.RecentSearches)
		feedback = psqlRepo.NewBanditRepository(a.DB)
	}

	var narrator recommendation.Narrator
	if cfg.Narrative.BaseURL != "" {
		narrator = narrative.NewHTTPNarrator(narrative.Config{
			BaseURL:           cfg.Narrative.BaseURL,
			BasicAuthUsername: cfg.Narrative.BasicAuthUsername,
			BasicAuthPassword: cfg.Narrative.BasicAuthPassword,
			Timeout:           cfg.Narrative.Timeout,
		})
	}

	var eligibility recommendation.EligibilityChecker
	if cfg.Catalog.EligibilityRule != "" {
		rule, err := recommendation.NewRuleEligibilityChecker(cfg.Catalog.EligibilityRule)
		if err != nil {
			return nil, err
		}
		eligibility = rule
	}

	a.Service = recommendation.NewService(
		catalog,
		activity,
		feedback,
		a.Store,
		narrator,
		eligibility,
		recommendation.Config{
			Bandit:               banditCfg,
			NarrativeTimeout:     cfg.Narrative.Timeout,
			NarrativeConcurrency: cfg.Narrative.Concurrency,
		},
	)

	logger.Info("Recommender ready",
		"model_store", cfg.Storage.ModelStore,
		"model_cache", cfg.Storage.ModelCache,
		"catalog", cfg.Catalog.Source,
		"narrative", cfg.Narrative.BaseURL != "",
	)
	return a, nil
}

// BanditConfig maps environment settings onto the model store config.
func BanditConfig(cfg *config.Config) bandit.Config {
	bc := bandit.DefaultConfig()
	bc.Alpha = cfg.Bandit.Alpha
	bc.ExplorationRatio = cfg.Bandit.ExplorationRatio
	bc.DefaultLimit = cfg.Bandit.DefaultLimit
	bc.PersistDebounce = cfg.Bandit.PersistDebounce
	bc.PersistTimeout = cfg.Bandit.PersistTimeout
	bc.MaxResidentModels = cfg.Bandit.MaxResidentModels
	bc.RecentViews = cfg.Bandit.RecentViews
	bc.RecentSearches = cfg.Bandit.RecentSearches
	return bc
}

func (a *App) modelRepository() (bandit.ModelRepository, error) {
	switch a.Config.Storage.ModelStore {
	case config.ModelStorePostgres:
		return psqlRepo.NewBanditRepository(a.DB), nil
	case config.ModelStoreBolt:
		path := a.Config.Storage.BoltPath
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create bolt dir: %w", err)
		}
		repo, err := bolt.Open(path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	default:
		logger.Warn("Model store is memory only; models are lost on restart")
		return nil, nil
	}
}

func (a *App) modelCache(ctx context.Context) (bandit.ModelCache, error) {
	switch a.Config.Storage.ModelCache {
	case config.ModelCacheRedis:
		client, err := redisdb.NewClient(ctx, a.Config.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return redisRepo.NewModelCache(client, a.Config.Storage.CacheTTL), nil
	case config.ModelCacheMemory:
		return memory.NewModelCache(a.Config.Storage.CacheTTL), nil
	default:
		return nil, nil
	}
}

func (a *App) catalog(ctx context.Context) (recommendation.CatalogSource, error) {
	if a.Config.Catalog.Source == config.CatalogFile {
		c, err := catalogfile.Load(a.Config.Catalog.FilePath)
		if err != nil {
			return nil, err
		}
		if err := c.Watch(ctx, nil); err != nil {
			logger.Warn("Catalog hot reload disabled", "path", a.Config.Catalog.FilePath, "error", err)
		}
		a.CatalogFile = c
		return c, nil
	}
	return psqlRepo.NewArtworkRepository(a.DB, a.Config.Catalog.PoolLimit), nil
}

// Close flushes pending model writes and releases every backend.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Store != nil {
		if err := a.Store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush models: %w", err))
		}
	}
	if err := a.closeAll(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
