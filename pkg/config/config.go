package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Bandit    BanditConfig
	Narrative NarrativeConfig
	Storage   StorageConfig
	Catalog   CatalogConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port            string
	AllowOrigins    []string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type BanditConfig struct {
	Alpha             float64
	ExplorationRatio  float64
	DefaultLimit      int
	PersistDebounce   time.Duration
	PersistTimeout    time.Duration
	MaxResidentModels int
	RecentViews       int
	RecentSearches    int
}

type NarrativeConfig struct {
	// empty means local template text only
	BaseURL           string
	BasicAuthUsername string
	BasicAuthPassword string
	Timeout           time.Duration
	Concurrency       int
}

const (
	ModelStorePostgres = "postgres"
	ModelStoreBolt     = "bolt"
	ModelStoreMemory   = "memory"

	ModelCacheNone   = "none"
	ModelCacheMemory = "memory"
	ModelCacheRedis  = "redis"

	CatalogPostgres = "postgres"
	CatalogFile     = "file"
)

type StorageConfig struct {
	ModelStore string
	BoltPath   string
	ModelCache string
	CacheTTL   time.Duration
}

type CatalogConfig struct {
	Source          string
	FilePath        string
	PoolLimit       int
	EligibilityRule string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "MyArtMarket Recommender"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			AllowOrigins:    splitList(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:8080")),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "my_art_market"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0, &errs),
		},
		Bandit: BanditConfig{
			Alpha:             getEnvFloat("BANDIT_ALPHA", 0.3, &errs),
			ExplorationRatio:  getEnvFloat("BANDIT_EXPLORATION_RATIO", 0.2, &errs),
			DefaultLimit:      getEnvInt("BANDIT_DEFAULT_LIMIT", 6, &errs),
			PersistDebounce:   getEnvDuration("BANDIT_PERSIST_DEBOUNCE", 5*time.Second, &errs),
			PersistTimeout:    getEnvDuration("BANDIT_PERSIST_TIMEOUT", 5*time.Second, &errs),
			MaxResidentModels: getEnvInt("BANDIT_MAX_RESIDENT_MODELS", 10000, &errs),
			RecentViews:       getEnvInt("BANDIT_RECENT_VIEWS", 10, &errs),
			RecentSearches:    getEnvInt("BANDIT_RECENT_SEARCHES", 5, &errs),
		},
		Narrative: NarrativeConfig{
			BaseURL:           getEnv("NARRATIVE_BASE_URL", ""),
			BasicAuthUsername: getEnv("NARRATIVE_BASIC_AUTH_USERNAME", ""),
			BasicAuthPassword: getEnv("NARRATIVE_BASIC_AUTH_PASSWORD", ""),
			Timeout:           getEnvDuration("NARRATIVE_TIMEOUT", 2*time.Second, &errs),
			Concurrency:       getEnvInt("NARRATIVE_CONCURRENCY", 8, &errs),
		},
		Storage: StorageConfig{
			ModelStore: strings.ToLower(getEnv("MODEL_STORE", ModelStorePostgres)),
			BoltPath:   getEnv("MODEL_BOLT_PATH", "data/models.db"),
			ModelCache: strings.ToLower(getEnv("MODEL_CACHE", ModelCacheMemory)),
			CacheTTL:   getEnvDuration("MODEL_CACHE_TTL", time.Hour, &errs),
		},
		Catalog: CatalogConfig{
			Source:          strings.ToLower(getEnv("CATALOG_SOURCE", CatalogPostgres)),
			FilePath:        getEnv("CATALOG_FILE", "catalog.yaml"),
			PoolLimit:       getEnvInt("CATALOG_POOL_LIMIT", 500, &errs),
			EligibilityRule: getEnv("CATALOG_ELIGIBILITY_RULE", ""),
		},
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return errors.New("missing jwt secret")
	}

	switch c.Storage.ModelStore {
	case ModelStorePostgres, ModelStoreBolt, ModelStoreMemory:
	default:
		return fmt.Errorf("unknown model store %q", c.Storage.ModelStore)
	}
	switch c.Storage.ModelCache {
	case ModelCacheNone, ModelCacheMemory, ModelCacheRedis:
	default:
		return fmt.Errorf("unknown model cache %q", c.Storage.ModelCache)
	}
	switch c.Catalog.Source {
	case CatalogPostgres, CatalogFile:
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}

	if c.NeedsPostgres() && c.Database.Password == "" {
		return errors.New("missing database password")
	}

	if c.Bandit.Alpha < 0 {
		return errors.New("bandit alpha must not be negative")
	}
	if c.Bandit.ExplorationRatio < 0 || c.Bandit.ExplorationRatio > 1 {
		return errors.New("bandit exploration ratio must be within [0, 1]")
	}

	return nil
}

// NeedsPostgres reports whether any configured component reads the database.
func (c *Config) NeedsPostgres() bool {
	return c.Storage.ModelStore == ModelStorePostgres || c.Catalog.Source == CatalogPostgres
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int, errs *[]error) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultVal
	}
	return n
}

func getEnvFloat(key string, defaultVal float64, errs *[]error) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration, errs *[]error) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultVal
	}
	return d
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
