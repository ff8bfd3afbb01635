package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MODEL_STORE", "memory")
	t.Setenv("CATALOG_SOURCE", "file")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8080"}, cfg.Server.AllowOrigins)
	assert.Equal(t, 0.3, cfg.Bandit.Alpha)
	assert.Equal(t, 0.2, cfg.Bandit.ExplorationRatio)
	assert.Equal(t, 6, cfg.Bandit.DefaultLimit)
	assert.Equal(t, 5*time.Second, cfg.Bandit.PersistDebounce)
	assert.Equal(t, ModelCacheMemory, cfg.Storage.ModelCache)
	assert.False(t, cfg.NeedsPostgres())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MODEL_STORE", "BOLT")
	t.Setenv("CATALOG_SOURCE", "file")
	t.Setenv("BANDIT_ALPHA", "0.5")
	t.Setenv("BANDIT_PERSIST_DEBOUNCE", "250ms")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ModelStoreBolt, cfg.Storage.ModelStore)
	assert.Equal(t, 0.5, cfg.Bandit.Alpha)
	assert.Equal(t, 250*time.Millisecond, cfg.Bandit.PersistDebounce)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowOrigins)
}

func TestLoad_CollectsParseErrors(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("BANDIT_ALPHA", "lots")
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BANDIT_ALPHA")
	assert.Contains(t, err.Error(), "REDIS_DB")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWT:      JWTConfig{SecretKey: "x"},
			Database: DatabaseConfig{Password: "pw"},
			Storage:  StorageConfig{ModelStore: ModelStorePostgres, ModelCache: ModelCacheRedis},
			Catalog:  CatalogConfig{Source: CatalogPostgres},
			Bandit:   BanditConfig{Alpha: 0.3, ExplorationRatio: 0.2},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "no jwt secret", mutate: func(c *Config) { c.JWT.SecretKey = "" }},
		{name: "unknown store", mutate: func(c *Config) { c.Storage.ModelStore = "s3" }},
		{name: "unknown cache", mutate: func(c *Config) { c.Storage.ModelCache = "memcached" }},
		{name: "unknown catalog", mutate: func(c *Config) { c.Catalog.Source = "csv" }},
		{name: "postgres without password", mutate: func(c *Config) { c.Database.Password = "" }},
		{name: "negative alpha", mutate: func(c *Config) { c.Bandit.Alpha = -1 }},
		{name: "ratio above one", mutate: func(c *Config) { c.Bandit.ExplorationRatio = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	// nothing reads postgres, so no password is needed
	c := valid()
	c.Database.Password = ""
	c.Storage.ModelStore = ModelStoreBolt
	c.Catalog.Source = CatalogFile
	assert.NoError(t, c.Validate())
}
