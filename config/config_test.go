package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Full", func(t *testing.T) {
		path := writeConfig(t, `
log_level: debug
http_server_addr: 0.0.0.0:9000
api:
  base_url: http://shop.local/api
  timeout: 3s
storage:
  driver: redis
  redis_addr: 127.0.0.1:6379
  redis_db: 2
persistence:
  async: true
  write_attempts: 5
broker:
  seed_brokers: [kafka-1:9092, kafka-2:9092]
  schema_registry_urls: [http://sr:8081]
user:
  id: u42
`)
		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.Equal(t, "0.0.0.0:9000", cfg.HTTPServerAddr)
		assert.Equal(t, 5*time.Second, cfg.HTTPHandlerTimeout)
		assert.Equal(t, "http://shop.local/api", cfg.API.BaseURL)
		assert.Equal(t, 3*time.Second, cfg.API.Timeout)
		assert.Equal(t, DriverRedis, cfg.Storage.Driver)
		assert.Equal(t, 2, cfg.Storage.RedisDB)
		assert.Equal(t, "shop:", cfg.Storage.RedisKeyPrefix)
		assert.True(t, cfg.Persistence.Async)
		assert.Equal(t, 5, cfg.Persistence.WriteAttempts)
		assert.True(t, cfg.Broker.Enabled())
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Broker.SeedBrokers)
		assert.Equal(t, "product_purchases", cfg.Broker.Topics.ProductPurchases)
		assert.Equal(t, "popularity", cfg.Broker.Groups.Popularity)
		assert.Equal(t, int32(3), cfg.Broker.Partitions)
		assert.Equal(t, int16(3), cfg.Broker.ReplicationFactor)
		assert.False(t, cfg.Broker.TLS.Enabled())
		assert.Equal(t, "u42", cfg.User.ID)
	})

	t.Run("Defaults", func(t *testing.T) {
		path := writeConfig(t, `
api:
  base_url: http://shop.local/api
`)
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
		assert.Equal(t, DriverLevelDB, cfg.Storage.Driver)
		assert.Equal(t, "shop.db", cfg.Storage.LevelDBPath)
		assert.Equal(t, 3, cfg.Persistence.WriteAttempts)
		assert.Equal(t, "guest", cfg.User.ID)
		assert.False(t, cfg.Broker.Enabled())
	})

	t.Run("UnknownKey", func(t *testing.T) {
		path := writeConfig(t, `
api:
  base_url: http://shop.local/api
unknown_key: 1
`)
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{}
	valid.API.BaseURL = "http://shop.local"
	valid.Storage.Driver = DriverMemory
	valid.Persistence.WriteAttempts = 1
	valid.Broker.Partitions = 1
	valid.Broker.ReplicationFactor = 1
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"NoBaseURL", func(c *Config) { c.API.BaseURL = "" }},
		{"UnknownDriver", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"NoLevelDBPath", func(c *Config) { c.Storage.Driver = DriverLevelDB }},
		{"NoRedisAddr", func(c *Config) { c.Storage.Driver = DriverRedis }},
		{"NoSQLDB", func(c *Config) { c.Storage.Driver = DriverPostgres }},
		{"NoAttempts", func(c *Config) { c.Persistence.WriteAttempts = 0 }},
		{"NoRegistry", func(c *Config) { c.Broker.SeedBrokers = []string{"k:9092"} }},
		{"NoPartitions", func(c *Config) { c.Broker.Partitions = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
