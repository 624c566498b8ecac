package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("no file yields defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.HTTPPort)
		assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
		assert.Equal(t, "catalog", cfg.Mongo.Database)
		assert.False(t, cfg.CosmosEnabled())
		assert.False(t, cfg.BlobEnabled())
	})

	t.Run("YAML file values are read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
http_port: "9000"
mongo:
  uri: mongodb://db:27017
  database: catalog_test
cosmos:
  endpoint: https://cosmos.test:443
  key: secret
blob:
  account_name: acct
  account_key: key
  container: files
`), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "9000", cfg.HTTPPort)
		assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
		assert.Equal(t, "catalog_test", cfg.Mongo.Database)
		assert.True(t, cfg.CosmosEnabled())
		assert.True(t, cfg.BlobEnabled())
	})

	t.Run("environment overrides file values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("http_port: \"9000\"\n"), 0o600))
		t.Setenv("HTTP_PORT", "9999")
		t.Setenv("MONGO_DATABASE", "from_env")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "9999", cfg.HTTPPort)
		assert.Equal(t, "from_env", cfg.Mongo.Database)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := Load("/nonexistent/config.yaml")
		assert.Error(t, err)
	})

	t.Run("malformed YAML is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("http_port: [unclosed"), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
