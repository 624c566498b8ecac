// Package config loads the service configuration from an optional YAML
// file with environment-variable overrides on top, so container
// deployments can run file-less.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MongoConfig connects the document backend.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// CosmosConfig connects the partitioned backend. Left empty, the backend
// is not registered and requests selecting it fail with a clear error.
type CosmosConfig struct {
	Endpoint string `yaml:"endpoint"`
	Key      string `yaml:"key"`
	Database string `yaml:"database"`
}

// BlobConfig connects Azure Blob Storage for file attachments. Left
// empty, attachments fall back to caller-provided URLs.
type BlobConfig struct {
	AccountName string `yaml:"account_name"`
	AccountKey  string `yaml:"account_key"`
	Container   string `yaml:"container"`
}

// Config is the full service configuration.
type Config struct {
	HTTPPort string       `yaml:"http_port"`
	Mongo    MongoConfig  `yaml:"mongo"`
	Cosmos   CosmosConfig `yaml:"cosmos"`
	Blob     BlobConfig   `yaml:"blob"`
}

// Load reads the YAML file when the path is non-empty, then applies
// environment overrides and defaults.
func Load(filename string) (*Config, error) {
	cfg := &Config{}

	if filename != "" {
		file, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("opening config file: %w", err)
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overlay(&c.HTTPPort, "HTTP_PORT")
	overlay(&c.Mongo.URI, "MONGO_URI")
	overlay(&c.Mongo.Database, "MONGO_DATABASE")
	overlay(&c.Cosmos.Endpoint, "COSMOS_ENDPOINT")
	overlay(&c.Cosmos.Key, "COSMOS_KEY")
	overlay(&c.Cosmos.Database, "COSMOS_DATABASE")
	overlay(&c.Blob.AccountName, "AZURE_STORAGE_ACCOUNT")
	overlay(&c.Blob.AccountKey, "AZURE_STORAGE_KEY")
	overlay(&c.Blob.Container, "AZURE_STORAGE_CONTAINER")
}

func (c *Config) applyDefaults() {
	if c.HTTPPort == "" {
		c.HTTPPort = "8080"
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "catalog"
	}
	if c.Cosmos.Database == "" {
		c.Cosmos.Database = "catalog"
	}
	if c.Blob.Container == "" {
		c.Blob.Container = "product-files"
	}
}

// CosmosEnabled reports whether the partitioned backend is configured.
func (c *Config) CosmosEnabled() bool {
	return c.Cosmos.Endpoint != "" && c.Cosmos.Key != ""
}

// BlobEnabled reports whether blob storage is configured.
func (c *Config) BlobEnabled() bool {
	return c.Blob.AccountName != "" && c.Blob.AccountKey != ""
}

func overlay(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}
