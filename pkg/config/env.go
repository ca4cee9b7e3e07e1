package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvAddr          = "LINKSCOPE_ADDR"
	EnvRedisURL      = "LINKSCOPE_REDIS_URL"
	EnvMongoURI      = "LINKSCOPE_MONGO_URI"
	EnvMongoDatabase = "LINKSCOPE_MONGO_DATABASE"
	EnvCacheDir      = "LINKSCOPE_CACHE_DIR"
	EnvCacheNS       = "LINKSCOPE_CACHE_NAMESPACE"
)

// ApplyEnv overrides settings from the environment. Empty values are
// ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for env, field := range map[string]*string{
		EnvAddr:          &c.Server.Addr,
		EnvRedisURL:      &c.Storage.RedisURL,
		EnvMongoURI:      &c.Storage.MongoURI,
		EnvMongoDatabase: &c.Storage.MongoDatabase,
		EnvCacheDir:      &c.Storage.CacheDir,
		EnvCacheNS:       &c.Storage.CacheNamespace,
	} {
		if v, ok := lookup(env); ok && v != "" {
			*field = v
		}
	}
}

// LoadDotenv loads variables from the given .env files (".env" if none)
// into the process environment. Files that don't exist are skipped and
// variables already set are kept.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(filepath.Clean(f)); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}
