// Package config loads application settings from defaults, an optional YAML
// file, CLAUSE_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/benjaminschreck/go-clause/pkg/clause"
)

// EnvPrefix prefixes every environment variable, e.g. CLAUSE_HTTP_ADDR.
const EnvPrefix = "CLAUSE"

// Keys used in config files and for flag binding.
const (
	KeyLogLevel        = "log_level"
	KeyCacheMaxSize    = "cache.max_size"
	KeyCacheTTL        = "cache.ttl"
	KeyImportHint      = "import.hint"
	KeyHTTPAddr        = "http.addr"
	KeyShutdownTimeout = "http.shutdown_timeout"
	KeyMaxUploadBytes  = "http.max_upload_bytes"
	KeyMongoURI        = "mongo.uri"
	KeyMongoDatabase   = "mongo.database"
	KeyRedisAddr       = "redis.addr"
	KeyRedisTTL        = "redis.ttl"
)

// Settings is the full application configuration.
type Settings struct {
	Engine clause.Config
	HTTP   HTTPSettings
	Mongo  MongoSettings
	Redis  RedisSettings
}

// HTTPSettings configures the API server.
type HTTPSettings struct {
	Addr            string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

// MongoSettings selects the template database. An empty URI means in-memory storage.
type MongoSettings struct {
	URI      string
	Database string
}

// RedisSettings configures the template cache. An empty address disables it.
type RedisSettings struct {
	Addr string
	TTL  time.Duration
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()

	defaults := clause.DefaultConfig()
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyCacheMaxSize, defaults.CacheMaxSize)
	v.SetDefault(KeyCacheTTL, defaults.CacheTTL)
	v.SetDefault(KeyImportHint, defaults.ImportHint)
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
	v.SetDefault(KeyMaxUploadBytes, 20<<20)
	v.SetDefault(KeyMongoURI, "")
	v.SetDefault(KeyMongoDatabase, "clause")
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeyRedisTTL, 10*time.Minute)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file at path into v and decodes the settings. With an
// empty path, clause.yaml is looked up in the working directory and in
// $HOME/.config/clause; a missing file is not an error in that case.
func Load(v *viper.Viper, path string) (*Settings, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("clause")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/clause")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	s := &Settings{
		Engine: clause.Config{
			CacheMaxSize: v.GetInt(KeyCacheMaxSize),
			CacheTTL:     v.GetDuration(KeyCacheTTL),
			LogLevel:     strings.ToLower(v.GetString(KeyLogLevel)),
			ImportHint:   v.GetString(KeyImportHint),
		},
		HTTP: HTTPSettings{
			Addr:            v.GetString(KeyHTTPAddr),
			ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
			MaxUploadBytes:  v.GetInt64(KeyMaxUploadBytes),
		},
		Mongo: MongoSettings{
			URI:      v.GetString(KeyMongoURI),
			Database: v.GetString(KeyMongoDatabase),
		},
		Redis: RedisSettings{
			Addr: strings.TrimPrefix(v.GetString(KeyRedisAddr), "redis://"),
			TTL:  v.GetDuration(KeyRedisTTL),
		},
	}

	problems := clause.NewMultiError()
	problems.Add(s.Engine.Validate())
	if s.HTTP.MaxUploadBytes <= 0 {
		problems.Add(errors.New(KeyMaxUploadBytes + " must be positive"))
	}
	if s.HTTP.ShutdownTimeout <= 0 {
		problems.Add(errors.New(KeyShutdownTimeout + " must be positive"))
	}
	if s.Mongo.URI != "" && s.Mongo.Database == "" {
		problems.Add(errors.New(KeyMongoDatabase + " is required with " + KeyMongoURI))
	}
	if err := problems.Err(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return s, nil
}
