package clause

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultImportHint is the hint given to blanks that carry no text of their own.
const DefaultImportHint = "enter value"

// Config contains all configuration options for the clause engine
type Config struct {
	// CacheMaxSize is the maximum number of tokenized templates to keep. 0 disables caching.
	CacheMaxSize int
	// CacheTTL is the time-to-live for cached tokenizations. 0 means no expiration.
	CacheTTL time.Duration
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string
	// ImportHint is the hint used for blanks found by the importer.
	ImportHint string
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func loadGlobalConfig() {
	configOnce.Do(func() {
		globalConfigMutex.Lock()
		globalConfig = ConfigFromEnvironment()
		globalConfigMutex.Unlock()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheMaxSize: 128,
		CacheTTL:     0,
		LogLevel:     "info",
		ImportHint:   DefaultImportHint,
	}
}

// ConfigFromEnvironment creates a configuration from CLAUSE_* environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	if val := os.Getenv("CLAUSE_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.CacheMaxSize = size
		}
	}

	if val := os.Getenv("CLAUSE_CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			config.CacheTTL = d
		}
	}

	if val := os.Getenv("CLAUSE_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}

	if val := os.Getenv("CLAUSE_IMPORT_HINT"); val != "" {
		config.ImportHint = val
	}

	return config
}

// NewConfigWithDefaults fills unset fields of overrides with defaults.
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()
	if overrides == nil {
		return defaults
	}

	config := *overrides
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if strings.TrimSpace(config.ImportHint) == "" {
		config.ImportHint = defaults.ImportHint
	}
	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.CacheMaxSize < 0 {
		return errors.New("cache max size cannot be negative")
	}

	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "off":
	default:
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if strings.ContainsAny(c.ImportHint, "}") {
		return errors.New("import hint cannot contain '}'")
	}

	return nil
}

// GetGlobalConfig returns a copy of the global configuration
func GetGlobalConfig() *Config {
	loadGlobalConfig()
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig replaces the global configuration and updates the logger level.
func SetGlobalConfig(config *Config) {
	loadGlobalConfig()
	globalConfigMutex.Lock()
	globalConfig = NewConfigWithDefaults(config)
	globalConfigMutex.Unlock()

	UpdateLoggerFromConfig()
}
