package clause

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Engine bundles configuration, logging and a token cache for the
// package-level operations. Use New() to create a new engine instance.
type Engine struct {
	config *Config
	logger *Logger
	cache  *TokenCache
}

// New creates an engine with the global configuration.
func New() *Engine {
	return NewWithConfig(GetGlobalConfig())
}

// NewWithConfig creates an engine with a custom configuration.
func NewWithConfig(config *Config) *Engine {
	config = NewConfigWithDefaults(config)
	return &Engine{
		config: config,
		logger: GetLogger(),
		cache:  NewTokenCache(config.CacheMaxSize, config.CacheTTL),
	}
}

// WithLogger returns a copy of the engine that logs through logger.
func (e *Engine) WithLogger(logger *Logger) *Engine {
	clone := *e
	if logger == nil {
		logger = NopLogger()
	}
	clone.logger = logger
	return &clone
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return *e.config
}

// Cache exposes the token cache (mostly for tests and metrics).
func (e *Engine) Cache() *TokenCache {
	return e.cache
}

// Render implements the package-level Render.
func (e *Engine) Render(templateHTML string, conditionals Conditionals, answers Answers) string {
	out, _ := e.RenderWithFields(templateHTML, conditionals, answers, nil)
	return out
}

// RenderWithFields implements the package-level RenderWithFields.
func (e *Engine) RenderWithFields(templateHTML string, conditionals Conditionals, answers Answers, prior FieldValues) (string, FieldValues) {
	if e.logger.IsDebugMode() {
		e.logger.DebugMarkers(templateHTML, answers)
	}

	resolved := resolveConditionals(e.cache.Tokens(templateHTML), conditionals, answers)
	out, surviving := expandFields(resolved, prior)

	if e.logger.IsDebugMode() {
		e.logger.WithFields(Fields{
			"output_length": len(out),
			"fields_kept":   len(surviving),
			"fields_prior":  len(prior),
		}).Debug("Render complete")
	}
	return out, surviving
}

// ImportDocx implements the package-level ImportDocx using the engine's hint.
func (e *Engine) ImportDocx(data []byte) (string, error) {
	return importDocx(data, e.config.ImportHint, e.logger)
}

var (
	defaultEngineMu   sync.Mutex
	defaultEngineInst *Engine
)

// defaultEngine serves the package-level functions. It is rebuilt whenever the
// global configuration or logger has changed since the last call.
func defaultEngine() *Engine {
	config := NewConfigWithDefaults(GetGlobalConfig())
	logger := GetLogger()

	defaultEngineMu.Lock()
	defer defaultEngineMu.Unlock()
	if defaultEngineInst == nil || *defaultEngineInst.config != *config || defaultEngineInst.logger != logger {
		defaultEngineInst = NewWithConfig(config).WithLogger(logger)
	}
	return defaultEngineInst
}

// TokenCache keeps the conditional tokenization of template bodies, keyed by
// content hash. Field markers are tokenized after conditionals are resolved.
// A cache with size 0 tokenizes on every call.
type TokenCache struct {
	lru *expirable.LRU[string, []Token]
}

// NewTokenCache creates a cache holding at most size entries for at most ttl (0 = forever).
func NewTokenCache(size int, ttl time.Duration) *TokenCache {
	if size <= 0 {
		return &TokenCache{}
	}
	return &TokenCache{lru: expirable.NewLRU[string, []Token](size, nil, ttl)}
}

// Tokens returns TokenizeConditionals(input), from cache when possible.
func (c *TokenCache) Tokens(input string) []Token {
	if c == nil || c.lru == nil {
		return TokenizeConditionals(input)
	}
	key := cacheKey(input)
	if tokens, ok := c.lru.Get(key); ok {
		return tokens
	}
	tokens := TokenizeConditionals(input)
	c.lru.Add(key, tokens)
	return tokens
}

// Len returns the number of cached tokenizations.
func (c *TokenCache) Len() int {
	if c == nil || c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge empties the cache.
func (c *TokenCache) Purge() {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Purge()
}

func cacheKey(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
