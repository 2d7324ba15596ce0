package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-clause/pkg/clause"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	s, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", s.Engine.LogLevel)
	assert.Equal(t, 128, s.Engine.CacheMaxSize)
	assert.Equal(t, "enter value", s.Engine.ImportHint)
	assert.Equal(t, ":8080", s.HTTP.Addr)
	assert.Equal(t, 10*time.Second, s.HTTP.ShutdownTimeout)
	assert.Equal(t, int64(20<<20), s.HTTP.MaxUploadBytes)
	assert.Equal(t, "", s.Mongo.URI)
	assert.Equal(t, "clause", s.Mongo.Database)
	assert.Equal(t, "", s.Redis.Addr)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clause.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: warn
cache:
  max_size: 32
  ttl: 1m
http:
  addr: ":9000"
mongo:
  uri: mongodb://localhost:27017
redis:
  addr: redis://localhost:6379
`), 0o600))

	t.Setenv("CLAUSE_HTTP_ADDR", ":9100")
	t.Setenv("CLAUSE_IMPORT_HINT", "fill in")

	s, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "warn", s.Engine.LogLevel)
	assert.Equal(t, 32, s.Engine.CacheMaxSize)
	assert.Equal(t, time.Minute, s.Engine.CacheTTL)
	assert.Equal(t, "fill in", s.Engine.ImportHint)
	assert.Equal(t, ":9100", s.HTTP.Addr)
	assert.Equal(t, "mongodb://localhost:27017", s.Mongo.URI)
	assert.Equal(t, "localhost:6379", s.Redis.Addr)
}

func TestLoadOverridesWin(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CLAUSE_LOG_LEVEL", "error")

	v := New()
	v.Set(KeyLogLevel, "debug")
	s, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Engine.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	chdir(t, t.TempDir())
	t.Setenv("CLAUSE_LOG_LEVEL", "chatty")
	_, err = Load(New(), "")
	assert.ErrorContains(t, err, "invalid log level")

	t.Setenv("CLAUSE_LOG_LEVEL", "info")
	t.Setenv("CLAUSE_HTTP_MAX_UPLOAD_BYTES", "0")
	_, err = Load(New(), "")
	assert.ErrorContains(t, err, "max_upload_bytes")

	t.Setenv("CLAUSE_HTTP_SHUTDOWN_TIMEOUT", "0s")
	t.Setenv("CLAUSE_LOG_LEVEL", "chatty")
	_, err = Load(New(), "")
	var problems *clause.MultiError
	require.ErrorAs(t, err, &problems)
	assert.Equal(t, 3, problems.Len())
	assert.ErrorContains(t, err, "3 errors occurred")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
