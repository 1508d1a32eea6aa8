package fmtasks

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evergreen-ci/fmtasks/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettingsFile(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestNewSettings(t *testing.T) {
	t.Run("YAML", func(t *testing.T) {
		path := writeSettingsFile(t, "fmtasks.yml", `
database:
  url: mongodb://db.example.com:27017/
  db: tasks-db
  collection: todo
  connect_timeout: 1s
  select_timeout_extra: 500ms
api:
  host: 127.0.0.1
  port: 8080
  max_request_size: 4096
tracer:
  enabled: true
  collector_endpoint: collector:4317
  insecure: true
log_level: debug
`)
		settings, err := NewSettings(path)
		require.NoError(t, err)

		assert.Equal(t, "mongodb://db.example.com:27017/", settings.Database.Url)
		assert.Equal(t, "tasks-db", settings.Database.DB)
		assert.Equal(t, "todo", settings.Database.Collection)
		assert.Equal(t, time.Second, settings.Database.ConnectTimeout)
		assert.Equal(t, 500*time.Millisecond, settings.Database.SelectTimeoutExtra)
		assert.Equal(t, "127.0.0.1", settings.Api.Host)
		assert.Equal(t, 8080, settings.Api.Port)
		assert.EqualValues(t, 4096, settings.Api.MaxRequestSize)
		assert.True(t, settings.Tracer.Enabled)
		assert.Equal(t, "collector:4317", settings.Tracer.CollectorEndpoint)
		assert.True(t, settings.Tracer.Insecure)
		assert.Equal(t, "debug", settings.LogLevel)
		assert.NoError(t, settings.Validate())
	})
	t.Run("TOML", func(t *testing.T) {
		path := writeSettingsFile(t, "fmtasks.TOML", `
log_level = "warning"

[database]
url = "mongodb://toml.example.com:27017/"
collection = "todo"

[api]
port = 9090
`)
		settings, err := NewSettings(path)
		require.NoError(t, err)

		assert.Equal(t, "mongodb://toml.example.com:27017/", settings.Database.Url)
		assert.Equal(t, "todo", settings.Database.Collection)
		assert.Equal(t, 9090, settings.Api.Port)
		assert.Equal(t, "warning", settings.LogLevel)

		require.NoError(t, settings.Validate())
		assert.Equal(t, DefaultDatabaseName, settings.Database.DB)
		assert.Equal(t, DefaultAPIHost, settings.Api.Host)
	})
	t.Run("MissingFile", func(t *testing.T) {
		settings, err := NewSettings(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
		assert.Nil(t, settings)
	})
	t.Run("MalformedYAML", func(t *testing.T) {
		path := writeSettingsFile(t, "bad.yml", "database: [unterminated")
		settings, err := NewSettings(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshalling")
		assert.Nil(t, settings)
	})
	t.Run("MalformedTOML", func(t *testing.T) {
		path := writeSettingsFile(t, "bad.toml", "[database\nurl = ")
		settings, err := NewSettings(path)
		require.Error(t, err)
		assert.Nil(t, settings)
	})
}

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	assert.Equal(t, DefaultDatabaseURL, settings.Database.Url)
	assert.Equal(t, DefaultDatabaseName, settings.Database.DB)
	assert.Equal(t, DefaultTaskCollection, settings.Database.Collection)
	assert.Equal(t, 5*time.Second, settings.Database.ServerSelectionTimeout())
	assert.Equal(t, DefaultAPIHost, settings.Api.Host)
	assert.Equal(t, DefaultAPIPort, settings.Api.Port)
	assert.EqualValues(t, util.MaxRequestSize, settings.Api.MaxRequestSize)
	assert.False(t, settings.Tracer.Enabled)
	assert.Equal(t, "info", settings.LogLevel)
}

func TestApplyEnvironment(t *testing.T) {
	lookupFrom := func(env map[string]string) func(string) (string, bool) {
		return func(key string) (string, bool) {
			val, ok := env[key]
			return val, ok
		}
	}

	for tName, tCase := range map[string]struct {
		env      map[string]string
		expected string
	}{
		"OverridesURL": {
			env:      map[string]string{MongoDBURIEnvVar: "mongodb://env:27017/"},
			expected: "mongodb://env:27017/",
		},
		"IgnoresEmptyValue": {
			env:      map[string]string{MongoDBURIEnvVar: ""},
			expected: "mongodb://file:27017/",
		},
		"IgnoresUnsetValue": {
			env:      map[string]string{},
			expected: "mongodb://file:27017/",
		},
	} {
		t.Run(tName, func(t *testing.T) {
			settings := &Settings{Database: DBSettings{Url: "mongodb://file:27017/"}}
			settings.ApplyEnvironment(lookupFrom(tCase.env))
			assert.Equal(t, tCase.expected, settings.Database.Url)
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	t.Run("PortOutOfRange", func(t *testing.T) {
		settings := &Settings{Api: APIConfig{Port: 70000}}
		err := settings.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})
	t.Run("NegativePort", func(t *testing.T) {
		settings := &Settings{Api: APIConfig{Port: -1}}
		assert.Error(t, settings.Validate())
	})
	t.Run("NegativeMaxRequestSize", func(t *testing.T) {
		settings := &Settings{Api: APIConfig{MaxRequestSize: -1}}
		err := settings.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max request size")
	})
	t.Run("KeepsMaxRequestSize", func(t *testing.T) {
		settings := &Settings{Api: APIConfig{MaxRequestSize: 1024}}
		require.NoError(t, settings.Validate())
		assert.EqualValues(t, 1024, settings.Api.MaxRequestSize)
	})
	t.Run("CollectsEveryProblem", func(t *testing.T) {
		settings := &Settings{
			Database: DBSettings{ConnectTimeout: -time.Second},
			Api:      APIConfig{Port: 70000},
			Tracer:   TracerConfig{Enabled: true},
		}
		err := settings.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database")
		assert.Contains(t, err.Error(), "api")
		assert.Contains(t, err.Error(), "tracer")
	})
	t.Run("KeepsLogLevel", func(t *testing.T) {
		settings := &Settings{LogLevel: "error"}
		require.NoError(t, settings.Validate())
		assert.Equal(t, "error", settings.LogLevel)
	})
}
