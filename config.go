package fmtasks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/evergreen-ci/fmtasks/util"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings contains all configuration settings for the task service.
// Settings are read once at startup and passed explicitly to the
// components that need them.
type Settings struct {
	Database DBSettings   `yaml:"database" toml:"database"`
	Api      APIConfig    `yaml:"api" toml:"api"`
	Tracer   TracerConfig `yaml:"tracer" toml:"tracer"`
	LogLevel string       `yaml:"log_level" toml:"log_level"`
}

// APIConfig holds relevant settings for the HTTP server.
type APIConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
	// MaxRequestSize caps request bodies, in bytes. Larger bodies are
	// truncated and fail to parse.
	MaxRequestSize int64 `yaml:"max_request_size" toml:"max_request_size"`
}

func (c *APIConfig) ValidateAndDefault() error {
	if c.Host == "" {
		c.Host = DefaultAPIHost
	}
	if c.Port == 0 {
		c.Port = DefaultAPIPort
	}
	if c.MaxRequestSize == 0 {
		c.MaxRequestSize = util.MaxRequestSize
	}
	catcher := grip.NewBasicCatcher()
	catcher.ErrorfWhen(c.Port < 0 || c.Port > 65535, "port %d is out of range", c.Port)
	catcher.ErrorfWhen(c.MaxRequestSize < 0, "max request size %d cannot be negative", c.MaxRequestSize)
	return catcher.Resolve()
}

// NewSettings builds an in-memory representation of the given
// settings file. Files ending in ".toml" are read as TOML; anything
// else is read as YAML.
func NewSettings(filename string) (*Settings, error) {
	configData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading settings file '%s'", filename)
	}
	settings := &Settings{}
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		err = toml.Unmarshal(configData, settings)
	} else {
		err = yaml.Unmarshal(configData, settings)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unmarshalling settings file '%s'", filename)
	}

	return settings, nil
}

// DefaultSettings returns settings that are valid without a
// configuration file.
func DefaultSettings() *Settings {
	settings := &Settings{}
	grip.EmergencyPanic(errors.Wrap(settings.Validate(), "validating default settings"))
	return settings
}

// ApplyEnvironment overrides settings with values from the process
// environment. lookup has the signature of os.LookupEnv.
func (s *Settings) ApplyEnvironment(lookup func(string) (string, bool)) {
	if uri, ok := lookup(MongoDBURIEnvVar); ok && uri != "" {
		s.Database.Url = uri
	}
}

// Validate checks the settings and populates any defaults.
func (s *Settings) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.Wrap(s.Database.ValidateAndDefault(), "validating database settings")
	catcher.Wrap(s.Api.ValidateAndDefault(), "validating api settings")
	catcher.Wrap(s.Tracer.ValidateAndDefault(), "validating tracer settings")
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}

	return errors.Wrap(catcher.Resolve(), "validating settings")
}
