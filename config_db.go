package fmtasks

import (
	"time"

	"github.com/mongodb/grip"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// DBSettings configures the connection to the document store that
// holds tasks.
type DBSettings struct {
	Url        string `yaml:"url" toml:"url"`
	DB         string `yaml:"db" toml:"db"`
	Collection string `yaml:"collection" toml:"collection"`

	// ConnectTimeout bounds establishing a connection. The server
	// selection timeout is ConnectTimeout plus SelectTimeoutExtra.
	ConnectTimeout     time.Duration `yaml:"connect_timeout" toml:"connect_timeout"`
	SelectTimeoutExtra time.Duration `yaml:"select_timeout_extra" toml:"select_timeout_extra"`
}

func (s *DBSettings) ValidateAndDefault() error {
	if s.Url == "" {
		s.Url = DefaultDatabaseURL
	}
	if s.DB == "" {
		s.DB = DefaultDatabaseName
	}
	if s.Collection == "" {
		s.Collection = DefaultTaskCollection
	}
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(s.ConnectTimeout < 0, "connect timeout cannot be negative")
	catcher.NewWhen(s.SelectTimeoutExtra < 0, "extra server selection timeout cannot be negative")
	if catcher.HasErrors() {
		return catcher.Resolve()
	}
	if s.ConnectTimeout == 0 {
		s.ConnectTimeout = DefaultConnectTimeout
	}
	if s.SelectTimeoutExtra == 0 {
		s.SelectTimeoutExtra = DefaultSelectTimeoutExtra
	}

	return nil
}

// ServerSelectionTimeout is the longest an operation waits for the
// store to become reachable before it fails.
func (s *DBSettings) ServerSelectionTimeout() time.Duration {
	return s.ConnectTimeout + s.SelectTimeoutExtra
}

// ClientOptions returns the driver options for these settings.
func (s *DBSettings) ClientOptions() *options.ClientOptions {
	return options.Client().
		ApplyURI(s.Url).
		SetConnectTimeout(s.ConnectTimeout).
		SetServerSelectionTimeout(s.ServerSelectionTimeout()).
		SetWriteConcern(writeconcern.Majority()).
		SetRetryWrites(false).
		SetRetryReads(false).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
}
