package fmtasks

import "time"

var (
	// BuildRevision should be specified with -ldflags at build time
	BuildRevision = ""

	// ClientVersion is the version reported by the command line
	// interface. Bump it whenever the request or response shape of the
	// task API changes.
	ClientVersion = "1.1.0"
)

const (
	PackageName = "github.com/evergreen-ci/fmtasks"

	// DefaultServiceConfigurationFileName is the conventional location
	// of the service's settings file. The file is optional.
	DefaultServiceConfigurationFileName = "/etc/fmtasks.yml"

	// MongoDBURIEnvVar overrides the configured connection string.
	MongoDBURIEnvVar = "MONGODB_URI"
)

// database defaults
const (
	DefaultDatabaseURL        = "mongodb://localhost:27017/"
	DefaultDatabaseName       = "fmtasks"
	DefaultTaskCollection     = "tasks"
	DefaultConnectTimeout     = 3 * time.Second
	DefaultSelectTimeoutExtra = 2 * time.Second
)

// API server defaults
const (
	DefaultAPIHost = "0.0.0.0"
	DefaultAPIPort = 5000

	// APIShutdownTimeout bounds how long in-flight requests may take
	// to finish once the service is asked to stop.
	APIShutdownTimeout = 10 * time.Second
)

const (
	TaskRoutePrefix = "/task/"

	LocationHeader = "Location"

	OtelAttributeMaxLength = 10000

	otelExportInterval = 15 * time.Second
)
