package operations

import (
	"strings"

	"github.com/evergreen-ci/fmtasks"
	"github.com/urfave/cli"
)

const (
	confFlagName       = "conf"
	mongoDBURIFlagName = "mongodb-uri"
	hostFlagName       = "host"
	portFlagName       = "port"
	levelFlagName      = "level"
	envFileFlagName    = "env-file"
)

func joinFlagNames(ids ...string) string { return strings.Join(ids, ", ") }

func serviceConfigFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:  joinFlagNames(confFlagName, "config", "c"),
			Usage: "path to the service configuration file; defaults are used if the default file does not exist",
			Value: fmtasks.DefaultServiceConfigurationFileName,
		},
		cli.StringFlag{
			Name:  mongoDBURIFlagName,
			Usage: "connection string of the task database, overrides the configuration file and $" + fmtasks.MongoDBURIEnvVar,
		},
		cli.StringFlag{
			Name:  envFileFlagName,
			Usage: "path to a dotenv file with environment defaults; variables set in the process environment take precedence",
		},
		cli.StringFlag{
			Name:  hostFlagName,
			Usage: "interface the API listens on",
		},
		cli.IntFlag{
			Name:  portFlagName,
			Usage: "port the API listens on",
		},
	)
}
