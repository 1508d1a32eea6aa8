package operations

import (
	"os"

	"github.com/evergreen-ci/fmtasks"
	"github.com/joho/godotenv"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func mergeBeforeFuncs(ops ...cli.BeforeFunc) cli.BeforeFunc {
	return func(c *cli.Context) error {
		catcher := grip.NewBasicCatcher()

		for _, op := range ops {
			catcher.Add(op(c))
		}

		return catcher.Resolve()
	}
}

// requireFileExistsIfSet fails when the named flag was given on the
// command line and points at a missing file.
func requireFileExistsIfSet(name string) cli.BeforeFunc {
	return func(c *cli.Context) error {
		if !c.IsSet(name) {
			return nil
		}

		path := c.String(name)
		if _, err := os.Stat(path); err != nil {
			return errors.Wrapf(err, "checking file '%s' given by flag '%s'", path, name)
		}

		return nil
	}
}

func setupServiceLogging(name string) cli.BeforeFunc {
	return func(c *cli.Context) error {
		grip.SetName(name)
		return nil
	}
}

// loadSettings builds the service settings from, in increasing order of
// precedence: defaults, the configuration file, the process environment,
// and command line flags.
func loadSettings(c *cli.Context) (*fmtasks.Settings, error) {
	settings := &fmtasks.Settings{}

	path := c.String(confFlagName)
	if _, err := os.Stat(path); err == nil {
		settings, err = fmtasks.NewSettings(path)
		if err != nil {
			return nil, errors.Wrap(err, "loading settings")
		}
	} else if c.IsSet(confFlagName) {
		return nil, errors.Wrapf(err, "finding settings file '%s'", path)
	}

	lookup, err := environmentLookup(c)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	settings.ApplyEnvironment(lookup)

	if c.IsSet(mongoDBURIFlagName) {
		settings.Database.Url = c.String(mongoDBURIFlagName)
	}
	if c.IsSet(hostFlagName) {
		settings.Api.Host = c.String(hostFlagName)
	}
	if c.IsSet(portFlagName) {
		settings.Api.Port = c.Int(portFlagName)
	}
	if c.GlobalIsSet(levelFlagName) {
		settings.LogLevel = c.GlobalString(levelFlagName)
	}

	if err := settings.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid settings")
	}

	return settings, nil
}

// environmentLookup returns a lookup over the process environment,
// falling back to the dotenv file given on the command line, if any.
func environmentLookup(c *cli.Context) (func(string) (string, bool), error) {
	if !c.IsSet(envFileFlagName) {
		return os.LookupEnv, nil
	}

	path := c.String(envFileFlagName)
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading environment file '%s'", path)
	}

	return func(key string) (string, bool) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val, true
		}
		val, ok := vars[key]
		return val, ok
	}, nil
}

func setLogLevel(l string) error {
	sender := grip.GetSender()
	info := sender.Level()
	info.Threshold = level.FromString(l)

	return errors.Wrap(sender.SetLevel(info), "setting log level")
}
