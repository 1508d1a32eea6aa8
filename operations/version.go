package operations

import (
	"fmt"

	"github.com/evergreen-ci/fmtasks"
	"github.com/urfave/cli"
)

func Version() cli.Command {
	return cli.Command{
		Name:  "version",
		Usage: "prints the revision of the current binary",
		Action: func(c *cli.Context) error {
			revision := fmtasks.BuildRevision
			if revision == "" {
				revision = "unknown"
			}
			fmt.Printf("%s (client version %s)\n", revision, fmtasks.ClientVersion)
			return nil
		},
	}
}
